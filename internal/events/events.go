// Package events публикует события жизненного цикла проката в RabbitMQ.
package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mmeshcher/rental-store/internal/model"
)

// Типы событий проката.
const (
	TypeRentalCheckedOut = "rental.checked_out"
	TypeRentalReturned   = "rental.returned"
)

// QueueName задаёт очередь, в которую публикуются события проката.
const QueueName = "rentals.events"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrPublisherClosed возвращается при публикации после Close.
var ErrPublisherClosed = errors.New("publisher closed")

// RentalEvent описывает выдачу или возврат фильма.
type RentalEvent struct {
	Type         string     `json:"type"`
	RentalID     string     `json:"rentalId"`
	CustomerID   string     `json:"customerId"`
	MovieID      string     `json:"movieId"`
	DateOut      time.Time  `json:"dateOut"`
	DateReturned *time.Time `json:"dateReturned,omitempty"`
	RentalFee    *float64   `json:"rentalFee,omitempty"`
	OccurredAt   time.Time  `json:"occurredAt"`
}

// NewRentalEvent собирает событие указанного типа по записи проката.
func NewRentalEvent(eventType string, r *model.Rental, occurredAt time.Time) RentalEvent {
	return RentalEvent{
		Type:         eventType,
		RentalID:     r.ID.String(),
		CustomerID:   r.Customer.ID.String(),
		MovieID:      r.Movie.ID.String(),
		DateOut:      r.DateOut,
		DateReturned: r.DateReturned,
		RentalFee:    r.RentalFee,
		OccurredAt:   occurredAt.UTC(),
	}
}

// Encode сериализует событие в JSON.
func (e RentalEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// NopPublisher отбрасывает события. Используется, когда брокер не настроен.
type NopPublisher struct{}

// Publish ничего не делает.
func (NopPublisher) Publish(context.Context, RentalEvent) error { return nil }

// Close ничего не делает.
func (NopPublisher) Close() error { return nil }

// channel описывает используемую часть *amqp.Channel.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher публикует события в устойчивую очередь RabbitMQ.
type RabbitPublisher struct {
	mu     sync.Mutex
	conn   io.Closer
	ch     channel
	closed bool
}

func newRabbitPublisher(conn io.Closer, ch channel) *RabbitPublisher {
	return &RabbitPublisher{conn: conn, ch: ch}
}

// NewRabbitPublisher подключается к брокеру и объявляет очередь событий.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return newRabbitPublisher(conn, ch), nil
}

// Publish отправляет событие в очередь с постоянной доставкой.
func (p *RabbitPublisher) Publish(ctx context.Context, e RentalEvent) error {
	body, err := e.Encode()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	err = p.ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         e.Type,
			MessageId:    e.RentalID,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close закрывает канал и соединение с брокером.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return errors.Join(p.ch.Close(), p.conn.Close())
}
