package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/rental-store/internal/events"
	"github.com/mmeshcher/rental-store/internal/model"
	"github.com/mmeshcher/rental-store/internal/repository"
)

const day = 24 * time.Hour

// RentalFee считает стоимость проката: число дней, округлённое вверх и не меньше одного,
// умноженное на дневную ставку.
func RentalFee(dateOut, dateReturned time.Time, dailyRentalRate float64) float64 {
	elapsed := dateReturned.Sub(dateOut)

	days := int64(elapsed / day)
	if elapsed%day > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}

	return model.FromCents(days * model.ToCents(dailyRentalRate))
}

// ListRentals возвращает все прокаты.
func (s *Service) ListRentals(ctx context.Context) ([]model.Rental, error) {
	return s.repo.ListRentals(ctx)
}

// GetRental возвращает прокат по идентификатору.
func (s *Service) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	return s.repo.GetRental(ctx, id)
}

// Checkout выдаёт фильм клиенту: создаёт прокат и уменьшает остаток фильма.
// Обе записи выполняются атомарно в хранилище.
func (s *Service) Checkout(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error) {
	c, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if m.NumberInStock == 0 {
		return nil, repository.ErrOutOfStock
	}

	rental := model.NewRental(c, m, s.clock.Now())

	if err := s.repo.CreateRental(ctx, rental); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeRentalCheckedOut, rental)

	return rental, nil
}

// Return закрывает незавершённый прокат фильма клиентом: фиксирует дату возврата,
// считает стоимость по дате выдачи и возвращает фильм на склад.
func (s *Service) Return(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error) {
	rental, err := s.repo.FindRental(ctx, customerID, movieID)
	if err != nil {
		return nil, err
	}

	if rental.Returned() {
		return nil, repository.ErrAlreadyReturned
	}

	now := s.clock.Now()
	fee := RentalFee(rental.DateOut, now, rental.Movie.DailyRentalRate)

	returned := *rental
	returned.DateReturned = &now
	returned.RentalFee = &fee

	if err := s.repo.ReturnRental(ctx, &returned); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeRentalReturned, &returned)

	return &returned, nil
}

func (s *Service) publish(ctx context.Context, eventType string, r *model.Rental) {
	e := events.NewRentalEvent(eventType, r, s.clock.Now())
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish rental event error",
			zap.Error(fmt.Errorf("%s: %w", eventType, err)),
			zap.String("rentalID", r.ID.String()),
		)
	}
}
