// Package service реализует бизнес-логику сервиса проката фильмов.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/rental-store/internal/auth"
	"github.com/mmeshcher/rental-store/internal/events"
	"github.com/mmeshcher/rental-store/internal/model"
	"github.com/mmeshcher/rental-store/internal/repository"
)

// ErrInvalidCredentials возвращается при неверной паре email и пароль.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)
	CreateGenre(ctx context.Context, g *model.Genre) error
	UpdateGenre(ctx context.Context, g *model.Genre) error
	DeleteGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)

	ListMovies(ctx context.Context) ([]model.Movie, error)
	GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	CreateMovie(ctx context.Context, m *model.Movie) error
	UpdateMovie(ctx context.Context, m *model.Movie) error
	DeleteMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error)

	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, c *model.Customer) error
	UpdateCustomer(ctx context.Context, c *model.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	ListRentals(ctx context.Context) ([]model.Rental, error)
	GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	FindRental(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error)
	CreateRental(ctx context.Context, r *model.Rental) error
	ReturnRental(ctx context.Context, r *model.Rental) error
}

// Publisher публикует события проката.
type Publisher interface {
	Publish(ctx context.Context, e events.RentalEvent) error
}

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithPublisher задаёт публикатор событий проката.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger задаёт логгер сервиса.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithBcryptCost задаёт стоимость хэширования паролей.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// Service содержит бизнес-логику сервиса проката.
type Service struct {
	repo       Repository
	tokens     *auth.TokenManager
	publisher  Publisher
	clock      Clock
	logger     *zap.Logger
	bcryptCost int
}

// NewService создаёт новый сервис с указанным репозиторием и менеджером токенов.
func NewService(repo Repository, tokens *auth.TokenManager, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		tokens:     tokens,
		publisher:  events.NopPublisher{},
		clock:      systemClock{},
		logger:     zap.NewNop(),
		bcryptCost: 12,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// NormalizeEmail приводит email к каноническому виду.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser регистрирует нового пользователя и выпускает для него токен.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*model.User, string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, "", repository.ErrUserExists
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// AuthenticateUser проверяет email и пароль и возвращает токен доступа.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(u.ID, u.IsAdmin)
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}
