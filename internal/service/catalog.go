package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/rental-store/internal/model"
	"github.com/mmeshcher/rental-store/internal/repository"
)

// ErrInvalidGenre возвращается, если фильм ссылается на несуществующий жанр.
var ErrInvalidGenre = errors.New("invalid genre")

// MovieInput содержит поля фильма, передаваемые клиентом API.
type MovieInput struct {
	Title           string
	GenreID         uuid.UUID
	NumberInStock   int
	DailyRentalRate float64
}

// CustomerInput содержит поля клиента, передаваемые клиентом API.
type CustomerInput struct {
	Name   string
	Phone  string
	IsGold bool
}

// ListGenres возвращает все жанры.
func (s *Service) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.repo.ListGenres(ctx)
}

// GetGenre возвращает жанр по идентификатору.
func (s *Service) GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	return s.repo.GetGenre(ctx, id)
}

// CreateGenre создаёт жанр.
func (s *Service) CreateGenre(ctx context.Context, name string) (*model.Genre, error) {
	g := &model.Genre{ID: uuid.New(), Name: strings.TrimSpace(name)}
	if err := s.repo.CreateGenre(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGenre переименовывает жанр.
func (s *Service) UpdateGenre(ctx context.Context, id uuid.UUID, name string) (*model.Genre, error) {
	g := &model.Genre{ID: id, Name: strings.TrimSpace(name)}
	if err := s.repo.UpdateGenre(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGenre удаляет жанр.
func (s *Service) DeleteGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	return s.repo.DeleteGenre(ctx, id)
}

// ListMovies возвращает все фильмы.
func (s *Service) ListMovies(ctx context.Context) ([]model.Movie, error) {
	return s.repo.ListMovies(ctx)
}

// GetMovie возвращает фильм по идентификатору.
func (s *Service) GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	return s.repo.GetMovie(ctx, id)
}

func (s *Service) movieFromInput(ctx context.Context, id uuid.UUID, in MovieInput) (*model.Movie, error) {
	g, err := s.repo.GetGenre(ctx, in.GenreID)
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return nil, ErrInvalidGenre
		}
		return nil, err
	}

	return &model.Movie{
		ID:              id,
		Title:           strings.TrimSpace(in.Title),
		Genre:           *g,
		NumberInStock:   in.NumberInStock,
		DailyRentalRate: in.DailyRentalRate,
	}, nil
}

// CreateMovie создаёт фильм, сохраняя в нём копию текущего жанра.
func (s *Service) CreateMovie(ctx context.Context, in MovieInput) (*model.Movie, error) {
	m, err := s.movieFromInput(ctx, uuid.New(), in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMovie(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMovie заменяет поля фильма.
func (s *Service) UpdateMovie(ctx context.Context, id uuid.UUID, in MovieInput) (*model.Movie, error) {
	m, err := s.movieFromInput(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMovie(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMovie удаляет фильм.
func (s *Service) DeleteMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	return s.repo.DeleteMovie(ctx, id)
}

// ListCustomers возвращает всех клиентов.
func (s *Service) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// GetCustomer возвращает клиента по идентификатору.
func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// CreateCustomer создаёт клиента.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	c := &model.Customer{
		ID:     uuid.New(),
		Name:   strings.TrimSpace(in.Name),
		Phone:  in.Phone,
		IsGold: in.IsGold,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCustomer заменяет поля клиента.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, in CustomerInput) (*model.Customer, error) {
	c := &model.Customer{
		ID:     id,
		Name:   strings.TrimSpace(in.Name),
		Phone:  in.Phone,
		IsGold: in.IsGold,
	}
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer удаляет клиента.
func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return s.repo.DeleteCustomer(ctx, id)
}
