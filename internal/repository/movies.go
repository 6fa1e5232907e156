package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/rental-store/internal/model"
)

var movieColumns = []string{"id", "title", "genre_id", "genre_name", "number_in_stock", "daily_rental_rate"}

func scanMovie(row pgx.Row) (model.Movie, error) {
	var (
		m         model.Movie
		rateCents int64
	)
	err := row.Scan(&m.ID, &m.Title, &m.Genre.ID, &m.Genre.Name, &m.NumberInStock, &rateCents)
	m.DailyRentalRate = model.FromCents(rateCents)
	return m, err
}

// ListMovies возвращает все фильмы, отсортированные по названию.
func (r *PostgresRepository) ListMovies(ctx context.Context) ([]model.Movie, error) {
	query, err := listQuery("movies", movieColumns, goqu.I("title").Asc())
	if err != nil {
		return nil, err
	}

	var movies []model.Movie
	err = r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("select movies: %w", err)
		}
		movies, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Movie, error) {
			return scanMovie(row)
		})
		if err != nil {
			return fmt.Errorf("scan movies: %w", err)
		}
		return nil
	})
	return movies, err
}

// GetMovie возвращает фильм по идентификатору.
func (r *PostgresRepository) GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	var m model.Movie
	err := r.withRetry(ctx, func() error {
		var err error
		m, err = scanMovie(r.pool.QueryRow(ctx,
			`SELECT id, title, genre_id, genre_name, number_in_stock, daily_rental_rate
			 FROM movies WHERE id = $1`, id,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &m, nil
}

// CreateMovie сохраняет новый фильм вместе с копией жанра.
func (r *PostgresRepository) CreateMovie(ctx context.Context, m *model.Movie) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO movies (id, title, genre_id, genre_name, number_in_stock, daily_rental_rate)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock, model.ToCents(m.DailyRentalRate),
	)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

// UpdateMovie обновляет фильм. Ранее созданные прокаты не затрагиваются.
func (r *PostgresRepository) UpdateMovie(ctx context.Context, m *model.Movie) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE movies
		 SET title = $2, genre_id = $3, genre_name = $4, number_in_stock = $5, daily_rental_rate = $6
		 WHERE id = $1`,
		m.ID, m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock, model.ToCents(m.DailyRentalRate),
	)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// DeleteMovie удаляет фильм и возвращает удалённую запись.
func (r *PostgresRepository) DeleteMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	m, err := scanMovie(r.pool.QueryRow(ctx,
		`DELETE FROM movies WHERE id = $1
		 RETURNING id, title, genre_id, genre_name, number_in_stock, daily_rental_rate`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("delete movie: %w", err)
	}
	return &m, nil
}
