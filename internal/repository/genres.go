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

var genreColumns = []string{"id", "name"}

// ListGenres возвращает все жанры, отсортированные по названию.
func (r *PostgresRepository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	query, err := listQuery("genres", genreColumns, goqu.I("name").Asc())
	if err != nil {
		return nil, err
	}

	var genres []model.Genre
	err = r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("select genres: %w", err)
		}
		genres, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Genre, error) {
			var g model.Genre
			err := row.Scan(&g.ID, &g.Name)
			return g, err
		})
		if err != nil {
			return fmt.Errorf("scan genres: %w", err)
		}
		return nil
	})
	return genres, err
}

// GetGenre возвращает жанр по идентификатору.
func (r *PostgresRepository) GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	var g model.Genre
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name FROM genres WHERE id = $1`, id,
		).Scan(&g.ID, &g.Name)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return &g, nil
}

// CreateGenre сохраняет новый жанр.
func (r *PostgresRepository) CreateGenre(ctx context.Context, g *model.Genre) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO genres (id, name) VALUES ($1, $2)`,
		g.ID, g.Name,
	)
	if err != nil {
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// UpdateGenre переименовывает жанр. Копии жанра в фильмах не меняются.
func (r *PostgresRepository) UpdateGenre(ctx context.Context, g *model.Genre) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE genres SET name = $2 WHERE id = $1`,
		g.ID, g.Name,
	)
	if err != nil {
		return fmt.Errorf("update genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGenreNotFound
	}
	return nil
}

// DeleteGenre удаляет жанр и возвращает удалённую запись.
func (r *PostgresRepository) DeleteGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	var g model.Genre
	err := r.pool.QueryRow(ctx,
		`DELETE FROM genres WHERE id = $1 RETURNING id, name`, id,
	).Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("delete genre: %w", err)
	}
	return &g, nil
}
