package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/rental-store/internal/model"
)

var rentalColumns = []string{
	"id",
	"customer_id", "customer_name", "customer_phone",
	"movie_id", "movie_title", "movie_daily_rental_rate",
	"date_out", "date_returned", "rental_fee",
}

const selectRental = `SELECT id, customer_id, customer_name, customer_phone,
	movie_id, movie_title, movie_daily_rental_rate,
	date_out, date_returned, rental_fee
	FROM rentals`

func scanRental(row pgx.Row) (model.Rental, error) {
	var (
		r         model.Rental
		rateCents int64
		returned  *time.Time
		feeCents  *int64
	)
	err := row.Scan(
		&r.ID,
		&r.Customer.ID, &r.Customer.Name, &r.Customer.Phone,
		&r.Movie.ID, &r.Movie.Title, &rateCents,
		&r.DateOut, &returned, &feeCents,
	)
	if err != nil {
		return r, err
	}

	r.Movie.DailyRentalRate = model.FromCents(rateCents)
	r.DateReturned = returned
	if feeCents != nil {
		fee := model.FromCents(*feeCents)
		r.RentalFee = &fee
	}
	return r, nil
}

// ListRentals возвращает все прокаты, начиная с самых свежих.
func (r *PostgresRepository) ListRentals(ctx context.Context) ([]model.Rental, error) {
	query, err := listQuery("rentals", rentalColumns, goqu.I("date_out").Desc())
	if err != nil {
		return nil, err
	}

	var rentals []model.Rental
	err = r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("select rentals: %w", err)
		}
		rentals, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Rental, error) {
			return scanRental(row)
		})
		if err != nil {
			return fmt.Errorf("scan rentals: %w", err)
		}
		return nil
	})
	return rentals, err
}

// GetRental возвращает прокат по идентификатору.
func (r *PostgresRepository) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	var rental model.Rental
	err := r.withRetry(ctx, func() error {
		var err error
		rental, err = scanRental(r.pool.QueryRow(ctx, selectRental+` WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, fmt.Errorf("get rental: %w", err)
	}
	return &rental, nil
}

// FindRental ищет прокат фильма клиентом. Незакрытые прокаты имеют приоритет,
// среди равных выбирается самый свежий.
func (r *PostgresRepository) FindRental(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error) {
	rental, err := scanRental(r.pool.QueryRow(ctx,
		selectRental+`
		 WHERE customer_id = $1 AND movie_id = $2
		 ORDER BY (date_returned IS NULL) DESC, date_out DESC
		 LIMIT 1`,
		customerID, movieID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, fmt.Errorf("find rental: %w", err)
	}
	return &rental, nil
}

// CreateRental в одной транзакции уменьшает остаток фильма на единицу и сохраняет прокат.
// Остаток уменьшается только если он больше нуля, иначе возвращается ErrOutOfStock
// и ничего не сохраняется.
func (r *PostgresRepository) CreateRental(ctx context.Context, rental *model.Rental) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE movies SET number_in_stock = number_in_stock - 1
		 WHERE id = $1 AND number_in_stock > 0`,
		rental.Movie.ID,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, rental.Movie.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check movie: %w", err)
		}
		if !exists {
			return ErrMovieNotFound
		}
		return ErrOutOfStock
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO rentals (id, customer_id, customer_name, customer_phone,
		                      movie_id, movie_title, movie_daily_rental_rate, date_out)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rental.ID,
		rental.Customer.ID, rental.Customer.Name, rental.Customer.Phone,
		rental.Movie.ID, rental.Movie.Title, model.ToCents(rental.Movie.DailyRentalRate),
		rental.DateOut,
	)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ReturnRental в одной транзакции фиксирует дату возврата и стоимость проката
// и возвращает фильм на склад. Дата возврата записывается только один раз:
// для уже закрытого проката возвращается ErrAlreadyReturned.
func (r *PostgresRepository) ReturnRental(ctx context.Context, rental *model.Rental) error {
	if rental.DateReturned == nil || rental.RentalFee == nil {
		return fmt.Errorf("return rental %s: date returned and fee must be set", rental.ID)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE rentals SET date_returned = $2, rental_fee = $3
		 WHERE id = $1 AND date_returned IS NULL`,
		rental.ID, *rental.DateReturned, model.ToCents(*rental.RentalFee),
	)
	if err != nil {
		return fmt.Errorf("update rental: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM rentals WHERE id = $1)`, rental.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check rental: %w", err)
		}
		if !exists {
			return ErrRentalNotFound
		}
		return ErrAlreadyReturned
	}

	// Фильм мог быть удалён из каталога после выдачи, тогда возвращать некуда.
	_, err = tx.Exec(ctx,
		`UPDATE movies SET number_in_stock = number_in_stock + 1 WHERE id = $1`,
		rental.Movie.ID,
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
