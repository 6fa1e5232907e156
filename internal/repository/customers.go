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

var customerColumns = []string{"id", "name", "phone", "is_gold"}

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.IsGold)
	return c, err
}

// ListCustomers возвращает всех клиентов, отсортированных по имени.
func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	query, err := listQuery("customers", customerColumns, goqu.I("name").Asc())
	if err != nil {
		return nil, err
	}

	var customers []model.Customer
	err = r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("select customers: %w", err)
		}
		customers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Customer, error) {
			return scanCustomer(row)
		})
		if err != nil {
			return fmt.Errorf("scan customers: %w", err)
		}
		return nil
	})
	return customers, err
}

// GetCustomer возвращает клиента по идентификатору.
func (r *PostgresRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.withRetry(ctx, func() error {
		var err error
		c, err = scanCustomer(r.pool.QueryRow(ctx,
			`SELECT id, name, phone, is_gold FROM customers WHERE id = $1`, id,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// CreateCustomer сохраняет нового клиента.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO customers (id, name, phone, is_gold) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Phone, c.IsGold,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// UpdateCustomer обновляет данные клиента. Ранее созданные прокаты не затрагиваются.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $2, phone = $3, is_gold = $4 WHERE id = $1`,
		c.ID, c.Name, c.Phone, c.IsGold,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// DeleteCustomer удаляет клиента и возвращает удалённую запись.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx,
		`DELETE FROM customers WHERE id = $1 RETURNING id, name, phone, is_gold`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("delete customer: %w", err)
	}
	return &c, nil
}
