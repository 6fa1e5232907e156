package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/rental-store/internal/model"
)

// newTestRepository подключается к базе из TEST_DATABASE_URI.
// Без неё интеграционные тесты пропускаются.
func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	r, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func seedRental(t *testing.T, r *PostgresRepository, stock int) (*model.Customer, *model.Movie) {
	t.Helper()
	ctx := context.Background()

	g := &model.Genre{ID: uuid.New(), Name: "Horror"}
	require.NoError(t, r.CreateGenre(ctx, g))

	m := &model.Movie{ID: uuid.New(), Title: "Alien", Genre: *g, NumberInStock: stock, DailyRentalRate: 2}
	require.NoError(t, r.CreateMovie(ctx, m))

	c := &model.Customer{ID: uuid.New(), Name: "John", Phone: "0123456789"}
	require.NoError(t, r.CreateCustomer(ctx, c))

	return c, m
}

func TestPostgres_CheckoutAndReturn(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	c, m := seedRental(t, r, 1)

	out := time.Now().UTC().Truncate(time.Microsecond)
	rental := model.NewRental(c, m, out)
	require.NoError(t, r.CreateRental(ctx, rental))

	got, err := r.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberInStock)

	err = r.CreateRental(ctx, model.NewRental(c, m, out))
	require.ErrorIs(t, err, ErrOutOfStock)

	found, err := r.FindRental(ctx, c.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, rental.ID, found.ID)
	assert.False(t, found.Returned())

	returned := out.Add(48 * time.Hour)
	fee := 4.0
	found.DateReturned = &returned
	found.RentalFee = &fee
	require.NoError(t, r.ReturnRental(ctx, found))

	got, err = r.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumberInStock)

	stored, err := r.GetRental(ctx, rental.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RentalFee)
	assert.Equal(t, 4.0, *stored.RentalFee)
	assert.True(t, returned.Equal(*stored.DateReturned))

	again := returned.Add(time.Hour)
	stored.DateReturned = &again
	err = r.ReturnRental(ctx, stored)
	require.ErrorIs(t, err, ErrAlreadyReturned)

	got, err = r.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumberInStock)
}

func TestPostgres_CheckoutUnknownMovie(t *testing.T) {
	r := newTestRepository(t)
	c, m := seedRental(t, r, 1)
	m.ID = uuid.New()

	err := r.CreateRental(context.Background(), model.NewRental(c, m, time.Now()))
	require.ErrorIs(t, err, ErrMovieNotFound)
}

func TestPostgres_ConcurrentCheckout(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	c, m := seedRental(t, r, 3)

	const workers = 10
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		outOfStock int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.CreateRental(ctx, model.NewRental(c, m, time.Now()))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrOutOfStock):
				outOfStock++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, successes)
	assert.Equal(t, workers-3, outOfStock)

	got, err := r.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberInStock)
}

func TestPostgres_RentalSnapshotIsImmutable(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	c, m := seedRental(t, r, 2)

	rental := model.NewRental(c, m, time.Now())
	require.NoError(t, r.CreateRental(ctx, rental))

	c.Name = "Jane"
	require.NoError(t, r.UpdateCustomer(ctx, c))
	m.Title = "Aliens"
	m.DailyRentalRate = 5
	require.NoError(t, r.UpdateMovie(ctx, m))

	stored, err := r.GetRental(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", stored.Customer.Name)
	assert.Equal(t, "Alien", stored.Movie.Title)
	assert.Equal(t, 2.0, stored.Movie.DailyRentalRate)
}

func TestPostgres_UserEmailIsUnique(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	require.NoError(t, r.CreateUser(ctx, &model.User{ID: uuid.New(), Name: "John", Email: email, PasswordHash: []byte("h")}))

	err := r.CreateUser(ctx, &model.User{ID: uuid.New(), Name: "Jane", Email: email, PasswordHash: []byte("h")})
	require.ErrorIs(t, err, ErrUserExists)

	u, err := r.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "John", u.Name)
}
