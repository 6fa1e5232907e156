package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/rental-store/internal/events"
	"github.com/mmeshcher/rental-store/internal/model"
	"github.com/mmeshcher/rental-store/internal/repository"
)

// memRepo реализует хранилище в памяти с теми же гарантиями атомарности, что и PostgreSQL-репозиторий.
type memRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]model.User
	genres    map[uuid.UUID]model.Genre
	movies    map[uuid.UUID]model.Movie
	customers map[uuid.UUID]model.Customer
	rentals   map[uuid.UUID]model.Rental

	createRentalErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:     map[uuid.UUID]model.User{},
		genres:    map[uuid.UUID]model.Genre{},
		movies:    map[uuid.UUID]model.Movie{},
		customers: map[uuid.UUID]model.Customer{},
		rentals:   map[uuid.UUID]model.Rental{},
	}
}

func (r *memRepo) Close() error                 { return nil }
func (r *memRepo) Ping(ctx context.Context) error { return nil }

func (r *memRepo) CreateUser(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrUserExists
		}
	}
	u.CreatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *memRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]model.Genre, 0, len(r.genres))
	for _, g := range r.genres {
		res = append(res, g)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *memRepo) GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.genres[id]
	if !ok {
		return nil, repository.ErrGenreNotFound
	}
	return &g, nil
}

func (r *memRepo) CreateGenre(ctx context.Context, g *model.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genres[g.ID] = *g
	return nil
}

func (r *memRepo) UpdateGenre(ctx context.Context, g *model.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[g.ID]; !ok {
		return repository.ErrGenreNotFound
	}
	r.genres[g.ID] = *g
	return nil
}

func (r *memRepo) DeleteGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.genres[id]
	if !ok {
		return nil, repository.ErrGenreNotFound
	}
	delete(r.genres, id)
	return &g, nil
}

func (r *memRepo) ListMovies(ctx context.Context) ([]model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]model.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Title < res[j].Title })
	return res, nil
}

func (r *memRepo) GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (r *memRepo) CreateMovie(ctx context.Context, m *model.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movies[m.ID] = *m
	return nil
}

func (r *memRepo) UpdateMovie(ctx context.Context, m *model.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[m.ID]; !ok {
		return repository.ErrMovieNotFound
	}
	r.movies[m.ID] = *m
	return nil
}

func (r *memRepo) DeleteMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	delete(r.movies, id)
	return &m, nil
}

func (r *memRepo) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *memRepo) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *memRepo) CreateCustomer(ctx context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = *c
	return nil
}

func (r *memRepo) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID]; !ok {
		return repository.ErrCustomerNotFound
	}
	r.customers[c.ID] = *c
	return nil
}

func (r *memRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	delete(r.customers, id)
	return &c, nil
}

func (r *memRepo) ListRentals(ctx context.Context) ([]model.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]model.Rental, 0, len(r.rentals))
	for _, rental := range r.rentals {
		res = append(res, rental)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DateOut.After(res[j].DateOut) })
	return res, nil
}

func (r *memRepo) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	return &rental, nil
}

func (r *memRepo) FindRental(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *model.Rental
	for _, rental := range r.rentals {
		if rental.Customer.ID != customerID || rental.Movie.ID != movieID {
			continue
		}
		rental := rental
		switch {
		case found == nil:
			found = &rental
		case found.Returned() && !rental.Returned():
			found = &rental
		case found.Returned() == rental.Returned() && rental.DateOut.After(found.DateOut):
			found = &rental
		}
	}
	if found == nil {
		return nil, repository.ErrRentalNotFound
	}
	return found, nil
}

func (r *memRepo) CreateRental(ctx context.Context, rental *model.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createRentalErr != nil {
		return r.createRentalErr
	}
	m, ok := r.movies[rental.Movie.ID]
	if !ok {
		return repository.ErrMovieNotFound
	}
	if m.NumberInStock <= 0 {
		return repository.ErrOutOfStock
	}
	m.NumberInStock--
	r.movies[m.ID] = m
	r.rentals[rental.ID] = *rental
	return nil
}

func (r *memRepo) ReturnRental(ctx context.Context, rental *model.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rentals[rental.ID]
	if !ok {
		return repository.ErrRentalNotFound
	}
	if stored.Returned() {
		return repository.ErrAlreadyReturned
	}
	r.rentals[rental.ID] = *rental
	if m, ok := r.movies[rental.Movie.ID]; ok {
		m.NumberInStock++
		r.movies[m.ID] = m
	}
	return nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RentalEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.RentalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}
