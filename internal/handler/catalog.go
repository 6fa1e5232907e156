package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/rental-store/internal/repository"
	"github.com/mmeshcher/rental-store/internal/service"
	"github.com/mmeshcher/rental-store/internal/validation"
)

const (
	msgGenreNotFound    = "The genre with the given ID was not found."
	msgMovieNotFound    = "The movie with the given ID was not found."
	msgCustomerNotFound = "The customer with the given ID was not found."
)

type genreRequest struct {
	Name string `json:"name"`
}

func (req genreRequest) name() (string, error) {
	name := strings.TrimSpace(req.Name)
	if err := validation.GenreName(name); err != nil {
		return "", err
	}
	return name, nil
}

// ListGenres возвращает все жанры.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		h.internalError(w, "list genres error", err)
		return
	}

	if len(genres) == 0 {
		writeMessage(w, http.StatusNotFound, "No genres found.")
		return
	}

	writeJSON(w, http.StatusOK, genres)
}

// GetGenre возвращает жанр по идентификатору.
func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgGenreNotFound)
	if !ok {
		return
	}

	g, err := h.service.GetGenre(r.Context(), id)
	if err != nil {
		h.genreError(w, "get genre error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// CreateGenre создаёт жанр.
func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req genreRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := req.name()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.service.CreateGenre(r.Context(), name)
	if err != nil {
		h.internalError(w, "create genre error", err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// UpdateGenre переименовывает жанр.
func (h *Handler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgGenreNotFound)
	if !ok {
		return
	}

	var req genreRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := req.name()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.service.UpdateGenre(r.Context(), id, name)
	if err != nil {
		h.genreError(w, "update genre error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// DeleteGenre удаляет жанр и возвращает удалённую запись.
func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgGenreNotFound)
	if !ok {
		return
	}

	g, err := h.service.DeleteGenre(r.Context(), id)
	if err != nil {
		h.genreError(w, "delete genre error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) genreError(w http.ResponseWriter, msg string, id uuid.UUID, err error) {
	if errors.Is(err, repository.ErrGenreNotFound) {
		writeMessage(w, http.StatusNotFound, msgGenreNotFound)
		return
	}
	h.internalError(w, msg, err, zap.String("genreID", id.String()))
}

type movieRequest struct {
	Title           string  `json:"title"`
	GenreID         string  `json:"genreId"`
	NumberInStock   int     `json:"numberInStock"`
	DailyRentalRate float64 `json:"dailyRentalRate"`
}

func (req movieRequest) input() (service.MovieInput, error) {
	title := strings.TrimSpace(req.Title)
	if err := validation.Movie(title, req.NumberInStock, req.DailyRentalRate); err != nil {
		return service.MovieInput{}, err
	}

	genreID, err := validation.ParseID(req.GenreID)
	if err != nil {
		return service.MovieInput{}, service.ErrInvalidGenre
	}

	return service.MovieInput{
		Title:           title,
		GenreID:         genreID,
		NumberInStock:   req.NumberInStock,
		DailyRentalRate: req.DailyRentalRate,
	}, nil
}

// ListMovies возвращает все фильмы.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.ListMovies(r.Context())
	if err != nil {
		h.internalError(w, "list movies error", err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// GetMovie возвращает фильм по идентификатору.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgMovieNotFound)
	if !ok {
		return
	}

	m, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		h.movieError(w, "get movie error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// CreateMovie добавляет фильм в каталог.
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.input()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.CreateMovie(r.Context(), in)
	if err != nil {
		h.movieError(w, "create movie error", uuid.Nil, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// UpdateMovie обновляет фильм.
func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgMovieNotFound)
	if !ok {
		return
	}

	var req movieRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.input()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.UpdateMovie(r.Context(), id, in)
	if err != nil {
		h.movieError(w, "update movie error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// DeleteMovie удаляет фильм.
func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgMovieNotFound)
	if !ok {
		return
	}

	m, err := h.service.DeleteMovie(r.Context(), id)
	if err != nil {
		h.movieError(w, "delete movie error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) movieError(w http.ResponseWriter, msg string, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidGenre):
		writeMessage(w, http.StatusBadRequest, "Invalid genre.")
	case errors.Is(err, repository.ErrMovieNotFound):
		writeMessage(w, http.StatusNotFound, msgMovieNotFound)
	default:
		h.internalError(w, msg, err, zap.String("movieID", id.String()))
	}
}

type customerRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	IsGold bool   `json:"isGold"`
}

func (req customerRequest) input() (service.CustomerInput, error) {
	name := strings.TrimSpace(req.Name)
	if err := validation.Customer(name, req.Phone); err != nil {
		return service.CustomerInput{}, err
	}
	return service.CustomerInput{Name: name, Phone: req.Phone, IsGold: req.IsGold}, nil
}

// ListCustomers возвращает всех клиентов.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.internalError(w, "list customers error", err)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

// GetCustomer возвращает клиента по идентификатору.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgCustomerNotFound)
	if !ok {
		return
	}

	c, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.customerError(w, "get customer error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// CreateCustomer регистрирует клиента.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.input()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), in)
	if err != nil {
		h.internalError(w, "create customer error", err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// UpdateCustomer обновляет данные клиента.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgCustomerNotFound)
	if !ok {
		return
	}

	var req customerRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.input()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.UpdateCustomer(r.Context(), id, in)
	if err != nil {
		h.customerError(w, "update customer error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// DeleteCustomer удаляет клиента.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgCustomerNotFound)
	if !ok {
		return
	}

	c, err := h.service.DeleteCustomer(r.Context(), id)
	if err != nil {
		h.customerError(w, "delete customer error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) customerError(w http.ResponseWriter, msg string, id uuid.UUID, err error) {
	if errors.Is(err, repository.ErrCustomerNotFound) {
		writeMessage(w, http.StatusNotFound, msgCustomerNotFound)
		return
	}
	h.internalError(w, msg, err, zap.String("customerID", id.String()))
}
