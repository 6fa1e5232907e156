// Package handler содержит HTTP-обработчики API сервиса проката фильмов.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/mmeshcher/rental-store/internal/middleware"
	"github.com/mmeshcher/rental-store/internal/model"
	"github.com/mmeshcher/rental-store/internal/repository"
	"github.com/mmeshcher/rental-store/internal/service"
	"github.com/mmeshcher/rental-store/internal/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	RegisterUser(ctx context.Context, name, email, password string) (*model.User, string, error)
	AuthenticateUser(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)

	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)
	CreateGenre(ctx context.Context, name string) (*model.Genre, error)
	UpdateGenre(ctx context.Context, id uuid.UUID, name string) (*model.Genre, error)
	DeleteGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)

	ListMovies(ctx context.Context) ([]model.Movie, error)
	GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	CreateMovie(ctx context.Context, in service.MovieInput) (*model.Movie, error)
	UpdateMovie(ctx context.Context, id uuid.UUID, in service.MovieInput) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error)

	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, in service.CustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, in service.CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	ListRentals(ctx context.Context) ([]model.Rental, error)
	GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	Checkout(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error)
	Return(ctx context.Context, customerID, movieID uuid.UUID) (*model.Rental, error)
}

// Handler реализует HTTP-обработчики API сервиса проката.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON body")

// decode читает из тела ровно один JSON-объект.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

// pathID разбирает идентификатор из пути. Некорректный идентификатор
// не может существовать, поэтому отвечаем 404.
func pathID(w http.ResponseWriter, r *http.Request, notFound string) (uuid.UUID, bool) {
	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// Health проверяет доступность базы данных.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Register регистрирует нового пользователя и отдаёт токен в заголовке.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validation.User(req.Name, req.Email, req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	u, token, err := h.service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			writeMessage(w, http.StatusBadRequest, "User already registered.")
			return
		}
		h.internalError(w, "register user error", err)
		return
	}

	h.authMiddleware.SetAuthHeader(w, token)
	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

// Me возвращает текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	u, err := h.service.GetUser(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "The user with the given ID was not found.")
			return
		}
		h.internalError(w, "get user error", err, zap.String("userID", identity.UserID.String()))
		return
	}

	writeJSON(w, http.StatusOK, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя и возвращает токен в теле ответа.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.Credentials(req.Email, req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeMessage(w, http.StatusBadRequest, "Invalid email or password.")
			return
		}
		h.internalError(w, "login user error", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(token))
}
