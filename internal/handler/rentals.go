package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/rental-store/internal/repository"
	"github.com/mmeshcher/rental-store/internal/validation"
)

const msgRentalNotFound = "The rental with the given ID was not found."

// rentalRequest описывает тело запросов выдачи и возврата.
type rentalRequest struct {
	CustomerID string `json:"customerId"`
	MovieID    string `json:"movieId"`
}

func (req rentalRequest) ids() (customerID, movieID uuid.UUID, err error) {
	customerID, err = validation.ParseID(req.CustomerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New(`"customerId" must be a valid id`)
	}
	movieID, err = validation.ParseID(req.MovieID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New(`"movieId" must be a valid id`)
	}
	return customerID, movieID, nil
}

// ListRentals возвращает все прокаты, начиная с самых свежих.
func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.service.ListRentals(r.Context())
	if err != nil {
		h.internalError(w, "list rentals error", err)
		return
	}

	writeJSON(w, http.StatusOK, rentals)
}

// GetRental возвращает прокат по идентификатору.
func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgRentalNotFound)
	if !ok {
		return
	}

	rental, err := h.service.GetRental(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			writeMessage(w, http.StatusNotFound, msgRentalNotFound)
			return
		}
		h.internalError(w, "get rental error", err, zap.String("rentalID", id.String()))
		return
	}

	writeJSON(w, http.StatusOK, rental)
}

// Checkout выдаёт фильм клиенту.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customerID, movieID, err := req.ids()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rental, err := h.service.Checkout(r.Context(), customerID, movieID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCustomerNotFound):
			writeMessage(w, http.StatusBadRequest, "Invalid customer.")
		case errors.Is(err, repository.ErrMovieNotFound):
			writeMessage(w, http.StatusBadRequest, "Invalid movie.")
		case errors.Is(err, repository.ErrOutOfStock):
			writeMessage(w, http.StatusBadRequest, "Movie not in stock.")
		default:
			h.internalError(w, "checkout error", err,
				zap.String("customerID", customerID.String()),
				zap.String("movieID", movieID.String()),
			)
		}
		return
	}

	writeJSON(w, http.StatusOK, rental)
}

// Return принимает фильм обратно и возвращает закрытый прокат со стоимостью.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customerID, movieID, err := req.ids()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rental, err := h.service.Return(r.Context(), customerID, movieID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRentalNotFound):
			writeMessage(w, http.StatusNotFound, "Rental not found.")
		case errors.Is(err, repository.ErrAlreadyReturned):
			writeMessage(w, http.StatusBadRequest, "Return already processed.")
		default:
			h.internalError(w, "return error", err,
				zap.String("customerID", customerID.String()),
				zap.String("movieID", movieID.String()),
			)
		}
		return
	}

	writeJSON(w, http.StatusOK, rental)
}
