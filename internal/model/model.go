// Package model содержит доменные сущности сервиса проката фильмов.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Genre описывает жанр фильма.
type Genre struct {
	ID   uuid.UUID `json:"_id"`
	Name string    `json:"name"`
}

// Movie описывает фильм каталога вместе с копией жанра на момент записи.
type Movie struct {
	ID              uuid.UUID `json:"_id"`
	Title           string    `json:"title"`
	Genre           Genre     `json:"genre"`
	NumberInStock   int       `json:"numberInStock"`
	DailyRentalRate float64   `json:"dailyRentalRate"`
}

// Customer описывает клиента проката.
type Customer struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Phone  string    `json:"phone"`
	IsGold bool      `json:"isGold"`
}

// User представляет зарегистрированного пользователя API.
type User struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"-"`
}

// RentalCustomer содержит копию данных клиента, сохранённая в записи проката.
type RentalCustomer struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// RentalMovie содержит копию данных фильма, сохранённая в записи проката.
type RentalMovie struct {
	ID              uuid.UUID `json:"_id"`
	Title           string    `json:"title"`
	DailyRentalRate float64   `json:"dailyRentalRate"`
}

// Rental описывает факт выдачи фильма клиенту.
// DateReturned и RentalFee заполняются одновременно при возврате.
type Rental struct {
	ID           uuid.UUID      `json:"_id"`
	Customer     RentalCustomer `json:"customer"`
	Movie        RentalMovie    `json:"movie"`
	DateOut      time.Time      `json:"dateOut"`
	DateReturned *time.Time     `json:"dateReturned"`
	RentalFee    *float64       `json:"rentalFee"`
}

// Returned сообщает, был ли прокат уже закрыт.
func (r *Rental) Returned() bool {
	return r.DateReturned != nil
}

// NewRental собирает запись проката из текущих данных клиента и фильма.
func NewRental(c *Customer, m *Movie, dateOut time.Time) *Rental {
	return &Rental{
		ID: uuid.New(),
		Customer: RentalCustomer{
			ID:    c.ID,
			Name:  c.Name,
			Phone: c.Phone,
		},
		Movie: RentalMovie{
			ID:              m.ID,
			Title:           m.Title,
			DailyRentalRate: m.DailyRentalRate,
		},
		DateOut: dateOut,
	}
}
