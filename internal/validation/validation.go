// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrInvalidID возвращается для идентификатора, который не является UUID.
var ErrInvalidID = errors.New("invalid id")

const (
	maxStock = 999999
	maxRate  = 999999

	minPasswordLen = 8
	maxPasswordLen = 26
)

// ParseID разбирает идентификатор сущности.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func length(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return fmt.Errorf("%q length must be at least %d characters long", field, min)
	}
	if n > max {
		return fmt.Errorf("%q length must be less than or equal to %d characters long", field, max)
	}
	return nil
}

// GenreName проверяет название жанра без учёта пробелов по краям.
func GenreName(name string) error {
	return length("name", strings.TrimSpace(name), 3, 50)
}

// Movie проверяет поля фильма.
func Movie(title string, numberInStock int, dailyRentalRate float64) error {
	if err := length("title", strings.TrimSpace(title), 1, 255); err != nil {
		return err
	}
	if numberInStock < 0 || numberInStock > maxStock {
		return fmt.Errorf("%q must be between 0 and %d", "numberInStock", maxStock)
	}
	if dailyRentalRate < 0 || dailyRentalRate > maxRate {
		return fmt.Errorf("%q must be between 0 and %d", "dailyRentalRate", maxRate)
	}
	return nil
}

// IsValidPhone проверяет, что телефон состоит ровно из 10 цифр.
func IsValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, ch := range phone {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

// Customer проверяет поля клиента.
func Customer(name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%q is required", "name")
	}
	if !IsValidPhone(phone) {
		return fmt.Errorf("%q must be exactly 10 digits", "phone")
	}
	return nil
}

// Email проверяет адрес электронной почты.
func Email(email string) error {
	if err := length("email", email, 5, 255); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%q must be a valid email", "email")
	}
	return nil
}

// Password проверяет сложность пароля: длина 8–26, строчная и заглавная буквы, цифра и спецсимвол.
func Password(password string) error {
	if err := length("password", password, minPasswordLen, maxPasswordLen); err != nil {
		return err
	}

	var lower, upper, digit, symbol bool
	for _, ch := range password {
		switch {
		case unicode.IsLower(ch):
			lower = true
		case unicode.IsUpper(ch):
			upper = true
		case unicode.IsDigit(ch):
			digit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			symbol = true
		}
	}

	if !lower || !upper || !digit || !symbol {
		return fmt.Errorf("%q must contain lower and upper case letters, a digit and a symbol", "password")
	}
	return nil
}

// User проверяет данные регистрации пользователя.
func User(name, email, password string) error {
	if err := length("name", strings.TrimSpace(name), 3, 50); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	return Password(password)
}

// Credentials проверяет данные для входа.
func Credentials(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%q is required", "password")
	}
	return nil
}
