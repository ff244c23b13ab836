package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidFile is returned when an uploaded batch file is missing or empty.
	ErrInvalidFile = errors.New("invalid file")
	// ErrNoCardsRegistered is returned when a batch file produced no new card.
	ErrNoCardsRegistered = errors.New("no card was registered; all cards in the file already exist")
	// ErrInvalidCardNumber is returned when a card number is blank.
	ErrInvalidCardNumber = errors.New("card number is required")
	// ErrCardAlreadyRegistered is returned when the card hash already exists.
	ErrCardAlreadyRegistered = errors.New("card already registered")
	// ErrCardNotFound is returned when no card matches a lookup.
	ErrCardNotFound = errors.New("no card registered with that number")
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a user profile does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token is malformed, expired or revoked.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unexpected errors keep
// their message so the caller sees what failed.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrCardNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCardNotFound.Error(), "CARD_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidFile):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidFile.Error(), "INVALID_FILE")
	case errors.Is(err, ErrNoCardsRegistered):
		return NewHTTPError(http.StatusBadRequest, ErrNoCardsRegistered.Error(), "NO_CARDS_REGISTERED")
	case errors.Is(err, ErrInvalidCardNumber):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCardNumber.Error(), "INVALID_CARD_NUMBER")
	case errors.Is(err, ErrCardAlreadyRegistered):
		return NewHTTPError(http.StatusBadRequest, ErrCardAlreadyRegistered.Error(), "CARD_ALREADY_REGISTERED")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case err == nil:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
