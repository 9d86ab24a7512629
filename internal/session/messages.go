package session

import (
	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
)

// ErrorType keys the localized message table. These are the user-visible
// failure classes; backend detail never reaches the viewer.
type ErrorType string

const (
	ErrorNotFound ErrorType = "NOT_FOUND"
	ErrorNetwork  ErrorType = "NETWORK_ERROR"
	ErrorTimeout  ErrorType = "TIMEOUT"
	ErrorBadURL   ErrorType = "INVALID_URL"
	ErrorUnknown  ErrorType = "UNKNOWN"
)

// errorMessages is the fixed localized table for true errors.
var errorMessages = map[ErrorType]string{
	ErrorNotFound: "Nagranie nie zostało znalezione lub nie masz do niego dostępu.",
	ErrorNetwork:  "Wystąpił błąd połączenia. Spróbuj ponownie.",
	ErrorTimeout:  "Nie udało się załadować nagrania. Sprawdź połączenie internetowe.",
	ErrorBadURL:   "Nieprawidłowy adres nagrania.",
	ErrorUnknown:  "Wystąpił nieoczekiwany błąd. Spróbuj ponownie później.",
}

// denialMessages is keyed by verdict reason. A denial is a valid business
// outcome, rendered distinctly from errors.
var denialMessages = map[access.Reason]string{
	access.ReasonPremiumRequired: "Ta treść jest dostępna tylko dla użytkowników premium.",
	access.ReasonArchived:        "To nagranie zostało zarchiwizowane i nie jest już dostępne.",
	access.ReasonNotPublished:    "To nagranie nie jest jeszcze opublikowane.",
}

// ErrorMessage returns the localized message for an error type.
func ErrorMessage(t ErrorType) string {
	if msg, ok := errorMessages[t]; ok {
		return msg
	}
	return errorMessages[ErrorUnknown]
}

// DenialMessage returns the localized message for a denial reason.
func DenialMessage(r access.Reason) string {
	if msg, ok := denialMessages[r]; ok {
		return msg
	}
	return errorMessages[ErrorUnknown]
}

// classify maps a typed error from the lookup or resolution layers onto the
// user-visible error class.
func classify(err error) ErrorType {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound, apperrors.CodeInvalidInput:
		return ErrorNotFound
	case apperrors.CodeNetworkError:
		return ErrorNetwork
	case apperrors.CodeTimeout:
		return ErrorTimeout
	case apperrors.CodeInvalidURL:
		return ErrorBadURL
	}
	return ErrorUnknown
}
