package errors

import "net/http"

// SuccessCode - код успешного конверта бэкенда
const SuccessCode = "200"

// Коды, после которых сессия считается недействительной
var sessionInvalidCodes = map[string]struct{}{
	"5000": {},
	"5001": {},
	"5002": {},
}

// IsSessionInvalidCode - код из класса "сессия недействительна"
func IsSessionInvalidCode(code string) bool {
	_, ok := sessionInvalidCodes[code]
	return ok
}

// IsSessionInvalid проверяет ошибку на класс "сессия недействительна"
func IsSessionInvalid(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindApplication && IsSessionInvalidCode(appErr.Code)
}

var (
	ErrConfigMissing = New(
		KindConfig,
		"CONFIG_MISSING",
		"Runtime configuration is required but could not be loaded",
		http.StatusServiceUnavailable,
	)

	ErrConfigInvalid = New(
		KindConfig,
		"CONFIG_INVALID",
		"Runtime configuration could not be parsed",
		http.StatusServiceUnavailable,
	)

	ErrMapKeyMissing = New(
		KindConfig,
		"MAP_KEY_MISSING",
		"Map provider API key is not configured",
		http.StatusServiceUnavailable,
	)

	ErrTransport = New(
		KindTransport,
		"TRANSPORT_ERROR",
		"Backend request failed",
		http.StatusBadGateway,
	)

	ErrMapLoadFailed = New(
		KindTransport,
		"MAP_LOAD_FAILED",
		"Map SDK script failed to load",
		http.StatusBadGateway,
	)

	ErrValidation = New(
		KindValidation,
		"VALIDATION_ERROR",
		"Invalid input",
		http.StatusBadRequest,
	)

	ErrDuplicateCategory = New(
		KindValidation,
		"DUPLICATE_CATEGORY",
		"Category with this name already exists",
		http.StatusConflict,
	)

	ErrEmptyKeyword = New(
		KindValidation,
		"EMPTY_KEYWORD",
		"Search keyword is empty",
		http.StatusBadRequest,
	)

	ErrNotFound = New(
		KindValidation,
		"NOT_FOUND",
		"Entity not found",
		http.StatusNotFound,
	)

	ErrInvalidRequest = New(
		KindValidation,
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		KindTransport,
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
