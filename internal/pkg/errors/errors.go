package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind - класс ошибки, определяет политику распространения
type Kind string

const (
	// KindConfig - ошибка конфигурации (фатальна только при старте)
	KindConfig Kind = "config"
	// KindTransport - сеть, таймаут, не-2xx ответ
	KindTransport Kind = "transport"
	// KindApplication - конверт бэкенда с кодом, отличным от "200"
	KindApplication Kind = "application"
	// KindValidation - бизнес-валидация до или после сетевого вызова
	KindValidation Kind = "validation"
)

type AppError struct {
	Kind       Kind                   `json:"-"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is сравнивает по коду, чтобы errors.Is работал с копиями сентинелов
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func New(kind Kind, code, message string, statusCode int) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// WithDetails возвращает копию ошибки с деталями, сентинел не меняется
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap возвращает копию ошибки с причиной
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

// WithMessage возвращает копию ошибки с другим сообщением
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

// As извлекает AppError из цепочки
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind проверяет класс ошибки в цепочке
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// Application создает ошибку для конверта бэкенда с неуспешным кодом
func Application(code, message string) *AppError {
	status := 502
	if IsSessionInvalidCode(code) {
		status = 401
	}
	return New(KindApplication, code, message, status)
}

// Transport оборачивает сетевую ошибку
func Transport(message string, cause error) *AppError {
	return ErrTransport.WithMessage(message).Wrap(cause)
}

// Validation создает ошибку бизнес-валидации
func Validation(message string) *AppError {
	return ErrValidation.WithMessage(message)
}
