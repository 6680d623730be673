package usecase

import "github.com/foodmap-client/internal/pkg/errors"

// errorMessage - текст ошибки для Status: сообщение AppError или Error()
func errorMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
