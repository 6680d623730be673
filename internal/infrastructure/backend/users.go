package backend

import (
	"context"
	"net/http"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
)

const (
	pathUserLogin    = "/sys-user/login"
	pathUserRegister = "/sys-user/register"
	pathUserLogout   = "/sys-user/logout"
	pathCaptcha      = "/captcha/getCaptcha.png"
)

type userAPI struct {
	client *Client
}

// NewUserAPI - обёртка над эндпоинтами пользователя и капчи
func NewUserAPI(client *Client) repository.UserAPI {
	return &userAPI{client: client}
}

func (a *userAPI) Login(ctx context.Context, body interface{}) (*domain.Envelope, error) {
	return a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   pathUserLogin,
		Body:   body,
	}, nil)
}

func (a *userAPI) Register(ctx context.Context, body interface{}) (*domain.Envelope, error) {
	return a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   pathUserRegister,
		Body:   body,
	}, nil)
}

func (a *userAPI) Logout(ctx context.Context) (*domain.Envelope, error) {
	return a.client.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        pathUserLogout,
		Body:        map[string]interface{}{},
		RequireAuth: true,
	}, nil)
}

func (a *userAPI) Captcha(ctx context.Context) ([]byte, error) {
	resp, err := a.client.Send(ctx, Request{
		Method: http.MethodGet,
		Path:   pathCaptcha,
		Blob:   true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Blob, nil
}
