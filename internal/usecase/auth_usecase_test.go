package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/event"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/repository/session"
	"github.com/foodmap-client/internal/state"
	"github.com/foodmap-client/internal/usecase"
	"github.com/foodmap-client/internal/usecase/dto"
)

func newAuthUseCase(users *MockUserAPI) (*usecase.AuthUseCase, *state.SessionState) {
	st := state.NewSessionState(session.NewMemoryStore(), event.NewBus(zap.NewNop()), zap.NewNop())
	return usecase.NewAuthUseCase(users, st, zap.NewNop()), st
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success sets session", func(t *testing.T) {
		users := &MockUserAPI{}
		users.On("Login", mock.Anything, dto.LoginRequest{Username: "alice", Password: "secret"}).
			Return(&domain.Envelope{
				Code: "200",
				Data: json.RawMessage(`{"jwtToken":"tok-1","id":7,"nickname":"Al","password":"x"}`),
			}, nil)
		uc, st := newAuthUseCase(users)

		s, err := uc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "tok-1", s.Token)
		assert.Equal(t, "alice", s.Username)
		assert.Equal(t, "tok-1", st.Token())
		assert.NotContains(t, s.Attributes, "password")

		resp := uc.Session()
		assert.True(t, resp.Authenticated)
		assert.Equal(t, domain.ID("7"), resp.UserID)
	})

	t.Run("validation error before network", func(t *testing.T) {
		users := &MockUserAPI{}
		uc, _ := newAuthUseCase(users)

		_, err := uc.Login(ctx, dto.LoginRequest{Username: "alice"})
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindValidation))
		users.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("application error keeps session empty", func(t *testing.T) {
		users := &MockUserAPI{}
		users.On("Login", mock.Anything, mock.Anything).
			Return(&domain.Envelope{Code: "401", Message: "wrong password"}, errors.Application("401", "wrong password"))
		uc, st := newAuthUseCase(users)

		_, err := uc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "bad"})
		require.Error(t, err)
		assert.False(t, st.IsAuthenticated())
	})

	t.Run("response without token", func(t *testing.T) {
		users := &MockUserAPI{}
		users.On("Login", mock.Anything, mock.Anything).
			Return(&domain.Envelope{Code: "200", Data: json.RawMessage(`{"username":"alice"}`)}, nil)
		uc, st := newAuthUseCase(users)

		_, err := uc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret"})
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindTransport))
		assert.False(t, st.IsAuthenticated())
	})
}

func TestAuthUseCase_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears session", func(t *testing.T) {
		users := &MockUserAPI{}
		users.On("Logout", mock.Anything).Return(okEnvelope(), nil)
		uc, st := newAuthUseCase(users)
		require.NoError(t, st.Set(ctx, &domain.Session{Token: "tok"}))

		require.NoError(t, uc.Logout(ctx))
		assert.False(t, st.IsAuthenticated())
	})

	t.Run("clears session even when request fails", func(t *testing.T) {
		users := &MockUserAPI{}
		users.On("Logout", mock.Anything).Return(nil, errors.Transport("down", nil))
		uc, st := newAuthUseCase(users)
		require.NoError(t, st.Set(ctx, &domain.Session{Token: "tok"}))

		err := uc.Logout(ctx)
		require.Error(t, err)
		assert.False(t, st.IsAuthenticated())
		assert.False(t, uc.Session().Authenticated)
	})
}

func TestAuthUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success does not set session", func(t *testing.T) {
		users := &MockUserAPI{}
		users.On("Register", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		uc, st := newAuthUseCase(users)

		_, err := uc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		assert.False(t, st.IsAuthenticated())
	})

	t.Run("short password rejected", func(t *testing.T) {
		uc, _ := newAuthUseCase(&MockUserAPI{})
		_, err := uc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "123"})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})
}

func TestAuthUseCase_Captcha(t *testing.T) {
	ctx := context.Background()

	users := &MockUserAPI{}
	users.On("Captcha", mock.Anything).Return([]byte("png"), nil).Once()
	users.On("Captcha", mock.Anything).Return([]byte{}, nil).Once()
	uc, _ := newAuthUseCase(users)

	img, err := uc.Captcha(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img)

	_, err = uc.Captcha(ctx)
	assert.Error(t, err)
}
