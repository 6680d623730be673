package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodmap-client/internal/domain"
)

// MockCategoryAPI is a mock of CategoryAPI
type MockCategoryAPI struct {
	mock.Mock
}

func (m *MockCategoryAPI) GetAll(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryAPI) Upsert(ctx context.Context, req domain.CategoryUpsert) (*domain.Envelope, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

// MockShopAPI is a mock of ShopAPI
type MockShopAPI struct {
	mock.Mock
}

func (m *MockShopAPI) Search(ctx context.Context, params map[string]interface{}) (*domain.ShopPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShopPage), args.Error(1)
}

func (m *MockShopAPI) Upsert(ctx context.Context, req domain.ShopUpsert) (*domain.Envelope, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

// MockUserAPI is a mock of UserAPI
type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) Login(ctx context.Context, body interface{}) (*domain.Envelope, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockUserAPI) Register(ctx context.Context, body interface{}) (*domain.Envelope, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockUserAPI) Logout(ctx context.Context) (*domain.Envelope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockUserAPI) Captcha(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func okEnvelope() *domain.Envelope {
	return &domain.Envelope{Code: "200", Message: "ok"}
}
