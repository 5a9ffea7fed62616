package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"charity-events/internal/model"
)

type ListingCacheMock struct {
	mock.Mock
}

func NewListingCacheMock() *ListingCacheMock {
	return &ListingCacheMock{}
}

func (m *ListingCacheMock) GetEvents(ctx context.Context) ([]*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *ListingCacheMock) SetEvents(ctx context.Context, events []*model.Event) error {
	return m.Called(ctx, events).Error(0)
}

func (m *ListingCacheMock) GetCategories(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Category), args.Error(1)
}

func (m *ListingCacheMock) SetCategories(ctx context.Context, categories []*model.Category) error {
	return m.Called(ctx, categories).Error(0)
}

func (m *ListingCacheMock) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
