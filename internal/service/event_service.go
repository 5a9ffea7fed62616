package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"charity-events/internal/cache"
	"charity-events/internal/model"
	"charity-events/internal/repository"
	apperrors "charity-events/pkg/app_errors"
	"charity-events/pkg/logger"
)

type EventService interface {
	List(ctx context.Context) ([]*model.Event, error)
	GetByID(ctx context.Context, id int) (*model.Event, error)
	// Search with empty params is List.
	Search(ctx context.Context, params model.SearchParams) ([]*model.Event, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

type EventServiceImpl struct {
	repo         repository.EventRepository
	categoryRepo repository.CategoryRepository
	listingCache cache.ListingCache
	log          *zap.Logger
}

// NewEventService wires the repositories behind an optional read-through
// listing cache; listingCache may be nil.
func NewEventService(repo repository.EventRepository, categoryRepo repository.CategoryRepository, listingCache cache.ListingCache) EventService {
	return &EventServiceImpl{
		repo:         repo,
		categoryRepo: categoryRepo,
		listingCache: listingCache,
		log:          logger.WithComponent("service"),
	}
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	if s.listingCache != nil {
		events, err := s.listingCache.GetEvents(ctx)
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("events cache read failed", zap.Error(err))
		}
	}

	events, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.listingCache != nil {
		if err := s.listingCache.SetEvents(ctx, events); err != nil {
			s.log.Warn("events cache write failed", zap.Error(err))
		}
	}
	return events, nil
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id int) (*model.Event, error) {
	if id <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.FindActiveByID(ctx, id)
}

func (s *EventServiceImpl) Search(ctx context.Context, params model.SearchParams) ([]*model.Event, error) {
	if params.CategoryID != nil && *params.CategoryID <= 0 {
		return nil, apperrors.ErrInvalidCategory
	}
	if params.IsEmpty() {
		return s.List(ctx)
	}
	return s.repo.Search(ctx, params)
}

func (s *EventServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	if s.listingCache != nil {
		categories, err := s.listingCache.GetCategories(ctx)
		if err == nil {
			return categories, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("categories cache read failed", zap.Error(err))
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.listingCache != nil {
		if err := s.listingCache.SetCategories(ctx, categories); err != nil {
			s.log.Warn("categories cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}
