package mocks

import (
	"context"

	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockHallRepo struct {
	mock.Mock
	domain.HallRepository
}

func (m *MockHallRepo) Create(ctx context.Context, hall *domain.Hall) error {
	return m.Called(ctx, hall).Error(0)
}

func (m *MockHallRepo) GetAll(ctx context.Context) ([]domain.Hall, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hall), args.Error(1)
}

type MockActorRepo struct {
	mock.Mock
	domain.ActorRepository
}

func (m *MockActorRepo) Create(ctx context.Context, actor *domain.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockActorRepo) GetAll(ctx context.Context) ([]domain.Actor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Actor), args.Error(1)
}

type MockGenreRepo struct {
	mock.Mock
	domain.GenreRepository
}

func (m *MockGenreRepo) Create(ctx context.Context, genre *domain.Genre) error {
	return m.Called(ctx, genre).Error(0)
}

func (m *MockGenreRepo) GetAll(ctx context.Context) ([]domain.Genre, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Genre), args.Error(1)
}

type MockPlayRepo struct {
	mock.Mock
	domain.PlayRepository
}

func (m *MockPlayRepo) Create(ctx context.Context, play *domain.Play, actorIDs, genreIDs []int) error {
	return m.Called(ctx, play, actorIDs, genreIDs).Error(0)
}

func (m *MockPlayRepo) GetAll(ctx context.Context) ([]domain.Play, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Play), args.Error(1)
}
