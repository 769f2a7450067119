package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

func intPtr(n int) *int { return &n }

func TestClassServiceCreate(t *testing.T) {
	store := newMemStore()
	svc := NewClassService(memClasses{m: store}, nil, nil, zap.NewNop())

	class, err := svc.Create(context.Background(), ClassRequest{Name: " Turma A ", Capacity: intPtr(30)})
	require.NoError(t, err)
	assert.NotZero(t, class.ID)
	assert.Equal(t, "Turma A", class.Name)

	_, err = svc.Create(context.Background(), ClassRequest{Name: "turma a", Capacity: intPtr(10)})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestClassServiceCreateValidation(t *testing.T) {
	svc := NewClassService(memClasses{m: newMemStore()}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), ClassRequest{Name: "", Capacity: intPtr(10)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), ClassRequest{Name: "Turma B", Capacity: intPtr(0)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), ClassRequest{Name: "Turma B"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassServiceUpdate(t *testing.T) {
	store := newMemStore()
	a := store.addClass("Turma A", 2)
	store.addClass("Turma B", 2)
	store.addStudent("Ana", &a.ID)
	store.addStudent("Bruno", &a.ID)
	svc := NewClassService(memClasses{m: store}, nil, nil, zap.NewNop())

	updated, err := svc.Update(context.Background(), a.ID, ClassRequest{Name: "Turma A", Capacity: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Capacity, "capacity may shrink below occupancy")

	_, err = svc.Update(context.Background(), a.ID, ClassRequest{Name: "TURMA B", Capacity: intPtr(5)})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Update(context.Background(), 999, ClassRequest{Name: "Turma Z", Capacity: intPtr(5)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassServiceDelete(t *testing.T) {
	store := newMemStore()
	busy := store.addClass("Turma A", 2)
	empty := store.addClass("Turma B", 2)
	store.addStudent("Ana", &busy.ID)
	svc := NewClassService(memClasses{m: store}, nil, nil, zap.NewNop())

	assert.ErrorIs(t, svc.Delete(context.Background(), busy.ID), appErrors.ErrConflict)
	require.NoError(t, svc.Delete(context.Background(), empty.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), empty.ID), appErrors.ErrNotFound)
}

func TestClassServiceListUsesCache(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma A", 3)
	store.addStudent("Ana", &class.ID)
	cacheRepo := newMemCache()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, 0, nil, true)
	svc := NewClassService(memClasses{m: store}, cache, nil, zap.NewNop())

	classes, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 1, classes[0].Occupancy)
	assert.Contains(t, cacheRepo.entries, ClassListCacheKey)

	store.addClass("Turma sem invalidação", 1)
	cached, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1, "second read is served from cache")

	_, err = svc.Create(context.Background(), ClassRequest{Name: "Turma C", Capacity: intPtr(4)})
	require.NoError(t, err)
	fresh, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestClassServiceListEmpty(t *testing.T) {
	svc := NewClassService(memClasses{m: newMemStore()}, nil, nil, zap.NewNop())
	classes, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Equal(t, []models.ClassDetail{}, classes)
}
