package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

func counterValue(t *testing.T, metrics *MetricsService, name, label string) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetValue() == label {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestEnrollmentServiceCapacityOne(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma 1", 1)
	a := store.addStudent("Ana", nil)
	b := store.addStudent("Bruno", nil)
	metrics := NewMetricsService()
	svc := NewEnrollmentService(store, nil, metrics, nil, zap.NewNop())

	enrolled, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: a.ID, ClassID: class.ID})
	require.NoError(t, err)
	require.NotNil(t, enrolled.ClassID)
	assert.Equal(t, class.ID, *enrolled.ClassID)
	assert.Equal(t, models.StudentStatusActive, enrolled.Status)

	_, err = svc.Enroll(context.Background(), EnrollRequest{StudentID: b.ID, ClassID: class.ID})
	assert.ErrorIs(t, err, appErrors.ErrCapacity)
	assert.EqualError(t, err, "Turma cheia")

	untouched, err := store.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.ClassID)
	assert.Equal(t, models.StudentStatusInactive, untouched.Status)

	assert.Equal(t, float64(1), counterValue(t, metrics, "enrollments_total", EnrollmentResultOK))
	assert.Equal(t, float64(1), counterValue(t, metrics, "enrollments_total", EnrollmentResultFull))
}

func TestEnrollmentServiceReenrollSameClassIsIdempotent(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma 1", 1)
	a := store.addStudent("Ana", &class.ID)
	svc := NewEnrollmentService(store, nil, nil, nil, zap.NewNop())

	enrolled, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: a.ID, ClassID: class.ID})
	require.NoError(t, err)
	assert.Equal(t, class.ID, *enrolled.ClassID)
	assert.Zero(t, store.updates, "an active student already in the class is left as is")
}

func TestEnrollmentServiceReactivatesInactiveMember(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma 1", 1)
	a := store.addStudent("Ana", &class.ID)
	a.Status = models.StudentStatusInactive
	svc := NewEnrollmentService(store, nil, nil, nil, zap.NewNop())

	enrolled, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: a.ID, ClassID: class.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, enrolled.Status)
	assert.Equal(t, 1, store.updates)
}

func TestEnrollmentServiceNotFound(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma 1", 3)
	a := store.addStudent("Ana", nil)
	svc := NewEnrollmentService(store, nil, nil, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: 999, ClassID: class.ID})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.EqualError(t, err, "Aluno não encontrado")

	_, err = svc.Enroll(context.Background(), EnrollRequest{StudentID: a.ID, ClassID: 999})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.EqualError(t, err, "Turma não encontrada")
}

func TestEnrollmentServiceValidation(t *testing.T) {
	svc := NewEnrollmentService(newMemStore(), nil, nil, nil, zap.NewNop())
	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: 0, ClassID: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEnrollmentServiceConcurrentLastSeat(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma 1", 1)
	var ids []int64
	for i := 0; i < 8; i++ {
		ids = append(ids, store.addStudent("Aluno", nil).ID)
	}
	svc := NewEnrollmentService(store, nil, nil, nil, zap.NewNop())

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: id, ClassID: class.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, appErrors.ErrCapacity):
				full++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(ids)-1, full)
	count, err := store.CountByClass(context.Background(), class.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnrollmentServiceInvalidatesClassCache(t *testing.T) {
	store := newMemStore()
	class := store.addClass("Turma 1", 2)
	a := store.addStudent("Ana", nil)
	cacheRepo := newMemCache()
	cacheRepo.entries[ClassListCacheKey] = []models.ClassDetail{}
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	svc := NewEnrollmentService(store, cache, nil, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: a.ID, ClassID: class.ID})
	require.NoError(t, err)
	assert.NotContains(t, cacheRepo.entries, ClassListCacheKey)
}
