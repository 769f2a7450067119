package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context) ([]models.ClassDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
	CountStudents(ctx context.Context, classID int64) (int, error)
}

// ClassRequest captures the create and update payload.
type ClassRequest struct {
	Name     string `json:"nome" validate:"required,max=120"`
	Capacity *int   `json:"capacidade" validate:"required"`
}

// ClassService coordinates class operations.
type ClassService struct {
	repo      classRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every class with its current occupancy, served from cache
// when enabled.
func (s *ClassService) List(ctx context.Context) ([]models.ClassDetail, error) {
	var cached []models.ClassDetail
	if hit, _ := s.cache.Get(ctx, ClassListCacheKey, &cached); hit {
		return cached, nil
	}

	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.ClassDetail{}
	}
	_ = s.cache.Set(ctx, ClassListCacheKey, classes, 0)
	return classes, nil
}

// Create adds a new class.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.Class, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Turma já existe")
	}

	class := &models.Class{Name: req.Name, Capacity: *req.Capacity}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, s.writeError(err, "failed to create class")
	}
	s.cache.InvalidateClasses(ctx)
	s.logger.Info("class created", zap.Int64("class_id", class.ID), zap.String("name", class.Name))
	return class, nil
}

// Update modifies a class record. Shrinking capacity below the current
// occupancy is allowed; only new assignments are blocked.
func (s *ClassService) Update(ctx context.Context, id int64, req ClassRequest) (*models.Class, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Turma já existe")
	}

	class.Name = req.Name
	class.Capacity = *req.Capacity
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, s.writeError(err, "failed to update class")
	}
	s.cache.InvalidateClasses(ctx)
	return class, nil
}

// Delete removes a class that no student references.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if err := CheckClassHasNoStudents(ctx, s.repo, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError(err, "failed to delete class")
	}
	s.cache.InvalidateClasses(ctx)
	s.logger.Info("class deleted", zap.Int64("class_id", id))
	return nil
}

func (s *ClassService) validate(req *ClassRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	return ValidateCapacity(*req.Capacity)
}

func (s *ClassService) writeError(err error, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, "Turma já existe")
	case errors.Is(err, repository.ErrReferenced):
		return appErrors.Clone(appErrors.ErrConflict, "Turma possui alunos vinculados")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}
