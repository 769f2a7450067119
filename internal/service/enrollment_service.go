package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	WithClassLock(ctx context.Context, classID int64, fn func(store repository.ClassScopedStore, class *models.Class) error) error
}

// EnrollRequest assigns a student to a class.
type EnrollRequest struct {
	StudentID int64 `json:"aluno_id" validate:"required,gt=0"`
	ClassID   int64 `json:"turma_id" validate:"required,gt=0"`
}

// EnrollmentService places students into classes while honouring capacity.
type EnrollmentService struct {
	repo      enrollmentRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Enroll sets the student's class and activates it. The occupancy count and
// the write happen while the class row is locked, so two concurrent requests
// can never both take the last seat.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.repo.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordEnrollment(EnrollmentResultNotFound)
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		s.metrics.RecordEnrollment(EnrollmentResultError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	err := s.repo.WithClassLock(ctx, req.ClassID, func(store repository.ClassScopedStore, class *models.Class) error {
		student, err := store.FindStudent(ctx, req.StudentID)
		if err != nil {
			return studentGone(err)
		}
		if student.Enrolled() && *student.ClassID == class.ID {
			return nil
		}
		if err := CheckClassCapacity(ctx, store, class, student.ID); err != nil {
			return err
		}
		student.ClassID = &class.ID
		student.Status = models.StudentStatusActive
		return studentGone(store.Update(ctx, student))
	})
	if err != nil {
		return nil, s.enrollError(req, err)
	}

	s.metrics.RecordEnrollment(EnrollmentResultOK)
	s.cache.InvalidateClasses(ctx)
	s.logger.Info("student enrolled", zap.Int64("student_id", req.StudentID), zap.Int64("class_id", req.ClassID))

	detail, err := s.repo.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return detail, nil
}

func (s *EnrollmentService) enrollError(req EnrollRequest, err error) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		switch {
		case errors.Is(appErr, appErrors.ErrCapacity):
			s.metrics.RecordEnrollment(EnrollmentResultFull)
			s.logger.Warn("enrollment rejected: class full", zap.Int64("student_id", req.StudentID), zap.Int64("class_id", req.ClassID))
		case errors.Is(appErr, appErrors.ErrNotFound):
			s.metrics.RecordEnrollment(EnrollmentResultNotFound)
		default:
			s.metrics.RecordEnrollment(EnrollmentResultError)
		}
		return appErr
	case errors.Is(err, sql.ErrNoRows):
		s.metrics.RecordEnrollment(EnrollmentResultNotFound)
		return appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
	default:
		s.metrics.RecordEnrollment(EnrollmentResultError)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
}
