package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

// Not found messages shared by student and enrollment flows.
const (
	msgStudentNotFound = "Aluno não encontrado"
	msgClassNotFound   = "Turma não encontrada"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	WithClassLock(ctx context.Context, classID int64, fn func(store repository.ClassScopedStore, class *models.Class) error) error
}

// StudentRequest is the full payload accepted by create and update.
type StudentRequest struct {
	Name      string       `json:"nome" validate:"required,min=3,max=80"`
	BirthDate *models.Date `json:"data_nascimento" validate:"required"`
	Email     *string      `json:"email" validate:"omitempty,email"`
	Status    string       `json:"status" validate:"omitempty,student_status"`
	ClassID   *int64       `json:"turma_id" validate:"omitempty,gt=0"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns one page of students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = models.DefaultPageSize
	}
	if filter.PageSize > models.MaxPageSize {
		filter.PageSize = models.MaxPageSize
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.StudentDetail{}
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a student with its class name.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return detail, nil
}

// Create registers a student. When a class is given the seat is taken under
// the class lock and the student becomes active.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.StudentDetail, error) {
	student, err := s.buildStudent(req)
	if err != nil {
		return nil, err
	}
	if student.Status == "" {
		student.Status = models.StudentStatusInactive
	}
	if err := CheckEmailUnique(ctx, s.repo, student.Email, 0); err != nil {
		return nil, err
	}

	if student.ClassID == nil {
		err = s.repo.Create(ctx, student)
	} else {
		student.Status = models.StudentStatusActive
		err = s.repo.WithClassLock(ctx, *student.ClassID, func(store repository.ClassScopedStore, class *models.Class) error {
			if err := CheckClassCapacity(ctx, store, class, 0); err != nil {
				return err
			}
			return store.Insert(ctx, student)
		})
	}
	if err != nil {
		return nil, s.writeError(err, "failed to create student")
	}

	s.cache.InvalidateClasses(ctx)
	s.logger.Info("student created", zap.Int64("student_id", student.ID), zap.Int64p("class_id", student.ClassID))
	return s.Get(ctx, student.ID)
}

// Update replaces every field of a student. Capacity is only checked when the
// student moves to a different class.
func (s *StudentService) Update(ctx context.Context, id int64, req StudentRequest) (*models.StudentDetail, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.buildStudent(req)
	if err != nil {
		return nil, err
	}
	student.ID = id
	student.CreatedAt = current.CreatedAt
	if student.Status == "" {
		student.Status = current.Status
	}
	if err := CheckEmailUnique(ctx, s.repo, student.Email, id); err != nil {
		return nil, err
	}

	if movesClass(current.ClassID, student.ClassID) {
		err = s.repo.WithClassLock(ctx, *student.ClassID, func(store repository.ClassScopedStore, class *models.Class) error {
			if err := CheckClassCapacity(ctx, store, class, id); err != nil {
				return err
			}
			return studentGone(store.Update(ctx, student))
		})
	} else {
		err = studentGone(s.repo.Update(ctx, student))
	}
	if err != nil {
		return nil, s.writeError(err, "failed to update student")
	}

	s.cache.InvalidateClasses(ctx)
	return s.Get(ctx, id)
}

// Delete removes a student unconditionally.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.cache.InvalidateClasses(ctx)
	s.logger.Info("student deleted", zap.Int64("student_id", id))
	return nil
}

func (s *StudentService) buildStudent(req StudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			req.Email = nil
		} else {
			req.Email = &email
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.ClassID != nil && *req.ClassID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "turma_id: deve ser maior que 0")
	}
	if err := ValidateBirthdate(*req.BirthDate, s.now()); err != nil {
		return nil, err
	}

	student := &models.Student{
		Name:      req.Name,
		BirthDate: *req.BirthDate,
		Email:     req.Email,
		ClassID:   req.ClassID,
	}
	if req.Status != "" {
		student.Status, _ = models.ParseStudentStatus(req.Status)
	}
	return student, nil
}

// writeError maps storage failures of a student write onto API errors.
func (s *StudentService) writeError(err error, message string) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, "E-mail já cadastrado")
	case errors.Is(err, repository.ErrReferenced):
		return appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

// studentGone reports a vanished student row as not found so it is not
// mistaken for a missing class.
func studentGone(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
	}
	return err
}

func movesClass(from, to *int64) bool {
	if to == nil {
		return false
	}
	return from == nil || *from != *to
}
