package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

// MinimumAgeYears is the youngest age accepted for a student.
const MinimumAgeYears = 5

type emailChecker interface {
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
}

type classOccupancyCounter interface {
	CountByClass(ctx context.Context, classID, excludeStudentID int64) (int, error)
}

type classStudentCounter interface {
	CountStudents(ctx context.Context, classID int64) (int, error)
}

// ValidateBirthdate rejects dates later than MinimumAgeYears calendar years
// before now. A birthday falling exactly on that limit is accepted.
func ValidateBirthdate(d models.Date, now time.Time) error {
	if d.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "data_nascimento: campo obrigatório")
	}
	limit := models.NewDate(now).AddDate(-MinimumAgeYears, 0, 0)
	if d.After(limit) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("data_nascimento: aluno deve ter ao menos %d anos", MinimumAgeYears))
	}
	return nil
}

// ValidateCapacity requires at least one seat.
func ValidateCapacity(n int) error {
	if n < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "capacidade: deve ser maior ou igual a 1")
	}
	return nil
}

// CheckEmailUnique fails when another student already uses the email. A nil
// email always passes.
func CheckEmailUnique(ctx context.Context, checker emailChecker, email *string, excludingID int64) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	exists, err := checker.EmailExists(ctx, *email, excludingID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "E-mail já cadastrado")
	}
	return nil
}

// CheckClassCapacity fails when the class has no free seat for the student.
// The student being assigned is left out of the count, so re-assigning a
// student to its current class never trips the limit.
func CheckClassCapacity(ctx context.Context, counter classOccupancyCounter, class *models.Class, excludingStudentID int64) error {
	occupancy, err := counter.CountByClass(ctx, class.ID, excludingStudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class students")
	}
	if occupancy >= class.Capacity {
		return appErrors.Clone(appErrors.ErrCapacity, "")
	}
	return nil
}

// CheckClassHasNoStudents fails while any student still references the class.
func CheckClassHasNoStudents(ctx context.Context, counter classStudentCounter, classID int64) error {
	count, err := counter.CountStudents(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class students")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Turma possui %d aluno(s) vinculado(s)", count))
	}
	return nil
}
