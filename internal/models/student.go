package models

import (
	"strings"
	"time"
)

// StudentStatus is the lifecycle flag of a student.
type StudentStatus string

// Possible student statuses.
const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// ParseStudentStatus normalises user input, accepting the Portuguese labels
// used by the web client. ok is false for unknown values.
func ParseStudentStatus(raw string) (status StudentStatus, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "ativo":
		return StudentStatusActive, true
	case "inactive", "inativo":
		return StudentStatusInactive, true
	default:
		return "", false
	}
}

// Student represents a learner (aluno). ClassID is the owning reference to
// the student's class, if any.
type Student struct {
	ID        int64         `db:"id" json:"id"`
	Name      string        `db:"nome" json:"nome"`
	BirthDate Date          `db:"data_nascimento" json:"data_nascimento"`
	Email     *string       `db:"email" json:"email"`
	Status    StudentStatus `db:"status" json:"status"`
	ClassID   *int64        `db:"turma_id" json:"turma_id"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// Enrolled reports whether the student is assigned to a class and active.
func (s Student) Enrolled() bool {
	return s.ClassID != nil && s.Status == StudentStatusActive
}

// StudentDetail is the flat projection of a student joined with its class.
type StudentDetail struct {
	Student
	ClassName *string `db:"turma_nome" json:"turma_nome"`
}

// Listing bounds for student pages.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

// StudentFilter encapsulates allowed search parameters for listing and export.
type StudentFilter struct {
	Search       string
	ClassID      *int64
	Status       StudentStatus
	OnlyEnrolled bool
	Page         int
	PageSize     int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int
	PageSize   int
	TotalCount int
}
