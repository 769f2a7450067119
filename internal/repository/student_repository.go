package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
)

const (
	studentColumns = `a.id, a.nome, a.data_nascimento, a.email, a.status, a.turma_id, a.created_at, a.updated_at, t.nome AS turma_nome`
	studentFrom    = `FROM alunos a LEFT JOIN turmas t ON t.id = a.turma_id`
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ClassScopedStore exposes the student writes allowed while a class row is locked.
type ClassScopedStore interface {
	CountByClass(ctx context.Context, classID, excludeStudentID int64) (int, error)
	FindStudent(ctx context.Context, id int64) (*models.Student, error)
	Insert(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func studentWhere(filter models.StudentFilter) (string, []interface{}) {
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.OnlyEnrolled {
		conditions = append(conditions, "a.turma_id IS NOT NULL")
	}
	if filter.ClassID != nil {
		conditions = append(conditions, fmt.Sprintf("a.turma_id = $%d", len(args)+1))
		args = append(args, *filter.ClassID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(`LOWER(a.nome) LIKE $%d ESCAPE '\'`, len(args)+1))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of students matching the filter plus the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	where, args := studentWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > models.MaxPageSize {
		size = models.DefaultPageSize
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s %s ORDER BY a.id LIMIT %d OFFSET %d", studentColumns, studentFrom, where, size, offset)
	students := make([]models.StudentDetail, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", studentFrom, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Iterate streams every student matching the filter, in id order, through fn
// using a single cursor. Paging fields of the filter are ignored.
func (r *StudentRepository) Iterate(ctx context.Context, filter models.StudentFilter, fn func(models.StudentDetail) error) error {
	where, args := studentWhere(filter)
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY a.id", studentColumns, studentFrom, where)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var detail models.StudentDetail
		if err := rows.StructScan(&detail); err != nil {
			return fmt.Errorf("scan student: %w", err)
		}
		if err := fn(detail); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate students: %w", err)
	}
	return nil
}

// FindByID fetches a student with its class name.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", studentColumns, studentFrom)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// EmailExists checks case-insensitively if another student uses the email.
func (r *StudentRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM alunos WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// CountByClass counts students assigned to the class, ignoring excludeStudentID.
func (r *StudentRepository) CountByClass(ctx context.Context, classID, excludeStudentID int64) (int, error) {
	return countByClass(ctx, r.db, classID, excludeStudentID)
}

// Create inserts a student that has no class.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return insertStudent(ctx, r.db, student)
}

// Update overwrites an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	return updateStudent(ctx, r.db, student)
}

// Delete removes a student. sql.ErrNoRows is returned when nothing was deleted.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alunos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res)
}

// DeleteAll truncates both tables. Only the seeder uses it.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE alunos, turmas RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// WithClassLock runs fn inside a transaction holding a row lock on the class so
// that concurrent assignments to the same class are serialised. The class is
// looked up under the lock; sql.ErrNoRows is returned when it does not exist.
func (r *StudentRepository) WithClassLock(ctx context.Context, classID int64, fn func(store ClassScopedStore, class *models.Class) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin class transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var class models.Class
	const lockQuery = `SELECT id, nome, capacidade, created_at, updated_at FROM turmas WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &class, lockQuery, classID); err != nil {
		return fmt.Errorf("lock class %d: %w", classID, err)
	}

	if err = fn(&txStudentStore{tx: tx}, &class); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit class transaction: %w", err)
	}
	return nil
}

type txStudentStore struct {
	tx *sqlx.Tx
}

func (s *txStudentStore) CountByClass(ctx context.Context, classID, excludeStudentID int64) (int, error) {
	return countByClass(ctx, s.tx, classID, excludeStudentID)
}

func (s *txStudentStore) FindStudent(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, nome, data_nascimento, email, status, turma_id, created_at, updated_at FROM alunos WHERE id = $1 FOR UPDATE`
	var student models.Student
	if err := s.tx.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *txStudentStore) Insert(ctx context.Context, student *models.Student) error {
	return insertStudent(ctx, s.tx, student)
}

func (s *txStudentStore) Update(ctx context.Context, student *models.Student) error {
	return updateStudent(ctx, s.tx, student)
}

func countByClass(ctx context.Context, q sqlx.QueryerContext, classID, excludeStudentID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM alunos WHERE turma_id = $1 AND id <> $2`
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, classID, excludeStudentID); err != nil {
		return 0, fmt.Errorf("count class students: %w", err)
	}
	return count, nil
}

func insertStudent(ctx context.Context, q sqlx.QueryerContext, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO alunos (nome, data_nascimento, email, status, turma_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := sqlx.GetContext(ctx, q, &student.ID, query,
		student.Name, student.BirthDate, student.Email, string(student.Status), student.ClassID, student.CreatedAt, student.UpdatedAt)
	if err != nil {
		return translate("create student", err)
	}
	return nil
}

func updateStudent(ctx context.Context, e sqlx.ExecerContext, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE alunos SET nome = $1, data_nascimento = $2, email = $3, status = $4, turma_id = $5, updated_at = $6 WHERE id = $7`
	res, err := e.ExecContext(ctx, query,
		student.Name, student.BirthDate, student.Email, string(student.Status), student.ClassID, student.UpdatedAt, student.ID)
	if err != nil {
		return translate("update student", err)
	}
	return requireAffected(res)
}
