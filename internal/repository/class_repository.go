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

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class together with the number of students assigned to it.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassDetail, error) {
	const query = `SELECT t.id, t.nome, t.capacidade, t.created_at, t.updated_at, COUNT(a.id) AS ocupacao
        FROM turmas t LEFT JOIN alunos a ON a.turma_id = t.id
        GROUP BY t.id ORDER BY t.id`
	classes := make([]models.ClassDetail, 0)
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class record by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, nome, capacidade, created_at, updated_at FROM turmas WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByName checks case-insensitively if a class with the same name exists.
func (r *ClassRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM turmas WHERE LOWER(nome) = LOWER($1)"
	args := []interface{}{strings.TrimSpace(name)}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class name: %w", err)
	}
	return true, nil
}

// Create persists a class record and fills the generated ID.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO turmas (nome, capacidade, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &class.ID, query, class.Name, class.Capacity, class.CreatedAt, class.UpdatedAt); err != nil {
		return translate("create class", err)
	}
	return nil
}

// Update modifies a class record. sql.ErrNoRows is returned when it vanished.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE turmas SET nome = :nome, capacidade = :capacidade, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return translate("update class", err)
	}
	return requireAffected(res)
}

// Delete removes a class record. Students still referencing it block the delete.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM turmas WHERE id = $1`, id)
	if err != nil {
		return translate("delete class", err)
	}
	return requireAffected(res)
}

// CountStudents returns how many students reference the class.
func (r *ClassRepository) CountStudents(ctx context.Context, classID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM alunos WHERE turma_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count class students: %w", err)
	}
	return count, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
