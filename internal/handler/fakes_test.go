package handler

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/gestao-escolar-api/internal/dto"
	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	"github.com/noah-isme/gestao-escolar-api/internal/service"
)

type studentServiceMock struct {
	lastFilter models.StudentFilter
	lastReq    service.StudentRequest
	lastID     int64
	listResp   []models.StudentDetail
	detail     *models.StudentDetail
	err        error
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.listResp, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listResp)}, nil
}

func (m *studentServiceMock) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	m.lastID = id
	return m.detail, m.err
}

func (m *studentServiceMock) Create(ctx context.Context, req service.StudentRequest) (*models.StudentDetail, error) {
	m.lastReq = req
	return m.detail, m.err
}

func (m *studentServiceMock) Update(ctx context.Context, id int64, req service.StudentRequest) (*models.StudentDetail, error) {
	m.lastID, m.lastReq = id, req
	return m.detail, m.err
}

func (m *studentServiceMock) Delete(ctx context.Context, id int64) error {
	m.lastID = id
	return m.err
}

type classServiceMock struct {
	created []service.ClassRequest
	err     error
}

func (m *classServiceMock) List(ctx context.Context) ([]models.ClassDetail, error) {
	return []models.ClassDetail{}, m.err
}

func (m *classServiceMock) Create(ctx context.Context, req service.ClassRequest) (*models.Class, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, req)
	return &models.Class{ID: int64(len(m.created)), Name: req.Name, Capacity: *req.Capacity}, nil
}

func (m *classServiceMock) Update(ctx context.Context, id int64, req service.ClassRequest) (*models.Class, error) {
	return &models.Class{ID: id, Name: req.Name, Capacity: *req.Capacity}, m.err
}

func (m *classServiceMock) Delete(ctx context.Context, id int64) error {
	return m.err
}

type enrollmentServiceMock struct {
	resp *models.StudentDetail
	err  error
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, req service.EnrollRequest) (*models.StudentDetail, error) {
	return m.resp, m.err
}

type exportServiceMock struct {
	records []dto.ExportRecord
	err     error
}

func (m *exportServiceMock) StreamCSV(ctx context.Context, w io.Writer, dataset service.ExportDataset, filter models.StudentFilter) (int, error) {
	_, err := io.WriteString(w, "id,name\n")
	return 0, err
}

func (m *exportServiceMock) Records(ctx context.Context, dataset service.ExportDataset, filter models.StudentFilter) ([]dto.ExportRecord, error) {
	return m.records, m.err
}

func (m *exportServiceMock) PDF(ctx context.Context, dataset service.ExportDataset, filter models.StudentFilter) ([]byte, error) {
	return []byte("%PDF-1.3"), m.err
}

// studentTable is a minimal in-memory student repository without classes.
type studentTable struct {
	mu     sync.Mutex
	rows   map[int64]models.Student
	nextID int64
}

func newStudentTable() *studentTable {
	return &studentTable{rows: map[int64]models.Student{}}
}

func (t *studentTable) matching(filter models.StudentFilter) []models.StudentDetail {
	out := make([]models.StudentDetail, 0)
	for _, s := range t.rows {
		if filter.OnlyEnrolled && s.ClassID == nil {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, models.StudentDetail{Student: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *studentTable) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.matching(filter)
	return rows, len(rows), nil
}

func (t *studentTable) Iterate(ctx context.Context, filter models.StudentFilter, fn func(models.StudentDetail) error) error {
	t.mu.Lock()
	rows := t.matching(filter)
	t.mu.Unlock()
	for _, row := range rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *studentTable) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: s}, nil
}

func (t *studentTable) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, s := range t.rows {
		if id != excludeID && s.Email != nil && strings.EqualFold(*s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (t *studentTable) Create(ctx context.Context, student *models.Student) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	student.ID = t.nextID
	t.rows[student.ID] = *student
	return nil
}

func (t *studentTable) Update(ctx context.Context, student *models.Student) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[student.ID]; !ok {
		return sql.ErrNoRows
	}
	t.rows[student.ID] = *student
	return nil
}

func (t *studentTable) Delete(ctx context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(t.rows, id)
	return nil
}

func (t *studentTable) WithClassLock(ctx context.Context, classID int64, fn func(store repository.ClassScopedStore, class *models.Class) error) error {
	return sql.ErrNoRows
}

// brokenCursor yields its rows and then fails the way a dropped database
// connection would.
type brokenCursor struct {
	rows []models.StudentDetail
	err  error
}

func (b brokenCursor) Iterate(ctx context.Context, filter models.StudentFilter, fn func(models.StudentDetail) error) error {
	for _, row := range b.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return b.err
}
