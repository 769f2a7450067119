package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

// memStore is an in-memory stand-in for both repositories. WithClassLock
// serialises callers the way the row lock does in Postgres.
type memStore struct {
	mu       sync.Mutex
	rowLock  sync.Mutex
	classes  map[int64]*models.Class
	students map[int64]*models.Student
	nextID   int64
	updates  int
	err      error
}

func newMemStore() *memStore {
	return &memStore{classes: map[int64]*models.Class{}, students: map[int64]*models.Student{}}
}

func (m *memStore) addClass(name string, capacity int) *models.Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	class := &models.Class{ID: m.nextID, Name: name, Capacity: capacity}
	m.classes[class.ID] = class
	return class
}

func (m *memStore) addStudent(name string, classID *int64) *models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	student := &models.Student{
		ID:        m.nextID,
		Name:      name,
		BirthDate: models.NewDate(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)),
		Status:    models.StudentStatusInactive,
		ClassID:   classID,
	}
	if classID != nil {
		student.Status = models.StudentStatusActive
	}
	m.students[student.ID] = student
	return student
}

func (m *memStore) detail(s *models.Student) models.StudentDetail {
	d := models.StudentDetail{Student: *s}
	if s.ClassID != nil {
		if c, ok := m.classes[*s.ClassID]; ok {
			name := c.Name
			d.ClassName = &name
		}
	}
	return d
}

func (m *memStore) matching(filter models.StudentFilter) []models.StudentDetail {
	ids := make([]int64, 0, len(m.students))
	for id := range m.students {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.StudentDetail, 0)
	for _, id := range ids {
		s := m.students[id]
		if filter.OnlyEnrolled && s.ClassID == nil {
			continue
		}
		if filter.ClassID != nil && (s.ClassID == nil || *s.ClassID != *filter.ClassID) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, m.detail(s))
	}
	return out
}

func (m *memStore) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.matching(filter)
	start := (filter.Page - 1) * filter.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memStore) Iterate(ctx context.Context, filter models.StudentFilter, fn func(models.StudentDetail) error) error {
	m.mu.Lock()
	rows := m.matching(filter)
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := m.detail(s)
	return &d, nil
}

func (m *memStore) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.students {
		if id != excludeID && s.Email != nil && strings.EqualFold(*s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CountByClass(ctx context.Context, classID, excludeStudentID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countByClass(classID, excludeStudentID), nil
}

func (m *memStore) countByClass(classID, excludeStudentID int64) int {
	count := 0
	for id, s := range m.students {
		if id != excludeStudentID && s.ClassID != nil && *s.ClassID == classID {
			count++
		}
	}
	return count
}

func (m *memStore) Create(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(student)
}

func (m *memStore) insert(student *models.Student) error {
	if student.Email != nil {
		for _, s := range m.students {
			if s.Email != nil && strings.EqualFold(*s.Email, *student.Email) {
				return repository.ErrDuplicate
			}
		}
	}
	if student.ClassID != nil {
		if _, ok := m.classes[*student.ClassID]; !ok {
			return repository.ErrReferenced
		}
	}
	m.nextID++
	student.ID = m.nextID
	copied := *student
	m.students[student.ID] = &copied
	m.updates++
	return nil
}

func (m *memStore) Update(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.update(student)
}

func (m *memStore) update(student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *student
	m.students[student.ID] = &copied
	return nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

func (m *memStore) WithClassLock(ctx context.Context, classID int64, fn func(store repository.ClassScopedStore, class *models.Class) error) error {
	m.rowLock.Lock()
	defer m.rowLock.Unlock()

	m.mu.Lock()
	class, ok := m.classes[classID]
	m.mu.Unlock()
	if !ok {
		return sql.ErrNoRows
	}
	copied := *class
	return fn(&memTx{m: m}, &copied)
}

type memTx struct {
	m *memStore
}

func (t *memTx) CountByClass(ctx context.Context, classID, excludeStudentID int64) (int, error) {
	return t.m.CountByClass(ctx, classID, excludeStudentID)
}

func (t *memTx) FindStudent(ctx context.Context, id int64) (*models.Student, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	s, ok := t.m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (t *memTx) Insert(ctx context.Context, student *models.Student) error {
	return t.m.Create(ctx, student)
}

func (t *memTx) Update(ctx context.Context, student *models.Student) error {
	return t.m.Update(ctx, student)
}

// memClasses exposes the class side of memStore.
type memClasses struct {
	m *memStore
}

func (c memClasses) List(ctx context.Context) ([]models.ClassDetail, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if c.m.err != nil {
		return nil, c.m.err
	}
	out := make([]models.ClassDetail, 0, len(c.m.classes))
	for _, class := range c.m.classes {
		out = append(out, models.ClassDetail{Class: *class, Occupancy: c.m.countByClass(class.ID, 0)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c memClasses) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	class, ok := c.m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *class
	return &copied, nil
}

func (c memClasses) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for id, class := range c.m.classes {
		if id != excludeID && strings.EqualFold(class.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (c memClasses) Create(ctx context.Context, class *models.Class) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.nextID++
	class.ID = c.m.nextID
	copied := *class
	c.m.classes[class.ID] = &copied
	return nil
}

func (c memClasses) Update(ctx context.Context, class *models.Class) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if _, ok := c.m.classes[class.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *class
	c.m.classes[class.ID] = &copied
	return nil
}

func (c memClasses) Delete(ctx context.Context, id int64) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if _, ok := c.m.classes[id]; !ok {
		return sql.ErrNoRows
	}
	if c.m.countByClass(id, 0) > 0 {
		return repository.ErrReferenced
	}
	delete(c.m.classes, id)
	return nil
}

func (c memClasses) CountStudents(ctx context.Context, classID int64) (int, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.m.countByClass(classID, 0), nil
}

// memCache is an in-memory CacheRepository.
type memCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deletes int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]interface{}{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if target, ok := dest.(*[]models.ClassDetail); ok {
		*target = value.([]models.ClassDetail)
	}
	return nil
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.deletes++
	return nil
}
