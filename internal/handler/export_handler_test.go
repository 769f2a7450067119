package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/dto"
	"github.com/noah-isme/gestao-escolar-api/internal/middleware"
	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/service"
)

func TestExportHandlerJSON(t *testing.T) {
	mockSvc := &exportServiceMock{records: []dto.ExportRecord{{ID: 1, Name: "Ana", Status: "active"}}}
	c, w := newTestContext(http.MethodGet, "/export/matriculas?format=json&turma_id=2", "")
	NewExportHandler(mockSvc).Enrollments(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="matriculas.json"`)
	var records []dto.ExportRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Equal(t, "Ana", records[0].Name)
}

func TestExportHandlerPDF(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/export/alunos?format=pdf", "")
	NewExportHandler(&exportServiceMock{}).Students(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="alunos.pdf"`)
}

func TestExportHandlerDefaultsToCSV(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/export/alunos", "")
	NewExportHandler(&exportServiceMock{}).Students(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "id,name\n", w.Body.String())
}

func TestExportHandlerRejectsBadFilter(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/export/alunos?turma_id=x", "")
	NewExportHandler(&exportServiceMock{}).Students(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerCSVQueryFailureIs500(t *testing.T) {
	exports := service.NewExportService(brokenCursor{err: errors.New("connection refused")}, nil, nil, service.ExportConfig{}, zap.NewNop())
	c, w := newTestContext(http.MethodGet, "/export/alunos?format=csv", "")
	NewExportHandler(exports).Students(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to export", decodeDetail(t, w))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.NotContains(t, w.Body.String(), "id,name,birthdate")
}

func TestExportHandlerCSVFailureAfterRowsAbortsConnection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cursor := brokenCursor{
		rows: []models.StudentDetail{{Student: models.Student{ID: 1, Name: "Ana", Status: models.StudentStatusActive}}},
		err:  errors.New("connection reset"),
	}
	exports := service.NewExportService(cursor, nil, nil, service.ExportConfig{FlushEvery: 1}, zap.NewNop())
	router := gin.New()
	router.Use(middleware.Recovery(zap.NewNop()))
	router.GET("/export/alunos", NewExportHandler(exports).Students)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export/alunos", nil)
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() { router.ServeHTTP(w, req) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1,Ana,")
}
