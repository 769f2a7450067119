package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gestao-escolar-api/internal/dto"
	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/service"
	"github.com/noah-isme/gestao-escolar-api/pkg/response"
)

type exportService interface {
	StreamCSV(ctx context.Context, w io.Writer, dataset service.ExportDataset, filter models.StudentFilter) (int, error)
	Records(ctx context.Context, dataset service.ExportDataset, filter models.StudentFilter) ([]dto.ExportRecord, error)
	PDF(ctx context.Context, dataset service.ExportDataset, filter models.StudentFilter) ([]byte, error)
}

// ExportHandler serves downloadable student listings.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Students godoc
// @Summary Export students
// @Tags Export
// @Produce text/csv
// @Produce json
// @Produce application/pdf
// @Param format query string false "csv (default), json or pdf"
// @Param search query string false "Search by name"
// @Param turma_id query int false "Filter by class"
// @Param status query string false "active or inactive"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /export/alunos [get]
func (h *ExportHandler) Students(c *gin.Context) {
	h.export(c, service.ExportDatasetStudents)
}

// Enrollments godoc
// @Summary Export enrolled students
// @Description Only students assigned to a class are included
// @Tags Export
// @Produce text/csv
// @Produce json
// @Produce application/pdf
// @Param format query string false "csv (default), json or pdf"
// @Param turma_id query int false "Filter by class"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /export/matriculas [get]
func (h *ExportHandler) Enrollments(c *gin.Context) {
	h.export(c, service.ExportDatasetEnrollments)
}

func (h *ExportHandler) export(c *gin.Context, dataset service.ExportDataset) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := studentFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	switch format {
	case service.ExportFormatJSON:
		records, err := h.exports.Records(ctx, dataset, filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		attach(c, dataset, format)
		c.JSON(http.StatusOK, records)
	case service.ExportFormatPDF:
		out, err := h.exports.PDF(ctx, dataset, filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		attach(c, dataset, format)
		c.Data(http.StatusOK, format.ContentType(), out)
	default:
		out := &csvResponse{c: c, dataset: dataset, format: format}
		if _, err := h.exports.StreamCSV(ctx, out, dataset, filter); err != nil {
			if !out.started {
				response.Error(c, err)
				return
			}
			// Rows are already on the wire; cut the connection so the client
			// sees a truncated transfer instead of a complete document.
			_ = c.Error(err)
			panic(http.ErrAbortHandler)
		}
	}
}

// csvResponse commits the attachment headers and a 200 status on the first
// write, leaving the response free for an error body until then.
type csvResponse struct {
	c       *gin.Context
	dataset service.ExportDataset
	format  service.ExportFormat
	started bool
}

func (w *csvResponse) Write(p []byte) (int, error) {
	if !w.started {
		w.started = true
		attach(w.c, w.dataset, w.format)
		w.c.Header("Content-Type", w.format.ContentType())
		w.c.Status(http.StatusOK)
	}
	return w.c.Writer.Write(p)
}

func (w *csvResponse) Flush() {
	if w.started {
		w.c.Writer.Flush()
	}
}

func attach(c *gin.Context, dataset service.ExportDataset, format service.ExportFormat) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dataset.Filename(format)))
	c.Header("Cache-Control", "no-store")
}
