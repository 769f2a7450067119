package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gestao-escolar-api/internal/dto"
	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/service"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
	"github.com/noah-isme/gestao-escolar-api/pkg/response"
)

const msgStudentNotFound = "Aluno não encontrado"

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.StudentDetail, error)
	Create(ctx context.Context, req service.StudentRequest) (*models.StudentDetail, error)
	Update(ctx context.Context, id int64, req service.StudentRequest) (*models.StudentDetail, error)
	Delete(ctx context.Context, id int64) error
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Alunos
// @Produce json
// @Param search query string false "Search by name"
// @Param turma_id query int false "Filter by class"
// @Param status query string false "active or inactive"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (max 1000)"
// @Success 200 {object} dto.StudentListResponse
// @Failure 400 {object} response.ErrorBody
// @Router /alunos [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter, err := studentFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewStudentListResponse(students, pagination))
}

// Get godoc
// @Summary Get student detail
// @Tags Alunos
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} models.StudentDetail
// @Failure 404 {object} response.ErrorBody
// @Router /alunos/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := pathID(c, msgStudentNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Alunos
// @Accept json
// @Produce json
// @Param payload body service.StudentRequest true "Student payload"
// @Success 201 {object} models.StudentDetail
// @Failure 400 {object} response.ErrorBody
// @Router /alunos [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Alunos
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.StudentRequest true "Student payload"
// @Success 200 {object} models.StudentDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /alunos/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := pathID(c, msgStudentNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Tags Alunos
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.DetailBody
// @Failure 404 {object} response.ErrorBody
// @Router /alunos/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, msgStudentNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Detail(c, "Deletado")
}
