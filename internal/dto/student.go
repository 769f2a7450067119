package dto

import "github.com/noah-isme/gestao-escolar-api/internal/models"

// StudentListResponse is the page envelope returned by GET /alunos.
type StudentListResponse struct {
	Total   int                    `json:"total"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
	Results []models.StudentDetail `json:"results"`
}

// NewStudentListResponse builds the envelope, never emitting a null results array.
func NewStudentListResponse(students []models.StudentDetail, pagination *models.Pagination) StudentListResponse {
	if students == nil {
		students = []models.StudentDetail{}
	}
	resp := StudentListResponse{Results: students}
	if pagination != nil {
		resp.Total = pagination.TotalCount
		resp.Page = pagination.Page
		resp.PerPage = pagination.PageSize
	}
	return resp
}

// HealthResponse answers liveness and readiness probes.
type HealthResponse struct {
	Status string `json:"status"`
}

// TokenRequest documents the form fields of POST /login.
type TokenRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}
