package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

func pathID(c *gin.Context, notFound string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return id, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: deve ser um número inteiro", key))
	}
	return n, nil
}

// studentFilter reads the listing filters shared by GET /alunos and exports.
func studentFilter(c *gin.Context) (models.StudentFilter, error) {
	filter := models.StudentFilter{Search: strings.TrimSpace(c.Query("search"))}

	if raw := strings.TrimSpace(c.Query("turma_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "turma_id: deve ser um inteiro positivo")
		}
		filter.ClassID = &id
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := models.ParseStudentStatus(raw)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, "status: deve ser active ou inactive")
		}
		filter.Status = status
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return filter, err
	}
	perPage, err := queryInt(c, "per_page")
	if err != nil {
		return filter, err
	}
	filter.Page, filter.PageSize = page, perPage
	return filter, nil
}
