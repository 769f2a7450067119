package dto

import (
	"strconv"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
)

// ExportHeaders is the fixed column order of every student export.
var ExportHeaders = []string{"id", "name", "birthdate", "email", "status", "class_id", "class_name"}

// ExportRecord is the flat projection of a student used by exports.
type ExportRecord struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Birthdate string  `json:"birthdate"`
	Email     *string `json:"email"`
	Status    string  `json:"status"`
	ClassID   *int64  `json:"class_id"`
	ClassName *string `json:"class_name"`
}

// NewExportRecord flattens a student detail.
func NewExportRecord(d models.StudentDetail) ExportRecord {
	return ExportRecord{
		ID:        d.ID,
		Name:      d.Name,
		Birthdate: d.BirthDate.String(),
		Email:     d.Email,
		Status:    string(d.Status),
		ClassID:   d.ClassID,
		ClassName: d.ClassName,
	}
}

// Values renders the record in ExportHeaders order. Missing values become
// empty strings.
func (r ExportRecord) Values() []string {
	values := []string{strconv.FormatInt(r.ID, 10), r.Name, r.Birthdate, "", r.Status, "", ""}
	if r.Email != nil {
		values[3] = *r.Email
	}
	if r.ClassID != nil {
		values[5] = strconv.FormatInt(*r.ClassID, 10)
	}
	if r.ClassName != nil {
		values[6] = *r.ClassName
	}
	return values
}

// Row renders the record keyed by header.
func (r ExportRecord) Row() map[string]string {
	values := r.Values()
	row := make(map[string]string, len(ExportHeaders))
	for i, header := range ExportHeaders {
		row[header] = values[i]
	}
	return row
}
