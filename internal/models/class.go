package models

import "time"

// Class represents a teaching group (turma) with a fixed seat capacity.
type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"nome" json:"nome"`
	Capacity  int       `db:"capacidade" json:"capacidade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with the number of students currently assigned.
type ClassDetail struct {
	Class
	Occupancy int `db:"ocupacao" json:"ocupacao"`
}

// Full reports whether the class has no seat left.
func (d ClassDetail) Full() bool {
	return d.Occupancy >= d.Capacity
}
