package models

import "time"

// Specialty groups careers by knowledge area.
type Specialty struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Career represents an academic program belonging to a specialty.
type Career struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	TotalCycles   int       `db:"total_cycles" json:"total_cycles"`
	DurationYears int       `db:"duration_years" json:"duration_years"`
	SpecialtyID   string    `db:"specialty_id" json:"specialty_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CareerDetail enriches Career with its specialty name.
type CareerDetail struct {
	Career
	SpecialtyName string `db:"specialty_name" json:"specialty_name"`
}

// Cycle is an ordinal stage within a career curriculum.
type Cycle struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Number    int       `db:"number" json:"number"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
