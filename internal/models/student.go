package models

import "time"

// Student represents a learner registered in the academic schema.
type Student struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	CareerID  string    `db:"career_id" json:"career_id"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail enriches Student with career context.
type StudentDetail struct {
	Student
	CareerName string `db:"career_name" json:"career_name"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	CareerID  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
