package models

import "time"

// Subject represents an academic subject with a bounded seat quota.
// MaxQuota is the capacity ceiling; AvailableQuota is the remaining seat
// counter owned exclusively by the enrollment coordinator.
type Subject struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Credits        int       `db:"credits" json:"credits"`
	MaxQuota       int       `db:"max_quota" json:"max_quota"`
	AvailableQuota int       `db:"available_quota" json:"available_quota"`
	CareerID       string    `db:"career_id" json:"career_id"`
	CycleID        string    `db:"cycle_id" json:"cycle_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail enriches Subject with career and cycle names.
type SubjectDetail struct {
	Subject
	CareerName string `db:"career_name" json:"career_name"`
	CycleName  string `db:"cycle_name" json:"cycle_name"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	CareerID  string
	CycleID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
