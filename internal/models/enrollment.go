package models

import "time"

// Enrollment records that a student occupies one seat of a subject for an
// academic period. The (student, subject, period) triple is unique among
// live rows; rows are created and deleted only by the coordinator.
type Enrollment struct {
	ID               string    `db:"id" json:"id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	SubjectID        string    `db:"subject_id" json:"subject_id"`
	AcademicPeriodID string    `db:"academic_period_id" json:"academic_period_id"`
	EnrolledAt       time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with student, subject and period info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	PeriodName  string `db:"period_name" json:"period_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID        string
	SubjectID        string
	AcademicPeriodID string
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}
