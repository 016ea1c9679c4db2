package models

// SubjectOccupancy reports seat usage for one subject. EnrolledCount is
// derived from the enrollment ledger; MaxQuota-AvailableQuota must equal it
// whenever the quota invariant holds.
type SubjectOccupancy struct {
	SubjectID      string `db:"subject_id" json:"subject_id"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
	CareerName     string `db:"career_name" json:"career_name"`
	MaxQuota       int    `db:"max_quota" json:"max_quota"`
	AvailableQuota int    `db:"available_quota" json:"available_quota"`
	EnrolledCount  int    `db:"enrolled_count" json:"enrolled_count"`
}

// PeriodSummary aggregates enrollments per academic period.
type PeriodSummary struct {
	PeriodID        string `db:"period_id" json:"period_id"`
	PeriodName      string `db:"period_name" json:"period_name"`
	IsActive        bool   `db:"is_active" json:"is_active"`
	EnrollmentCount int    `db:"enrollment_count" json:"enrollment_count"`
}

// CareerSummary aggregates students and enrollments per career.
type CareerSummary struct {
	CareerID        string `db:"career_id" json:"career_id"`
	CareerName      string `db:"career_name" json:"career_name"`
	StudentCount    int    `db:"student_count" json:"student_count"`
	EnrollmentCount int    `db:"enrollment_count" json:"enrollment_count"`
}
