package models

import "time"

// TeacherSubject links a teacher to a subject they teach.
// The (teacher, subject) pair is unique.
type TeacherSubject struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeacherSubjectDetail enriches the linkage with display names.
type TeacherSubjectDetail struct {
	TeacherSubject
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// StudentSubject links a student to a subject outside of any period and
// without quota involvement. The (student, subject) pair is unique.
type StudentSubject struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentSubjectDetail enriches the linkage with display names.
type StudentSubjectDetail struct {
	StudentSubject
	StudentName string `db:"student_name" json:"student_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}
