package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, subjectID, periodID, excludeID string) (bool, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	UpdateSubject(ctx context.Context, exec sqlx.ExtContext, id, subjectID string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type enrollmentSubjectRepository interface {
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error)
	DecrementQuota(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	IncrementQuota(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type enrollmentStudentRepository interface {
	FindByIDTx(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error)
}

type enrollmentPeriodRepository interface {
	FindByIDTx(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AcademicPeriod, error)
}

// EnrollRequest describes payload for enrolling a student into a subject.
type EnrollRequest struct {
	StudentID        string `json:"student_id" validate:"required"`
	SubjectID        string `json:"subject_id" validate:"required"`
	AcademicPeriodID string `json:"academic_period_id" validate:"required"`
}

// ReassignRequest moves an existing enrollment to another subject.
type ReassignRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// EnrollmentService coordinates seat allocation. Every mutation runs inside
// one transaction: validation reads, the quota update and the ledger write
// commit or roll back together, so available_quota and the enrollment rows
// never drift apart.
type EnrollmentService struct {
	tx        txProvider
	repo      enrollmentRepository
	subjects  enrollmentSubjectRepository
	students  enrollmentStudentRepository
	periods   enrollmentPeriodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates a new enrollment service instance.
func NewEnrollmentService(
	tx txProvider,
	repo enrollmentRepository,
	subjects enrollmentSubjectRepository,
	students enrollmentStudentRepository,
	periods enrollmentPeriodRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		tx:        tx,
		repo:      repo,
		subjects:  subjects,
		students:  students,
		periods:   periods,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated enrollment details.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
	}
	return enrollments, pagination, nil
}

// Get returns one enrollment with student, subject and period names.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	enrollment, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// Enroll allocates one seat for the student in the subject for the given
// period. Preconditions are re-read under the transaction: the student must
// be active, the period must be active, the triple must be new, and the
// subject must have an available seat at the moment of the decrement.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	student, err := s.students.FindByIDTx(ctx, tx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "student not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		return nil, err
	}
	if !student.IsActive {
		err = appErrors.Clone(appErrors.ErrPreconditionFailed, "student is inactive")
		return nil, err
	}

	period, err := s.periods.FindByIDTx(ctx, tx, req.AcademicPeriodID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "academic period not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic period")
		return nil, err
	}
	if !period.IsActive {
		err = appErrors.Clone(appErrors.ErrPreconditionFailed, "academic period is not active")
		return nil, err
	}

	// Locking the subject row serialises concurrent enrollments on the same
	// subject and pins the quota we are about to consume.
	subject, err := s.subjects.LockByID(ctx, tx, req.SubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock subject")
		return nil, err
	}

	var exists bool
	exists, err = s.repo.Exists(ctx, tx, req.StudentID, req.SubjectID, req.AcademicPeriodID, "")
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment uniqueness")
		return nil, err
	}
	if exists {
		err = appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in subject for period")
		return nil, err
	}

	if subject.AvailableQuota <= 0 {
		err = appErrors.Clone(appErrors.ErrQuotaExhausted, "subject has no available quota")
		return nil, err
	}

	var decremented bool
	decremented, err = s.subjects.DecrementQuota(ctx, tx, req.SubjectID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decrement quota")
		return nil, err
	}
	if !decremented {
		err = appErrors.Clone(appErrors.ErrQuotaExhausted, "subject has no available quota")
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID:        req.StudentID,
		SubjectID:        req.SubjectID,
		AcademicPeriodID: req.AcademicPeriodID,
	}
	if err = s.repo.Insert(ctx, tx, enrollment); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit enrollment")
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("student_id", enrollment.StudentID),
		zap.String("subject_id", enrollment.SubjectID),
	)
	return enrollment, nil
}

// Reassign moves an enrollment to a different subject: one seat is released
// on the old subject and one consumed on the new, in the same transaction.
// Subjects are locked in ID order so two opposing reassignments cannot
// deadlock. The student and period of the original enrollment are trusted;
// only the target subject is re-validated.
func (s *EnrollmentService) Reassign(ctx context.Context, id string, req ReassignRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		return nil, err
	}

	if enrollment.SubjectID == req.SubjectID {
		// Nothing to move; release the row lock and report the current state.
		if err = tx.Commit(); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit reassignment")
			return nil, err
		}
		return enrollment, nil
	}

	first, second := enrollment.SubjectID, req.SubjectID
	if second < first {
		first, second = second, first
	}

	var target *models.Subject
	for _, subjectID := range []string{first, second} {
		var locked *models.Subject
		locked, err = s.subjects.LockByID(ctx, tx, subjectID)
		if err != nil {
			if err == sql.ErrNoRows {
				if subjectID == req.SubjectID {
					err = appErrors.Clone(appErrors.ErrNotFound, "target subject not found")
				} else {
					err = appErrors.Clone(appErrors.ErrNotFound, "subject not found")
				}
				return nil, err
			}
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock subject")
			return nil, err
		}
		if locked.ID == req.SubjectID {
			target = locked
		}
	}

	var exists bool
	exists, err = s.repo.Exists(ctx, tx, enrollment.StudentID, req.SubjectID, enrollment.AcademicPeriodID, enrollment.ID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment uniqueness")
		return nil, err
	}
	if exists {
		err = appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in target subject for period")
		return nil, err
	}

	if target.AvailableQuota <= 0 {
		err = appErrors.Clone(appErrors.ErrQuotaExhausted, "target subject has no available quota")
		return nil, err
	}

	var decremented bool
	decremented, err = s.subjects.DecrementQuota(ctx, tx, req.SubjectID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decrement quota")
		return nil, err
	}
	if !decremented {
		err = appErrors.Clone(appErrors.ErrQuotaExhausted, "target subject has no available quota")
		return nil, err
	}

	if err = s.subjects.IncrementQuota(ctx, tx, enrollment.SubjectID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release quota")
		return nil, err
	}

	if err = s.repo.UpdateSubject(ctx, tx, enrollment.ID, req.SubjectID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit reassignment")
		return nil, err
	}

	previousSubjectID := enrollment.SubjectID
	enrollment.SubjectID = req.SubjectID

	s.logger.Info("enrollment reassigned",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("from_subject_id", previousSubjectID),
		zap.String("to_subject_id", req.SubjectID),
	)
	return enrollment, nil
}

// Withdraw deletes the enrollment and releases its seat atomically.
func (s *EnrollmentService) Withdraw(ctx context.Context, id string) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			return err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		return err
	}

	if _, err = s.subjects.LockByID(ctx, tx, enrollment.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			return err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock subject")
		return err
	}

	if err = s.repo.Delete(ctx, tx, enrollment.ID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
		return err
	}

	if err = s.subjects.IncrementQuota(ctx, tx, enrollment.SubjectID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release quota")
		return err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit withdrawal")
		return err
	}

	s.logger.Info("enrollment withdrawn",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("subject_id", enrollment.SubjectID),
	)
	return nil
}
