package workforce

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/metrics"
	"github.com/atlas-ops/atlas/internal/notify"
	"github.com/atlas-ops/atlas/internal/university"
)

// Course returns the course with the given id.
func (s *Service) Course(id string) (domain.UniversityCourse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses.get(id)
	if !ok {
		return domain.UniversityCourse{}, fmt.Errorf("%w: %q", ErrCourseNotFound, id)
	}

	return c, nil
}

// Courses lists every course.
func (s *Service) Courses() []domain.UniversityCourse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.courses.list()
}

// Enrollments lists the enrollments of a user, or of everyone when userID is empty.
func (s *Service) Enrollments(userID string) []domain.UserEnrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserEnrollment, 0)

	s.enrollments.each(func(e domain.UserEnrollment) bool {
		if userID == "" || e.UserID == userID {
			out = append(out, e.Clone())
		}

		return true
	})

	return out
}

// Certifications lists the certifications of a user, or of everyone when userID is empty.
func (s *Service) Certifications(userID string) []domain.UserCertification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserCertification, 0)

	s.certifications.each(func(c domain.UserCertification) bool {
		if userID == "" || c.UserID == userID {
			out = append(out, c.Clone())
		}

		return true
	})

	return out
}

// LearningPaths lists every learning path.
func (s *Service) LearningPaths() []domain.LearningPath {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.paths.list()
}

// SaveCourse inserts or replaces a course.
func (s *Service) SaveCourse(ctx context.Context, c domain.UniversityCourse) (domain.UniversityCourse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c = c.Clone()
	if c.ID == "" {
		c.ID = s.newID()
	}

	if err := s.validateStruct(c); err != nil {
		return domain.UniversityCourse{}, err
	}

	var t tx
	t.save(KindCourse, c.ID, c)

	if err := s.commit(ctx, &t); err != nil {
		return domain.UniversityCourse{}, err
	}

	log.Info().Str("course", c.ID).Str("title", c.Title).Msg("course saved")

	return c, nil
}

// DeleteCourse removes a course. Enrollments and certifications are kept as history.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.courses.has(id) {
		return fmt.Errorf("%w: %q", ErrCourseNotFound, id)
	}

	var t tx
	t.delete(KindCourse, id)

	return s.commit(ctx, &t)
}

// SaveLearningPath inserts or replaces a learning path.
func (s *Service) SaveLearningPath(ctx context.Context, p domain.LearningPath) (domain.LearningPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = p.Clone()
	if p.ID == "" {
		p.ID = s.newID()
	}

	if err := s.validateStruct(p); err != nil {
		return domain.LearningPath{}, err
	}

	var t tx
	t.save(KindLearningPath, p.ID, p)

	if err := s.commit(ctx, &t); err != nil {
		return domain.LearningPath{}, err
	}

	log.Info().Str("path", p.ID).Str("title", p.Title).Msg("learning path saved")

	return p, nil
}

// DeleteLearningPath removes a learning path.
func (s *Service) DeleteLearningPath(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paths.has(id) {
		return fmt.Errorf("%w: %q", ErrLearningPathNotFound, id)
	}

	var t tx
	t.delete(KindLearningPath, id)

	return s.commit(ctx, &t)
}

// SaveEnrollment inserts or replaces an enrollment as is.
func (s *Service) SaveEnrollment(ctx context.Context, e domain.UserEnrollment) (domain.UserEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = e.Clone()
	if e.ID == "" {
		e.ID = s.newID()
	}

	if e.Status == "" {
		e.Status = domain.EnrollmentNotStarted
	}

	if err := s.validateStruct(e); err != nil {
		return domain.UserEnrollment{}, err
	}

	var t tx
	t.save(KindEnrollment, e.ID, e)

	if err := s.commit(ctx, &t); err != nil {
		return domain.UserEnrollment{}, err
	}

	return e, nil
}

// SaveCertification inserts or replaces a certification as is.
func (s *Service) SaveCertification(ctx context.Context, c domain.UserCertification) (domain.UserCertification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c = c.Clone()
	if c.ID == "" {
		c.ID = s.newID()
	}

	if err := s.validateStruct(c); err != nil {
		return domain.UserCertification{}, err
	}

	var t tx
	t.save(KindCertification, c.ID, c)

	if err := s.commit(ctx, &t); err != nil {
		return domain.UserCertification{}, err
	}

	return c, nil
}

// Enroll enrolls the user in a course. An open enrollment is returned as is.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (domain.UserEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.user(userID); err != nil {
		return domain.UserEnrollment{}, err
	}

	if !s.courses.has(courseID) {
		return domain.UserEnrollment{}, fmt.Errorf("%w: %q", ErrCourseNotFound, courseID)
	}

	var open *domain.UserEnrollment

	s.enrollments.each(func(e domain.UserEnrollment) bool {
		if e.UserID == userID && e.CourseID == courseID && e.Open() {
			c := e.Clone()
			open = &c

			return false
		}

		return true
	})

	if open != nil {
		return *open, nil
	}

	e := domain.UserEnrollment{
		ID:         s.newID(),
		UserID:     userID,
		CourseID:   courseID,
		Status:     domain.EnrollmentNotStarted,
		EnrolledAt: s.now(),
	}

	var t tx
	t.save(KindEnrollment, e.ID, e)

	if err := s.commit(ctx, &t); err != nil {
		return domain.UserEnrollment{}, err
	}

	log.Info().Str("user", userID).Str("course", courseID).Msg("user enrolled")

	return e, nil
}

// CompletionResult reports the effects of a course completion.
type CompletionResult struct {
	Enrollment     domain.UserEnrollment     `json:"enrollment"`
	Certification  *domain.UserCertification `json:"certification,omitempty"`
	CompletedTasks []university.TaskRef      `json:"completedTasks"`
}

// CompleteCourse records that the user finished the course: the enrollment
// is completed, a certification is issued when the course has a
// recertification rule and the matching Learning Module tasks of every active
// project are completed. Users complete their own courses; administrators may
// complete them for anyone.
func (s *Service) CompleteCourse(ctx context.Context, actorID, courseID, userID string) (CompletionResult, error) {
	result, outbox, err := s.completeCourse(ctx, actorID, courseID, userID)
	if err != nil {
		return CompletionResult{}, err
	}

	s.send(ctx, outbox)

	return result, nil
}

func (s *Service) completeCourse(ctx context.Context, actorID, courseID, userID string) (CompletionResult, []notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.user(actorID)
	if err != nil {
		return CompletionResult{}, nil, err
	}

	if actorID != userID && !auth.IsAdmin(actor) {
		metrics.PermissionDenials.WithLabelValues("complete_course").Inc()

		return CompletionResult{}, nil, fmt.Errorf("%w: %q may not complete courses for %q", ErrUnauthorized, actorID, userID)
	}

	u, err := s.user(userID)
	if err != nil {
		return CompletionResult{}, nil, err
	}

	course, ok := s.courses.get(courseID)
	if !ok {
		return CompletionResult{}, nil, fmt.Errorf("%w: %q", ErrCourseNotFound, courseID)
	}

	now := s.now()

	var t tx

	enrollments, i := university.UpsertCompletion(s.enrollments.list(), userID, courseID, now, s.newID)
	result := CompletionResult{Enrollment: enrollments[i]}
	t.save(KindEnrollment, result.Enrollment.ID, result.Enrollment)

	cert, issued, err := university.IssueCertification(course, userID, now, s.newID)
	if err != nil {
		return CompletionResult{}, nil, invalid(err)
	}

	if issued {
		result.Certification = &cert
		t.save(KindCertification, cert.ID, cert)
	}

	projects := s.projects.list()
	result.CompletedTasks = university.PropagateCompletion(projects, courseID, u, now, s.policy)

	touched := make(map[string]bool, len(result.CompletedTasks))
	for _, ref := range result.CompletedTasks {
		touched[ref.ProjectID] = true
	}

	for _, p := range projects {
		if touched[p.ID] {
			t.save(KindActiveProject, p.ID, p)
		}
	}

	if err = s.commit(ctx, &t); err != nil {
		return CompletionResult{}, nil, err
	}

	metrics.TasksAutoCompleted.Add(float64(len(result.CompletedTasks)))
	log.Info().
		Str("user", userID).
		Str("course", courseID).
		Bool("certified", issued).
		Int("tasks", len(result.CompletedTasks)).
		Msg("course completed")

	var outbox []notify.Notification

	if issued {
		metrics.CertificationsIssued.WithLabelValues(courseID).Inc()

		outbox = append(outbox, notify.Notification{
			Kind:    notify.KindCertificationIssued,
			UserID:  u.ID,
			Email:   u.Email,
			Subject: "Certified: " + course.Title,
			Body:    fmt.Sprintf("Your certification for %q is valid until %s.", course.Title, cert.ExpirationDate.Format(time.DateOnly)),
			At:      now,
		})
	}

	return result, outbox, nil
}

// CheckCertificationExpirations enrolls every user whose latest certification
// expires within window in the course again and notifies them. Users already
// re-enrolled are skipped.
func (s *Service) CheckCertificationExpirations(ctx context.Context, window time.Duration) ([]university.Recertification, error) {
	plan, outbox, err := s.planRecertifications(ctx, window)
	if err != nil {
		return nil, err
	}

	s.send(ctx, outbox)

	return plan, nil
}

func (s *Service) planRecertifications(ctx context.Context, window time.Duration) ([]university.Recertification, []notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiring := university.Expiring(university.Latest(s.certifications.list()), now, window)
	plan := university.PlanRecertifications(expiring, s.courses.list(), s.enrollments.list(), now, s.newID)

	var t tx
	for _, r := range plan {
		t.save(KindEnrollment, r.Enrollment.ID, r.Enrollment)
	}

	if err := s.commit(ctx, &t); err != nil {
		return nil, nil, err
	}

	outbox := make([]notify.Notification, 0, len(plan))

	for _, r := range plan {
		n := notify.Notification{
			Kind:    notify.KindRecertificationDue,
			UserID:  r.Enrollment.UserID,
			Subject: "Recertification due: " + r.Course.Title,
			Body: fmt.Sprintf("Your certification for %q expires on %s. You have been enrolled again.",
				r.Course.Title, r.Certification.ExpirationDate.Format(time.DateOnly)),
			At: now,
		}

		if u, ok := s.users.get(r.Enrollment.UserID); ok {
			n.Email = u.Email
		}

		outbox = append(outbox, n)
	}

	metrics.RecertificationsAssigned.Add(float64(len(plan)))
	log.Info().Int("expiring", len(expiring)).Int("enrolled", len(plan)).Msg("certification expirations checked")

	return plan, outbox, nil
}
