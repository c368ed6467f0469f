// Package university records course completions and carries them into the
// rest of the console.
//
// Completing a course updates the user's enrollment, issues a certification
// when the course has a recertification rule and auto-completes the Learning
// Module tasks of active projects that require the course.
package university

import (
	"slices"
	"time"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/duedate"
	"github.com/atlas-ops/atlas/internal/tracker"
)

const fullProgress = 100

// UpsertCompletion marks the user's enrollment in the course Completed.
// An open enrollment is preferred over a completed one; when the user was
// never enrolled a new enrollment is appended. The index of the touched
// enrollment is returned along with the updated slice.
func UpsertCompletion(
	enrollments []domain.UserEnrollment,
	userID, courseID string,
	now time.Time,
	newID func() string,
) ([]domain.UserEnrollment, int) {
	i := slices.IndexFunc(enrollments, func(e domain.UserEnrollment) bool {
		return e.UserID == userID && e.CourseID == courseID && e.Open()
	})

	if i < 0 {
		i = slices.IndexFunc(enrollments, func(e domain.UserEnrollment) bool {
			return e.UserID == userID && e.CourseID == courseID
		})
	}

	if i < 0 {
		enrollments = append(enrollments, domain.UserEnrollment{
			ID:         newID(),
			UserID:     userID,
			CourseID:   courseID,
			EnrolledAt: now,
		})
		i = len(enrollments) - 1
	}

	at := now
	e := &enrollments[i]
	e.Status = domain.EnrollmentCompleted
	e.Progress = fullProgress
	e.CompletionDate = &at

	return enrollments, i
}

// IssueCertification certifies the user for the course. Courses without a
// recertification rule issue nothing.
func IssueCertification(course domain.UniversityCourse, userID string, now time.Time, newID func() string) (domain.UserCertification, bool, error) {
	rule := course.RecertificationRule
	if rule == nil {
		return domain.UserCertification{}, false, nil
	}

	expires, err := duedate.AddInterval(now, rule.Interval, rule.Unit)
	if err != nil {
		return domain.UserCertification{}, false, err
	}

	return domain.UserCertification{
		ID:             newID(),
		UserID:         userID,
		CourseID:       course.ID,
		IssueDate:      now,
		ExpirationDate: &expires,
	}, true, nil
}

// TaskRef names one task of one project.
type TaskRef struct {
	ProjectID string `json:"projectId"`
	TaskID    string `json:"taskId"`
}

// PropagateCompletion completes every Learning Module task that requires the
// course and is assigned to the user according to policy. Tasks already
// completed are left alone. Projects are updated in place and the completed
// tasks are returned.
func PropagateCompletion(
	projects []domain.ActiveProject,
	courseID string,
	user domain.User,
	now time.Time,
	policy AssigneePolicy,
) []TaskRef {
	if policy == nil {
		policy = PositionMatch
	}

	refs := make([]TaskRef, 0)

	for pi := range projects {
		project := &projects[pi]

		for ti := range project.Tasks {
			task := &project.Tasks[ti]

			module, ok := task.Task.Details.(domain.LearningModuleTask)
			if !ok || !slices.Contains(module.LMSCourseIDs, courseID) {
				continue
			}

			if !policy(user, *project, *task) {
				continue
			}

			if tracker.Complete(task, user, now) {
				refs = append(refs, TaskRef{ProjectID: project.ID, TaskID: task.Task.ID})
			}
		}
	}

	return refs
}
