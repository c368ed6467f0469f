package workforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/notify"
	"github.com/atlas-ops/atlas/internal/university"
)

func TestCompleteCourse_PropagatesToProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.launchOnboarding(t)
	f.notifier.sent = nil

	result, err := f.svc.CompleteCourse(ctx, "user-maria-garcia", "course-food-safety", "user-maria-garcia")
	require.NoError(t, err)

	assert.Equal(t, domain.EnrollmentCompleted, result.Enrollment.Status)
	assert.Equal(t, 100, result.Enrollment.Progress)
	require.NotNil(t, result.Enrollment.CompletionDate)
	assert.Equal(t, testNow, *result.Enrollment.CompletionDate)

	require.NotNil(t, result.Certification)
	require.NotNil(t, result.Certification.ExpirationDate)
	assert.Equal(t, time.Date(2025, time.July, 29, 9, 0, 0, 0, time.UTC), *result.Certification.ExpirationDate)

	assert.ElementsMatch(t, []university.TaskRef{
		{ProjectID: p.ID, TaskID: "t1-2"},
		{ProjectID: p.ID, TaskID: "t1-3"},
	}, result.CompletedTasks)

	stored, err := f.svc.ActiveProject(p.ID)
	require.NoError(t, err)

	testCases := []struct {
		taskID     string
		wantStatus domain.TaskStatus
		wantBy     string
	}{
		{taskID: "t1-1", wantStatus: domain.StatusPending},
		{taskID: "t1-2", wantStatus: domain.StatusCompleted, wantBy: "Maria Garcia"},
		{taskID: "t1-3", wantStatus: domain.StatusCompleted, wantBy: "Maria Garcia"},
	}

	for _, tc := range testCases {
		t.Run(tc.taskID, func(t *testing.T) {
			task := stored.Tasks[stored.TaskIndex(tc.taskID)]
			assert.Equal(t, tc.wantStatus, task.Status)
			assert.Equal(t, tc.wantBy, task.CompletedBy)
		})
	}

	assert.Len(t, f.svc.Enrollments("user-maria-garcia"), 1)
	assert.Len(t, f.svc.Certifications("user-maria-garcia"), 1)
	assert.Empty(t, f.svc.Certifications("user-alex-chen"))

	require.Len(t, f.repo.saves, 2, "launch and completion")
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notify.KindCertificationIssued, f.notifier.sent[0].Kind)
}

func TestCompleteCourse_Authority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CompleteCourse(ctx, "user-alex-chen", "course-food-safety", "user-maria-garcia")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.CompleteCourse(ctx, "user-admin", "course-food-safety", "user-maria-garcia")
	require.NoError(t, err)

	_, err = f.svc.CompleteCourse(ctx, "user-maria-garcia", "course-missing", "user-maria-garcia")
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = f.svc.CompleteCourse(ctx, "user-admin", "course-food-safety", "user-missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCompleteCourse_WithoutRecertification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveCourse(ctx, domain.UniversityCourse{ID: "course-welcome", Title: "Welcome"})
	require.NoError(t, err)

	enrollment, err := f.svc.Enroll(ctx, "user-maria-garcia", "course-welcome")
	require.NoError(t, err)

	result, err := f.svc.CompleteCourse(ctx, "user-maria-garcia", "course-welcome", "user-maria-garcia")
	require.NoError(t, err)

	assert.Equal(t, enrollment.ID, result.Enrollment.ID, "existing enrollment completed")
	assert.Nil(t, result.Certification)
	assert.Empty(t, result.CompletedTasks)
	assert.Empty(t, f.notifier.sent)
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Enroll(ctx, "user-maria-garcia", "course-food-safety")
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentNotStarted, first.Status)
	assert.Equal(t, testNow, first.EnrolledAt)

	again, err := f.svc.Enroll(ctx, "user-maria-garcia", "course-food-safety")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.svc.Enrollments(""), 1)

	_, err = f.svc.Enroll(ctx, "user-maria-garcia", "course-missing")
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = f.svc.Enroll(ctx, "user-missing", "course-food-safety")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCheckCertificationExpirations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soon := testNow.AddDate(0, 0, 10)
	later := testNow.AddDate(0, 6, 0)

	_, err := f.svc.SaveCertification(ctx, domain.UserCertification{
		UserID: "user-maria-garcia", CourseID: "course-food-safety",
		IssueDate: soon.AddDate(-1, 0, 0), ExpirationDate: &soon,
	})
	require.NoError(t, err)

	_, err = f.svc.SaveCertification(ctx, domain.UserCertification{
		UserID: "user-alex-chen", CourseID: "course-food-safety",
		IssueDate: later.AddDate(-1, 0, 0), ExpirationDate: &later,
	})
	require.NoError(t, err)

	plan, err := f.svc.CheckCertificationExpirations(ctx, university.DefaultWarningWindow)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	assert.Equal(t, "user-maria-garcia", plan[0].Enrollment.UserID)
	assert.Equal(t, "course-food-safety", plan[0].Enrollment.CourseID)
	assert.Equal(t, domain.EnrollmentNotStarted, plan[0].Enrollment.Status)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, notify.KindRecertificationDue, sent.Kind)
	assert.Equal(t, "Maria@Atlas.test", sent.Email)
	assert.Contains(t, sent.Body, soon.Format(time.DateOnly))

	plan, err = f.svc.CheckCertificationExpirations(ctx, university.DefaultWarningWindow)
	require.NoError(t, err)
	assert.Empty(t, plan, "already re-enrolled")
	assert.Len(t, f.svc.Enrollments("user-maria-garcia"), 1)
}

func TestCoursesAndPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	path, err := f.svc.SaveLearningPath(ctx, domain.LearningPath{
		Title: "Shift lead",
		Stages: []domain.LearningPathStage{{
			ID: "stage-1", Title: "Basics", Order: 1,
			Requirements: []domain.PathRequirement{{Type: domain.RequirementCourse, CourseID: "course-food-safety"}},
		}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, path.ID)
	assert.Len(t, f.svc.LearningPaths(), 1)

	require.NoError(t, f.svc.DeleteLearningPath(ctx, path.ID))
	require.ErrorIs(t, f.svc.DeleteLearningPath(ctx, path.ID), ErrLearningPathNotFound)

	_, err = f.svc.SaveCourse(ctx, domain.UniversityCourse{})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.svc.DeleteCourse(ctx, "course-food-safety"))
	assert.Empty(t, f.svc.Courses())

	_, err = f.svc.Course("course-food-safety")
	require.ErrorIs(t, err, ErrCourseNotFound)
}
