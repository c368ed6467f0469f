package university

import (
	"time"

	"github.com/atlas-ops/atlas/internal/domain"
)

// DefaultWarningWindow is how far ahead expiring certifications are reported.
const DefaultWarningWindow = 30 * 24 * time.Hour

// Expiring returns the certifications that expire within window after now.
// Certifications already expired or without an expiration are skipped.
func Expiring(certs []domain.UserCertification, now time.Time, window time.Duration) []domain.UserCertification {
	limit := now.Add(window)
	out := make([]domain.UserCertification, 0)

	for _, c := range certs {
		if c.ExpirationDate == nil {
			continue
		}

		if c.ExpirationDate.Before(now) || c.ExpirationDate.After(limit) {
			continue
		}

		out = append(out, c.Clone())
	}

	return out
}

// Latest keeps the most recently issued certification of every user and
// course pair, in first-seen order of the pairs.
func Latest(certs []domain.UserCertification) []domain.UserCertification {
	type pair struct{ user, course string }

	index := make(map[pair]int, len(certs))
	out := make([]domain.UserCertification, 0, len(certs))

	for _, c := range certs {
		key := pair{c.UserID, c.CourseID}

		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, c.Clone())

			continue
		}

		if c.IssueDate.After(out[i].IssueDate) {
			out[i] = c.Clone()
		}
	}

	return out
}

// Recertification is a planned re-enrollment for an expiring certification.
type Recertification struct {
	Certification domain.UserCertification `json:"certification"`
	Course        domain.UniversityCourse  `json:"course"`
	Enrollment    domain.UserEnrollment    `json:"enrollment"`
}

// PlanRecertifications proposes a Not Started enrollment for every expiring
// certification whose course still has a recertification rule. Users that
// already have an open enrollment started after the certificate was issued
// are skipped, so running the plan twice proposes nothing new.
func PlanRecertifications(
	expiring []domain.UserCertification,
	courses []domain.UniversityCourse,
	enrollments []domain.UserEnrollment,
	now time.Time,
	newID func() string,
) []Recertification {
	byID := make(map[string]domain.UniversityCourse, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	planned := make(map[[2]string]bool)
	out := make([]Recertification, 0)

	for _, cert := range expiring {
		course, ok := byID[cert.CourseID]
		if !ok || course.RecertificationRule == nil {
			continue
		}

		key := [2]string{cert.UserID, cert.CourseID}
		if planned[key] || reenrolled(enrollments, cert) {
			continue
		}

		planned[key] = true
		out = append(out, Recertification{
			Certification: cert.Clone(),
			Course:        course.Clone(),
			Enrollment: domain.UserEnrollment{
				ID:         newID(),
				UserID:     cert.UserID,
				CourseID:   cert.CourseID,
				Status:     domain.EnrollmentNotStarted,
				EnrolledAt: now,
			},
		})
	}

	return out
}

func reenrolled(enrollments []domain.UserEnrollment, cert domain.UserCertification) bool {
	for _, e := range enrollments {
		if e.UserID == cert.UserID && e.CourseID == cert.CourseID && e.Open() && e.EnrolledAt.After(cert.IssueDate) {
			return true
		}
	}

	return false
}
