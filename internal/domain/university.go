package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// IntervalUnit is the unit of a recertification interval.
type IntervalUnit string

// Interval units.
const (
	UnitDay   IntervalUnit = "day"
	UnitWeek  IntervalUnit = "week"
	UnitMonth IntervalUnit = "month"
	UnitYear  IntervalUnit = "year"
)

// RecertificationRule says how long a certification stays valid.
type RecertificationRule struct {
	Interval int          `json:"interval" validate:"min=1"`
	Unit     IntervalUnit `json:"unit" validate:"oneof=day week month year"`
	// Method is refresher_exam or full_course.
	Method string `json:"method" validate:"oneof=refresher_exam full_course"`
}

// CourseModule is one lesson of a course. Content depends on ModuleType.
type CourseModule struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	ModuleType string          `json:"moduleType"`
	Order      int             `json:"order"`
	Content    json.RawMessage `json:"content,omitempty"`
}

// UniversityCourse is a training course.
type UniversityCourse struct {
	ID                  string               `json:"id" validate:"required"`
	Title               string               `json:"title" validate:"required"`
	Description         string               `json:"description"`
	AssetTypeRelevance  []string             `json:"assetTypeRelevance"`
	RecertificationRule *RecertificationRule `json:"recertificationRule,omitempty"`
	Modules             []CourseModule       `json:"modules"`
}

// Clone returns a deep copy of the course.
func (c UniversityCourse) Clone() UniversityCourse {
	out := c
	out.AssetTypeRelevance = slices.Clone(c.AssetTypeRelevance)

	if c.RecertificationRule != nil {
		rule := *c.RecertificationRule
		out.RecertificationRule = &rule
	}

	if c.Modules != nil {
		out.Modules = make([]CourseModule, len(c.Modules))
		for i, m := range c.Modules {
			m.Content = bytes.Clone(m.Content)
			out.Modules[i] = m
		}
	}

	return out
}

// EnrollmentStatus is the progress state of an enrollment.
type EnrollmentStatus string

// Enrollment states.
const (
	EnrollmentNotStarted EnrollmentStatus = "Not Started"
	EnrollmentInProgress EnrollmentStatus = "In Progress"
	EnrollmentCompleted  EnrollmentStatus = "Completed"
)

// UserEnrollment tracks a user's progress through a course.
type UserEnrollment struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId" validate:"required"`
	CourseID       string           `json:"courseId" validate:"required"`
	Status         EnrollmentStatus `json:"status"`
	CompletionDate *time.Time       `json:"completionDate,omitempty"`
	Score          *int             `json:"score,omitempty"`
	Progress       int              `json:"progress" validate:"min=0,max=100"`
	EnrolledAt     time.Time        `json:"enrolledAt"`
}

// Open reports whether the enrollment is not yet completed.
func (e UserEnrollment) Open() bool {
	return e.Status == EnrollmentNotStarted || e.Status == EnrollmentInProgress
}

// Clone returns a deep copy of the enrollment.
func (e UserEnrollment) Clone() UserEnrollment {
	out := e

	if e.CompletionDate != nil {
		at := *e.CompletionDate
		out.CompletionDate = &at
	}

	if e.Score != nil {
		score := *e.Score
		out.Score = &score
	}

	return out
}

// UserCertification is proof a user completed a course.
type UserCertification struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId" validate:"required"`
	CourseID       string     `json:"courseId" validate:"required"`
	IssueDate      time.Time  `json:"issueDate"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// Clone returns a deep copy of the certification.
func (c UserCertification) Clone() UserCertification {
	out := c

	if c.ExpirationDate != nil {
		at := *c.ExpirationDate
		out.ExpirationDate = &at
	}

	return out
}

// PathRequirementType discriminates learning path requirements.
type PathRequirementType string

// Path requirement types.
const (
	RequirementCourse        PathRequirementType = "course"
	RequirementProject       PathRequirementType = "project"
	RequirementManualSignOff PathRequirementType = "manual_sign_off"
)

// PathRequirement is one requirement of a learning path stage.
type PathRequirement struct {
	Type              PathRequirementType `json:"type" validate:"oneof=course project manual_sign_off"`
	CourseID          string              `json:"courseId,omitempty"`
	ProjectTemplateID string              `json:"projectTemplateId,omitempty"`
	Description       string              `json:"description,omitempty"`
}

// LearningPathStage groups requirements of a learning path.
type LearningPathStage struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Order        int               `json:"order"`
	Requirements []PathRequirement `json:"requirements" validate:"dive"`
}

// UnlockPrerequisites gate access to a learning path.
type UnlockPrerequisites struct {
	RequiredPathIDs          []string `json:"requiredPathIds,omitempty"`
	RequiredCertificationIDs []string `json:"requiredCertificationIds,omitempty"`
}

// LearningPath is a staged career track.
type LearningPath struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title" validate:"required"`
	Description         string               `json:"description"`
	UnlockPrerequisites *UnlockPrerequisites `json:"unlockPrerequisites,omitempty"`
	Stages              []LearningPathStage  `json:"stages" validate:"dive"`
}

// Clone returns a deep copy of the path.
func (p LearningPath) Clone() LearningPath {
	out := p

	if p.UnlockPrerequisites != nil {
		out.UnlockPrerequisites = &UnlockPrerequisites{
			RequiredPathIDs:          slices.Clone(p.UnlockPrerequisites.RequiredPathIDs),
			RequiredCertificationIDs: slices.Clone(p.UnlockPrerequisites.RequiredCertificationIDs),
		}
	}

	if p.Stages != nil {
		out.Stages = make([]LearningPathStage, len(p.Stages))
		for i, s := range p.Stages {
			s.Requirements = slices.Clone(s.Requirements)
			out.Stages[i] = s
		}
	}

	return out
}
