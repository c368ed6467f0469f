package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownTaskKind is returned when a task carries a type outside the known kinds.
	ErrUnknownTaskKind = errors.New("unknown task kind")

	// ErrTaskDetailsMissing is returned when encoding a task without details.
	ErrTaskDetailsMissing = errors.New("task details missing")
)

// TaskKind discriminates the variants of TemplateTask.
type TaskKind string

// Task kinds.
const (
	KindTask            TaskKind = "Task"
	KindRecurringTask   TaskKind = "Recurring Task"
	KindSubProject      TaskKind = "Sub-Project"
	KindLearningModule  TaskKind = "Learning Module"
	KindFileRequirement TaskKind = "File Requirement"
	KindDiscussion      TaskKind = "Discussion"
)

// DueDateUnit is the unit of a relative due date.
type DueDateUnit string

// Due date units.
const (
	Days   DueDateUnit = "Days"
	Weeks  DueDateUnit = "Weeks"
	Months DueDateUnit = "Months"
)

// DueDateDirection says whether a relative due date lies before or after its reference.
type DueDateDirection string

// Due date directions.
const (
	Before DueDateDirection = "Before"
	After  DueDateDirection = "After"
)

// DueDateRef is the reference point of a relative due date.
type DueDateRef string

// Due date reference points.
const (
	RefProjectStart           DueDateRef = "Project Start"
	RefProjectEnd             DueDateRef = "Project End"
	RefPreviousStepCompletion DueDateRef = "Previous Step Completion"
)

// TaskAssignment names who a task is for: positions, users and template placeholders.
type TaskAssignment struct {
	RoleIDs        []string `json:"roleIds"`
	UserIDs        []string `json:"userIds"`
	PlaceholderIDs []string `json:"placeholderIds"`
}

// IsEmpty reports whether nobody is assigned.
func (a TaskAssignment) IsEmpty() bool {
	return len(a.RoleIDs) == 0 && len(a.UserIDs) == 0 && len(a.PlaceholderIDs) == 0
}

// Clone returns a deep copy of the assignment.
func (a TaskAssignment) Clone() TaskAssignment {
	return TaskAssignment{
		RoleIDs:        slices.Clone(a.RoleIDs),
		UserIDs:        slices.Clone(a.UserIDs),
		PlaceholderIDs: slices.Clone(a.PlaceholderIDs),
	}
}

// RelativeDueDate is a due date expressed relative to a project reference point.
type RelativeDueDate struct {
	Value     int              `json:"value" validate:"min=0"`
	Unit      DueDateUnit      `json:"unit"`
	Direction DueDateDirection `json:"direction"`
	Ref       DueDateRef       `json:"ref"`
}

// RecurrenceRule describes when a recurring task or project repeats.
type RecurrenceRule struct {
	// Freq is one of Daily, Weekly, Monthly, Quarterly, Annually.
	Freq        string   `json:"freq"`
	DaysOfWeek  []string `json:"daysOfWeek,omitempty"`
	DayOfMonth  int      `json:"dayOfMonth,omitempty"`
	MonthOfYear int      `json:"monthOfYear,omitempty"`
	DayOfWeek   int      `json:"dayOfWeek,omitempty"`
	WeekOfMonth int      `json:"weekOfMonth,omitempty"`
	// Time is the local time of day, "HH:MM".
	Time string `json:"time"`
}

// Clone returns a deep copy of the rule.
func (r RecurrenceRule) Clone() RecurrenceRule {
	out := r
	out.DaysOfWeek = slices.Clone(r.DaysOfWeek)

	return out
}

// TaskDetails is the kind specific payload of a TemplateTask.
// The set of implementations is closed.
type TaskDetails interface {
	Kind() TaskKind
	cloneDetails() TaskDetails
}

// StandardTask is a plain to-do.
type StandardTask struct {
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
}

// RecurringTask repeats while the project is open.
type RecurringTask struct {
	Description string         `json:"description"`
	Recurrence  RecurrenceRule `json:"recurrence"`
}

// SubProjectTask spawns another project template.
type SubProjectTask struct {
	SubProjectTemplateID string `json:"subProjectTemplateId"`
	// Trigger is Manual or Automatic.
	Trigger string `json:"trigger"`
}

// LearningModuleTask is completed by finishing university courses.
type LearningModuleTask struct {
	LMSCourseIDs []string `json:"lmsCourseIds"`
	// Requirement is Required or Recommended.
	Requirement string `json:"requirement"`
}

// FileRequirementTask asks for an uploaded document.
type FileRequirementTask struct {
	Description      string `json:"description"`
	RequiresApproval bool   `json:"requiresApproval"`
}

// DiscussionTask opens a discussion thread.
type DiscussionTask struct {
	Prompt string `json:"prompt"`
}

func (StandardTask) Kind() TaskKind        { return KindTask }
func (RecurringTask) Kind() TaskKind       { return KindRecurringTask }
func (SubProjectTask) Kind() TaskKind      { return KindSubProject }
func (LearningModuleTask) Kind() TaskKind  { return KindLearningModule }
func (FileRequirementTask) Kind() TaskKind { return KindFileRequirement }
func (DiscussionTask) Kind() TaskKind      { return KindDiscussion }

func (d StandardTask) cloneDetails() TaskDetails {
	d.Dependencies = slices.Clone(d.Dependencies)
	return d
}

func (d RecurringTask) cloneDetails() TaskDetails {
	d.Recurrence = d.Recurrence.Clone()
	return d
}

func (d SubProjectTask) cloneDetails() TaskDetails { return d }

func (d LearningModuleTask) cloneDetails() TaskDetails {
	d.LMSCourseIDs = slices.Clone(d.LMSCourseIDs)
	return d
}

func (d FileRequirementTask) cloneDetails() TaskDetails { return d }

func (d DiscussionTask) cloneDetails() TaskDetails { return d }

// TemplateTask is one step of a project template.
type TemplateTask struct {
	ID              string          `json:"id" validate:"required"`
	Title           string          `json:"title" validate:"required"`
	DisplayOrder    int             `json:"displayOrder"`
	Assignment      TaskAssignment  `json:"assignment"`
	DueDate         RelativeDueDate `json:"dueDate"`
	AttachmentCount int             `json:"attachmentCount"`
	CommentCount    int             `json:"commentCount"`
	SOPLink         string          `json:"sopLink,omitempty"`
	Details         TaskDetails     `json:"details"`
}

// Kind returns the task kind, empty when details are missing.
func (t TemplateTask) Kind() TaskKind {
	if t.Details == nil {
		return ""
	}

	return t.Details.Kind()
}

// Clone returns a deep copy of the task.
func (t TemplateTask) Clone() TemplateTask {
	out := t
	out.Assignment = t.Assignment.Clone()

	if t.Details != nil {
		out.Details = t.Details.cloneDetails()
	}

	return out
}

type taskAlias TemplateTask

type templateTaskJSON struct {
	taskAlias
	Type    TaskKind        `json:"type"`
	Details json.RawMessage `json:"details"`
}

// MarshalJSON encodes the task with a "type" discriminator.
func (t TemplateTask) MarshalJSON() ([]byte, error) {
	if t.Details == nil {
		return nil, fmt.Errorf("task %q: %w", t.ID, ErrTaskDetailsMissing)
	}

	details, err := json.Marshal(t.Details)
	if err != nil {
		return nil, err
	}

	return json.Marshal(templateTaskJSON{
		taskAlias: taskAlias(t),
		Type:      t.Details.Kind(),
		Details:   details,
	})
}

// UnmarshalJSON decodes a task and its kind specific details.
func (t *TemplateTask) UnmarshalJSON(data []byte) error {
	var raw templateTaskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	details, err := DecodeTaskDetails(raw.Type, raw.Details)
	if err != nil {
		return fmt.Errorf("task %q: %w", raw.ID, err)
	}

	*t = TemplateTask(raw.taskAlias)
	t.Details = details

	return nil
}

// DecodeTaskDetails decodes the details payload of the given kind.
func DecodeTaskDetails(kind TaskKind, data json.RawMessage) (TaskDetails, error) {
	var details TaskDetails

	switch kind {
	case KindTask:
		details = &StandardTask{}
	case KindRecurringTask:
		details = &RecurringTask{}
	case KindSubProject:
		details = &SubProjectTask{}
	case KindLearningModule:
		details = &LearningModuleTask{}
	case KindFileRequirement:
		details = &FileRequirementTask{}
	case KindDiscussion:
		details = &DiscussionTask{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskKind, kind)
	}

	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, details); err != nil {
			return nil, err
		}
	}

	return deref(details), nil
}

func deref(d TaskDetails) TaskDetails {
	switch v := d.(type) {
	case *StandardTask:
		return *v
	case *RecurringTask:
		return *v
	case *SubProjectTask:
		return *v
	case *LearningModuleTask:
		return *v
	case *FileRequirementTask:
		return *v
	case *DiscussionTask:
		return *v
	default:
		return d
	}
}
