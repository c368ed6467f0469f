package domain

import (
	"slices"
	"time"
)

// AssetAssignmentRuleType says how many assets a launch touches.
type AssetAssignmentRuleType string

// Asset assignment rules.
const (
	RulePrimaryOnly     AssetAssignmentRuleType = "primary_only"
	RulePrimaryDistrict AssetAssignmentRuleType = "primary_district"
	RuleManualList      AssetAssignmentRuleType = "manual_list"
)

// TemplateStatus is the state of a recurring template.
type TemplateStatus string

// Recurring template states.
const (
	TemplateActive TemplateStatus = "Active"
	TemplatePaused TemplateStatus = "Paused"
)

// DefinedPlaceholder is a named role of a template, answered at launch time.
type DefinedPlaceholder struct {
	ID                string         `json:"id" validate:"required"`
	Name              string         `json:"name" validate:"required"`
	Description       string         `json:"description"`
	DefaultAssignment TaskAssignment `json:"defaultAssignment"`
}

// AssetAssignmentRule controls the assets a launch applies to.
type AssetAssignmentRule struct {
	Type     AssetAssignmentRuleType `json:"type"`
	AssetIDs []string                `json:"assetIds,omitempty"`
}

// AccessPermissions lists who may launch a template.
type AccessPermissions struct {
	UserIDs     []string `json:"userIds"`
	PositionIDs []string `json:"positionIds"`
}

// ProjectTemplate is a reusable project blueprint.
type ProjectTemplate struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name" validate:"required"`
	Description           string   `json:"description"`
	AppliesToAssetTypeIDs []string `json:"appliesToAssetTypeIds"`
	// AppliesToAssetIDs, when non-empty, is an exclusive allow-list.
	AppliesToAssetIDs   []string             `json:"appliesToAssetIds,omitempty"`
	DefinedPlaceholders []DefinedPlaceholder `json:"definedPlaceholders,omitempty" validate:"dive"`
	Tasks               []TemplateTask       `json:"tasks" validate:"dive"`
	LastUpdated         time.Time            `json:"lastUpdated"`
	AssetAssignmentRule AssetAssignmentRule  `json:"assetAssignmentRule"`
	AccessPermissions   AccessPermissions    `json:"accessPermissions"`
}

// Placeholder looks up a defined placeholder by id.
func (t ProjectTemplate) Placeholder(id string) (DefinedPlaceholder, bool) {
	for _, p := range t.DefinedPlaceholders {
		if p.ID == id {
			return p, true
		}
	}

	return DefinedPlaceholder{}, false
}

// Clone returns a deep copy of the template.
func (t ProjectTemplate) Clone() ProjectTemplate {
	out := t
	out.AppliesToAssetTypeIDs = slices.Clone(t.AppliesToAssetTypeIDs)
	out.AppliesToAssetIDs = slices.Clone(t.AppliesToAssetIDs)
	out.AssetAssignmentRule.AssetIDs = slices.Clone(t.AssetAssignmentRule.AssetIDs)
	out.AccessPermissions = AccessPermissions{
		UserIDs:     slices.Clone(t.AccessPermissions.UserIDs),
		PositionIDs: slices.Clone(t.AccessPermissions.PositionIDs),
	}

	if t.DefinedPlaceholders != nil {
		out.DefinedPlaceholders = make([]DefinedPlaceholder, len(t.DefinedPlaceholders))
		for i, p := range t.DefinedPlaceholders {
			p.DefaultAssignment = p.DefaultAssignment.Clone()
			out.DefinedPlaceholders[i] = p
		}
	}

	if t.Tasks != nil {
		out.Tasks = make([]TemplateTask, len(t.Tasks))
		for i, task := range t.Tasks {
			out.Tasks[i] = task.Clone()
		}
	}

	return out
}

// RecurringTaskTemplate is a rule describing a repeating standalone task.
// Rules are stored only; nothing materializes instances on a clock.
type RecurringTaskTemplate struct {
	ID               string         `json:"id"`
	Title            string         `json:"title" validate:"required"`
	Description      string         `json:"description,omitempty"`
	RecurrenceRule   RecurrenceRule `json:"recurrenceRule"`
	AppliesToAssetID string         `json:"appliesToAssetId" validate:"required"`
	Assignment       TaskAssignment `json:"assignment"`
	Status           TemplateStatus `json:"status"`
}

// Clone returns a deep copy of the template.
func (t RecurringTaskTemplate) Clone() RecurringTaskTemplate {
	out := t
	out.RecurrenceRule = t.RecurrenceRule.Clone()
	out.Assignment = t.Assignment.Clone()

	return out
}

// RecurringProjectTemplate is a rule describing a repeating project launch.
type RecurringProjectTemplate struct {
	ID                    string         `json:"id"`
	SeriesName            string         `json:"seriesName" validate:"required"`
	BaseProjectTemplateID string         `json:"baseProjectTemplateId" validate:"required"`
	RecurrenceRule        RecurrenceRule `json:"recurrenceRule"`
	DefaultLead           TaskAssignment `json:"defaultLead"`
	Status                TemplateStatus `json:"status"`
}

// Clone returns a deep copy of the template.
func (t RecurringProjectTemplate) Clone() RecurringProjectTemplate {
	out := t
	out.RecurrenceRule = t.RecurrenceRule.Clone()
	out.DefaultLead = t.DefaultLead.Clone()

	return out
}
