// Package metrics holds the prometheus collectors of the workforce service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "atlas"

var (
	// ProjectsLaunched counts launched projects by template.
	ProjectsLaunched = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "projects_launched_total",
		Help:      "Number of projects launched, by template.",
	}, []string{"template"})

	// TasksToggled counts task toggles by resulting status.
	TasksToggled = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "tasks_toggled_total",
		Help:      "Number of task and action item toggles, by resulting status.",
	}, []string{"status"})

	// TasksAutoCompleted counts Learning Module tasks completed by course completion.
	TasksAutoCompleted = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "tasks_auto_completed_total",
		Help:      "Number of Learning Module tasks completed through course completion.",
	})

	// CertificationsIssued counts issued certifications by course.
	CertificationsIssued = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "certifications_issued_total",
		Help:      "Number of certifications issued, by course.",
	}, []string{"course"})

	// RecertificationsAssigned counts enrollments created for expiring certifications.
	RecertificationsAssigned = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "recertifications_assigned_total",
		Help:      "Number of enrollments created for expiring certifications.",
	})

	// PlaybookEntriesSet counts playbook entry changes by resulting state.
	PlaybookEntriesSet = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "playbook_entries_set_total",
		Help:      "Number of shift playbook entry changes, by resulting state.",
	}, []string{"completed"})

	// ShiftsSubmitted counts submitted shift playbooks.
	ShiftsSubmitted = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "shifts_submitted_total",
		Help:      "Number of shift playbooks submitted and closed.",
	})

	// PermissionDenials counts refused mutations by operation.
	PermissionDenials = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: namespace,
		Name:      "permission_denials_total",
		Help:      "Number of operations refused for missing authority, by operation.",
	}, []string{"operation"})
)
