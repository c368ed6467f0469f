package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath prefixes every JSON endpoint.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or service var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or service is nil"
)
