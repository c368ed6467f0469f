// Package main provides the entry point of Atlas, a role-based workforce
// operations console. It serves a JSON API with the Fiber framework for
// managing locations, positions and permissions, launching checklist projects
// from templates and tracking courses and certifications. State is persisted
// with gorm in SQLite, MySQL or PostgreSQL.
package main
