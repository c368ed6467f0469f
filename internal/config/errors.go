package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine names no supported engine.
	ErrUnknownGormEngine = errors.New("config db.gormEngine must be sqlite, mysql or postgres")

	// ErrNegativeWarningWindow error if config university.warningWindowDays is below zero.
	ErrNegativeWarningWindow = errors.New("config university.warningWindowDays can not be negative")
)
