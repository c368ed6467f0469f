package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config log.appName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config log.serviceName can not be empty")

	// ErrDataDogAPIKeyIsEmpty is returned if DataDog shipping is enabled without a key.
	ErrDataDogAPIKeyIsEmpty = errors.New("config log.datadog.apiKey can not be empty")
)

// ErrorHandler reports events zerolog failed to write.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "zerolog: could not write event: %v\n", err)
}
