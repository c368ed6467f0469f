package logger

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	defaultDataDogTimeout = 5 * time.Second
	dataDogBuffer         = 1024
	dataDogSource         = "atlas"
)

// DataDog ships log lines to the DataDog logs intake.
type DataDog struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"apiKey"` // API Key defined at datadog
	Site    string `mapstructure:"site"`   // Regional Site aka DD_SITE ("datadoghq.eu")
	Tags    string `mapstructure:"tags"`   // comma separated, e.g. "env:prod,team:ops"
	// Timeout bounds a single submission.
	Timeout time.Duration `mapstructure:"timeout"`
}

// logSubmitter is the part of *datadogV2.LogsApi the writer needs.
type logSubmitter interface {
	SubmitLog(
		ctx context.Context,
		body []datadogV2.HTTPLogItem,
		o ...datadogV2.SubmitLogOptionalParameters,
	) (interface{}, *http.Response, error)
}

// DataDogWriter is an io.Writer that submits every line in the background.
// Lines are dropped while the buffer is full and after Close.
type DataDogWriter struct {
	api      logSubmitter
	ctx      context.Context
	timeout  time.Duration
	service  string
	hostname string
	tags     string

	// mu guards closed and sends on lines.
	mu     sync.RWMutex
	closed bool
	lines  chan string
	done   sync.WaitGroup
}

// NewDataDogWriter returns a running writer for cfg. Call Close to flush.
func NewDataDogWriter(cfg DataDog, service string) *DataDogWriter {
	ctx := context.WithValue(
		context.Background(),
		datadog.ContextAPIKeys,
		map[string]datadog.APIKey{"apiKeyAuth": {Key: cfg.APIKey}},
	)

	if cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{"site": cfg.Site})
	}

	api := datadogV2.NewLogsApi(datadog.NewAPIClient(datadog.NewConfiguration()))

	return newDataDogWriter(ctx, api, cfg, service)
}

func newDataDogWriter(ctx context.Context, api logSubmitter, cfg DataDog, service string) *DataDogWriter {
	hostname, _ := os.Hostname()

	w := &DataDogWriter{
		api:      api,
		ctx:      ctx,
		timeout:  cfg.Timeout,
		service:  service,
		hostname: hostname,
		tags:     cfg.Tags,
		lines:    make(chan string, dataDogBuffer),
	}

	if w.timeout <= 0 {
		w.timeout = defaultDataDogTimeout
	}

	w.done.Add(1)

	go w.run()

	return w
}

// Write queues one log line.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return len(p), nil
	}

	select {
	case w.lines <- string(p):
	default:
	}

	return len(p), nil
}

// Close submits the queued lines and stops the writer.
// Calling it again is a no-op.
func (w *DataDogWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}

	w.closed = true
	close(w.lines)
	w.mu.Unlock()

	w.done.Wait()

	return nil
}

func (w *DataDogWriter) run() {
	defer w.done.Done()

	for line := range w.lines {
		if err := w.submit(line); err != nil {
			// the global logger writes here, so report on stderr
			fmt.Fprintf(os.Stderr, "datadog: submit log: %v\n", err)
		}
	}
}

func (w *DataDogWriter) submit(line string) error {
	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	item := datadogV2.HTTPLogItem{
		Ddsource: datadog.PtrString(dataDogSource),
		Hostname: datadog.PtrString(w.hostname),
		Message:  line,
		Service:  datadog.PtrString(w.service),
	}

	if w.tags != "" {
		item.Ddtags = datadog.PtrString(w.tags)
	}

	_, _, err := w.api.SubmitLog(ctx, []datadogV2.HTTPLogItem{item})

	return err //nolint:wrapcheck
}
