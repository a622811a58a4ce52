// Package probe verifies the served application is reachable before a
// review session starts.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/designlens/designlens/internal/domain"
)

// HTTPProber implements domain.Prober with a resty client. Any HTTP
// response, including errors like 500, proves the environment is up;
// only transport failures count as unreachable.
type HTTPProber struct {
	client *resty.Client
}

// New creates a prober with bounded retries and the given logger wired
// into resty.
func New(logger hclog.Logger) *HTTPProber {
	client := resty.New().
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetTimeout(5 * time.Second)
	if logger != nil {
		client.SetLogger(NewHclogAdapter(logger.Named("resty")))
	}
	return &HTTPProber{client: client}
}

// Check probes the URL. A transport-level failure is returned as a fatal
// CaptureError: the single condition that aborts a whole session.
func (p *HTTPProber) Check(ctx context.Context, url string) error {
	_, err := p.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return &domain.CaptureError{
			Stage: "connect",
			Fatal: true,
			Err:   fmt.Errorf("served application unreachable at %s: %w", url, err),
		}
	}
	return nil
}

// HclogAdapter adapts an hclog.Logger to the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates an adapter forwarding messages to hclog.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}
