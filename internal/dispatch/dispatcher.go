package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ironsheep/caption-art/internal/adapter"
	"github.com/ironsheep/caption-art/internal/logger"
)

// Method says how a payload reached the user.
type Method string

const (
	MethodSave   Method = "save"
	MethodViewer Method = "viewer"
	MethodManual Method = "manual"
)

// Config controls handle release and save retries.
type Config struct {
	// ReleaseDelay is how long a handle stays valid after the save call.
	ReleaseDelay time.Duration

	// MaxRetries bounds retries of transient save failures.
	MaxRetries uint64

	// RetryInterval is the first backoff interval.
	RetryInterval time.Duration
}

// DefaultConfig returns the settings used by the binary.
func DefaultConfig() Config {
	return Config{
		ReleaseDelay:  100 * time.Millisecond,
		MaxRetries:    2,
		RetryInterval: 50 * time.Millisecond,
	}
}

// Result describes a finished dispatch. When both the save and the viewer
// were unavailable, Method is MethodManual and Err holds the last failure.
type Result struct {
	Filename string
	Location string
	Method   Method
	Err      error
}

// ManualSave reports whether the user has to save the image by hand.
func (r *Result) ManualSave() bool {
	return r.Method == MethodManual
}

// Dispatcher hands encoded payloads to a Host.
type Dispatcher struct {
	host  Host
	clock adapter.Clock
	cfg   Config

	pending sync.WaitGroup
}

// NewDispatcher creates a dispatcher for host.
func NewDispatcher(host Host, clock adapter.Clock, cfg Config) *Dispatcher {
	return &Dispatcher{
		host:  host,
		clock: clock,
		cfg:   cfg,
	}
}

// ExistingNames returns names already taken at the host's save location.
func (d *Dispatcher) ExistingNames() []string {
	names, err := d.host.ExistingNames()
	if err != nil {
		logger.Warn("Failed to list existing files", zap.Error(err))
		return nil
	}
	return names
}

// Dispatch hands an encoded export to the host and tries to get it saved.
//
// Parameters:
//   - ctx: Bounds the save retries. Cancellation stops retrying but still
//     tries the viewer fallback.
//   - data: The encoded file contents.
//   - mimeType: The payload's MIME type, e.g. "image/png".
//   - filename: A plain file name with no directory part.
//
// Returns:
//   - *Result: How the file was delivered. Method is MethodSave on success,
//     MethodViewer when the save was blocked and the viewer opened, or
//     MethodManual when both were blocked.
//   - error: Non-nil only when the host could not create a handle.
//
// # Fallback Order
//
// Transient save failures are retried up to Config.MaxRetries times with
// Config.RetryInterval between attempts. ErrBlocked and ErrUnknownHandle are
// not retried. The handle is released Config.ReleaseDelay after Dispatch
// returns; call Wait to block until pending releases finish.
//
// # Errors
//
//   - Returns an error wrapping the host's failure if Acquire fails
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte, mimeType, filename string) (*Result, error) {
	handle, err := d.host.Acquire(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire download handle: %w", err)
	}
	defer d.releaseLater(handle)

	result := &Result{Filename: filename}

	location, err := d.save(ctx, handle, filename)
	if err == nil {
		result.Location = location
		result.Method = MethodSave
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	logger.WarnCtx(ctx, "Save blocked, opening viewer instead",
		zap.String("filename", filename),
		zap.Error(err),
	)

	location, err = d.host.OpenViewer(ctx, handle, filename)
	if err == nil {
		result.Location = location
		result.Method = MethodViewer
		return result, nil
	}

	logger.WarnCtx(ctx, "Viewer fallback failed, manual save required",
		zap.String("filename", filename),
		zap.Error(err),
	)
	result.Method = MethodManual
	result.Err = err
	return result, nil
}

// save retries transient failures. ErrBlocked and ErrUnknownHandle stop
// immediately.
func (d *Dispatcher) save(ctx context.Context, handle, filename string) (string, error) {
	var location string

	operation := func() error {
		loc, err := d.host.Save(ctx, handle, filename)
		if err != nil {
			if errors.Is(err, ErrBlocked) || errors.Is(err, ErrUnknownHandle) {
				return backoff.Permanent(err)
			}
			logger.DebugCtx(ctx, "Save failed, retrying", zap.Error(err))
			return err
		}
		location = loc
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.RetryInterval
	b.MaxInterval = 4 * d.cfg.RetryInterval
	b.RandomizationFactor = 0.5

	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), d.cfg.MaxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return location, nil
}

// releaseLater drops the handle after ReleaseDelay so the save action is not
// raced.
func (d *Dispatcher) releaseLater(handle string) {
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		if d.cfg.ReleaseDelay > 0 {
			<-d.clock.After(d.cfg.ReleaseDelay)
		}
		d.host.Release(handle)
	}()
}

// Wait blocks until every scheduled release has run.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}
