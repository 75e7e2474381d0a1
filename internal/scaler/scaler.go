package scaler

import (
	"context"
	"errors"
	"fmt"
	"math"

	dimaging "github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/alitto/pond/v2"

	"github.com/ironsheep/caption-art/internal/imaging"
	"github.com/ironsheep/caption-art/internal/logger"
)

// ErrUnavailable is returned when the worker path cannot run a task.
var ErrUnavailable = errors.New("scaling worker unavailable")

// Scaler resizes a surface so its longer side fits within maxDimension.
// Surfaces that already fit are returned as is.
type Scaler interface {
	Scale(ctx context.Context, s *imaging.Surface, maxDimension int) (*imaging.Surface, error)
}

// TargetSize returns the dimensions that fit width x height within
// maxDimension on the longer side, preserving aspect ratio. It never upscales.
func TargetSize(width, height, maxDimension int) (int, int) {
	longer := max(width, height)
	if maxDimension <= 0 || longer <= maxDimension {
		return width, height
	}

	fit := func(other int) int {
		return max(1, int(math.Round(float64(other)*float64(maxDimension)/float64(longer))))
	}
	if width >= height {
		return maxDimension, fit(height)
	}
	return fit(width), maxDimension
}

// NeedsScaling reports whether s exceeds maxDimension.
func NeedsScaling(s *imaging.Surface, maxDimension int) bool {
	w, h := TargetSize(s.Width, s.Height, maxDimension)
	return w != s.Width || h != s.Height
}

// resize does the actual resampling with a bilinear filter.
func resize(s *imaging.Surface, maxDimension int) (*imaging.Surface, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w, h := TargetSize(s.Width, s.Height, maxDimension)
	if w == s.Width && h == s.Height {
		return s, nil
	}
	return imaging.FromImage(dimaging.Resize(s.NRGBA(), w, h, dimaging.Linear))
}

// SyncScaler resizes in the calling goroutine.
type SyncScaler struct{}

// NewSyncScaler creates a scaler that runs in the caller's goroutine.
func NewSyncScaler() *SyncScaler {
	return &SyncScaler{}
}

func (SyncScaler) Scale(ctx context.Context, s *imaging.Surface, maxDimension int) (*imaging.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resize(s, maxDimension)
}

// WorkerScaler runs resampling on a bounded worker pool. Each task receives
// its own copy of the pixels and hands back a new surface, so nothing is
// shared with the caller while the task runs.
type WorkerScaler struct {
	pool pond.ResultPool[*imaging.Surface]
}

// NewWorkerScaler creates a worker pool with the given concurrency.
func NewWorkerScaler(concurrency int) *WorkerScaler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &WorkerScaler{
		pool: pond.NewResultPool[*imaging.Surface](concurrency),
	}
}

// Scale submits the resize to the pool and waits for it or for ctx.
//
// The task works on a private copy of the pixels, so s stays owned by the
// caller and may be reused as soon as Scale returns.
//
// # Errors
//
//   - ErrUnavailable if the scaler is nil or closed, or the task failed
//   - ctx.Err() if ctx ends first; the task still runs to completion
//   - imaging.ErrInvalidSurface for a malformed surface
func (w *WorkerScaler) Scale(ctx context.Context, s *imaging.Surface, maxDimension int) (*imaging.Surface, error) {
	if w == nil || w.pool == nil || w.pool.Stopped() {
		return nil, ErrUnavailable
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	private := s.Clone()
	task := w.pool.SubmitErr(func() (*imaging.Surface, error) {
		return resize(private, maxDimension)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-task.Done():
	}

	result, err := task.Wait()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return result, nil
}

// Close stops the pool and waits for running tasks.
func (w *WorkerScaler) Close() {
	if w != nil && w.pool != nil {
		w.pool.StopAndWait()
	}
}

// Adaptive sends surfaces above Threshold pixels to Worker and the rest to
// Sync. Any worker failure is logged and retried on Sync, so callers never see
// which path ran.
type Adaptive struct {
	Worker    Scaler
	Sync      Scaler
	Threshold int
}

// NewAdaptive builds the two-path strategy. A nil worker means every surface
// is scaled synchronously.
func NewAdaptive(worker Scaler, threshold int) *Adaptive {
	return &Adaptive{
		Worker:    worker,
		Sync:      NewSyncScaler(),
		Threshold: threshold,
	}
}

func (a *Adaptive) Scale(ctx context.Context, s *imaging.Surface, maxDimension int) (*imaging.Surface, error) {
	if a.Worker != nil && s != nil && s.PixelCount() > a.Threshold {
		out, err := a.Worker.Scale(ctx, s, maxDimension)
		if err == nil {
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.WarnCtx(ctx, "Worker scaling failed, falling back to synchronous scaling",
			zap.Error(err),
			zap.Int("width", s.Width),
			zap.Int("height", s.Height),
		)
	}
	return a.Sync.Scale(ctx, s, maxDimension)
}
