package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/caption-art/internal/adapter"
	"github.com/ironsheep/caption-art/internal/dispatch"
	"github.com/ironsheep/caption-art/internal/encoder"
	"github.com/ironsheep/caption-art/internal/imaging"
	"github.com/ironsheep/caption-art/internal/logger"
	"github.com/ironsheep/caption-art/internal/naming"
	"github.com/ironsheep/caption-art/internal/scaler"
)

// Options are the per-export choices.
type Options struct {
	// Format is "png", "jpeg" or "jpg". Empty means PNG.
	Format string `json:"format"`

	// Quality applies to JPEG and is clamped to [0.5, 1]. Callers that
	// have no preference pass encoder.DefaultQuality.
	Quality float64 `json:"quality"`

	// MaxDimension bounds the longer side. Zero disables scaling.
	MaxDimension int `json:"max_dimension"`

	Watermark     bool   `json:"watermark"`
	WatermarkText string `json:"watermark_text,omitempty"`

	// CustomText is sanitized into the filename.
	CustomText string `json:"custom_text,omitempty"`
}

// Result is the outcome of one export. Error holds a user-facing message,
// never internal error text.
type Result struct {
	Success   bool    `json:"success"`
	Filename  string  `json:"filename,omitempty"`
	FileSize  int64   `json:"file_size,omitempty"`
	Format    string  `json:"format,omitempty"`
	Quality   float64 `json:"quality,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Location  string  `json:"location,omitempty"`
	Notice    string  `json:"notice,omitempty"`
	Error     string  `json:"error,omitempty"`
	Cancelled bool    `json:"cancelled,omitempty"`
	ExportID  string  `json:"export_id"`
}

// Settings configure an Orchestrator.
type Settings struct {
	// StageDelay pauses between stages so progress can render. Skipped in
	// TestMode.
	StageDelay time.Duration
	TestMode   bool

	// CacheTTL is how long scaled surfaces are reused.
	CacheTTL time.Duration

	// MaxPixels rejects larger surfaces with the resource message. Zero
	// disables the check.
	MaxPixels int
}

// Orchestrator runs exports one at a time through the stage pipeline:
// preparing, watermarking (optional), converting, downloading, complete.
//
// Calls made while an export is running wait in FIFO order. Abort cancels
// the running export at its next stage boundary; a stage already encoding
// or scaling finishes first.
type Orchestrator struct {
	settings   Settings
	clock      adapter.Clock
	scaler     scaler.Scaler
	dispatcher *dispatch.Dispatcher
	cache      *scaledCache
	queue      queue
}

// New creates an orchestrator. Each independent consumer should own its
// instance; the cache and queue are not shared between instances.
func New(settings Settings, sc scaler.Scaler, d *dispatch.Dispatcher, clock adapter.Clock) *Orchestrator {
	return &Orchestrator{
		settings:   settings,
		clock:      clock,
		scaler:     sc,
		dispatcher: d,
		cache:      newScaledCache(clock, settings.CacheTTL),
	}
}

// Export runs the pipeline for s and delivers the file through the
// dispatcher.
//
// Parameters:
//   - ctx: Cancelling it while queued removes the call from the queue;
//     cancelling it while running aborts at the next stage boundary.
//   - s: The composited surface. It is not modified.
//   - opts: Format, quality, scaling, watermark and file name choices.
//   - progress: Called once per stage, in order, from the calling goroutine.
//     May be nil.
//
// Returns a *Result that is never nil. Success is false on failure, with
// Error holding one of the Msg* user-facing messages and Cancelled set when
// the export was aborted.
//
// # Stages
//
//	preparing (0%) → watermarking (25%, only with opts.Watermark) →
//	converting (50%) → downloading (75%) → complete (100%)
//
// Calls made while another export runs wait in FIFO order. A blocked save
// that fell back to a viewer or manual save still succeeds, with Notice set.
func (o *Orchestrator) Export(ctx context.Context, s *imaging.Surface, opts Options, progress ProgressFunc) *Result {
	exportID := uuid.NewString()
	ctx = logger.WithContext(ctx, zap.String("exportID", exportID))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := o.queue.acquire(ctx, cancel); err != nil {
		logger.InfoCtx(ctx, "Export cancelled while queued")
		return failure(exportID, fmt.Errorf("%w: %w", ErrCancelled, err))
	}
	defer o.queue.release()

	start := o.clock.Now()
	logger.InfoCtx(ctx, "Export started",
		zap.String("format", opts.Format),
		zap.Bool("watermark", opts.Watermark),
		zap.Int("maxDimension", opts.MaxDimension),
	)

	result, err := o.runSafely(runCtx, s, opts, progress)
	if err != nil {
		if IsCancelled(err) {
			logger.InfoCtx(ctx, "Export cancelled", zap.Duration("elapsed", o.clock.Since(start)))
		} else {
			logger.ErrorCtx(ctx, err, zap.Duration("elapsed", o.clock.Since(start)))
		}
		return failure(exportID, err)
	}

	result.ExportID = exportID
	logger.InfoCtx(ctx, "Export finished",
		zap.String("filename", result.Filename),
		zap.Int64("fileSize", result.FileSize),
		zap.Duration("elapsed", o.clock.Since(start)),
	)
	return result
}

// Abort cancels the running export and reports whether one was running.
// Queued exports are unaffected.
func (o *Orchestrator) Abort() bool {
	return o.queue.abort()
}

// IsExporting reports whether an export holds the slot.
func (o *Orchestrator) IsExporting() bool {
	return o.queue.busy()
}

// Pending returns the number of queued exports.
func (o *Orchestrator) Pending() int {
	return o.queue.pending()
}

// ClearCache drops every scaled surface.
func (o *Orchestrator) ClearCache() {
	o.cache.clear()
}

func failure(exportID string, err error) *Result {
	return &Result{
		Success:   false,
		Error:     UserMessage(err),
		Cancelled: IsCancelled(err),
		ExportID:  exportID,
	}
}

// runSafely turns a panic inside a stage into ErrResource so the process
// and the queue survive it.
func (o *Orchestrator) runSafely(ctx context.Context, s *imaging.Surface, opts Options, progress ProgressFunc) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: panic: %v", ErrResource, r)
		}
	}()
	return o.run(ctx, s, opts, progress)
}

func (o *Orchestrator) run(ctx context.Context, s *imaging.Surface, opts Options, progress ProgressFunc) (*Result, error) {
	if err := o.enter(ctx, StagePreparing, progress); err != nil {
		return nil, err
	}
	format, err := o.validate(s, opts)
	if err != nil {
		return nil, err
	}

	working := s
	if opts.Watermark {
		if err := o.enter(ctx, StageWatermarking, progress); err != nil {
			return nil, err
		}
		working, err = Watermark(s, opts.WatermarkText)
		if err != nil {
			return nil, fmt.Errorf("watermark: %w", err)
		}
	}

	if err := o.enter(ctx, StageConverting, progress); err != nil {
		return nil, err
	}
	working, err = o.scale(ctx, working, opts.MaxDimension)
	if err != nil {
		return nil, err
	}
	payload, err := encoder.Encode(working, format, encoder.ClampQuality(format, opts.Quality))
	if err != nil {
		return nil, err
	}

	if err := o.enter(ctx, StageDownloading, progress); err != nil {
		return nil, err
	}
	filename := naming.EnsureUnique(naming.Generate(naming.Options{
		Extension:   format.Extension(),
		Watermarked: opts.Watermark,
		CustomText:  opts.CustomText,
		Timestamp:   o.clock.Now(),
	}), o.dispatcher.ExistingNames())

	delivered, err := o.dispatcher.Dispatch(context.WithoutCancel(ctx), payload.Data, payload.MimeType, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	result := &Result{
		Success:  true,
		Filename: delivered.Filename,
		FileSize: payload.EstimatedSize,
		Format:   string(format),
		Quality:  payload.Quality,
		Width:    working.Width,
		Height:   working.Height,
		Location: delivered.Location,
	}
	switch delivered.Method {
	case dispatch.MethodViewer:
		result.Notice = NoticeViewer
	case dispatch.MethodManual:
		result.Notice = NoticeManualSave
	}

	o.report(StageComplete, progress)
	return result, nil
}

// enter is the stage boundary: it checks for cancellation, reports the
// stage and yields.
func (o *Orchestrator) enter(ctx context.Context, stage Stage, progress ProgressFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w before %s: %w", ErrCancelled, stage, err)
	}
	logger.DebugCtx(ctx, "Export stage", zap.String("stage", string(stage)))
	o.report(stage, progress)

	if o.settings.TestMode || o.settings.StageDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w during %s: %w", ErrCancelled, stage, ctx.Err())
	case <-o.clock.After(o.settings.StageDelay):
		return nil
	}
}

func (o *Orchestrator) report(stage Stage, progress ProgressFunc) {
	if progress == nil {
		return
	}
	progress(Progress{Stage: stage, Percent: stage.Percent(), Message: stage.message()})
}

func (o *Orchestrator) validate(s *imaging.Surface, opts Options) (encoder.Format, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !s.HasContent() {
		return "", fmt.Errorf("%w: %w", ErrValidation, imaging.ErrEmptySurface)
	}
	if o.settings.MaxPixels > 0 && s.PixelCount() > o.settings.MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrResource, s.Width, s.Height, o.settings.MaxPixels)
	}

	if opts.Format == "" {
		return encoder.PNG, nil
	}
	format, err := encoder.ParseFormat(opts.Format)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	return format, nil
}

// scale fits s within maxDimension, reusing a cached result when the same
// content was scaled within the TTL.
func (o *Orchestrator) scale(ctx context.Context, s *imaging.Surface, maxDimension int) (*imaging.Surface, error) {
	if maxDimension <= 0 || !scaler.NeedsScaling(s, maxDimension) {
		return s, nil
	}

	key := newCacheKey(s, maxDimension)
	if cached, ok := o.cache.get(key); ok {
		logger.DebugCtx(ctx, "Scaled surface cache hit", zap.Int("maxDimension", maxDimension))
		return cached, nil
	}

	// Scaling runs to completion; cancellation is seen at the next boundary.
	scaled, err := o.scaler.Scale(context.WithoutCancel(ctx), s, maxDimension)
	if err != nil {
		return nil, fmt.Errorf("%w: scaling: %w", ErrResource, err)
	}
	o.cache.put(key, scaled)
	return scaled, nil
}
