package export

import (
	"context"
	"errors"

	"github.com/ironsheep/caption-art/internal/encoder"
	"github.com/ironsheep/caption-art/internal/imaging"
)

var (
	// ErrValidation marks input that cannot be exported.
	ErrValidation = errors.New("export validation failed")

	// ErrUnsupportedFormat marks a format other than PNG or JPEG.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrResource marks surfaces too large to process safely, and recovered
	// panics inside a stage.
	ErrResource = errors.New("export resources exhausted")

	// ErrDownload marks a payload that could not be handed to the host.
	ErrDownload = errors.New("download failed")

	// ErrCancelled marks an export stopped by Abort or by its context.
	ErrCancelled = errors.New("export cancelled")
)

// User-facing messages. Each is a complete sentence under 100 characters.
const (
	MsgNoContent     = "Please upload an image and add some text before exporting."
	MsgBadFormat     = "Please choose PNG or JPEG as the export format."
	MsgEncoding      = "Failed to generate the image. Please try again."
	MsgTooLarge      = "The image is too large to export. Try reducing the maximum size."
	MsgDownload      = "The download could not start. Please try again."
	MsgCancelled     = "Export was cancelled."
	MsgUnknown       = "Something went wrong while exporting. Please try again."
	NoticeViewer     = "The download was blocked, so the image opened in a viewer instead. Save it from there."
	NoticeManualSave = "Download was blocked. Right-click the image and choose Save Image As."
)

// UserMessage maps an error to one of the fixed messages above. Internal
// error text never leaks through.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return MsgCancelled
	case errors.Is(err, ErrUnsupportedFormat):
		return MsgBadFormat
	case errors.Is(err, ErrValidation),
		errors.Is(err, imaging.ErrInvalidSurface),
		errors.Is(err, imaging.ErrEmptySurface):
		return MsgNoContent
	case errors.Is(err, ErrResource):
		return MsgTooLarge
	case errors.Is(err, encoder.ErrEncoding):
		return MsgEncoding
	case errors.Is(err, ErrDownload):
		return MsgDownload
	default:
		return MsgUnknown
	}
}

// IsCancelled reports whether err is a cancellation rather than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
