package naming

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// Prefix starts every generated filename.
const Prefix = "caption-art"

// MaxCustomTextLength bounds the sanitized custom text.
const MaxCustomTextLength = 200

// Options describes one export's filename.
type Options struct {
	// Extension without the dot, e.g. "png" or "jpg".
	Extension   string
	Watermarked bool
	CustomText  string
	Timestamp   time.Time
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Generate builds an export file name.
//
// Parameters:
//   - opts.Extension: File extension with or without the leading dot. Empty
//     means "png".
//   - opts.Watermarked: Appends "-watermarked" before the extension.
//   - opts.CustomText: Free text, passed through Sanitize. Omitted when it
//     sanitizes to nothing.
//   - opts.Timestamp: Formatted as YYYYMMDD-HHMMSS in its own location.
//
// Returns the name in the form
//
//	caption-art-[custom-]YYYYMMDD-HHMMSS[-watermarked].ext
//
// Timestamps one second or more apart always yield different names.
func Generate(opts Options) string {
	var b strings.Builder
	b.WriteString(Prefix)

	if custom := Sanitize(opts.CustomText); custom != "" {
		b.WriteByte('-')
		b.WriteString(custom)
	}

	b.WriteByte('-')
	b.WriteString(opts.Timestamp.Format("20060102-150405"))

	if opts.Watermarked {
		b.WriteString("-watermarked")
	}

	ext := strings.TrimPrefix(opts.Extension, ".")
	if ext == "" {
		ext = "png"
	}
	b.WriteByte('.')
	b.WriteString(ext)

	return b.String()
}

// Sanitize makes free text safe for a filename: whitespace runs become a
// hyphen, anything outside [A-Za-z0-9_-] is dropped, repeated hyphens
// collapse, and leading or trailing hyphens are trimmed. The result is at most
// MaxCustomTextLength characters.
func Sanitize(text string) string {
	s := whitespaceRun.ReplaceAllString(text, "-")
	s = disallowed.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxCustomTextLength {
		s = strings.TrimRight(s[:MaxCustomTextLength], "-")
	}
	return s
}

// EnsureUnique returns name unchanged if it is not in existing. Otherwise it
// appends -1, -2, ... before the extension until the name is free.
func EnsureUnique(name string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[e] = struct{}{}
	}
	if _, ok := taken[name]; !ok {
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
