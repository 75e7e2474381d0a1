// Package naming generates export filenames.
//
//	caption-art-YYYYMMDD-HHMMSS.png
//	caption-art-YYYYMMDD-HHMMSS-watermarked.jpg
//	caption-art-<custom>-YYYYMMDD-HHMMSS[-watermarked].<ext>
//
// Names have one-second resolution. EnsureUnique resolves collisions within
// the same second.
package naming
