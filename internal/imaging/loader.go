package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ImageCache provides thread-safe caching of decoded photos and masks to avoid
// redundant disk reads.
//
// The cache stores decoded image.Image values keyed by file path. Callers never
// receive the cached value directly: LoadSurface hands out a fresh Surface each
// time, so compositing on one copy cannot corrupt another caller's pixels.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
//	cache := imaging.NewImageCache()
//	photo, err := cache.LoadSurface("/path/to/photo.jpg")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/path/to/photo.jpg") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves a decoded image from the cache or reads it from disk.
//
// Supported formats are PNG, JPEG, and GIF. The image is cached using the
// exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadSurface loads an image and converts it to a caller-owned Surface.
func (c *ImageCache) LoadSurface(path string) (*Surface, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", or "unknown", based on file extension.
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	// Masks must have one to cut anything away.
	HasAlpha bool `json:"has_alpha"`

	// Large reports whether the image exceeds the configured pixel threshold
	// and will be scaled on the background worker during export.
	Large bool `json:"large"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LargeImagePixels is the default pixel count above which scaling is
// offloaded to the worker pool.
const LargeImagePixels = 1920 * 1080

// LoadImageInfo loads an image into the cache and returns its metadata.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//   - largePixels: Pixel count above which the image is reported as Large.
//     Pass the same threshold the export scaler uses; zero or less means
//     LargeImagePixels.
//
// Returns:
//   - *ImageInfo: Metadata about the image.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
//
// # Format Detection
//
// The format is determined by file extension (".png", ".jpg"/".jpeg",
// ".gif"); anything else reports "unknown".
func LoadImageInfo(cache *ImageCache, path string, largePixels int) (*ImageInfo, error) {
	if largePixels <= 0 {
		largePixels = LargeImagePixels
	}

	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
		hasAlpha = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      hasAlpha,
		Large:         bounds.Dx()*bounds.Dy() > largePixels,
		FileSizeBytes: stat.Size(),
	}, nil
}
