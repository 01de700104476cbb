package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded source images in memory so repeated tool calls on
// the same file skip disk reads and decoding.
//
// Entries are keyed by absolute, cleaned path, so "a.png" and "./a.png" share
// an entry. Images stay cached until Evict or Clear is called; the cache does
// not notice when a file changes on disk.
//
// ImageCache is safe for concurrent use.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("diagram.png")
//	if err != nil {
//	    return err
//	}
//	intensity, err := imaging.ToGrid(img, imaging.ChannelLuma)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Decoding goes through disintegration/imaging, so PNG, JPEG, GIF, BMP and
// TIFF are accepted and JPEG EXIF orientation is applied. The returned image
// must be treated as read-only since it is shared by all callers.
func (c *ImageCache) Load(path string) (image.Image, error) {
	key, err := cacheKey(path)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	if img, ok := c.images[key]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(key, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict drops the image loaded from path, if any.
func (c *ImageCache) Evict(path string) {
	key, err := cacheKey(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.images, key)
	c.mu.Unlock()
}

func cacheKey(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("image path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve image path: %w", err)
	}
	return abs, nil
}

// ImageInfo describes a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "bmp", "tiff" or "unknown", taken from
	// the file extension.
	Format string `json:"format"`

	// ColorModel is "gray", "gray16", "rgb", "rgb16", "paletted", "ycbcr",
	// "cmyk" or "unknown".
	ColorModel string `json:"color_model"`

	// HasAlpha reports whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path into the cache and reports its metadata.
//
// ColorModel hints which edge detection channel is meaningful: for "gray"
// images all channels carry the same values.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	model, hasAlpha := describeModel(img)
	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorModel:    model,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

func describeModel(img image.Image) (model string, hasAlpha bool) {
	switch m := img.(type) {
	case *image.Gray:
		return "gray", false
	case *image.Gray16:
		return "gray16", false
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a < 0xffff {
				return "paletted", true
			}
		}
		return "paletted", false
	case *image.RGBA, *image.NRGBA:
		return "rgb", true
	case *image.RGBA64, *image.NRGBA64:
		return "rgb16", true
	case *image.YCbCr:
		return "ycbcr", false
	case *image.NYCbCrA:
		return "ycbcr", true
	case *image.CMYK:
		return "cmyk", false
	default:
		return "unknown", false
	}
}

// DimensionsResult holds an image's width and height.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path into the cache and returns only its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
