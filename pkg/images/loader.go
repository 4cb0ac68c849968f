// Package images loads PNG images produced by the engine back into
// image.Image values, either from files or from data URLs.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"
)

// ImageCache caches decoded reference images by path.
type ImageCache struct {
	cache map[string]image.Image
	mu    sync.RWMutex
}

var globalCache = &ImageCache{
	cache: make(map[string]image.Image),
}

// LoadImage decodes the PNG at path, caching the result.
func LoadImage(path string) (image.Image, error) {
	globalCache.mu.RLock()
	if img, ok := globalCache.cache[path]; ok {
		globalCache.mu.RUnlock()
		return img, nil
	}
	globalCache.mu.RUnlock()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	globalCache.mu.Lock()
	globalCache.cache[path] = img
	globalCache.mu.Unlock()

	return img, nil
}

// ForgetImage drops path from the cache, e.g. after a reference image is regenerated.
func ForgetImage(path string) {
	globalCache.mu.Lock()
	delete(globalCache.cache, path)
	globalCache.mu.Unlock()
}

// IsDataURI reports whether s looks like a data: URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI returns the raw bytes and media type of a base64 data URL.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !IsDataURI(uri) {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("data URI has no payload")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("data URI is not base64 encoded")
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI payload: %w", err)
	}
	return b, mediaType, nil
}

// LoadImageFromDataURI decodes a data:image/png;base64 URL.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	b, mediaType, err := DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	if mediaType != "image/png" {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	return img, nil
}
