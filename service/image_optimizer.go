package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// Image sizes served by the product image endpoint
const (
	ImageSizeThumb  = "thumb"
	ImageSizeMedium = "medium"
)

// ErrImageNotFound is returned for an image index or asset that does not exist
var ErrImageNotFound = errors.New("image not found")

// ImageService serves resized product images, caching the JPEG output on disk
type ImageService struct {
	catalog  *CatalogService
	source   ImageSource
	cacheDir string
}

// NewImageService creates a new ImageService reading originals from source
func NewImageService(catalog *CatalogService, source ImageSource, cacheDir string) *ImageService {
	return &ImageService{
		catalog:  catalog,
		source:   source,
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (s *ImageService) EnsureCacheDir() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// CachePath returns the cache file path for a product image and size
func (s *ImageService) CachePath(productID string, index int, size string) string {
	filename := fmt.Sprintf("product_%s_%d_%s.jpg", productID, index, size)
	return filepath.Join(s.cacheDir, filename)
}

func cacheExists(cachePath string) bool {
	_, err := os.Stat(cachePath)
	return err == nil
}

func saveToCache(cachePath string, imageData []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Printf("✓ Image cached: %s", cachePath)
	return nil
}

// ProductImage returns the optimized JPEG for image index of productID
func (s *ImageService) ProductImage(ctx context.Context, productID string, index int, size string) ([]byte, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(product.Images) {
		return nil, fmt.Errorf("%w: product %s has %d image(s)", ErrImageNotFound, productID, len(product.Images))
	}
	if size != ImageSizeThumb {
		size = ImageSizeMedium
	}

	cachePath := s.CachePath(productID, index, size)
	if cacheExists(cachePath) {
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
		log.Printf("⚠️  Cached image unreadable, regenerating: %s", cachePath)
	}

	raw, err := s.source.Fetch(ctx, product.Images[index])
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}
	if err := saveToCache(cachePath, optimized); err != nil {
		log.Printf("⚠️  %v", err)
	}
	return optimized, nil
}

// OptimizeImage optimizes an image by converting to JPEG and resizing
// imageData: raw image bytes (PNG, JPEG)
// size: "thumb" or "medium"
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	log.Printf("📸 Image decoded: format=%s, bounds=%v", format, img.Bounds())

	var maxDim int
	var quality int

	switch size {
	case ImageSizeThumb:
		maxDim = maxSizeThumb
		quality = qualityThumb
	case ImageSizeMedium:
		maxDim = maxSizeMedium
		quality = qualityMedium
	default:
		maxDim = maxSizeMedium
		quality = qualityMedium
		log.Printf("⚠️  Unknown size '%s', defaulting to medium", size)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var resizedImg image.Image = img
	if width > maxDim || height > maxDim {
		// imaging keeps the aspect ratio when one dimension is 0
		if width > height {
			resizedImg = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			resizedImg = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
		log.Printf("🔄 Resized image: %dx%d -> %v", width, height, resizedImg.Bounds().Size())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Printf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}
