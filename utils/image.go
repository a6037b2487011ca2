package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errRemoteImage = errors.New("image is not a local file")

// ResolveImagePath Resolve an image source relative to root. Sources with a scheme are not local.
func ResolveImagePath(root string, src string) (string, error) {
	if strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		return "", errRemoteImage
	}
	if filepath.IsAbs(src) || root == "" {
		return filepath.Clean(src), nil
	}
	return filepath.Join(root, src), nil
}

// ImageSize Read the pixel height and width of an image without decoding it fully
func ImageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	config, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read image header of %s: %w", path, err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return 0, 0, fmt.Errorf("%s image %s has no dimensions", format, path)
	}
	return config.Height, config.Width, nil
}

// ImageProber Return a function probing image sources below root
func ImageProber(root string) func(src string) (int, int, error) {
	return func(src string) (int, int, error) {
		path, err := ResolveImagePath(root, src)
		if err != nil {
			return 0, 0, err
		}
		return ImageSize(path)
	}
}
