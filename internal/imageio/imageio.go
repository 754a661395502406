// Package imageio is the image file boundary for the command-line tools.
// The coding core never touches files; everything here delegates to the
// imaging and resize libraries.
package imageio

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Load reads an image from disk, format detected by content.
func Load(path string) (image.Image, error) {
	return imaging.Open(path)
}

// Save writes an image to disk, format chosen by file extension.
func Save(img image.Image, path string) error {
	return imaging.Save(img, path)
}

// Scale resizes an image to the given dimensions with Lanczos resampling.
// Used to upscale grid-resolution reconstructions back to display size.
func Scale(img image.Image, width, height uint) image.Image {
	return resize.Resize(width, height, img, resize.Lanczos3)
}
