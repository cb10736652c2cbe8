// Package visualization renders frames and cutout bundles to grayscale
// images for visual inspection of the slit geometry.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"gmosmask/internal/models"
)

// Render converts a frame to a 16-bit grayscale image, scaling the sample
// range [min,max] to the full gray range. A flat frame renders black.
func Render(frame *models.Frame) image.Image {
	img := image.NewGray16(image.Rect(0, 0, frame.Width, frame.Height))
	if frame.Width == 0 || frame.Height == 0 {
		return img
	}

	lo, hi := frame.Data[0], frame.Data[0]
	for _, v := range frame.Data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	scale := 0.0
	if hi > lo {
		scale = 65535 / (hi - lo)
	}

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			value := uint16((frame.At(x, y) - lo) * scale)
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// SavePNG renders the frame and writes it as a PNG file.
func SavePNG(frame *models.Frame, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, Render(frame))
}

// SaveBundle writes one preview image per cutout into outputDir, using the
// cutout plane names as file names.
func SaveBundle(bundle *models.Bundle, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, c := range bundle.Cutouts {
		planes := []struct {
			name  string
			frame *models.Frame
		}{
			{c.Name, c.Data},
			{fmt.Sprintf("UNCERTAINTY_%d", c.Index), c.Uncertainty},
			{fmt.Sprintf("MASK_%d", c.Index), c.Mask},
		}
		for _, p := range planes {
			if p.frame == nil || p.frame.Width == 0 || p.frame.Height == 0 {
				continue
			}
			filename := filepath.Join(outputDir, p.name+".png")
			if err := SavePNG(p.frame, filename); err != nil {
				return fmt.Errorf("failed to save %s: %w", p.name, err)
			}
		}
	}

	return nil
}
