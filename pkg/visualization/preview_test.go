package visualization

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"gmosmask/internal/models"
)

// TestRenderScaling verifies that the sample range maps to the full gray
// range
func TestRenderScaling(t *testing.T) {
	frame := models.NewFrame(2, 1)
	frame.Set(0, 0, -50)
	frame.Set(1, 0, 150)

	img := Render(frame)

	lo := color.Gray16Model.Convert(img.At(0, 0)).(color.Gray16)
	hi := color.Gray16Model.Convert(img.At(1, 0)).(color.Gray16)
	if lo.Y != 0 {
		t.Errorf("minimum sample rendered as %d, expected 0", lo.Y)
	}
	if hi.Y != 65535 {
		t.Errorf("maximum sample rendered as %d, expected 65535", hi.Y)
	}
}

// TestRenderFlatFrame verifies that a constant frame renders without a
// division by zero
func TestRenderFlatFrame(t *testing.T) {
	frame := models.NewFrame(3, 3)
	for i := range frame.Data {
		frame.Data[i] = 5
	}

	img := Render(frame)
	v := color.Gray16Model.Convert(img.At(1, 1)).(color.Gray16)
	if v.Y != 0 {
		t.Errorf("flat frame rendered as %d, expected 0", v.Y)
	}
}

// TestSaveBundle verifies the per-cutout preview files
func TestSaveBundle(t *testing.T) {
	dir := t.TempDir()

	data := models.NewFrame(4, 4)
	bundle := &models.Bundle{Cutouts: []models.Cutout{
		{Index: 0, Name: "DATA_0", Data: data, Uncertainty: data.Clone()},
		{Index: 1, Name: "DATA_1", Data: data.Clone()},
	}}

	if err := SaveBundle(bundle, dir); err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}

	for _, name := range []string{"DATA_0.png", "UNCERTAINTY_0.png", "DATA_1.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("preview %s was not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "MASK_0.png")); err == nil {
		t.Errorf("preview written for a missing mask plane")
	}
}
