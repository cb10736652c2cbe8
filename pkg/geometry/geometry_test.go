package geometry

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"gmosmask/internal/models"
)

// testOptics returns a parameter set with a 2000-pixel wavelength window
// centered 1000 pixels in, convenient for hand-checked expectations.
func testOptics() Optics {
	return Optics{
		XScale:             0.0727,
		YScale:             0.0727,
		AnamorphicFactor:   1.0,
		SpectralPixelScale: 1.0,
		WavelengthStart:    5000,
		WavelengthCentral:  6000,
		WavelengthEnd:      7000,
	}
}

func testTable() *models.MaskTable {
	return &models.MaskTable{
		Slits: []models.Slit{
			{ID: 1, PosMX: 0, PosMY: 0, SizeMX: 0.5, SizeMY: 5},
			{ID: 2, PosMX: -10, PosMY: 0, SizeMX: 0.5, SizeMY: 5},
			{ID: 3, PosMX: 25, PosMY: -40, SizeMX: 0.5, SizeMY: 5},
			{ID: 4, PosMX: 0, PosMY: 95, SizeMX: 0.5, SizeMY: 5},
		},
	}
}

func newTestMapper(t *testing.T, optics Optics) *Mapper {
	t.Helper()
	m, err := NewMapper(optics, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	return m
}

// TestPrepareCenterSlit checks the full mapping for a slit at the mask
// center against hand-computed values
func TestPrepareCenterSlit(t *testing.T) {
	m := newTestMapper(t, testOptics())

	table := &models.MaskTable{Slits: []models.Slit{
		{PosMX: 0, PosMY: 0, SizeMX: 0.5, SizeMY: 5},
	}}
	out, err := m.Prepare(table, 2048, 2048)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	sec := out.Sections[0]

	// spectrum length 2000 px, central wavelength pixel 1000, slit at the
	// detector center, no distortion: x1 = round(1024 - 1000) = 24
	if sec.SecX1 != 24 || sec.SecX2 != 2024 {
		t.Errorf("x section = [%d,%d), expected [24,2024)", sec.SecX1, sec.SecX2)
	}

	// slit length 5mm * 1.611444 = 8.057 arcsec -> 110.8 px, * 1.05 -> 116
	if sec.SecY2-sec.SecY1 != 116 {
		t.Errorf("y extent = %d, expected 116", sec.SecY2-sec.SecY1)
	}
	if sec.SecY1 != 966 {
		t.Errorf("y1 = %d, expected 966", sec.SecY1)
	}

	if math.Abs(sec.RefPix1-1000) > 1e-9 {
		t.Errorf("refpix = %g, expected 1000", sec.RefPix1)
	}
}

// TestPrepareInvariant verifies the section ordering and frame-bound
// invariant for every slit, including ones mapping outside the frame
func TestPrepareInvariant(t *testing.T) {
	optics := testOptics()
	optics.YDistortion = [3]float64{1, 0.0005, 0.00001}
	m := newTestMapper(t, optics)

	table := testTable()
	// Extra rows deliberately far outside the detector
	table.Slits = append(table.Slits,
		models.Slit{PosMX: -80, PosMY: 300, SizeMX: 0.5, SizeMY: 5},
		models.Slit{PosMX: 120, PosMY: -250, SizeMX: 0.5, SizeMY: 20},
	)

	naxis1, naxis2 := 2048, 1024
	out, err := m.Prepare(table, naxis1, naxis2)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if len(out.Sections) != len(table.Slits) {
		t.Fatalf("got %d sections for %d slits", len(out.Sections), len(table.Slits))
	}

	for i, sec := range out.Sections {
		if sec.SecX1 < 0 || sec.SecX1 > sec.SecX2 || sec.SecX2 > naxis1 {
			t.Errorf("slit %d: x section [%d,%d) violates 0 <= x1 <= x2 <= %d",
				i, sec.SecX1, sec.SecX2, naxis1)
		}
		if sec.SecY1 < 0 || sec.SecY1 > sec.SecY2 || sec.SecY2 > naxis2 {
			t.Errorf("slit %d: y section [%d,%d) violates 0 <= y1 <= y2 <= %d",
				i, sec.SecY1, sec.SecY2, naxis2)
		}
	}
}

// TestPrepareOutOfFrameDegenerates verifies that a slit mapping fully
// outside the frame is truncated to a zero-size box, not dropped
func TestPrepareOutOfFrameDegenerates(t *testing.T) {
	m := newTestMapper(t, testOptics())

	table := &models.MaskTable{Slits: []models.Slit{
		{PosMX: 0, PosMY: 500, SizeMX: 0.5, SizeMY: 5}, // far above the frame
	}}
	out, err := m.Prepare(table, 2048, 2048)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	sec := out.Sections[0]
	if sec.SecY1 != sec.SecY2 {
		t.Errorf("out-of-frame slit has y extent %d, expected 0", sec.SecY2-sec.SecY1)
	}
	if len(out.Sections) != 1 {
		t.Errorf("out-of-frame slit was dropped")
	}
}

// TestPrepareRefPixClipping verifies that left-edge clipping is absorbed
// into the reference pixel
func TestPrepareRefPixClipping(t *testing.T) {
	m := newTestMapper(t, testOptics())

	table := &models.MaskTable{Slits: []models.Slit{
		{PosMX: -10, PosMY: 0, SizeMX: 0.5, SizeMY: 5},
	}}
	out, err := m.Prepare(table, 2048, 2048)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	sec := out.Sections[0]

	// slit x offset: -10mm * 1.611444 / 0.0727 = -221.66 px, so the
	// unclipped x1 is round(802.34 - 1000) = -198
	if sec.SecX1 != 0 {
		t.Errorf("x1 = %d, expected clipped to 0", sec.SecX1)
	}
	if sec.SecX2 != 1802 {
		t.Errorf("x2 = %d, expected 1802", sec.SecX2)
	}
	if math.Abs(sec.RefPix1-802) > 1e-9 {
		t.Errorf("refpix = %g, expected 802 (1000 - 198 clipped pixels)", sec.RefPix1)
	}
}

// TestPrepareIdempotent verifies that mapping is a pure function of the
// table and parameters
func TestPrepareIdempotent(t *testing.T) {
	m := newTestMapper(t, testOptics())

	a, err := m.Prepare(testTable(), 2048, 2048)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	b, err := m.Prepare(testTable(), 2048, 2048)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	for i := range a.Sections {
		if a.Sections[i] != b.Sections[i] {
			t.Errorf("slit %d: sections differ between runs: %+v vs %+v",
				i, a.Sections[i], b.Sections[i])
		}
	}
}

// TestPreparePure verifies the input table is not modified
func TestPreparePure(t *testing.T) {
	m := newTestMapper(t, testOptics())

	table := testTable()
	if _, err := m.Prepare(table, 2048, 2048); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if table.Prepared() {
		t.Errorf("Prepare mutated the input table")
	}
}

// TestPrepareInPlace verifies the explicit mutating wrapper
func TestPrepareInPlace(t *testing.T) {
	m := newTestMapper(t, testOptics())

	table := testTable()
	if err := m.PrepareInPlace(table, 2048, 2048); err != nil {
		t.Fatalf("PrepareInPlace failed: %v", err)
	}
	if !table.Prepared() {
		t.Errorf("PrepareInPlace did not populate the sections")
	}
}

// TestPrepareXDistortion verifies the empirical x correction moves slits
// away from the vertical center in the expected direction
func TestPrepareXDistortion(t *testing.T) {
	m := newTestMapper(t, testOptics())

	table := &models.MaskTable{Slits: []models.Slit{
		{PosMX: 0, PosMY: 0, SizeMX: 0.5, SizeMY: 5},
		{PosMX: 0, PosMY: 40, SizeMX: 0.5, SizeMY: 5},
		{PosMX: 0, PosMY: -40, SizeMX: 0.5, SizeMY: 5},
	}}
	out, err := m.Prepare(table, 2048, 2048)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	center := out.Sections[0].SecX1
	upper := out.Sections[1].SecX1
	lower := out.Sections[2].SecX1

	// The quadratic term dominates off-center, pulling both sides in the
	// same (negative) direction
	if upper >= center || lower >= center {
		t.Errorf("x distortion did not shift off-center slits left: center=%d upper=%d lower=%d",
			center, upper, lower)
	}
}

// TestOpticsValidate verifies the numeric precondition checks
func TestOpticsValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Optics)
	}{
		{"zero x scale", func(o *Optics) { o.XScale = 0 }},
		{"negative y scale", func(o *Optics) { o.YScale = -1 }},
		{"zero anamorphic factor", func(o *Optics) { o.AnamorphicFactor = 0 }},
		{"zero dispersion", func(o *Optics) { o.SpectralPixelScale = 0 }},
		{"reversed window", func(o *Optics) { o.WavelengthStart = 8000 }},
		{"central outside window", func(o *Optics) { o.WavelengthCentral = 4000 }},
	}

	for _, c := range cases {
		optics := testOptics()
		c.modify(&optics)
		if err := optics.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
		if _, err := NewMapper(optics, zerolog.Nop()); err == nil {
			t.Errorf("%s: NewMapper accepted invalid optics", c.name)
		}
	}

	if err := testOptics().Validate(); err != nil {
		t.Errorf("valid optics rejected: %v", err)
	}
}

// TestPrepareBadDimensions verifies that non-positive detector dimensions
// are rejected
func TestPrepareBadDimensions(t *testing.T) {
	m := newTestMapper(t, testOptics())
	if _, err := m.Prepare(testTable(), 0, 2048); err == nil {
		t.Errorf("expected error for zero naxis1")
	}
	if _, err := m.Prepare(testTable(), 2048, -5); err == nil {
		t.Errorf("expected error for negative naxis2")
	}
}
