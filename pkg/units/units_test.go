package units

import (
	"errors"
	"math"
	"testing"
)

// TestParse verifies recognized and unrecognized unit strings
func TestParse(t *testing.T) {
	for _, s := range []string{"mm", "arcsec", "angstrom", "nm", "pix",
		"arcsec/mm", "arcsec/pix", "angstrom/pix", "nm/pix", ""} {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q) failed: %v", s, err)
		}
	}

	for _, s := range []string{"furlong", "mm/pix", "ARCSEC"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) accepted an unrecognized unit", s)
		}
	}
}

// TestConvertIdentity verifies that same-unit conversion passes through
func TestConvertIdentity(t *testing.T) {
	q := Quantity{Value: 3.25, Unit: Millimeter}
	out, err := Convert(q, Millimeter)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if out != q {
		t.Errorf("identity conversion changed %v to %v", q, out)
	}
}

// TestConvertWavelengths verifies the nm/angstrom conversions both ways
func TestConvertWavelengths(t *testing.T) {
	v, err := In(Quantity{Value: 550, Unit: Nanometer}, Angstrom)
	if err != nil {
		t.Fatalf("In failed: %v", err)
	}
	if math.Abs(v-5500) > 1e-9 {
		t.Errorf("550 nm = %g angstrom, expected 5500", v)
	}

	v, err = In(Quantity{Value: 5500, Unit: Angstrom}, Nanometer)
	if err != nil {
		t.Fatalf("In failed: %v", err)
	}
	if math.Abs(v-550) > 1e-9 {
		t.Errorf("5500 angstrom = %g nm, expected 550", v)
	}

	v, err = In(Quantity{Value: 0.047, Unit: NanometerPerPix}, AngstromPerPix)
	if err != nil {
		t.Fatalf("In failed: %v", err)
	}
	if math.Abs(v-0.47) > 1e-12 {
		t.Errorf("0.047 nm/pix = %g angstrom/pix, expected 0.47", v)
	}
}

// TestConvertMismatch verifies that incompatible units yield a
// ConversionError naming both units
func TestConvertMismatch(t *testing.T) {
	_, err := Convert(Quantity{Value: 1, Unit: Millimeter}, Pixel)
	if err == nil {
		t.Fatalf("expected a conversion error")
	}

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *ConversionError, got %T", err)
	}
	if convErr.From != Millimeter || convErr.To != Pixel {
		t.Errorf("error names %q -> %q, expected mm -> pix", convErr.From, convErr.To)
	}
}
