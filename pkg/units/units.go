// Package units provides tagged physical quantities for the slit geometry
// pipeline. Every millimeter/arcsecond/angstrom/pixel conversion in the
// module goes through this package, so a unit mismatch surfaces as a
// configuration error at the boundary instead of a silent numeric bug deep
// in the mapping.
package units

import "fmt"

// Unit identifies a physical unit or unit ratio recognized by the pipeline.
type Unit string

const (
	Millimeter      Unit = "mm"
	Arcsec          Unit = "arcsec"
	Angstrom        Unit = "angstrom"
	Nanometer       Unit = "nm"
	Pixel           Unit = "pix"
	ArcsecPerMM     Unit = "arcsec/mm"
	ArcsecPerPix    Unit = "arcsec/pix"
	AngstromPerPix  Unit = "angstrom/pix"
	NanometerPerPix Unit = "nm/pix"
	Dimensionless   Unit = ""
)

// Quantity is a value tagged with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// ConversionError reports an attempted conversion between incompatible
// units; it is a configuration error, never recoverable at runtime.
type ConversionError struct {
	From Unit
	To   Unit
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %q", e.From, e.To)
}

// factors holds the scale factor between directly convertible unit pairs.
var factors = map[[2]Unit]float64{
	{Nanometer, Angstrom}:             10,
	{Angstrom, Nanometer}:             0.1,
	{NanometerPerPix, AngstromPerPix}: 10,
	{AngstromPerPix, NanometerPerPix}: 0.1,
}

// Parse validates a unit string against the recognized set.
func Parse(s string) (Unit, error) {
	switch Unit(s) {
	case Millimeter, Arcsec, Angstrom, Nanometer, Pixel,
		ArcsecPerMM, ArcsecPerPix, AngstromPerPix, NanometerPerPix,
		Dimensionless:
		return Unit(s), nil
	}
	return Dimensionless, fmt.Errorf("unrecognized unit %q", s)
}

// Convert expresses q in the target unit. Identical units pass through;
// anything without a known conversion factor yields a ConversionError.
func Convert(q Quantity, to Unit) (Quantity, error) {
	if q.Unit == to {
		return q, nil
	}
	if f, ok := factors[[2]Unit{q.Unit, to}]; ok {
		return Quantity{Value: q.Value * f, Unit: to}, nil
	}
	return Quantity{}, &ConversionError{From: q.Unit, To: to}
}

// In is Convert returning the bare value, for use after unit validation.
func In(q Quantity, to Unit) (float64, error) {
	out, err := Convert(q, to)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}
