package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FitYDistortion solves for the cubic y-distortion coefficients from
// measured slit positions, typically edge centroids found on a flat field.
// slitYmm are the mask y positions in mm, measuredPix the corresponding
// detected pixel rows on a detector naxis2 rows tall. The fit inverts the
// same mm-to-pixel conversion Prepare applies, so refitting with the
// returned coefficients reproduces the measured rows in the least-squares
// sense.
func FitYDistortion(slitYmm, measuredPix []float64, naxis2 int, optics Optics) ([3]float64, error) {
	var coeffs [3]float64
	if len(slitYmm) != len(measuredPix) {
		return coeffs, fmt.Errorf("mismatched inputs: %d slit positions, %d measurements",
			len(slitYmm), len(measuredPix))
	}
	if len(slitYmm) < 3 {
		return coeffs, fmt.Errorf("need at least 3 measurements to fit a cubic, got %d", len(slitYmm))
	}
	o := optics.withDefaults()
	if err := o.Validate(); err != nil {
		return coeffs, fmt.Errorf("invalid optics: %w", err)
	}

	// Remove the linear mm-to-pixel mapping so the target is the
	// distorted mm position itself.
	yCenter := float64(naxis2) / 2
	b := mat.NewDense(len(measuredPix), 1, nil)
	a := mat.NewDense(len(slitYmm), 3, nil)
	for i, my := range slitYmm {
		b.Set(i, 0, (measuredPix[i]-yCenter)*o.YScale/o.PlateScale)
		a.Set(i, 0, my)
		a.Set(i, 1, my*my)
		a.Set(i, 2, my*my*my)
	}

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return coeffs, fmt.Errorf("distortion fit failed: %w", err)
	}
	for i := range coeffs {
		coeffs[i] = sol.At(i, 0)
	}
	return coeffs, nil
}
