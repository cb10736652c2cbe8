// Package geometry maps slit positions from physical mask coordinates in
// millimeters to detector pixel sections. The mapping accounts for the
// collimator/camera plate scale, the anamorphic magnification of the
// disperser, the wavelength window placed on each slit, and the empirical
// distortion of the focal plane.
package geometry

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"gmosmask/internal/models"
)

// DefaultPlateScale is the focal-plane scale of the instrument in
// arcsec/mm, converting physical mask coordinates to sky angles.
const DefaultPlateScale = 1.611444

// Empirical x-distortion polynomial in the normalized y position,
// calibration constants for this instrument. Flagged for domain-expert
// review; do not re-derive.
const (
	xDistortC1 = 0.0014
	xDistortC2 = -0.0167
)

// spectrumWidthMargin pads the cross-dispersion extent for the curvature
// of the spectral trace.
const spectrumWidthMargin = 1.05

// Optics holds the validated optical parameters of one instrument setup.
// All values are in fixed base units: arcsec/pix for the plate scales,
// angstrom for wavelengths, angstrom/pix for the dispersion, pixels for
// offsets.
type Optics struct {
	// XScale, YScale are the per-axis detector plate scales in arcsec/pix
	XScale float64
	YScale float64

	// AnamorphicFactor is the dispersion-axis magnification of the grating
	AnamorphicFactor float64

	// WavelengthOffset shifts the dispersion window, in angstrom
	WavelengthOffset float64

	// SpectralPixelScale is the dispersion in angstrom/pix
	SpectralPixelScale float64

	// WavelengthStart, WavelengthCentral, WavelengthEnd bound the
	// wavelength window placed on every slit, in angstrom
	WavelengthStart   float64
	WavelengthCentral float64
	WavelengthEnd     float64

	// YDistortion are the cubic distortion coefficients applied to the
	// slit y position while still in mm: c0*y + c1*y^2 + c2*y^3.
	// The zero value means the identity {1, 0, 0}.
	YDistortion [3]float64

	// YOffset is a cross-dispersion shift in pixels
	YOffset float64

	// PlateScale is the mask focal-plane scale in arcsec/mm; zero selects
	// DefaultPlateScale
	PlateScale float64
}

// withDefaults fills the zero-value fields that have instrument defaults.
func (o Optics) withDefaults() Optics {
	if o.PlateScale == 0 {
		o.PlateScale = DefaultPlateScale
	}
	if o.YDistortion == [3]float64{} {
		o.YDistortion = [3]float64{1, 0, 0}
	}
	return o
}

// Validate checks the parameter set for values that would make the mapping
// meaningless. Unit consistency is established upstream by pkg/config; this
// guards the numeric preconditions.
func (o Optics) Validate() error {
	o = o.withDefaults()
	if o.XScale <= 0 || o.YScale <= 0 {
		return fmt.Errorf("plate scales must be positive, got x=%g y=%g", o.XScale, o.YScale)
	}
	if o.AnamorphicFactor == 0 {
		return fmt.Errorf("anamorphic factor must be non-zero")
	}
	if o.SpectralPixelScale <= 0 {
		return fmt.Errorf("spectral pixel scale must be positive, got %g", o.SpectralPixelScale)
	}
	if o.WavelengthEnd < o.WavelengthStart {
		return fmt.Errorf("wavelength window reversed: start=%g end=%g", o.WavelengthStart, o.WavelengthEnd)
	}
	if o.WavelengthCentral < o.WavelengthStart || o.WavelengthCentral > o.WavelengthEnd {
		return fmt.Errorf("central wavelength %g outside window [%g, %g]",
			o.WavelengthCentral, o.WavelengthStart, o.WavelengthEnd)
	}
	return nil
}

// Mapper computes slit sections for one instrument setup.
type Mapper struct {
	optics Optics
	log    zerolog.Logger
}

// NewMapper validates the optics and creates a mapper. A zero
// zerolog.Logger disables logging.
func NewMapper(optics Optics, log zerolog.Logger) (*Mapper, error) {
	if err := optics.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optics: %w", err)
	}
	return &Mapper{optics: optics.withDefaults(), log: log}, nil
}

// Prepare returns a copy of the table with the derived section columns
// populated for a detector of naxis1 x naxis2 pixels. The input table is
// not modified; the result is a pure function of the table and the optics.
func (m *Mapper) Prepare(table *models.MaskTable, naxis1, naxis2 int) (*models.MaskTable, error) {
	if naxis1 <= 0 || naxis2 <= 0 {
		return nil, fmt.Errorf("invalid detector dimensions %dx%d", naxis1, naxis2)
	}
	out := table.Clone()
	out.Sections = make([]models.SlitSection, len(out.Slits))

	o := m.optics
	xCenter := float64(naxis1) / 2
	yCenter := float64(naxis2) / 2

	specLength := int(math.RoundToEven((o.WavelengthEnd - o.WavelengthStart) / o.SpectralPixelScale))
	centralPix := float64(specLength) - (o.WavelengthCentral-o.WavelengthStart)/o.SpectralPixelScale
	offsetPix := o.WavelengthOffset / o.SpectralPixelScale

	m.log.Debug().
		Int("spectrumLength", specLength).
		Float64("centralWavelengthPixel", centralPix).
		Msg("dispersion window")

	for i, s := range out.Slits {
		slitLength := s.SizeMY * o.PlateScale // arcsec
		specWidth := int(math.RoundToEven(spectrumWidthMargin * slitLength / o.YScale))

		// Cubic distortion applied while the position is still in mm.
		my := s.PosMY
		correctedY := o.YDistortion[0]*my + o.YDistortion[1]*my*my + o.YDistortion[2]*my*my*my

		slitX := s.PosMX*o.PlateScale/o.XScale + xCenter
		slitY := correctedY*o.PlateScale/o.YScale + yCenter

		yNorm := slitY/float64(naxis2) - 0.5
		xDistort := float64(naxis1) * (xDistortC1*yNorm + xDistortC2*yNorm*yNorm)

		x1 := int(math.RoundToEven(xCenter-(xCenter-slitX)/o.AnamorphicFactor-centralPix) + offsetPix + xDistort)
		x2 := x1 + specLength
		y1 := int(math.RoundToEven(slitY - float64(specWidth)/2 + o.YOffset))
		y2 := y1 + specWidth

		m.log.Debug().
			Int("slit", i).
			Int("x1", x1).Int("x2", x2).
			Int("y1", y1).Int("y2", y2).
			Msg("section before clipping")

		// Clipping at the left frame edge shifts the wavelength zero
		// point; the reference pixel absorbs the shift so wavelength
		// calibration can recover it.
		refPix := centralPix
		if x1 < 0 {
			refPix += float64(x1)
		}

		out.Sections[i] = models.SlitSection{
			SecX1:   clamp(x1, 0, naxis1),
			SecX2:   clamp(x2, 0, naxis1),
			SecY1:   clamp(y1, 0, naxis2),
			SecY2:   clamp(y2, 0, naxis2),
			RefPix1: refPix,
		}
	}
	return out, nil
}

// PrepareInPlace augments the passed table itself. The mutation is the
// explicitly chosen variant of Prepare for callers that own the table.
func (m *Mapper) PrepareInPlace(table *models.MaskTable, naxis1, naxis2 int) error {
	out, err := m.Prepare(table, naxis1, naxis2)
	if err != nil {
		return err
	}
	table.Sections = out.Sections
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
