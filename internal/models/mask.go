package models

// Slit is one row of a mask definition file (MDF): the physical position
// and size of a single slit cut into the mask, in millimeters.
type Slit struct {
	// ID is an optional identifier carried through from the MDF
	ID int

	// PosMX, PosMY are the slit center coordinates on the mask in mm
	PosMX float64
	PosMY float64

	// SizeMX, SizeMY are the slit width and length in mm
	SizeMX float64
	SizeMY float64
}

// SlitSection is the derived detector footprint of one slit: the pixel
// bounding box columns SECX1..SECY2 plus the REFPIX1 wavelength reference
// pixel used for downstream wavelength calibration.
type SlitSection struct {
	SecX1 int
	SecX2 int
	SecY1 int
	SecY2 int

	// RefPix1 is the dispersion-axis pixel of the central wavelength,
	// adjusted for any clipping at the left frame edge
	RefPix1 float64
}

// MaskTable is an ordered mask definition table. Sections is nil until the
// table has been prepared by the geometry mapper; row order is slit order
// and is preserved by every operation.
type MaskTable struct {
	Slits    []Slit
	Sections []SlitSection
}

// Prepared reports whether the derived geometry columns are present for
// every slit row.
func (t *MaskTable) Prepared() bool {
	return t.Sections != nil && len(t.Sections) == len(t.Slits)
}

// Clone returns an independent copy of the table.
func (t *MaskTable) Clone() *MaskTable {
	out := &MaskTable{Slits: make([]Slit, len(t.Slits))}
	copy(out.Slits, t.Slits)
	if t.Sections != nil {
		out.Sections = make([]SlitSection, len(t.Sections))
		copy(out.Sections, t.Sections)
	}
	return out
}

// Cutout is one extracted slit sub-image, optionally paired with the
// matching uncertainty and mask planes cut from the same rectangle.
type Cutout struct {
	// Index is the slit row index in the mask table
	Index int

	// Name labels the data plane, e.g. "DATA_3"
	Name string

	Data        *Frame
	Uncertainty *Frame
	Mask        *Frame
}

// Bundle is the ordered collection of cutouts produced from one frame.
type Bundle struct {
	Cutouts []Cutout
}
