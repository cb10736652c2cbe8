// Package cutout extracts per-slit sub-images from a full detector frame
// using the pixel sections computed by pkg/geometry.
package cutout

import (
	"errors"
	"fmt"

	"gmosmask/internal/models"
)

// CutSentinel marks extracted regions in the annotated copy of the source
// frame.
const CutSentinel = -1000

// ErrTableNotPrepared is returned when the mask table lacks the derived
// geometry sections.
var ErrTableNotPrepared = errors.New("mask table has not been prepared")

// Options selects the optional planes and outputs of a cut.
type Options struct {
	// Uncertainty and Mask are sliced with the same rectangles as the
	// data frame when present
	Uncertainty *models.Frame
	Mask        *models.Frame

	// ReturnCutImage requests an annotated copy of the source frame with
	// every extracted rectangle stamped with CutSentinel
	ReturnCutImage bool
}

// Cut slices each slit section out of the frame. The returned bundle holds
// one cutout per table row in row order; the annotated frame is nil unless
// requested. The source frame and any supplied planes are never modified.
func Cut(frame *models.Frame, table *models.MaskTable, opts Options) (*models.Bundle, *models.Frame, error) {
	if !table.Prepared() {
		return nil, nil, ErrTableNotPrepared
	}
	if opts.Uncertainty != nil && (opts.Uncertainty.Width != frame.Width || opts.Uncertainty.Height != frame.Height) {
		return nil, nil, fmt.Errorf("uncertainty plane is %dx%d, frame is %dx%d",
			opts.Uncertainty.Width, opts.Uncertainty.Height, frame.Width, frame.Height)
	}
	if opts.Mask != nil && (opts.Mask.Width != frame.Width || opts.Mask.Height != frame.Height) {
		return nil, nil, fmt.Errorf("mask plane is %dx%d, frame is %dx%d",
			opts.Mask.Width, opts.Mask.Height, frame.Width, frame.Height)
	}

	var annotated *models.Frame
	if opts.ReturnCutImage {
		annotated = frame.Clone()
	}

	bundle := &models.Bundle{Cutouts: make([]models.Cutout, 0, len(table.Sections))}
	for i, sec := range table.Sections {
		c := models.Cutout{
			Index: i,
			Name:  fmt.Sprintf("DATA_%d", i),
			Data:  frame.Region(sec.SecX1, sec.SecX2, sec.SecY1, sec.SecY2),
		}
		if annotated != nil {
			annotated.Fill(sec.SecX1, sec.SecX2, sec.SecY1, sec.SecY2, CutSentinel)
		}
		if opts.Uncertainty != nil {
			c.Uncertainty = opts.Uncertainty.Region(sec.SecX1, sec.SecX2, sec.SecY1, sec.SecY2)
		}
		if opts.Mask != nil {
			c.Mask = opts.Mask.Region(sec.SecX1, sec.SecX2, sec.SecY1, sec.SecY2)
		}
		bundle.Cutouts = append(bundle.Cutouts, c)
	}
	return bundle, annotated, nil
}
