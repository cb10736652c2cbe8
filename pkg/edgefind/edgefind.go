// Package edgefind locates slit-mask edges in a flat-field frame. The mask
// vignettes the illumination, so differentiating along the row axis turns
// each slit boundary into a sharp positive or negative excursion of the
// median row gradient; robust clipping of that profile leaves exactly the
// excursions, which are grouped and collapsed to sub-pixel centroids.
package edgefind

import (
	"math"

	"github.com/rs/zerolog"

	"gmosmask/internal/models"
)

// Params configures an edge search.
type Params struct {
	// ColumnLo, ColumnHi select the column subset [lo,hi) used for the
	// row medians. Both zero means the full row.
	ColumnLo int
	ColumnHi int

	// SmoothSigma is the Gaussian sigma applied to the gradient profile
	SmoothSigma float64

	// ClipSigma and ClipIters drive the iterative sigma clipping that
	// separates edge samples from the flat background
	ClipSigma float64
	ClipIters int
}

// DefaultParams returns the standard search parameters.
func DefaultParams() Params {
	return Params{
		SmoothSigma: 3,
		ClipSigma:   2,
		ClipIters:   5,
	}
}

// MaskedProfile is the smoothed gradient profile together with a mask
// selecting the samples attributed to one edge class. Exposed for
// diagnostics and calibration plots.
type MaskedProfile struct {
	Values []float64
	Kept   []bool
}

// Result holds the outcome of one edge search. LowerEdges are the
// centroids of rising-gradient groups, UpperEdges of falling-gradient
// groups, each in increasing row order.
type Result struct {
	Peaks      MaskedProfile
	Troughs    MaskedProfile
	LowerEdges []float64
	UpperEdges []float64
}

// Finder runs edge searches with a fixed parameter set.
type Finder struct {
	params Params
	log    zerolog.Logger
}

// New creates a finder. Zero-valued search parameters select the defaults;
// a zero zerolog.Logger disables logging.
func New(params Params, log zerolog.Logger) *Finder {
	def := DefaultParams()
	if params.SmoothSigma == 0 {
		params.SmoothSigma = def.SmoothSigma
	}
	if params.ClipSigma == 0 {
		params.ClipSigma = def.ClipSigma
	}
	if params.ClipIters == 0 {
		params.ClipIters = def.ClipIters
	}
	return &Finder{params: params, log: log}
}

// Find computes the gradient profile of the frame and reports the grouped
// edge positions. A frame with fewer than two rows, or a profile with no
// clipped samples, yields an empty result without error.
func (f *Finder) Find(frame *models.Frame) (*Result, error) {
	res := &Result{LowerEdges: []float64{}, UpperEdges: []float64{}}
	if frame == nil || frame.Height < 2 || frame.Width == 0 {
		return res, nil
	}

	lo, hi := f.params.ColumnLo, f.params.ColumnHi
	if lo == 0 && hi == 0 {
		hi = frame.Width
	}
	if lo < 0 {
		lo = 0
	}
	if hi > frame.Width {
		hi = frame.Width
	}
	if hi <= lo {
		return res, nil
	}

	// First difference along the row axis, reduced to a 1D profile by the
	// median over the selected columns.
	raw := make([]float64, frame.Height-1)
	diff := make([]float64, hi-lo)
	for y := 0; y < frame.Height-1; y++ {
		next, cur := frame.Row(y+1), frame.Row(y)
		for x := lo; x < hi; x++ {
			diff[x-lo] = next[x] - cur[x]
		}
		raw[y] = median(diff)
	}

	smoothed := gaussianSmooth(raw, f.params.SmoothSigma)
	clipped := sigmaClip(smoothed, f.params.ClipSigma, f.params.ClipIters)

	peakMask := make([]bool, len(smoothed))
	troughMask := make([]bool, len(smoothed))
	for i, isEdge := range clipped {
		if !isEdge {
			continue
		}
		if smoothed[i] >= 0 {
			peakMask[i] = true
		} else {
			troughMask[i] = true
		}
	}

	res.Peaks = MaskedProfile{Values: smoothed, Kept: peakMask}
	res.Troughs = MaskedProfile{Values: smoothed, Kept: troughMask}
	res.LowerEdges = groupCentroids(peakMask, raw)
	res.UpperEdges = groupCentroids(troughMask, raw)

	f.log.Debug().
		Int("rows", frame.Height).
		Int("lowerEdges", len(res.LowerEdges)).
		Int("upperEdges", len(res.UpperEdges)).
		Msg("edge search complete")

	return res, nil
}

// groupCentroids collapses maximal runs of consecutive masked indices to
// centroids weighted by the raw gradient magnitude at each index. Runs of
// length one carry no centroid information and are dropped as noise. A run
// whose weights sum to zero falls back to the unweighted mean.
func groupCentroids(mask []bool, raw []float64) []float64 {
	centroids := []float64{}
	start := -1
	for i := 0; i <= len(mask); i++ {
		inRun := i < len(mask) && mask[i]
		if inRun && start < 0 {
			start = i
		}
		if !inRun && start >= 0 {
			if i-start > 1 {
				centroids = append(centroids, runCentroid(start, i, raw))
			}
			start = -1
		}
	}
	return centroids
}

func runCentroid(start, end int, raw []float64) float64 {
	var wsum, sum float64
	for i := start; i < end; i++ {
		w := math.Abs(raw[i])
		wsum += w
		sum += w * float64(i)
	}
	if wsum == 0 {
		return float64(start+end-1) / 2
	}
	return sum / wsum
}
