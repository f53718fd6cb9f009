package locate

// Params holds grid-location tuning parameters. The defaults were
// calibrated against the reference screenshot corpus; expose them so a
// caller can adjust for unusual capture conditions without recompiling.
type Params struct {
	// Gray grid-line segmentation (tier 1), HSV bounds on OpenCV scale.
	// Grid lines are low-saturation, mid-brightness gray.
	GraySatMax float64
	GrayValMin float64
	GrayValMax float64

	// Tier 1 candidate acceptance: the grid region must be roughly
	// square and occupy a sane fraction of the image.
	MinAspect   float64 // min(w,h)/max(w,h)
	MinAreaFrac float64
	MaxAreaFrac float64

	// Hough line detection (tier 2)
	HoughThreshold   int
	HoughMinLineLen  float32
	HoughMaxLineGap  float32
	MinLineLength    float64 // Segments shorter than this are noise
	AngleTolerance   float64 // Degrees off horizontal/vertical to still count
	ClusterTolerance float64 // Pixels; nearby parallel segments merge into one line
	MinLineSpacing   float64 // Candidate grids with tighter spacing are rejected

	// Contour fallback (tier 3)
	FallbackMinAspect float64
	FallbackMinArea   float64
}

// DefaultParams returns grid-location parameters tuned for rehab-app
// screenshots photographed at typical phone resolutions.
func DefaultParams() Params {
	return Params{
		GraySatMax: 40,
		GrayValMin: 120,
		GrayValMax: 220,

		MinAspect:   0.8,
		MinAreaFrac: 0.05,
		MaxAreaFrac: 0.8,

		HoughThreshold:   50,
		HoughMinLineLen:  50,
		HoughMaxLineGap:  10,
		MinLineLength:    30,
		AngleTolerance:   10,
		ClusterTolerance: 15,
		MinLineSpacing:   10,

		FallbackMinAspect: 0.7,
		FallbackMinArea:   10000,
	}
}

// WithGrayBand returns a copy with the tier-1 grid-line band adjusted,
// for renderings that draw the grid in a lighter or darker gray.
func (p Params) WithGrayBand(satMax, valMin, valMax float64) Params {
	p.GraySatMax = satMax
	p.GrayValMin = valMin
	p.GrayValMax = valMax
	return p
}

// WithAreaRange returns a copy accepting tier-1 candidates covering a
// different fraction range of the image.
func (p Params) WithAreaRange(minFrac, maxFrac float64) Params {
	p.MinAreaFrac = minFrac
	p.MaxAreaFrac = maxFrac
	return p
}
