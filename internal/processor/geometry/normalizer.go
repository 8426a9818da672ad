package geometry

import (
	"math"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Normalizer
// ============================================================

const defaultArcSegments = 16    // Chords per arc tessellation
const defaultCircleSegments = 32 // Chords per full circle ring
const defaultSplineSegments = 20 // Bezier sampling steps
const defaultWeldTolerance = 0.001
const defaultGapTolerance = 0.01 // Snap distance for nearly closed loops

// Options control tessellation density and point cleanup. Zero or
// negative values fall back to the defaults above.
type Options struct {
	ArcSegments    int     `yaml:"arc_segments" json:"arcSegments"`
	CircleSegments int     `yaml:"circle_segments" json:"circleSegments"`
	SplineSegments int     `yaml:"spline_segments" json:"splineSegments"`
	WeldTolerance  float64 `yaml:"weld_tolerance" json:"weldTolerance"`
	GapTolerance   float64 `yaml:"gap_tolerance" json:"gapTolerance"`
	CloseGaps      bool    `yaml:"close_gaps" json:"closeGaps"`
}

func DefaultOptions() Options {
	return Options{
		ArcSegments:    defaultArcSegments,
		CircleSegments: defaultCircleSegments,
		SplineSegments: defaultSplineSegments,
		WeldTolerance:  defaultWeldTolerance,
		GapTolerance:   defaultGapTolerance,
		CloseGaps:      true,
	}
}

func (o Options) sanitized() Options {
	d := DefaultOptions()
	if o.ArcSegments <= 0 {
		o.ArcSegments = d.ArcSegments
	}
	if o.CircleSegments <= 0 {
		o.CircleSegments = d.CircleSegments
	}
	if o.SplineSegments <= 0 {
		o.SplineSegments = d.SplineSegments
	}
	if o.WeldTolerance <= 0 {
		o.WeldTolerance = d.WeldTolerance
	}
	if o.GapTolerance <= 0 {
		o.GapTolerance = d.GapTolerance
	}
	return o
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts.sanitized()}
}

// NormalizeEntities flattens every entity into a polyline point list.
// Entities never vanish here: unknown geometry keeps its layer and an
// empty point list so classification can still count it.
func (n *Normalizer) NormalizeEntities(entities []models.RawEntity) []models.NormalizedEntity {
	out := make([]models.NormalizedEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, n.NormalizeEntity(e))
	}
	return out
}

func (n *Normalizer) NormalizeEntity(e models.RawEntity) models.NormalizedEntity {
	norm := models.NormalizedEntity{
		Type:       e.Type,
		Layer:      e.Layer,
		Properties: e.Properties,
	}

	switch geom := e.Geometry.(type) {
	case models.LineGeometry:
		points := dropNonFinite([]models.Point2D{geom.Start, geom.End})
		norm.Points = WeldPoints(points, n.opts.WeldTolerance)

	case models.PolylineGeometry:
		points := WeldPoints(dropNonFinite(geom.Points), n.opts.WeldTolerance)
		norm.Points = points
		norm.Closed = geom.Closed
		n.closeLoop(&norm)

	case models.ArcGeometry:
		start, sweep := arcSweep(geom.StartAngle, geom.EndAngle)
		norm.Points = ArcToPolyline(geom.Center, geom.Radius, start, sweep, n.opts.ArcSegments)

	case models.CircleGeometry:
		norm.Points = CircleToPolyline(geom.Center, geom.Radius, n.opts.CircleSegments)
		norm.Closed = true

	case models.SplineGeometry:
		ctrl := WeldPoints(dropNonFinite(geom.ControlPoints), n.opts.WeldTolerance)
		norm.Points = SplineToPolyline(ctrl, n.opts.SplineSegments)
		n.closeLoop(&norm)

	case models.UnknownGeometry:
		// No geometry to flatten, entity still counts downstream.
	}

	return norm
}

// closeLoop snaps the last point onto the first when the remaining
// gap is within tolerance, marking the loop closed.
func (n *Normalizer) closeLoop(norm *models.NormalizedEntity) {
	if !n.opts.CloseGaps || len(norm.Points) < 3 {
		return
	}
	first := norm.Points[0]
	last := norm.Points[len(norm.Points)-1]
	if first == last {
		norm.Closed = true
		return
	}
	if first.DistanceTo(last) <= n.opts.GapTolerance {
		norm.Points[len(norm.Points)-1] = first
		norm.Closed = true
	}
}

// ============================================================
// Tessellation
// ============================================================

// arcSweep converts wire angles (degrees, counter-clockwise) into a
// start angle and positive sweep in radians. A non-positive sweep
// wraps around through 360.
func arcSweep(startDeg, endDeg float64) (start, sweep float64) {
	sweepDeg := endDeg - startDeg
	if sweepDeg <= 0 {
		sweepDeg += 360
	}
	return startDeg * math.Pi / 180, sweepDeg * math.Pi / 180
}

// ArcToPolyline samples an arc into segments chords. Angles are
// radians. The result has segments+1 points including both endpoints.
func ArcToPolyline(center models.Point2D, radius, start, sweep float64, segments int) []models.Point2D {
	if segments < 1 {
		segments = 1
	}
	points := make([]models.Point2D, 0, segments+1)
	for i := 0; i <= segments; i++ {
		angle := start + sweep*float64(i)/float64(segments)
		points = append(points, models.Point2D{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		})
	}
	return points
}

// CircleToPolyline samples a full circle into a closed ring. The
// result has segments+1 points with the first repeated at the end.
func CircleToPolyline(center models.Point2D, radius float64, segments int) []models.Point2D {
	if segments < 3 {
		segments = 3
	}
	points := make([]models.Point2D, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		points = append(points, models.Point2D{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		})
	}
	points = append(points, points[0])
	return points
}

// SplineToPolyline evaluates the control polygon as a single Bezier
// curve sampled at segments+1 parameter values. Fewer than two
// control points pass through unchanged.
func SplineToPolyline(ctrl []models.Point2D, segments int) []models.Point2D {
	if len(ctrl) < 2 {
		return append([]models.Point2D{}, ctrl...)
	}
	if segments < 1 {
		segments = 1
	}

	n := len(ctrl) - 1
	points := make([]models.Point2D, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		var x, y float64
		for k, p := range ctrl {
			b := binomial(n, k) * math.Pow(1-t, float64(n-k)) * math.Pow(t, float64(k))
			x += b * p.X
			y += b * p.Y
		}
		points = append(points, models.Point2D{X: x, Y: y})
	}
	return points
}

// ============================================================
// Point cleanup
// ============================================================

// WeldPoints drops points closer than tolerance to the last kept
// point. The first point always survives, so output length never
// exceeds input length.
func WeldPoints(points []models.Point2D, tolerance float64) []models.Point2D {
	if len(points) == 0 {
		return points
	}
	out := make([]models.Point2D, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p.DistanceTo(out[len(out)-1]) >= tolerance {
			out = append(out, p)
		}
	}
	return out
}

func dropNonFinite(points []models.Point2D) []models.Point2D {
	out := points[:0:0]
	for _, p := range points {
		if p.Finite() {
			out = append(out, p)
		}
	}
	return out
}

// CalculateBounds computes the axis-aligned bounding box over every
// point of every entity. No points yields the zero bounds.
func CalculateBounds(entities []models.NormalizedEntity) models.Bounds {
	var (
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
		found      bool
	)
	for _, e := range entities {
		for _, p := range e.Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
			found = true
		}
	}
	if !found {
		return models.Bounds{}
	}
	return models.NewBounds(minX, maxX, minY, maxY)
}

func binomial(n, k int) float64 {
	result := 1.0
	for j := 0; j < k; j++ {
		result = result * float64(n-j) / float64(j+1)
	}
	return result
}
