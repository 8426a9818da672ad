package geometry

import (
	"math"
	"testing"

	"fitit-backend/internal/processor/models"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestArcToPolyline_QuarterArc(t *testing.T) {
	center := models.Point2D{X: 0, Y: 0}
	start, sweep := arcSweep(0, 90)

	points := ArcToPolyline(center, 1000, start, sweep, 16)

	if len(points) != 17 {
		t.Fatalf("expected 17 points, got %d", len(points))
	}
	first, last := points[0], points[len(points)-1]
	if !almostEqual(first.X, 1000, 1e-9) || !almostEqual(first.Y, 0, 1e-9) {
		t.Errorf("expected first point (1000, 0), got (%f, %f)", first.X, first.Y)
	}
	if !almostEqual(last.X, 0, 1e-6) || !almostEqual(last.Y, 1000, 1e-6) {
		t.Errorf("expected last point (0, 1000), got (%f, %f)", last.X, last.Y)
	}
	for i, p := range points {
		if !almostEqual(center.DistanceTo(p), 1000, 1e-6) {
			t.Errorf("point %d drifted off the radius: (%f, %f)", i, p.X, p.Y)
		}
	}
}

func TestArcSweep_WrapsNegativeSweep(t *testing.T) {
	// 350 to 10 sweeps 20 degrees through zero, not -340.
	start, sweep := arcSweep(350, 10)
	if !almostEqual(start, 350*math.Pi/180, 1e-12) {
		t.Errorf("unexpected start angle %f", start)
	}
	if !almostEqual(sweep, 20*math.Pi/180, 1e-12) {
		t.Errorf("expected 20 degree sweep, got %f rad", sweep)
	}
}

func TestCircleToPolyline_ClosedRing(t *testing.T) {
	center := models.Point2D{X: 10, Y: -5}
	points := CircleToPolyline(center, 250, 32)

	if len(points) != 33 {
		t.Fatalf("expected 33 points, got %d", len(points))
	}
	if points[0] != points[len(points)-1] {
		t.Errorf("ring must repeat its first point, got first (%f, %f) last (%f, %f)",
			points[0].X, points[0].Y, points[len(points)-1].X, points[len(points)-1].Y)
	}
	for i, p := range points {
		if !almostEqual(center.DistanceTo(p), 250, 1e-6) {
			t.Errorf("point %d off the circle: (%f, %f)", i, p.X, p.Y)
		}
	}
}

func TestSplineToPolyline_EndpointInterpolation(t *testing.T) {
	ctrl := []models.Point2D{{X: 0, Y: 0}, {X: 5, Y: 10}, {X: 10, Y: 0}}
	points := SplineToPolyline(ctrl, 20)

	if len(points) != 21 {
		t.Fatalf("expected 21 points, got %d", len(points))
	}
	if !almostEqual(points[0].X, 0, 1e-9) || !almostEqual(points[0].Y, 0, 1e-9) {
		t.Errorf("curve must start at the first control point, got (%f, %f)", points[0].X, points[0].Y)
	}
	last := points[len(points)-1]
	if !almostEqual(last.X, 10, 1e-9) || !almostEqual(last.Y, 0, 1e-9) {
		t.Errorf("curve must end at the last control point, got (%f, %f)", last.X, last.Y)
	}
	// Quadratic Bezier peak at t=0.5 is half the control height.
	mid := points[10]
	if !almostEqual(mid.X, 5, 1e-9) || !almostEqual(mid.Y, 5, 1e-9) {
		t.Errorf("expected midpoint (5, 5), got (%f, %f)", mid.X, mid.Y)
	}
}

func TestSplineToPolyline_DegenerateInput(t *testing.T) {
	single := []models.Point2D{{X: 3, Y: 4}}
	points := SplineToPolyline(single, 20)
	if len(points) != 1 || points[0] != single[0] {
		t.Errorf("single control point must pass through unchanged, got %v", points)
	}
	if points := SplineToPolyline(nil, 20); len(points) != 0 {
		t.Errorf("empty input must stay empty, got %v", points)
	}
}

func TestWeldPoints_CollapsesRuns(t *testing.T) {
	points := []models.Point2D{
		{X: 0, Y: 0},
		{X: 0.0001, Y: 0},
		{X: 0.0002, Y: 0},
		{X: 5, Y: 0},
		{X: 5.0003, Y: 0},
		{X: 10, Y: 0},
	}

	out := WeldPoints(points, 0.001)

	if len(out) > len(points) {
		t.Fatalf("weld grew the point list: %d > %d", len(out), len(points))
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 points after welding, got %d", len(out))
	}
	if out[0] != points[0] {
		t.Errorf("first point must always survive, got (%f, %f)", out[0].X, out[0].Y)
	}
	if out[1].X != 5 || out[2].X != 10 {
		t.Errorf("unexpected kept points: %v", out)
	}
}

func TestWeldPoints_ComparesAgainstLastKept(t *testing.T) {
	// Each step is under tolerance but the run drifts past it. The
	// comparison against the last kept point must keep the drift.
	points := []models.Point2D{
		{X: 0, Y: 0},
		{X: 0.0006, Y: 0},
		{X: 0.0012, Y: 0},
		{X: 0.0018, Y: 0},
	}

	out := WeldPoints(points, 0.001)

	if len(out) != 2 {
		t.Fatalf("expected drift to survive as 2 points, got %d: %v", len(out), out)
	}
	if !almostEqual(out[1].X, 0.0012, 1e-12) {
		t.Errorf("expected second kept point at 0.0012, got %f", out[1].X)
	}
}

func TestNormalizeEntity_ClosesSmallGaps(t *testing.T) {
	n := NewNormalizer(DefaultOptions())

	entity := models.RawEntity{
		Type:  models.EntityLWPolyline,
		Layer: "ROOM",
		Geometry: models.PolylineGeometry{
			Points: []models.Point2D{
				{X: 0, Y: 0},
				{X: 10, Y: 0},
				{X: 10, Y: 10},
				{X: 0.005, Y: 0.005},
			},
		},
	}

	norm := n.NormalizeEntity(entity)

	if !norm.Closed {
		t.Fatal("expected the near-closed loop to be marked closed")
	}
	last := norm.Points[len(norm.Points)-1]
	if last.X != 0 || last.Y != 0 {
		t.Errorf("expected last point snapped onto (0, 0), got (%f, %f)", last.X, last.Y)
	}
}

func TestNormalizeEntity_CloseGapsDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.CloseGaps = false
	n := NewNormalizer(opts)

	entity := models.RawEntity{
		Type: models.EntityPolyline,
		Geometry: models.PolylineGeometry{
			Points: []models.Point2D{
				{X: 0, Y: 0},
				{X: 10, Y: 0},
				{X: 10, Y: 10},
				{X: 0.005, Y: 0.005},
			},
		},
	}

	norm := n.NormalizeEntity(entity)

	if norm.Closed {
		t.Error("gap closing is off, loop must stay open")
	}
	last := norm.Points[len(norm.Points)-1]
	if last.X != 0.005 {
		t.Errorf("last point must stay untouched, got (%f, %f)", last.X, last.Y)
	}
}

func TestNormalizeEntity_DropsNonFinitePoints(t *testing.T) {
	n := NewNormalizer(DefaultOptions())

	entity := models.RawEntity{
		Type: models.EntityPolyline,
		Geometry: models.PolylineGeometry{
			Points: []models.Point2D{
				{X: 0, Y: 0},
				{X: math.NaN(), Y: 5},
				{X: 10, Y: math.Inf(1)},
				{X: 10, Y: 10},
			},
		},
	}

	norm := n.NormalizeEntity(entity)

	if len(norm.Points) != 2 {
		t.Fatalf("expected 2 finite points, got %d", len(norm.Points))
	}
	for _, p := range norm.Points {
		if !p.Finite() {
			t.Errorf("non-finite point leaked through: (%f, %f)", p.X, p.Y)
		}
	}
}

func TestNormalizeEntity_UnknownKeepsLayer(t *testing.T) {
	n := NewNormalizer(DefaultOptions())

	norm := n.NormalizeEntity(models.RawEntity{
		Type:     "HATCH",
		Layer:    "FILL",
		Geometry: models.UnknownGeometry{},
	})

	if len(norm.Points) != 0 {
		t.Errorf("unknown geometry must yield no points, got %d", len(norm.Points))
	}
	if norm.Layer != "FILL" || norm.Type != "HATCH" {
		t.Errorf("layer and type must survive, got %q / %q", norm.Layer, norm.Type)
	}
}

func TestCalculateBounds(t *testing.T) {
	entities := []models.NormalizedEntity{
		{Points: []models.Point2D{{X: -5, Y: 2}, {X: 10, Y: 8}}},
		{Points: []models.Point2D{{X: 3, Y: -7}}},
		{}, // no points, must not disturb the box
	}

	b := CalculateBounds(entities)

	if b.MinX != -5 || b.MaxX != 10 || b.MinY != -7 || b.MaxY != 8 {
		t.Errorf("unexpected bounds: %+v", b)
	}
	if b.Width != 15 || b.Height != 15 {
		t.Errorf("unexpected size: %f x %f", b.Width, b.Height)
	}
}

func TestCalculateBounds_Empty(t *testing.T) {
	b := CalculateBounds(nil)
	if !b.IsZero() {
		t.Errorf("expected zero bounds for empty input, got %+v", b)
	}
}
