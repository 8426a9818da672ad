package mapper

import (
	"math"
	"testing"

	"fitit-backend/internal/processor/models"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestSynthesizeExtrusion_Wall(t *testing.T) {
	params := models.DefaultParameters()
	points := []models.Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}}

	box := SynthesizeExtrusion(models.ElementWall, points, params)

	if box == nil {
		t.Fatal("expected a box")
	}
	if box.Shape != "box" {
		t.Errorf("expected shape box, got %q", box.Shape)
	}
	if !approx(box.Dimensions[0], 5) || !approx(box.Dimensions[1], 3.0) || !approx(box.Dimensions[2], 0.3) {
		t.Errorf("unexpected wall dimensions: %v", box.Dimensions)
	}
	if !approx(box.Position[0], 2.5) || !approx(box.Position[1], 1.5) || !approx(box.Position[2], 0) {
		t.Errorf("unexpected wall position: %v", box.Position)
	}
	if !approx(box.Rotation[1], 0) {
		t.Errorf("horizontal wall must not rotate, got %v", box.Rotation)
	}
}

func TestSynthesizeExtrusion_WallRotation(t *testing.T) {
	params := models.DefaultParameters()
	points := []models.Point2D{{X: 0, Y: 0}, {X: 0, Y: 4}}

	box := SynthesizeExtrusion(models.ElementWall, points, params)

	if box == nil {
		t.Fatal("expected a box")
	}
	if !approx(box.Dimensions[0], 4) {
		t.Errorf("expected length 4, got %f", box.Dimensions[0])
	}
	if !approx(box.Rotation[1], math.Pi/2) {
		t.Errorf("vertical wall must rotate 90 degrees, got %f", box.Rotation[1])
	}
	if !approx(box.Position[0], 0) || !approx(box.Position[2], 2) {
		t.Errorf("unexpected position: %v", box.Position)
	}
}

func TestSynthesizeExtrusion_Openings(t *testing.T) {
	params := models.DefaultParameters()
	points := []models.Point2D{{X: 1, Y: 1}, {X: 2, Y: 1}}

	door := SynthesizeExtrusion(models.ElementDoor, points, params)
	if door == nil {
		t.Fatal("expected a door box")
	}
	if !approx(door.Dimensions[1], 2.1) || !approx(door.Dimensions[2], 0.1) {
		t.Errorf("unexpected door dimensions: %v", door.Dimensions)
	}
	if !approx(door.Position[1], 1.05) {
		t.Errorf("door must sit at half height, got %f", door.Position[1])
	}

	window := SynthesizeExtrusion(models.ElementWindow, points, params)
	if window == nil {
		t.Fatal("expected a window box")
	}
	if !approx(window.Dimensions[1], 1.2) || !approx(window.Dimensions[2], 0.1) {
		t.Errorf("unexpected window dimensions: %v", window.Dimensions)
	}
}

func TestSynthesizeExtrusion_SpaceSlab(t *testing.T) {
	params := models.DefaultParameters()
	points := []models.Point2D{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 5}, {X: 0, Y: 5}, {X: 0, Y: 0},
	}

	slab := SynthesizeExtrusion(models.ElementSpace, points, params)

	if slab == nil {
		t.Fatal("expected a slab")
	}
	if !approx(slab.Dimensions[0], 4) || !approx(slab.Dimensions[1], 0.2) || !approx(slab.Dimensions[2], 5) {
		t.Errorf("unexpected slab dimensions: %v", slab.Dimensions)
	}
	if !approx(slab.Position[0], 2) || !approx(slab.Position[1], 0.1) || !approx(slab.Position[2], 2.5) {
		t.Errorf("slab must sit half sunk at the centroid: %v", slab.Position)
	}
}

func TestSynthesizeExtrusion_CeilingSlab(t *testing.T) {
	params := models.DefaultParameters()
	points := []models.Point2D{{X: 0, Y: 0}, {X: 4, Y: 5}}

	slab := SynthesizeExtrusion(models.ElementCeiling, points, params)

	if slab == nil {
		t.Fatal("expected a ceiling slab")
	}
	if !approx(slab.Dimensions[1], 0.15) {
		t.Errorf("unexpected ceiling thickness: %v", slab.Dimensions)
	}
	// ceilingHeight 3.0 minus half the slab.
	if !approx(slab.Position[1], 2.925) {
		t.Errorf("expected ceiling center at 2.925, got %f", slab.Position[1])
	}
}

func TestSynthesizeExtrusion_Fixture(t *testing.T) {
	params := models.DefaultParameters()
	points := []models.Point2D{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 3}, {X: 1, Y: 3}}

	box := SynthesizeExtrusion(models.ElementKitchen, points, params)

	if box == nil {
		t.Fatal("expected a fixture box")
	}
	if !approx(box.Dimensions[0], 1) || !approx(box.Dimensions[1], 0.8) || !approx(box.Dimensions[2], 2) {
		t.Errorf("unexpected fixture dimensions: %v", box.Dimensions)
	}
	if !approx(box.Position[1], 0.4) {
		t.Errorf("fixture must sit on the floor, got center %f", box.Position[1])
	}
}

func TestSynthesizeExtrusion_Skips(t *testing.T) {
	params := models.DefaultParameters()
	segment := []models.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}}

	if box := SynthesizeExtrusion(models.ElementText, segment, params); box != nil {
		t.Error("text must produce no box")
	}
	if box := SynthesizeExtrusion("something-else", segment, params); box != nil {
		t.Error("unknown type must produce no box")
	}
	if box := SynthesizeExtrusion(models.ElementWall, []models.Point2D{{X: 1, Y: 1}}, params); box != nil {
		t.Error("single point must produce no box")
	}
	zero := []models.Point2D{{X: 2, Y: 2}, {X: 2, Y: 2}}
	if box := SynthesizeExtrusion(models.ElementWall, zero, params); box != nil {
		t.Error("zero-length segment must produce no box")
	}
	line := []models.Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}}
	if box := SynthesizeExtrusion(models.ElementSpace, line, params); box != nil {
		t.Error("a degenerate flat footprint must produce no slab")
	}
}
