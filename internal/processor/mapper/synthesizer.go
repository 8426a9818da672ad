package mapper

import (
	"math"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Extrusion synthesis
// ============================================================

const wallThickness = 0.3 // Fixed box depths in meters
const doorThickness = 0.1
const windowThickness = 0.1
const fixtureHeight = 0.8 // Kitchen blocks, sanitary ware, furniture

// SynthesizeExtrusion builds the 3D box for one classified element.
// Points are in meters. The vertical axis is Y, a plan point (x, y)
// lands at (x, ., y). Returns nil when the geometry cannot support a
// box, callers skip such elements instead of failing.
func SynthesizeExtrusion(elemType string, points []models.Point2D, params models.AgentParameters) *models.ExtrusionDescriptor {
	switch elemType {
	case models.ElementWall:
		return segmentBox(points, params.WallHeight, wallThickness)
	case models.ElementDoor:
		return segmentBox(points, params.DoorHeight, doorThickness)
	case models.ElementWindow:
		return segmentBox(points, params.WindowHeight, windowThickness)
	case models.ElementFloor, models.ElementSpace:
		return slabBox(points, params.FloorThickness, params.FloorThickness/2)
	case models.ElementCeiling:
		return slabBox(points, params.CeilingThickness, params.CeilingHeight-params.CeilingThickness/2)
	case models.ElementKitchen, models.ElementSanitary, models.ElementFurniture:
		return fixtureBox(points)
	}
	return nil
}

// segmentBox treats the first and last point as a wall-like run and
// extrudes a box along it.
func segmentBox(points []models.Point2D, height, thickness float64) *models.ExtrusionDescriptor {
	if len(points) < 2 || height <= 0 {
		return nil
	}

	start := points[0]
	end := points[len(points)-1]
	length := start.DistanceTo(end)
	if length <= 0 {
		return nil
	}

	angle := math.Atan2(end.Y-start.Y, end.X-start.X)

	return &models.ExtrusionDescriptor{
		Shape:      "box",
		Dimensions: [3]float64{length, height, thickness},
		Position:   [3]float64{(start.X + end.X) / 2, height / 2, (start.Y + end.Y) / 2},
		Rotation:   [3]float64{0, angle, 0},
	}
}

// slabBox lays a horizontal slab over the footprint of the points,
// centered vertically at centerY.
func slabBox(points []models.Point2D, thickness, centerY float64) *models.ExtrusionDescriptor {
	if len(points) < 2 || thickness <= 0 {
		return nil
	}

	b := pointBounds(points)
	if b.Width <= 0 || b.Height <= 0 {
		return nil
	}
	center := b.Center()

	return &models.ExtrusionDescriptor{
		Shape:      "box",
		Dimensions: [3]float64{b.Width, thickness, b.Height},
		Position:   [3]float64{center.X, centerY, center.Y},
	}
}

// fixtureBox wraps a fixture footprint in an axis-aligned box of
// counter height.
func fixtureBox(points []models.Point2D) *models.ExtrusionDescriptor {
	if len(points) < 2 {
		return nil
	}

	b := pointBounds(points)
	center := b.Center()

	return &models.ExtrusionDescriptor{
		Shape:      "box",
		Dimensions: [3]float64{b.Width, fixtureHeight, b.Height},
		Position:   [3]float64{center.X, fixtureHeight / 2, center.Y},
	}
}

func pointBounds(points []models.Point2D) models.Bounds {
	if len(points) == 0 {
		return models.Bounds{}
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return models.NewBounds(minX, maxX, minY, maxY)
}
