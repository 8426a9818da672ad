package mapper

import (
	"github.com/google/uuid"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Room shells
// ============================================================

const shellMinSpan = 100.0 // Drawing units, smaller footprints are noise
const shellWallOffset = 0.15
const shellWallThickness = 0.3
const shellConfidence = 0.6
const shellLayer = "shell"

// RoomBounds resolves a room footprint: explicit bounds first, then
// the vertex extents, then the legacy 1000x1000 placeholder.
func RoomBounds(room models.RoomDefinition) models.Bounds {
	if room.Bounds != nil && !room.Bounds.IsZero() {
		return *room.Bounds
	}

	var vertices [][]float64
	if room.Geometry != nil {
		vertices = room.Geometry.Vertices
	}

	var (
		minX, minY float64
		maxX, maxY float64
		found      bool
	)
	for _, v := range vertices {
		if len(v) != 2 {
			continue
		}
		x, y := v[0], v[1]
		if !found {
			minX, maxX, minY, maxY = x, x, y, y
			found = true
			continue
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if !found {
		return models.NewBounds(0, 1000, 0, 1000)
	}
	return models.NewBounds(minX, maxX, minY, maxY)
}

// BuildRoomShell synthesizes a floor slab, a ceiling slab and four
// perimeter walls for one room. Room bounds are drawing units, the
// emitted shell is in meters. The perimeter walls sit 0.15 m outside
// the footprint so their inner face stays flush with it; rooms
// spanning under 100 drawing units on either side yield nothing.
func BuildRoomShell(room models.RoomDefinition, scale float64, params models.AgentParameters) []models.FloorPlanElement {
	raw := RoomBounds(room)
	if raw.Width < shellMinSpan || raw.Height < shellMinSpan {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}

	b := raw.Scaled(scale)

	shell := make([]models.FloorPlanElement, 0, 6)

	floor := shellSlab(models.ElementFloor, b, params.FloorThickness, params.FloorThickness/2)
	floor.Properties.Material = "concrete"
	floor.Properties.Color = "#C0C0C0"
	shell = append(shell, floor)

	ceiling := shellSlab(models.ElementCeiling, b, params.CeilingThickness, params.CeilingHeight-params.CeilingThickness/2)
	ceiling.Properties.Material = "plaster"
	ceiling.Properties.Color = "#FAFAFA"
	shell = append(shell, ceiling)

	// Horizontal walls run past the corners so the shell closes.
	overhang := shellWallOffset + shellWallThickness/2
	shell = append(shell,
		shellWall(
			models.Point2D{X: b.MinX - overhang, Y: b.MinY - shellWallOffset},
			models.Point2D{X: b.MaxX + overhang, Y: b.MinY - shellWallOffset},
			params.WallHeight),
		shellWall(
			models.Point2D{X: b.MinX - overhang, Y: b.MaxY + shellWallOffset},
			models.Point2D{X: b.MaxX + overhang, Y: b.MaxY + shellWallOffset},
			params.WallHeight),
		shellWall(
			models.Point2D{X: b.MinX - shellWallOffset, Y: b.MinY},
			models.Point2D{X: b.MinX - shellWallOffset, Y: b.MaxY},
			params.WallHeight),
		shellWall(
			models.Point2D{X: b.MaxX + shellWallOffset, Y: b.MinY},
			models.Point2D{X: b.MaxX + shellWallOffset, Y: b.MaxY},
			params.WallHeight),
	)

	return shell
}

func shellSlab(elemType string, b models.Bounds, thickness, centerY float64) models.FloorPlanElement {
	center := b.Center()
	corners := []models.Point2D{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
	bounds := b

	return models.FloorPlanElement{
		ID:     uuid.NewString(),
		Type:   elemType,
		Layer:  shellLayer,
		Closed: true,
		Geometry: models.ElementGeometry{
			Points: corners,
			Bounds: &bounds,
			Center: &center,
		},
		Properties: models.ElementProperties{
			Confidence: shellConfidence,
			Height:     thickness,
			Thickness:  thickness,
		},
		Extrusion: &models.ExtrusionDescriptor{
			Shape:      "box",
			Dimensions: [3]float64{b.Width, thickness, b.Height},
			Position:   [3]float64{center.X, centerY, center.Y},
		},
	}
}

func shellWall(start, end models.Point2D, height float64) models.FloorPlanElement {
	extrusion := segmentBox([]models.Point2D{start, end}, height, shellWallThickness)
	bounds := pointBounds([]models.Point2D{start, end})
	center := bounds.Center()

	return models.FloorPlanElement{
		ID:    uuid.NewString(),
		Type:  models.ElementWall,
		Layer: shellLayer,
		Geometry: models.ElementGeometry{
			Points: []models.Point2D{start, end},
			Bounds: &bounds,
			Center: &center,
		},
		Properties: models.ElementProperties{
			Confidence: shellConfidence,
			Material:   "drywall",
			Color:      "#F5F5DC",
			Height:     height,
			Thickness:  shellWallThickness,
		},
		Extrusion: extrusion,
	}
}
