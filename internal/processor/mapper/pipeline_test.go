package mapper

import (
	"errors"
	"strings"
	"testing"

	"fitit-backend/internal/processor/geometry"
	"fitit-backend/internal/processor/layers"
	"fitit-backend/internal/processor/models"
)

func wallLine(x1, y1, x2, y2 float64) models.RawEntity {
	return models.RawEntity{
		Type:  models.EntityLine,
		Layer: "WALL",
		Geometry: models.LineGeometry{
			Start: models.Point2D{X: x1, Y: y1},
			End:   models.Point2D{X: x2, Y: y2},
		},
	}
}

func testProcessor() *Processor {
	return NewProcessor(geometry.DefaultOptions(), layers.NewMemoryStore())
}

func TestProcess_FourWallRoom(t *testing.T) {
	// A 5x4 meter room drawn in millimeters.
	entities := []models.RawEntity{
		wallLine(0, 0, 5000, 0),
		wallLine(5000, 0, 5000, 4000),
		wallLine(5000, 4000, 0, 4000),
		wallLine(0, 4000, 0, 0),
	}

	model := testProcessor().Process(entities, nil)

	if model.Units.DetectedUnit != "mm" {
		t.Errorf("expected mm, got %q", model.Units.DetectedUnit)
	}
	if model.Units.Confidence <= 0.5 {
		t.Errorf("expected confident inference, got %f", model.Units.Confidence)
	}

	if len(model.Elements) != 4 {
		t.Fatalf("expected exactly 4 elements, got %d", len(model.Elements))
	}
	for _, el := range model.Elements {
		if el.Type != models.ElementWall {
			t.Errorf("expected wall, got %q", el.Type)
		}
		if el.Extrusion == nil {
			t.Fatal("wall without a box")
		}
		length := el.Extrusion.Dimensions[0]
		if !approx(length, 5) && !approx(length, 4) {
			t.Errorf("wall length must be 5 or 4 meters, got %f", length)
		}
		if !approx(el.Extrusion.Dimensions[1], 3.0) {
			t.Errorf("unexpected wall height: %f", el.Extrusion.Dimensions[1])
		}
		if el.ID == "" {
			t.Error("element must carry an id")
		}
	}

	if !approx(model.Bounds.Width, 5) || !approx(model.Bounds.Height, 4) {
		t.Errorf("expected a 5x4 meter footprint, got %f x %f", model.Bounds.Width, model.Bounds.Height)
	}
	if !approx(model.RawBounds.Width, 5000) {
		t.Errorf("raw bounds must stay in drawing units, got %f", model.RawBounds.Width)
	}

	if model.Stats.EntityCount != 4 || model.Stats.ElementCount != 4 {
		t.Errorf("unexpected stats: %+v", model.Stats)
	}
	if model.Stats.ByType[models.ElementWall] != 4 {
		t.Errorf("unexpected type histogram: %v", model.Stats.ByType)
	}
	// Exact layer matches score 0.9, all four land in the high band.
	if model.Stats.Confidence.High != 4 {
		t.Errorf("expected 4 high-confidence elements, got %+v", model.Stats.Confidence)
	}
}

func TestProcess_RoomShellFromSpaceLayer(t *testing.T) {
	entities := []models.RawEntity{
		{
			Type:  models.EntityLWPolyline,
			Layer: "ROOM",
			Geometry: models.PolylineGeometry{
				Points: []models.Point2D{
					{X: 0, Y: 0}, {X: 5000, Y: 0}, {X: 5000, Y: 4000}, {X: 0, Y: 4000},
				},
				Closed: true,
			},
		},
	}

	model := testProcessor().Process(entities, nil)

	if len(model.Rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(model.Rooms))
	}
	room := model.Rooms[0]
	if room.Name != "Room 1" {
		t.Errorf("unexpected room name %q", room.Name)
	}
	// Room vertices stay in drawing units.
	if room.Bounds == nil || room.Bounds.Width != 5000 {
		t.Errorf("room bounds must be raw units: %+v", room.Bounds)
	}

	// One space footprint plus the 6-piece shell.
	if len(model.Elements) != 7 {
		t.Fatalf("expected 7 elements, got %d", len(model.Elements))
	}
	if model.Stats.ByType[models.ElementWall] != 4 ||
		model.Stats.ByType[models.ElementFloor] != 1 ||
		model.Stats.ByType[models.ElementCeiling] != 1 ||
		model.Stats.ByType[models.ElementSpace] != 1 {
		t.Errorf("unexpected composition: %v", model.Stats.ByType)
	}
	if model.Stats.RoomCount != 1 {
		t.Errorf("unexpected room count: %d", model.Stats.RoomCount)
	}
}

func TestProcess_TextAndEmptyEntitiesSkipped(t *testing.T) {
	entities := []models.RawEntity{
		{
			Type:  models.EntityLine,
			Layer: "TEXT",
			Geometry: models.LineGeometry{
				Start: models.Point2D{X: 0, Y: 0},
				End:   models.Point2D{X: 1000, Y: 0},
			},
		},
		{Type: "HATCH", Layer: "FILL", Geometry: models.UnknownGeometry{}},
	}

	model := testProcessor().Process(entities, nil)

	if len(model.Elements) != 0 {
		t.Errorf("expected no elements, got %d", len(model.Elements))
	}
	if model.Stats.EntityCount != 2 {
		t.Errorf("skipped entities still count, got %d", model.Stats.EntityCount)
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	model := testProcessor().Process(nil, nil)

	if model == nil {
		t.Fatal("expected a model even for empty input")
	}
	if len(model.Elements) != 0 || len(model.Rooms) != 0 {
		t.Error("empty input must yield an empty model")
	}
	if model.ID == "" || model.CreatedAt == "" {
		t.Error("model must carry id and timestamp")
	}
}

func TestProcess_WallsSortBeforeFurniture(t *testing.T) {
	entities := []models.RawEntity{
		{
			Type:  models.EntityCircle,
			Layer: "FURNITURE",
			Geometry: models.CircleGeometry{
				Center: models.Point2D{X: 2500, Y: 2000},
				Radius: 400,
			},
		},
		wallLine(0, 0, 5000, 0),
	}

	model := testProcessor().Process(entities, nil)

	if len(model.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(model.Elements))
	}
	if model.Elements[0].Type != models.ElementWall {
		t.Errorf("walls must come first, got %q", model.Elements[0].Type)
	}
	if model.Elements[1].Type != models.ElementFurniture {
		t.Errorf("expected furniture second, got %q", model.Elements[1].Type)
	}
}

type failingStore struct{}

func (failingStore) Load() (*layers.Config, error) { return nil, errors.New("disk gone") }
func (failingStore) Save(*layers.Config) error     { return errors.New("disk gone") }

func TestProcess_BrokenStoreDegradesToDefaults(t *testing.T) {
	p := NewProcessor(geometry.DefaultOptions(), failingStore{})

	model := p.Process([]models.RawEntity{wallLine(0, 0, 5000, 0)}, nil)

	if len(model.Elements) != 1 {
		t.Fatalf("expected processing to continue on store failure, got %d elements", len(model.Elements))
	}
	if model.Elements[0].Type != models.ElementWall {
		t.Errorf("default mappings must classify WALL, got %q", model.Elements[0].Type)
	}
}

func TestProcess_CustomParameters(t *testing.T) {
	params := models.DefaultParameters()
	params.WallHeight = 2.5

	model := testProcessor().Process([]models.RawEntity{wallLine(0, 0, 5000, 0)}, &params)

	if !approx(model.Elements[0].Extrusion.Dimensions[1], 2.5) {
		t.Errorf("expected custom wall height, got %f", model.Elements[0].Extrusion.Dimensions[1])
	}
}

func TestRenderPlan_Smoke(t *testing.T) {
	entities := []models.RawEntity{
		wallLine(0, 0, 5000, 0),
		{
			Type:  models.EntityLWPolyline,
			Layer: "ROOM",
			Geometry: models.PolylineGeometry{
				Points: []models.Point2D{
					{X: 0, Y: 0}, {X: 5000, Y: 0}, {X: 5000, Y: 4000}, {X: 0, Y: 4000},
				},
				Closed: true,
			},
		},
	}
	model := testProcessor().Process(entities, nil)

	svg, err := NewRenderer().RenderPlan(model)
	if err != nil {
		t.Fatalf("RenderPlan failed: %v", err)
	}
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML prolog")
	}
	if !strings.Contains(svg, "<svg xmlns=") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if !strings.Contains(svg, "<path") {
		t.Error("expected wall paths in the preview")
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("expected a dashed room footprint")
	}
}

func TestRenderPlan_NilModel(t *testing.T) {
	if _, err := NewRenderer().RenderPlan(nil); err == nil {
		t.Fatal("expected error for nil model")
	}
}
