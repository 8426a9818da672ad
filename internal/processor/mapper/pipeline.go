package mapper

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"fitit-backend/internal/processor/geometry"
	"fitit-backend/internal/processor/layers"
	"fitit-backend/internal/processor/models"
	"fitit-backend/internal/processor/units"
)

// ============================================================
// Processing pipeline
// ============================================================

// Confidence band cutoffs for the model stats.
const highConfidence = 0.75
const mediumConfidence = 0.5

type Processor struct {
	normalizer *geometry.Normalizer
	store      layers.Store
}

func NewProcessor(opts geometry.Options, store layers.Store) *Processor {
	if store == nil {
		store = layers.NewMemoryStore()
	}
	return &Processor{
		normalizer: geometry.NewNormalizer(opts),
		store:      store,
	}
}

// Process runs the full interpretation pipeline over a raw entity
// stream: normalize, infer units, classify layers, synthesize the
// element boxes and room shells. It degrades instead of failing, a
// drawing full of garbage still yields an empty model.
func (p *Processor) Process(rawEntities []models.RawEntity, params *models.AgentParameters) *models.BuildingModel {
	effective := models.DefaultParameters()
	if params != nil {
		effective = params.Sanitized()
	}

	normalized := p.normalizer.NormalizeEntities(rawEntities)
	rawBounds := geometry.CalculateBounds(normalized)
	unitsInfo := units.Infer(rawBounds, normalized)
	scale := unitsInfo.ScaleToMeters
	if scale <= 0 {
		scale = 0.001
	}

	// The mapping config is snapshotted once per run. A broken store
	// downgrades to the defaults instead of rejecting the drawing.
	cfg, err := p.store.Load()
	if err != nil {
		log.Printf("[PROCESSOR] Layer mapping store unavailable, using defaults: %v", err)
		cfg = layers.DefaultConfig()
	}

	type ranked struct {
		element  models.FloorPlanElement
		priority int
	}

	var build []ranked
	var rooms []models.RoomDefinition

	for _, entity := range normalized {
		entry, match := layers.Resolve(entity.Layer, cfg)

		// Space footprints double as room candidates, kept in raw
		// drawing units so the shell gate stays unit-agnostic.
		if entry.Type == models.ElementSpace && entity.Closed && len(entity.Points) >= 3 {
			rooms = append(rooms, roomFromEntity(entity, len(rooms)+1))
		}

		if entry.Type == models.ElementText {
			continue
		}
		if len(entity.Points) == 0 {
			continue
		}

		scaled := make([]models.Point2D, len(entity.Points))
		for i, pt := range entity.Points {
			scaled[i] = models.Point2D{X: pt.X * scale, Y: pt.Y * scale}
		}

		bounds := pointBounds(scaled)
		center := bounds.Center()

		build = append(build, ranked{
			priority: entry.Priority,
			element: models.FloorPlanElement{
				ID:     uuid.NewString(),
				Type:   entry.Type,
				Layer:  entity.Layer,
				Closed: entity.Closed,
				Geometry: models.ElementGeometry{
					Points: scaled,
					Bounds: &bounds,
					Center: &center,
				},
				Properties: models.ElementProperties{
					Confidence: match.Confidence(),
					Material:   entry.Properties.Material,
					Color:      entry.Properties.Color,
					Height:     entry.Properties.Height,
					Thickness:  entry.Properties.Thickness,
				},
				Extrusion: SynthesizeExtrusion(entry.Type, scaled, effective),
			},
		})
	}

	// Stable priority order: walls first, text never, furniture and
	// the like later, matching the mapping table priorities.
	sort.SliceStable(build, func(i, j int) bool {
		return build[i].priority < build[j].priority
	})

	elements := make([]models.FloorPlanElement, 0, len(build))
	for _, r := range build {
		elements = append(elements, r.element)
	}

	for _, room := range rooms {
		elements = append(elements, BuildRoomShell(room, scale, effective)...)
	}

	return &models.BuildingModel{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Units:     unitsInfo,
		RawBounds: rawBounds,
		Bounds:    rawBounds.Scaled(scale),
		Elements:  elements,
		Rooms:     rooms,
		Stats:     buildStats(len(rawEntities), elements, rooms),
	}
}

func roomFromEntity(entity models.NormalizedEntity, ordinal int) models.RoomDefinition {
	vertices := make([][]float64, len(entity.Points))
	for i, pt := range entity.Points {
		vertices[i] = []float64{pt.X, pt.Y}
	}

	room := models.RoomDefinition{
		ID:       uuid.NewString(),
		Name:     fmt.Sprintf("Room %d", ordinal),
		Geometry: &models.RoomGeometry{Vertices: vertices},
	}
	bounds := RoomBounds(room)
	room.Bounds = &bounds
	return room
}

func buildStats(entityCount int, elements []models.FloorPlanElement, rooms []models.RoomDefinition) models.ModelStats {
	stats := models.ModelStats{
		EntityCount:  entityCount,
		ElementCount: len(elements),
		RoomCount:    len(rooms),
		ByType:       map[string]int{},
	}
	for _, el := range elements {
		stats.ByType[el.Type]++
		switch {
		case el.Properties.Confidence >= highConfidence:
			stats.Confidence.High++
		case el.Properties.Confidence >= mediumConfidence:
			stats.Confidence.Medium++
		default:
			stats.Confidence.Low++
		}
	}
	return stats
}
