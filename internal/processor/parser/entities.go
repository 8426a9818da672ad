package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Wire structures
// ============================================================

// document is the upload envelope. A bare entity array is also
// accepted, see ParseDocument.
type document struct {
	Entities   []entityRecord          `json:"entities"`
	Parameters *models.AgentParameters `json:"parameters"`
	Metadata   map[string]any          `json:"metadata"`
}

// entityRecord carries the union of all entity fields. Optional
// fields are pointers so a missing field can be told apart from a
// zero value.
type entityRecord struct {
	Type          string           `json:"type"`
	Layer         string           `json:"layer"`
	Start         *models.Point2D  `json:"start"`
	End           *models.Point2D  `json:"end"`
	Points        []models.Point2D `json:"points"`
	Center        *models.Point2D  `json:"center"`
	Radius        *float64         `json:"radius"`
	StartAngle    *float64         `json:"startAngle"`
	EndAngle      *float64         `json:"endAngle"`
	ControlPoints []models.Point2D `json:"controlPoints"`
	Closed        bool             `json:"closed"`
	Properties    map[string]any   `json:"properties"`
}

// ============================================================
// Parser
// ============================================================

// ParseDocument decodes an entity stream. Both the full envelope
// {"entities": [...], "parameters": {...}} and a bare entity array
// are accepted. Parameters are nil when the envelope omits them.
func ParseDocument(data []byte) ([]models.RawEntity, *models.AgentParameters, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	var records []entityRecord
	var params *models.AgentParameters

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, nil, fmt.Errorf("decode entity array: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("decode document: %w", err)
		}
		records = doc.Entities
		params = doc.Parameters
	}

	entities := make([]models.RawEntity, 0, len(records))
	for _, rec := range records {
		entities = append(entities, buildEntity(rec))
	}
	return entities, params, nil
}

// ParseEntities decodes an entity stream, dropping any parameters.
func ParseEntities(data []byte) ([]models.RawEntity, error) {
	entities, _, err := ParseDocument(data)
	return entities, err
}

// buildEntity maps a wire record onto the typed geometry. Records
// with missing required fields keep their layer but degrade to
// unknown geometry instead of failing the whole upload.
func buildEntity(rec entityRecord) models.RawEntity {
	entity := models.RawEntity{
		Type:       strings.ToUpper(strings.TrimSpace(rec.Type)),
		Layer:      rec.Layer,
		Properties: rec.Properties,
		Geometry:   models.UnknownGeometry{},
	}

	switch entity.Type {
	case models.EntityLine:
		if rec.Start != nil && rec.End != nil {
			entity.Geometry = models.LineGeometry{Start: *rec.Start, End: *rec.End}
		}

	case models.EntityLWPolyline, models.EntityPolyline:
		if len(rec.Points) > 0 {
			entity.Geometry = models.PolylineGeometry{Points: rec.Points, Closed: rec.Closed}
		}

	case models.EntityArc:
		if rec.Center != nil && rec.Radius != nil && *rec.Radius > 0 {
			geom := models.ArcGeometry{Center: *rec.Center, Radius: *rec.Radius}
			if rec.StartAngle != nil {
				geom.StartAngle = *rec.StartAngle
			}
			if rec.EndAngle != nil {
				geom.EndAngle = *rec.EndAngle
			} else {
				geom.EndAngle = 360
			}
			entity.Geometry = geom
		}

	case models.EntityCircle:
		if rec.Center != nil && rec.Radius != nil && *rec.Radius > 0 {
			entity.Geometry = models.CircleGeometry{Center: *rec.Center, Radius: *rec.Radius}
		}

	case models.EntitySpline:
		if len(rec.ControlPoints) > 0 {
			entity.Geometry = models.SplineGeometry{ControlPoints: rec.ControlPoints}
		}
	}

	return entity
}
