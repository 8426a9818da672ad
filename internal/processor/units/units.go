package units

import (
	"fmt"
	"math"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Units inference
// ============================================================

const detailedEntityCount = 100  // Entity count treated as a detailed drawing
const commonDimensionBonus = 0.2 // Bonus when segment lengths look like wall runs
const entityCountBonus = 0.1

// dimensionRule matches maxDimension against a plausible range for
// one drawing unit. Ranges overlap, every match adds its weight.
type dimensionRule struct {
	unit   string
	scale  float64
	min    float64
	max    float64
	weight float64
	format string
}

var dimensionRules = []dimensionRule{
	{unit: "mm", scale: 0.001, min: 1000, max: 100000, weight: 0.4, format: "Max dimension %.0f suggests millimeters"},
	{unit: "m", scale: 1.0, min: 0.5, max: 50, weight: 0.3, format: "Max dimension %.2f suggests meters"},
	{unit: "cm", scale: 0.01, min: 50, max: 1000, weight: 0.2, format: "Max dimension %.0f suggests centimeters"},
	{unit: "ft", scale: 0.3048, min: 10, max: 200, weight: 0.15, format: "Max dimension %.0f suggests feet"},
	{unit: "in", scale: 0.0254, min: 100, max: 2000, weight: 0.1, format: "Max dimension %.0f suggests inches"},
}

// Infer guesses the drawing unit from the bounding box and entity
// mix. Always returns a verdict, millimeters at zero confidence when
// nothing matches. The strongest matching rule picks the unit, every
// match still contributes confidence and reasoning.
func Infer(bounds models.Bounds, entities []models.NormalizedEntity) models.UnitsInfo {
	info := models.UnitsInfo{
		DetectedUnit:  "mm",
		ScaleToMeters: 0.001,
		Reasoning:     []string{},
	}

	maxDimension := math.Max(bounds.Width, bounds.Height)

	bestWeight := 0.0
	for _, rule := range dimensionRules {
		if maxDimension <= rule.min || maxDimension >= rule.max {
			continue
		}
		info.Confidence += rule.weight
		info.Reasoning = append(info.Reasoning, fmt.Sprintf(rule.format, maxDimension))
		if rule.weight > bestWeight {
			bestWeight = rule.weight
			info.DetectedUnit = rule.unit
			info.ScaleToMeters = rule.scale
		}
	}

	// Typical wall runs are 2-5 meters. When the average segment
	// length sits in that band the segment evidence overrides the
	// bounding box verdict.
	if avg, ok := commonSegmentLength(entities); ok {
		switch {
		case avg > 2000 && avg < 5000:
			info.DetectedUnit = "mm"
			info.ScaleToMeters = 0.001
			info.Confidence += commonDimensionBonus
			info.Reasoning = append(info.Reasoning, fmt.Sprintf("Average segment length %.0f suggests millimeters", avg))
		case avg > 2 && avg < 5:
			info.DetectedUnit = "m"
			info.ScaleToMeters = 1.0
			info.Confidence += commonDimensionBonus
			info.Reasoning = append(info.Reasoning, fmt.Sprintf("Average segment length %.2f suggests meters", avg))
		}
	}

	if len(entities) > detailedEntityCount {
		info.Confidence += entityCountBonus
		info.Reasoning = append(info.Reasoning, fmt.Sprintf("High entity count (%d) suggests detailed CAD drawing", len(entities)))
	}

	info.Confidence = math.Min(info.Confidence, 1)
	return info
}

// commonSegmentLength averages the segment lengths of line and
// polyline entities. Degenerate zero-length segments are ignored.
func commonSegmentLength(entities []models.NormalizedEntity) (float64, bool) {
	var sum float64
	var count int

	for _, e := range entities {
		switch e.Type {
		case models.EntityLine, models.EntityLWPolyline, models.EntityPolyline:
		default:
			continue
		}
		for i := 1; i < len(e.Points); i++ {
			length := e.Points[i-1].DistanceTo(e.Points[i])
			if length <= 0 {
				continue
			}
			sum += length
			count++
		}
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
