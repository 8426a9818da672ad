package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Plan preview
// ============================================================

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPlan projects the model back onto a 2D SVG plan, walls and
// openings as strokes, fixtures as boxes, rooms as dashed
// footprints. A quick visual check of the interpretation without
// loading the 3D model.
func (r *Renderer) RenderPlan(model *models.BuildingModel) (string, error) {
	if model == nil {
		return "", fmt.Errorf("model is nil")
	}

	vp := newViewport(model)

	var shapes []string
	shapes = append(shapes, r.renderRooms(model.Rooms, model.Units.ScaleToMeters, vp)...)
	shapes = append(shapes, r.renderElements(model.Elements, vp)...)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`,
		formatFloat(vp.width), formatFloat(vp.height)))
	b.WriteString("\n")
	for _, s := range shapes {
		b.WriteString("  ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

// ============================================================
// Viewport
// ============================================================

type viewport struct {
	minX, maxY    float64
	width, height float64
	margin        float64
	stroke        float64
}

// newViewport unions the model bounds with every element box, room
// shells overhang the drawing bounds and must not get clipped. An
// empty model falls back to a 1000x1000 canvas.
func newViewport(model *models.BuildingModel) viewport {
	b := model.Bounds
	minX, minY, maxX, maxY := b.MinX, b.MinY, b.MaxX, b.MaxY

	for _, el := range model.Elements {
		if el.Geometry.Bounds == nil {
			continue
		}
		eb := el.Geometry.Bounds
		minX = math.Min(minX, eb.MinX)
		minY = math.Min(minY, eb.MinY)
		maxX = math.Max(maxX, eb.MaxX)
		maxY = math.Max(maxY, eb.MaxY)
	}

	width := maxX - minX
	height := maxY - minY
	if width <= 0 || height <= 0 {
		minX, maxY = 0, 1000
		width, height = 1000, 1000
	}

	stroke := math.Max(width, height) / 200
	return viewport{
		minX:   minX,
		maxY:   maxY,
		width:  width + 2*stroke,
		height: height + 2*stroke,
		margin: stroke,
		stroke: stroke,
	}
}

// project flips Y, plan coordinates grow upward while SVG grows down.
func (v viewport) project(p models.Point2D) (float64, float64) {
	return p.X - v.minX + v.margin, v.maxY - p.Y + v.margin
}

// ============================================================
// Shape renderers
// ============================================================

func (r *Renderer) renderElements(elements []models.FloorPlanElement, vp viewport) []string {
	var out []string

	for _, el := range elements {
		color := el.Properties.Color
		if color == "" {
			color = "#000000"
		}

		switch el.Type {
		case models.ElementKitchen, models.ElementSanitary, models.ElementFurniture:
			if el.Geometry.Bounds == nil {
				continue
			}
			out = append(out, r.renderRect(el.ID, *el.Geometry.Bounds, color, vp.stroke, "", vp))
		default:
			if len(el.Geometry.Points) < 2 {
				continue
			}
			out = append(out, r.renderPath(el, color, vp))
		}
	}

	return out
}

func (r *Renderer) renderPath(el models.FloorPlanElement, color string, vp viewport) string {
	var path strings.Builder
	path.WriteString(`<path id="`)
	path.WriteString(el.ID)
	path.WriteString(`" d="M `)

	x, y := vp.project(el.Geometry.Points[0])
	path.WriteString(formatFloat(x) + " " + formatFloat(y))
	for _, p := range el.Geometry.Points[1:] {
		x, y = vp.project(p)
		path.WriteString(" L ")
		path.WriteString(formatFloat(x) + " " + formatFloat(y))
	}
	if el.Closed {
		path.WriteString(" Z")
	}

	path.WriteString(fmt.Sprintf(`" fill="none" stroke="%s" stroke-width="%s" />`,
		color, formatFloat(vp.stroke)))
	return path.String()
}

func (r *Renderer) renderRooms(rooms []models.RoomDefinition, scale float64, vp viewport) []string {
	if scale <= 0 {
		scale = 1
	}

	var out []string
	for _, room := range rooms {
		b := RoomBounds(room).Scaled(scale)
		dash := formatFloat(vp.stroke)
		out = append(out, r.renderRect(room.ID, b, "#888888", vp.stroke/2, dash, vp))
	}
	return out
}

func (r *Renderer) renderRect(id string, b models.Bounds, color string, strokeWidth float64, dash string, vp viewport) string {
	x, y := vp.project(models.Point2D{X: b.MinX, Y: b.MaxY})

	attrs := fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="%s"`,
		id, formatFloat(x), formatFloat(y), formatFloat(b.Width), formatFloat(b.Height), color, formatFloat(strokeWidth))
	if dash != "" {
		attrs += fmt.Sprintf(` stroke-dasharray="%s"`, dash)
	}
	return attrs + " />"
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
