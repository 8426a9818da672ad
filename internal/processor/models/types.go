package models

import "math"

// ============================================================
// Geometry primitives
// ============================================================

// Point2D is a planar coordinate in drawing units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both coordinates are real numbers.
func (p Point2D) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point2D) DistanceTo(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

type Bounds struct {
	MinX   float64 `json:"minX"`
	MaxX   float64 `json:"maxX"`
	MinY   float64 `json:"minY"`
	MaxY   float64 `json:"maxY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBounds builds a Bounds with derived width/height. Inverted extents
// collapse to zero size rather than going negative.
func NewBounds(minX, maxX, minY, maxY float64) Bounds {
	b := Bounds{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
	b.Width = math.Max(0, maxX-minX)
	b.Height = math.Max(0, maxY-minY)
	return b
}

func (b Bounds) Center() Point2D {
	return Point2D{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Scaled converts the bounds by a uniform factor (drawing units to meters).
func (b Bounds) Scaled(factor float64) Bounds {
	return NewBounds(b.MinX*factor, b.MaxX*factor, b.MinY*factor, b.MaxY*factor)
}

func (b Bounds) IsZero() bool {
	return b.MinX == 0 && b.MaxX == 0 && b.MinY == 0 && b.MaxY == 0
}

// ============================================================
// Raw entities
// ============================================================

// Entity type tags as emitted by the external CAD parser.
const (
	EntityLine       = "LINE"
	EntityLWPolyline = "LWPOLYLINE"
	EntityPolyline   = "POLYLINE"
	EntityArc        = "ARC"
	EntityCircle     = "CIRCLE"
	EntitySpline     = "SPLINE"
)

// EntityGeometry is the closed set of shape payloads a RawEntity can carry.
// The normalizer switches over every variant; UnknownGeometry stands in for
// types the parser recognized but this pipeline does not interpret.
type EntityGeometry interface {
	entityGeometry()
}

type LineGeometry struct {
	Start Point2D
	End   Point2D
}

type PolylineGeometry struct {
	Points []Point2D
	Closed bool
}

// ArcGeometry angles are degrees, counter-clockwise, per CAD convention.
type ArcGeometry struct {
	Center     Point2D
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

type CircleGeometry struct {
	Center Point2D
	Radius float64
}

type SplineGeometry struct {
	ControlPoints []Point2D
}

type UnknownGeometry struct{}

func (LineGeometry) entityGeometry()     {}
func (PolylineGeometry) entityGeometry() {}
func (ArcGeometry) entityGeometry()      {}
func (CircleGeometry) entityGeometry()   {}
func (SplineGeometry) entityGeometry()   {}
func (UnknownGeometry) entityGeometry()  {}

// RawEntity is one drawn primitive from a CAD layer.
type RawEntity struct {
	Type       string
	Layer      string
	Properties map[string]any
	Geometry   EntityGeometry
}

// NormalizedEntity is the canonical polyline shape every downstream stage
// consumes. Points never contain non-finite coordinates.
type NormalizedEntity struct {
	Type       string         `json:"type"`
	Points     []Point2D      `json:"points"`
	Layer      string         `json:"layer"`
	Closed     bool           `json:"closed,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ============================================================
// Units
// ============================================================

// UnitsInfo reports the inferred drawing unit. ScaleToMeters multiplies a raw
// coordinate into meters; Confidence is a heuristic score, not a probability.
type UnitsInfo struct {
	DetectedUnit  string   `json:"detectedUnit"`
	ScaleToMeters float64  `json:"scaleToMeters"`
	Confidence    float64  `json:"confidence"`
	Reasoning     []string `json:"reasoning"`
}

// ============================================================
// Floor plan elements
// ============================================================

// Element types produced by classification plus the two slab types generated
// for room shells.
const (
	ElementWall      = "wall"
	ElementDoor      = "door"
	ElementWindow    = "window"
	ElementKitchen   = "kitchen"
	ElementSanitary  = "sanitary"
	ElementSpace     = "space"
	ElementFurniture = "furniture"
	ElementText      = "text"
	ElementFloor     = "floor"
	ElementCeiling   = "ceiling"
)

type ElementGeometry struct {
	Points []Point2D `json:"points"`
	Bounds *Bounds   `json:"bounds,omitempty"`
	Center *Point2D  `json:"center,omitempty"`
}

type ElementProperties struct {
	Confidence float64 `json:"confidence"`
	Material   string  `json:"material,omitempty"`
	Color      string  `json:"color,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Thickness  float64 `json:"thickness,omitempty"`
}

// ExtrusionDescriptor tells the renderer to place one oriented box. Dimensions
// are [x extent, vertical extent, z extent]; a plan point (x, y) lands at
// (x, elevation, y); rotation is radians about each axis.
type ExtrusionDescriptor struct {
	Shape      string     `json:"shape"`
	Dimensions [3]float64 `json:"dimensions"`
	Position   [3]float64 `json:"position"`
	Rotation   [3]float64 `json:"rotation"`
}

// FloorPlanElement is one classified entity ready for rendering and pricing.
// Extrusion is nil when the geometry is insufficient to extrude.
type FloorPlanElement struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Layer      string               `json:"layer,omitempty"`
	Closed     bool                 `json:"closed,omitempty"`
	Geometry   ElementGeometry      `json:"geometry"`
	Properties ElementProperties    `json:"properties"`
	Extrusion  *ExtrusionDescriptor `json:"extrusion,omitempty"`
}

// ============================================================
// Rooms
// ============================================================

// RoomGeometry vertices are raw [x, y] pairs; entries of any other length are
// ignored by the bounds calculator.
type RoomGeometry struct {
	Vertices [][]float64 `json:"vertices"`
}

type RoomDefinition struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Bounds   *Bounds       `json:"bounds,omitempty"`
	Geometry *RoomGeometry `json:"geometry,omitempty"`
}

// ============================================================
// Agent parameters
// ============================================================

// AgentParameters are the operator-tunable extrusion heights and thicknesses,
// in meters. Supplied per synthesis call.
type AgentParameters struct {
	WallHeight       float64 `json:"wallHeight" yaml:"wall_height"`
	DoorHeight       float64 `json:"doorHeight" yaml:"door_height"`
	WindowHeight     float64 `json:"windowHeight" yaml:"window_height"`
	CeilingHeight    float64 `json:"ceilingHeight" yaml:"ceiling_height"`
	FloorThickness   float64 `json:"floorThickness" yaml:"floor_thickness"`
	CeilingThickness float64 `json:"ceilingThickness" yaml:"ceiling_thickness"`
}

func DefaultParameters() AgentParameters {
	return AgentParameters{
		WallHeight:       3.0,
		DoorHeight:       2.1,
		WindowHeight:     1.2,
		CeilingHeight:    3.0,
		FloorThickness:   0.2,
		CeilingThickness: 0.15,
	}
}

// Sanitized replaces missing or non-finite fields with defaults so a partial
// parameter payload never produces degenerate boxes.
func (p AgentParameters) Sanitized() AgentParameters {
	def := DefaultParameters()
	pick := func(v, fallback float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fallback
		}
		return v
	}
	return AgentParameters{
		WallHeight:       pick(p.WallHeight, def.WallHeight),
		DoorHeight:       pick(p.DoorHeight, def.DoorHeight),
		WindowHeight:     pick(p.WindowHeight, def.WindowHeight),
		CeilingHeight:    pick(p.CeilingHeight, def.CeilingHeight),
		FloorThickness:   pick(p.FloorThickness, def.FloorThickness),
		CeilingThickness: pick(p.CeilingThickness, def.CeilingThickness),
	}
}

// ============================================================
// Building model
// ============================================================

type ConfidenceBands struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type ModelStats struct {
	EntityCount  int             `json:"entityCount"`
	ElementCount int             `json:"elementCount"`
	RoomCount    int             `json:"roomCount"`
	ByType       map[string]int  `json:"byType"`
	Confidence   ConfidenceBands `json:"confidence"`
}

// BuildingModel is the processing result handed to the renderer and the
// pricing engine. Bounds are meters; RawBounds keep the drawing units.
type BuildingModel struct {
	ID        string             `json:"id"`
	CreatedAt string             `json:"createdAt"`
	Units     UnitsInfo          `json:"units"`
	RawBounds Bounds             `json:"rawBounds"`
	Bounds    Bounds             `json:"bounds"`
	Elements  []FloorPlanElement `json:"elements"`
	Rooms     []RoomDefinition   `json:"rooms"`
	Stats     ModelStats         `json:"stats"`
}
