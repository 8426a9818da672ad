package layers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// Layer mapping config
// ============================================================

type EntryProperties struct {
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
	Material  string  `json:"material"`
	Color     string  `json:"color"`
}

// Entry describes what a CAD layer becomes in the building model.
// Priority orders element synthesis, walls first.
type Entry struct {
	Type       string          `json:"type"`
	Priority   int             `json:"priority"`
	Properties EntryProperties `json:"properties"`
}

type Config struct {
	Mappings      map[string]Entry `json:"mappings"`
	Fallback      Entry            `json:"fallback"`
	UserOverrides map[string]Entry `json:"userOverrides"`
}

func (c *Config) Clone() *Config {
	out := &Config{
		Mappings:      make(map[string]Entry, len(c.Mappings)),
		Fallback:      c.Fallback,
		UserOverrides: make(map[string]Entry, len(c.UserOverrides)),
	}
	for k, v := range c.Mappings {
		out.Mappings[k] = v
	}
	for k, v := range c.UserOverrides {
		out.UserOverrides[k] = v
	}
	return out
}

// ============================================================
// Default table
// ============================================================

const (
	priorityWall = iota + 1
	priorityDoor
	priorityWindow
	priorityKitchen
	prioritySanitary
	prioritySpace
	priorityFurniture
	priorityText
)

func entry(elemType string, priority int, height, thickness float64, material, color string) Entry {
	return Entry{
		Type:     elemType,
		Priority: priority,
		Properties: EntryProperties{
			Height:    height,
			Thickness: thickness,
			Material:  material,
			Color:     color,
		},
	}
}

// defaultEntries covers the common architectural layer conventions,
// including the AIA-style A-* names.
var defaultEntries = map[string]Entry{
	"WALL":          entry(models.ElementWall, priorityWall, 3.0, 0.2, "concrete", "#8B7355"),
	"WALLS":         entry(models.ElementWall, priorityWall, 3.0, 0.2, "concrete", "#8B7355"),
	"A-WALL":        entry(models.ElementWall, priorityWall, 3.0, 0.2, "concrete", "#8B7355"),
	"WALL-EXTERIOR": entry(models.ElementWall, priorityWall, 3.0, 0.3, "brick", "#A0522D"),
	"WALL-INTERIOR": entry(models.ElementWall, priorityWall, 3.0, 0.15, "drywall", "#F5F5DC"),
	"PARTITION":     entry(models.ElementWall, priorityWall, 3.0, 0.1, "drywall", "#F5F5DC"),

	"DOOR":   entry(models.ElementDoor, priorityDoor, 2.1, 0.05, "wood", "#8B4513"),
	"DOORS":  entry(models.ElementDoor, priorityDoor, 2.1, 0.05, "wood", "#8B4513"),
	"A-DOOR": entry(models.ElementDoor, priorityDoor, 2.1, 0.05, "wood", "#8B4513"),

	"WINDOW":  entry(models.ElementWindow, priorityWindow, 1.2, 0.1, "glass", "#87CEEB"),
	"WINDOWS": entry(models.ElementWindow, priorityWindow, 1.2, 0.1, "glass", "#87CEEB"),
	"GLAZING": entry(models.ElementWindow, priorityWindow, 1.2, 0.1, "glass", "#87CEEB"),
	"A-GLAZ":  entry(models.ElementWindow, priorityWindow, 1.2, 0.1, "glass", "#87CEEB"),

	"KITCHEN":  entry(models.ElementKitchen, priorityKitchen, 0.9, 0.6, "wood", "#D2691E"),
	"CABINET":  entry(models.ElementKitchen, priorityKitchen, 0.9, 0.6, "wood", "#D2691E"),
	"CABINETS": entry(models.ElementKitchen, priorityKitchen, 0.9, 0.6, "wood", "#D2691E"),
	"MILLWORK": entry(models.ElementKitchen, priorityKitchen, 0.9, 0.6, "wood", "#D2691E"),

	"SANITARY": entry(models.ElementSanitary, prioritySanitary, 0.4, 0.6, "porcelain", "#FFFFFF"),
	"TOILET":   entry(models.ElementSanitary, prioritySanitary, 0.4, 0.6, "porcelain", "#FFFFFF"),
	"SINK":     entry(models.ElementSanitary, prioritySanitary, 0.4, 0.6, "porcelain", "#FFFFFF"),
	"BATHROOM": entry(models.ElementSanitary, prioritySanitary, 0.4, 0.6, "porcelain", "#FFFFFF"),
	"PLUMBING": entry(models.ElementSanitary, prioritySanitary, 0.4, 0.6, "porcelain", "#FFFFFF"),

	"ROOM":  entry(models.ElementSpace, prioritySpace, 0.1, 0.0, "floor", "#F0F8FF"),
	"ROOMS": entry(models.ElementSpace, prioritySpace, 0.1, 0.0, "floor", "#F0F8FF"),
	"SPACE": entry(models.ElementSpace, prioritySpace, 0.1, 0.0, "floor", "#F0F8FF"),
	"FLOOR": entry(models.ElementSpace, prioritySpace, 0.1, 0.0, "floor", "#F0F8FF"),
	"AREA":  entry(models.ElementSpace, prioritySpace, 0.1, 0.0, "floor", "#F0F8FF"),

	"FURNITURE": entry(models.ElementFurniture, priorityFurniture, 0.75, 0.5, "wood", "#DEB887"),
	"FURN":      entry(models.ElementFurniture, priorityFurniture, 0.75, 0.5, "wood", "#DEB887"),
	"A-FURN":    entry(models.ElementFurniture, priorityFurniture, 0.75, 0.5, "wood", "#DEB887"),

	"TEXT":       entry(models.ElementText, priorityText, 0, 0, "none", "#000000"),
	"ANNOTATION": entry(models.ElementText, priorityText, 0, 0, "none", "#000000"),
	"DIMENSION":  entry(models.ElementText, priorityText, 0, 0, "none", "#000000"),
	"DIMENSIONS": entry(models.ElementText, priorityText, 0, 0, "none", "#000000"),
	"TITLE":      entry(models.ElementText, priorityText, 0, 0, "none", "#000000"),
}

// DefaultConfig returns a fresh config with the built-in table.
// Unmapped layers fall back to a generic wall so nothing silently
// disappears from the model.
func DefaultConfig() *Config {
	mappings := make(map[string]Entry, len(defaultEntries))
	for k, v := range defaultEntries {
		mappings[k] = v
	}
	return &Config{
		Mappings:      mappings,
		Fallback:      entry(models.ElementWall, priorityWall, 3.0, 0.2, "concrete", "#8B7355"),
		UserOverrides: map[string]Entry{},
	}
}

// ============================================================
// Resolution
// ============================================================

type MatchKind string

const (
	MatchOverride  MatchKind = "override"
	MatchExact     MatchKind = "exact"
	MatchCaseFold  MatchKind = "case-insensitive"
	MatchSubstring MatchKind = "substring"
	MatchFallback  MatchKind = "fallback"
)

// Match records how a layer name resolved, Key holds the table key
// that won.
type Match struct {
	Kind MatchKind `json:"kind"`
	Key  string    `json:"key"`
}

// Confidence grades the match strength, an explicit user override
// being the most trustworthy and the fallback the least.
func (m Match) Confidence() float64 {
	switch m.Kind {
	case MatchOverride:
		return 0.95
	case MatchExact:
		return 0.9
	case MatchCaseFold:
		return 0.8
	case MatchSubstring:
		return 0.6
	default:
		return 0.3
	}
}

// Resolve maps a layer name onto a mapping entry. Lookup order: user
// override, exact, case-insensitive, substring in either direction,
// fallback. Substring candidates prefer the longest table key so
// "wall-exterior-2" lands on WALL-EXTERIOR rather than WALL; equal
// lengths break lexicographically to keep resolution deterministic.
func Resolve(layerName string, cfg *Config) (Entry, Match) {
	if e, ok := cfg.UserOverrides[layerName]; ok {
		return e, Match{Kind: MatchOverride, Key: layerName}
	}
	if e, ok := cfg.Mappings[layerName]; ok {
		return e, Match{Kind: MatchExact, Key: layerName}
	}

	lower := strings.ToLower(layerName)
	if lower != "" {
		keys := sortedKeys(cfg.Mappings)

		for _, key := range keys {
			if strings.ToLower(key) == lower {
				return cfg.Mappings[key], Match{Kind: MatchCaseFold, Key: key}
			}
		}

		bestKey := ""
		for _, key := range keys {
			lowerKey := strings.ToLower(key)
			if !strings.Contains(lower, lowerKey) && !strings.Contains(lowerKey, lower) {
				continue
			}
			if len(key) > len(bestKey) {
				bestKey = key
			}
		}
		if bestKey != "" {
			return cfg.Mappings[bestKey], Match{Kind: MatchSubstring, Key: bestKey}
		}
	}

	return cfg.Fallback, Match{Kind: MatchFallback}
}

func sortedKeys(m map[string]Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================
// Import / export
// ============================================================

// Export serializes the full config as indented JSON.
func Export(cfg *Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layer mappings: %w", err)
	}
	return data, nil
}

// Import decodes a config document and merges it over the defaults,
// imported keys win. Partial documents are fine, missing sections
// keep their default values.
func Import(data []byte) (*Config, error) {
	var in Config
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode layer mappings: %w", err)
	}

	cfg := DefaultConfig()
	for k, v := range in.Mappings {
		cfg.Mappings[k] = v
	}
	for k, v := range in.UserOverrides {
		cfg.UserOverrides[k] = v
	}
	if in.Fallback.Type != "" {
		cfg.Fallback = in.Fallback
	}
	return cfg, nil
}
