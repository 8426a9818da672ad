package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"fitit-backend/internal/processor/layers"
	"fitit-backend/internal/processor/mapper"
	"fitit-backend/internal/processor/parser"
	"fitit-backend/internal/processor/service"
)

// ============================================================
// Dry Run CLI
// ============================================================

// Runs the interpretation pipeline on a local entity file without
// starting the HTTP service. Useful for checking units inference
// and layer classification on a new drawing.

func main() {
	input := flag.String("input", "", "Path to entity stream JSON (required)")
	output := flag.String("output", "", "Write the building model JSON here (default: stdout)")
	svgPath := flag.String("svg", "", "Write the plan preview SVG here")
	configPath := flag.String("config", "", "Processing defaults YAML")
	mappingsPath := flag.String("mappings", "", "Layer mappings JSON")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	defaults := service.BuiltinDefaults()
	if *configPath != "" {
		defaults, err = service.LoadDefaults(*configPath)
		if err != nil {
			log.Fatalf("load defaults: %v", err)
		}
	}

	var store layers.Store = layers.NewMemoryStore()
	if *mappingsPath != "" {
		store = layers.NewFileStore(*mappingsPath)
	}

	entities, params, err := parser.ParseDocument(data)
	if err != nil {
		log.Fatalf("parse entities: %v", err)
	}
	if params == nil {
		fallback := defaults.Parameters
		params = &fallback
	}

	processor := mapper.NewProcessor(defaults.Geometry, store)
	model := processor.Process(entities, params)

	fmt.Printf("Units: %s (confidence %.2f, scale %g)\n",
		model.Units.DetectedUnit, model.Units.Confidence, model.Units.ScaleToMeters)
	for _, reason := range model.Units.Reasoning {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Printf("Entities: %d\n", model.Stats.EntityCount)
	fmt.Printf("Elements: %d (high %d / medium %d / low %d)\n",
		model.Stats.ElementCount,
		model.Stats.Confidence.High,
		model.Stats.Confidence.Medium,
		model.Stats.Confidence.Low)
	for _, line := range typeBreakdown(model.Stats.ByType) {
		fmt.Printf("  %s\n", line)
	}
	fmt.Printf("Rooms: %d\n", model.Stats.RoomCount)
	fmt.Printf("Bounds: %.2f x %.2f m\n", model.Bounds.Width, model.Bounds.Height)

	payload, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		log.Fatalf("marshal model: %v", err)
	}
	if *output == "" {
		fmt.Println(string(payload))
	} else if err := os.WriteFile(*output, payload, 0o644); err != nil {
		log.Fatalf("write model: %v", err)
	}

	if *svgPath != "" {
		svg, err := mapper.NewRenderer().RenderPlan(model)
		if err != nil {
			log.Fatalf("render preview: %v", err)
		}
		if err := os.WriteFile(*svgPath, []byte(svg), 0o644); err != nil {
			log.Fatalf("write preview: %v", err)
		}
	}
}

func typeBreakdown(byType map[string]int) []string {
	keys := make([]string, 0, len(byType))
	for k := range byType {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-10s %d", k, byType[k]))
	}
	return lines
}
