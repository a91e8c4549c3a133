// scenarioconv converts YAML scenario definitions into the Lua scripts
// gridbench loads. YAML is the friendlier format for bulk-editing
// workload matrices; Lua is what the bench engine executes (and where
// hand-written placement functions live).
//
// Usage:
//
//	go run ./cmd/scenarioconv -in workloads.yaml -out scenarios/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML structures
// ---------------------------------------------------------------------------

type ScenarioEntry struct {
	Name           string  `yaml:"name"`
	CellSize       float64 `yaml:"cell_size"`
	AreaW          float64 `yaml:"area_w"`
	AreaH          float64 `yaml:"area_h"`
	Entities       int     `yaml:"entities"`
	Ticks          int     `yaml:"ticks"`
	QueriesPerTick int     `yaml:"queries_per_tick"`
	Radius         float64 `yaml:"radius"`
	Speed          float64 `yaml:"speed"`
	Distinct       *bool   `yaml:"distinct"`
	Exact          *bool   `yaml:"exact"`
	Seed           int64   `yaml:"seed"`
}

type ScenarioFile struct {
	Scenarios []ScenarioEntry `yaml:"scenarios"`
}

func main() {
	inPath := flag.String("in", "workloads.yaml", "input YAML file")
	outDir := flag.String("out", "scenarios", "output directory for .lua files")
	flag.Parse()

	if err := run(*inPath, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outDir string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}
	if len(file.Scenarios) == 0 {
		return fmt.Errorf("%s: no scenarios", inPath)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	for _, sc := range file.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("%s: scenario with empty name", inPath)
		}
		out := filepath.Join(outDir, sc.Name+".lua")
		if err := os.WriteFile(out, []byte(renderLua(sc)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("wrote %s\n", out)
	}
	return nil
}

func renderLua(sc ScenarioEntry) string {
	var b strings.Builder
	b.WriteString("-- generated by scenarioconv, do not edit\n")
	b.WriteString("scenario = {\n")
	fmt.Fprintf(&b, "    name = %q,\n", sc.Name)
	fmt.Fprintf(&b, "    cell_size = %v,\n", sc.CellSize)
	fmt.Fprintf(&b, "    area = { w = %v, h = %v },\n", sc.AreaW, sc.AreaH)
	fmt.Fprintf(&b, "    entities = %d,\n", sc.Entities)
	if sc.Ticks > 0 {
		fmt.Fprintf(&b, "    ticks = %d,\n", sc.Ticks)
	}
	if sc.QueriesPerTick > 0 {
		fmt.Fprintf(&b, "    queries_per_tick = %d,\n", sc.QueriesPerTick)
	}
	fmt.Fprintf(&b, "    radius = %v,\n", sc.Radius)
	if sc.Speed > 0 {
		fmt.Fprintf(&b, "    speed = %v,\n", sc.Speed)
	}
	if sc.Distinct != nil {
		fmt.Fprintf(&b, "    distinct = %t,\n", *sc.Distinct)
	}
	if sc.Exact != nil {
		fmt.Fprintf(&b, "    exact = %t,\n", *sc.Exact)
	}
	if sc.Seed != 0 {
		fmt.Fprintf(&b, "    seed = %d,\n", sc.Seed)
	}
	b.WriteString("}\n")
	return b.String()
}
