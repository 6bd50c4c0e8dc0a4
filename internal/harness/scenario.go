package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bulletml/internal/sim"
)

//go:embed schema.cue
var scenarioSchema string

// Scenario defines one simulation and the assertions on its outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description,omitempty"`

	// Document is the path of a BulletML file. Relative paths are resolved
	// against the scenario file by LoadScenario.
	Document string `yaml:"document,omitempty" json:"document,omitempty"`

	// Source is an inline BulletML document, used when Document is empty.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Frames is the maximum number of frames to simulate.
	Frames int `yaml:"frames" json:"frames"`

	Seed     *uint64    `yaml:"seed,omitempty" json:"seed,omitempty"`
	Rank     *float64   `yaml:"rank,omitempty" json:"rank,omitempty"`
	Origin   *sim.Point `yaml:"origin,omitempty" json:"origin,omitempty"`
	Target   *sim.Point `yaml:"target,omitempty" json:"target,omitempty"`
	Mirrored bool       `yaml:"mirrored,omitempty" json:"mirrored,omitempty"`
	Bounds   *sim.Rect  `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Workers  int        `yaml:"workers,omitempty" json:"workers,omitempty"`

	// Action runs one labelled action with Params instead of the top actions.
	Action string    `yaml:"action,omitempty" json:"action,omitempty"`
	Params []float64 `yaml:"params,omitempty" json:"params,omitempty"`

	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// Assertion checks one property of a Result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type" json:"type"`

	// Count is the expected number (fire_count, alive_count).
	Count *int `yaml:"count,omitempty" json:"count,omitempty"`

	// From and To bound fire_count to a frame range. To = 0 means no upper
	// bound.
	From int `yaml:"from,omitempty" json:"from,omitempty"`
	To   int `yaml:"to,omitempty" json:"to,omitempty"`

	// Frame is used by vanished_at, alive_count and position.
	Frame int `yaml:"frame,omitempty" json:"frame,omitempty"`

	// Code is the runtime error code for error_code.
	Code string `yaml:"code,omitempty" json:"code,omitempty"`

	// Bullet names a bullet (vanished_at, position). vanished_at defaults
	// to the root.
	Bullet string `yaml:"bullet,omitempty" json:"bullet,omitempty"`

	X         float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y         float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertFireCount  = "fire_count"
	AssertVanishedAt = "vanished_at"
	AssertAliveCount = "alive_count"
	AssertNoErrors   = "no_errors"
	AssertErrorCode  = "error_code"
	AssertPosition   = "position"
)

// LoadScenario reads a scenario file. The format follows the extension:
// .cue files are checked against the scenario schema, anything else is
// strict YAML. A relative Document path is resolved against the directory
// of the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		scenario, err = decodeCUE(path, data)
	} else {
		scenario, err = decodeYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

func decodeYAML(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func decodeCUE(path string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(scenarioSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	v = schema.LookupPath(cue.ParsePath("#Scenario")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to validate CUE: %w", err)
	}

	var scenario Scenario
	if err := v.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch {
	case s.Document == "" && s.Source == "":
		return fmt.Errorf("one of document or source is required")
	case s.Document != "" && s.Source != "":
		return fmt.Errorf("document and source are mutually exclusive")
	}

	if s.Document != "" {
		if _, err := os.Stat(s.Document); os.IsNotExist(err) {
			return fmt.Errorf("document not found: %s", s.Document)
		}
	}

	if s.Frames <= 0 {
		return fmt.Errorf("frames must be positive")
	}

	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFireCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for fire_count", index)
		}
		if a.To != 0 && a.To < a.From {
			return fmt.Errorf("assertions[%d]: to must not be before from", index)
		}
	case AssertAliveCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for alive_count", index)
		}
		if a.Frame < 0 {
			return fmt.Errorf("assertions[%d]: frame must be non-negative", index)
		}
	case AssertVanishedAt:
		if a.Frame <= 0 {
			return fmt.Errorf("assertions[%d]: positive frame is required for vanished_at", index)
		}
	case AssertNoErrors:
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	case AssertPosition:
		if a.Bullet == "" {
			return fmt.Errorf("assertions[%d]: bullet is required for position", index)
		}
		if a.Frame < 0 || a.Tolerance < 0 {
			return fmt.Errorf("assertions[%d]: frame and tolerance must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
