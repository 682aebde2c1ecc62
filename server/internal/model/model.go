package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrArtifactNotFound is returned by Load when no file exists at the
	// configured artifact path.
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrSchema is returned when an artifact or a row does not match the
	// fourteen-column schema.
	ErrSchema = errors.New("model schema mismatch")

	// ErrInvalidArtifact is returned for artifacts that parse but cannot be
	// evaluated (empty name, non-positive scale, non-finite coefficient).
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// NumericTerm is one standard-scaled linear term.
type NumericTerm struct {
	Feature string  `json:"feature" yaml:"feature"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Scale   float64 `json:"scale" yaml:"scale"`
	Coef    float64 `json:"coef" yaml:"coef"`
}

// CategoricalTerm holds the one-hot coefficient of each known level.
type CategoricalTerm struct {
	Feature string             `json:"feature" yaml:"feature"`
	Levels  map[string]float64 `json:"levels" yaml:"levels"`
}

// Artifact is the serialised form of a fitted model.
type Artifact struct {
	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version" yaml:"version"`
	Intercept   float64           `json:"intercept" yaml:"intercept"`
	Numeric     []NumericTerm     `json:"numeric" yaml:"numeric"`
	Categorical []CategoricalTerm `json:"categorical" yaml:"categorical"`
}

// Info describes a loaded model.
type Info struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Path     string   `json:"path"`
	Features []string `json:"features"`
}

// LogisticModel is a loaded, validated classifier. It is never mutated
// after Load returns.
type LogisticModel struct {
	path     string
	artifact Artifact
}

// Load reads the artifact at path. Files ending in .json are decoded as
// JSON; anything else is decoded as YAML.
func Load(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model: %w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("model: read %q: %w", path, err)
	}

	a, err := parse(path, data)
	if err != nil {
		return nil, err
	}
	if err := validate(a); err != nil {
		return nil, fmt.Errorf("model: %q: %w", path, err)
	}
	return &LogisticModel{path: path, artifact: a}, nil
}

// New builds a model directly from an artifact, applying the same checks
// as Load.
func New(a Artifact) (*LogisticModel, error) {
	if err := validate(a); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	return &LogisticModel{artifact: a}, nil
}

func parse(path string, data []byte) (Artifact, error) {
	var a Artifact
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return a, fmt.Errorf("model: parse json %q: %w", path, err)
		}
		return a, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			return a, fmt.Errorf("model: %w: %q is empty", ErrInvalidArtifact, path)
		}
		return a, fmt.Errorf("model: parse yaml %q: %w", path, err)
	}
	return a, nil
}

// validate checks the artifact covers exactly the expected columns with
// evaluable terms.
func validate(a Artifact) error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArtifact)
	}
	if !finite(a.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}

	seen := make(map[string]bool)
	for i, t := range a.Numeric {
		if t.Feature == "" {
			return fmt.Errorf("%w: numeric[%d]: feature is required", ErrInvalidArtifact, i)
		}
		if seen[t.Feature] {
			return fmt.Errorf("%w: feature %q declared twice", ErrSchema, t.Feature)
		}
		seen[t.Feature] = true
		if t.Scale <= 0 || !finite(t.Scale) {
			return fmt.Errorf("%w: %s: scale must be positive", ErrInvalidArtifact, t.Feature)
		}
		if !finite(t.Mean) || !finite(t.Coef) {
			return fmt.Errorf("%w: %s: mean and coef must be finite", ErrInvalidArtifact, t.Feature)
		}
	}
	for i, t := range a.Categorical {
		if t.Feature == "" {
			return fmt.Errorf("%w: categorical[%d]: feature is required", ErrInvalidArtifact, i)
		}
		if seen[t.Feature] {
			return fmt.Errorf("%w: feature %q declared twice", ErrSchema, t.Feature)
		}
		seen[t.Feature] = true
		for level, c := range t.Levels {
			if !finite(c) {
				return fmt.Errorf("%w: %s=%s: coefficient is not finite", ErrInvalidArtifact, t.Feature, level)
			}
		}
	}

	numeric := make([]string, 0, len(a.Numeric))
	for _, t := range a.Numeric {
		numeric = append(numeric, t.Feature)
	}
	if err := expectKind(numeric, NumericColumns, "numeric"); err != nil {
		return err
	}
	categorical := make([]string, 0, len(a.Categorical))
	for _, t := range a.Categorical {
		categorical = append(categorical, t.Feature)
	}
	return expectKind(categorical, CategoricalColumns, "categorical")
}

// expectKind checks that features name exactly the columns in want.
func expectKind(features, want []string, kind string) error {
	have := make(map[string]bool, len(features))
	for _, f := range features {
		have[f] = true
	}
	for _, c := range want {
		if !have[c] {
			return fmt.Errorf("%w: %s column %q missing", ErrSchema, kind, c)
		}
		delete(have, c)
	}
	for f := range have {
		return fmt.Errorf("%w: unexpected %s column %q", ErrSchema, kind, f)
	}
	return nil
}

// PredictProba scores a single row and returns the class probabilities
// [P(not delinquent), P(delinquent)]. The row must carry exactly the
// fourteen schema columns.
func (m *LogisticModel) PredictProba(row Row) ([]float64, error) {
	if n := len(m.artifact.Numeric) + len(m.artifact.Categorical); row.Len() != n {
		return nil, fmt.Errorf("model: %w: row has %d columns, want %d", ErrSchema, row.Len(), n)
	}

	z := m.artifact.Intercept
	for _, t := range m.artifact.Numeric {
		x, ok := row.Numeric[t.Feature]
		if !ok {
			return nil, fmt.Errorf("model: %w: numeric column %q missing from row", ErrSchema, t.Feature)
		}
		z += t.Coef * (x - t.Mean) / t.Scale
	}
	for _, t := range m.artifact.Categorical {
		v, ok := row.Categorical[t.Feature]
		if !ok {
			return nil, fmt.Errorf("model: %w: categorical column %q missing from row", ErrSchema, t.Feature)
		}
		z += t.Levels[v]
	}

	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// Info returns the model's identity and feature list.
func (m *LogisticModel) Info() Info {
	return Info{
		Name:     m.artifact.Name,
		Version:  m.artifact.Version,
		Path:     m.path,
		Features: Columns(),
	}
}

// sigmoid is the logistic function, arranged to avoid overflow for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
