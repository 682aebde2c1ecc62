package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fullRow(missed float64) Row {
	r := NewRow()
	for _, c := range NumericColumns {
		r.Numeric[c] = 0
	}
	r.Numeric[ColMissedCount] = missed
	r.Categorical[ColEmploymentStatus] = "Employed"
	r.Categorical[ColCreditCardType] = "Gold"
	r.Categorical[ColLocation] = "Chicago"
	return r
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "bdelinquency_model.json"))
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("Load: got %v, want ErrArtifactNotFound", err)
	}
}

func TestLoad_NeutralYAML(t *testing.T) {
	m, err := Load("testdata/neutral.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	probs, err := m.PredictProba(fullRow(2))
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("got %d probabilities, want 2", len(probs))
	}
	if probs[0] != 0.5 || probs[1] != 0.5 {
		t.Errorf("probs = %v, want [0.5 0.5]", probs)
	}

	info := m.Info()
	if info.Name != "neutral" {
		t.Errorf("Info.Name = %q, want neutral", info.Name)
	}
	if len(info.Features) != 14 {
		t.Errorf("Info.Features: got %d, want 14", len(info.Features))
	}
}

func TestLoad_JSONArtifact(t *testing.T) {
	m, err := Load("testdata/missed_only.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		missed float64
		want   float64
	}{
		{missed: 3, want: 0.5},
		{missed: 0, want: 1 / (1 + math.Exp(3))},
		{missed: 6, want: 1 / (1 + math.Exp(-3))},
	}
	for _, tc := range tests {
		probs, err := m.PredictProba(fullRow(tc.missed))
		if err != nil {
			t.Fatalf("PredictProba(%v): %v", tc.missed, err)
		}
		if math.Abs(probs[1]-tc.want) > 1e-12 {
			t.Errorf("missed=%v: P(delinquent) = %v, want %v", tc.missed, probs[1], tc.want)
		}
		if math.Abs(probs[0]+probs[1]-1) > 1e-12 {
			t.Errorf("missed=%v: probabilities sum to %v", tc.missed, probs[0]+probs[1])
		}
	}
}

func TestLoad_ShippedArtifact(t *testing.T) {
	if _, err := Load("../../../bdelinquency_model.json"); err != nil {
		t.Fatalf("Load shipped artifact: %v", err)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "missing columns",
			content: `name: partial
numeric:
  - {feature: Age, mean: 0, scale: 1, coef: 0}
`,
			wantErr: ErrSchema,
		},
		{
			name:    "no name",
			content: "intercept: 0\n",
			wantErr: ErrInvalidArtifact,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, "model.yaml", tc.content)
			_, err := Load(p)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Load: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeFile(t, "model.yaml", "name: [unterminated\n")
	if _, err := Load(p); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestLoad_UnknownJSONField(t *testing.T) {
	p := writeFile(t, "model.json", `{"name": "x", "weights": [1, 2]}`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoad_UnknownYAMLField(t *testing.T) {
	p := writeFile(t, "model.yaml", "name: x\nweights: [1, 2]\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "weights") {
		t.Fatalf("Load: got %v, want unknown field error naming weights", err)
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	p := writeFile(t, "model.yaml", "")
	if _, err := Load(p); !errors.Is(err, ErrInvalidArtifact) {
		t.Fatalf("Load: got %v, want ErrInvalidArtifact", err)
	}
}

func validArtifact() Artifact {
	a := Artifact{Name: "unit"}
	for _, c := range NumericColumns {
		a.Numeric = append(a.Numeric, NumericTerm{Feature: c, Scale: 1})
	}
	for _, c := range CategoricalColumns {
		a.Categorical = append(a.Categorical, CategoricalTerm{Feature: c})
	}
	return a
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Artifact)
		wantErr error
	}{
		{"valid", func(*Artifact) {}, nil},
		{"zero scale", func(a *Artifact) { a.Numeric[0].Scale = 0 }, ErrInvalidArtifact},
		{"nan coef", func(a *Artifact) { a.Numeric[1].Coef = math.NaN() }, ErrInvalidArtifact},
		{"inf intercept", func(a *Artifact) { a.Intercept = math.Inf(1) }, ErrInvalidArtifact},
		{"duplicate feature", func(a *Artifact) { a.Numeric[1].Feature = ColAge }, ErrSchema},
		{"extra feature", func(a *Artifact) {
			a.Numeric = append(a.Numeric, NumericTerm{Feature: "Zip", Scale: 1})
		}, ErrSchema},
		{"categorical declared numeric", func(a *Artifact) {
			a.Categorical = a.Categorical[:2]
			a.Numeric = append(a.Numeric, NumericTerm{Feature: ColLocation, Scale: 1})
		}, ErrSchema},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := validArtifact()
			tc.mutate(&a)
			_, err := New(a)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("New: unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("New: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestPredictProba_RowSchema(t *testing.T) {
	m, err := New(validArtifact())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	short := fullRow(0)
	delete(short.Numeric, ColAge)
	if _, err := m.PredictProba(short); !errors.Is(err, ErrSchema) {
		t.Errorf("short row: got %v, want ErrSchema", err)
	}

	renamed := fullRow(0)
	delete(renamed.Categorical, ColLocation)
	renamed.Categorical["City"] = "Chicago"
	if _, err := m.PredictProba(renamed); !errors.Is(err, ErrSchema) {
		t.Errorf("renamed column: got %v, want ErrSchema", err)
	}
}

func TestPredictProba_UnseenLevelIgnored(t *testing.T) {
	a := validArtifact()
	a.Categorical[2].Levels = map[string]float64{"Chicago": 2}
	m, err := New(a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	row := fullRow(0)
	row.Categorical[ColLocation] = "Boston"
	probs, err := m.PredictProba(row)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	if probs[1] != 0.5 {
		t.Errorf("unseen level: P = %v, want 0.5", probs[1])
	}
}

func TestSigmoid_Extremes(t *testing.T) {
	if v := sigmoid(1000); v != 1 {
		t.Errorf("sigmoid(1000) = %v, want 1", v)
	}
	if v := sigmoid(-1000); v != 0 {
		t.Errorf("sigmoid(-1000) = %v, want 0", v)
	}
	if v := sigmoid(0); v != 0.5 {
		t.Errorf("sigmoid(0) = %v, want 0.5", v)
	}
}
