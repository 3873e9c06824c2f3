package synth

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestGenerate_Shape(t *testing.T) {
	ds, err := Generate(0.5, 200, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if ds.Rows() != 200 {
		t.Errorf("Rows() = %d, want 200", ds.Rows())
	}
	if ds.Features() != NumFeatures {
		t.Errorf("Features() = %d, want %d", ds.Features(), NumFeatures)
	}
	for j := 0; j < ds.Features(); j++ {
		if len(ds.Feature(j)) != 200 {
			t.Errorf("len(Feature(%d)) = %d, want 200", j, len(ds.Feature(j)))
		}
	}
	if len(ds.Decoy) != 200 || len(ds.Switch) != 200 {
		t.Errorf("decoy/switch lengths = %d/%d, want 200", len(ds.Decoy), len(ds.Switch))
	}
	if ds.Rate != 0.5 {
		t.Errorf("Rate = %v, want 0.5", ds.Rate)
	}
}

func TestGenerate_ResponseFormula(t *testing.T) {
	ds, err := Generate(0.3, 500, rand.NewPCG(3, 4))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := 0; i < ds.Rows(); i++ {
		x1 := ds.X[AlwaysInformative][i]
		x2 := ds.X[Switched][i]
		want := x1 + ds.Decoy[i]
		if ds.Switch[i] {
			want = x1 + x2
		}
		if math.Abs(ds.Y[i]-want) > 1e-12 {
			t.Fatalf("row %d: y = %v, want %v", i, ds.Y[i], want)
		}
	}
}

func TestGenerate_ValuesInUnitInterval(t *testing.T) {
	ds, err := Generate(0.7, 1000, rand.NewPCG(5, 6))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	check := func(name string, xs []float64) {
		for i, v := range xs {
			if v < 0 || v >= 1 {
				t.Fatalf("%s[%d] = %v outside [0, 1)", name, i, v)
			}
		}
	}
	for j, name := range FeatureNames {
		check(name, ds.Feature(j))
	}
	check("decoy", ds.Decoy)
}

func TestGenerate_SwitchExtremes(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{"rate zero never switches", 0, 0},
		{"rate one always switches", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Generate(tt.rate, 300, rand.NewPCG(7, 8))
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got := ds.SwitchRate(); got != tt.want {
				t.Errorf("SwitchRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerate_SwitchRateTracksRate(t *testing.T) {
	ds, err := Generate(0.4, 20000, rand.NewPCG(9, 10))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// Binomial sd at n=20000, p=0.4 is about 0.0035.
	if got := ds.SwitchRate(); math.Abs(got-0.4) > 0.02 {
		t.Errorf("SwitchRate() = %v, want about 0.4", got)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(0.5, 50, rand.NewPCG(11, 12))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(0.5, 50, rand.NewPCG(11, 12))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for i := range a.Y {
		if a.Y[i] != b.Y[i] {
			t.Fatalf("row %d differs: %v vs %v", i, a.Y[i], b.Y[i])
		}
	}

	c, err := Generate(0.5, 50, rand.NewPCG(11, 13))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	same := true
	for i := range a.Y {
		if a.Y[i] != c.Y[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different streams produced identical datasets")
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		rows    int
		wantErr error
	}{
		{"negative rate", -0.1, 10, ErrRate},
		{"rate above one", 1.1, 10, ErrRate},
		{"zero rows", 0.5, 0, ErrRows},
		{"negative rows", 0.5, -3, ErrRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.rate, tt.rows, rand.NewPCG(1, 1))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDataset_Row(t *testing.T) {
	ds, err := Generate(0.5, 10, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	row := ds.Row(4, nil)
	if len(row) != NumFeatures {
		t.Fatalf("len(Row) = %d, want %d", len(row), NumFeatures)
	}
	for j := range row {
		if row[j] != ds.X[j][4] {
			t.Errorf("Row(4)[%d] = %v, want %v", j, row[j], ds.X[j][4])
		}
	}

	buf := make([]float64, 8)
	row = ds.Row(2, buf)
	if len(row) != NumFeatures {
		t.Errorf("reused buffer len = %d, want %d", len(row), NumFeatures)
	}
}

func TestSwitchRate_Empty(t *testing.T) {
	var ds Dataset
	if got := ds.SwitchRate(); got != 0 {
		t.Errorf("SwitchRate() on empty dataset = %v, want 0", got)
	}
}
