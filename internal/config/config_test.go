package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Sweep.RateStart != 0 || config.Sweep.RateStop != 1 {
		t.Errorf("expected rate bounds [0, 1], got [%v, %v]", config.Sweep.RateStart, config.Sweep.RateStop)
	}
	if got := config.Sweep.Steps(); got != 11 {
		t.Errorf("expected 11 rate steps, got %d", got)
	}
	if config.Forest.NodeSize != 5 {
		t.Errorf("expected NodeSize 5, got %d", config.Forest.NodeSize)
	}
	if config.Importance.Type != constants.ImportancePermutation {
		t.Errorf("expected permutation importance, got %q", config.Importance.Type)
	}
	if !config.Importance.Scale {
		t.Error("expected Importance.Scale to be true by default")
	}
	if config.Percentiles.Lower != 0.05 || config.Percentiles.Median != 0.5 || config.Percentiles.Upper != 0.95 {
		t.Errorf("unexpected percentile defaults: %+v", config.Percentiles)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
sweep:
  rate_step: 0.25
  repeats: 20
  seed: 7
forest:
  trees: 50
  node_size: 3
importance:
  type: purity
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Sweep.RateStep != 0.25 {
		t.Errorf("expected RateStep 0.25, got %v", config.Sweep.RateStep)
	}
	if got := config.Sweep.Steps(); got != 5 {
		t.Errorf("expected 5 steps, got %d", got)
	}
	if config.Sweep.Repeats != 20 {
		t.Errorf("expected Repeats 20, got %d", config.Sweep.Repeats)
	}
	if config.Sweep.Seed != 7 {
		t.Errorf("expected Seed 7, got %d", config.Sweep.Seed)
	}
	if config.Forest.Trees != 50 {
		t.Errorf("expected Trees 50, got %d", config.Forest.Trees)
	}
	if config.Importance.Type != constants.ImportancePurity {
		t.Errorf("expected purity importance, got %q", config.Importance.Type)
	}

	// Unset fields keep defaults
	if config.Sweep.Rows != constants.DefaultRows {
		t.Errorf("expected default Rows %d, got %d", constants.DefaultRows, config.Sweep.Rows)
	}
	if config.Percentiles.Upper != constants.DefaultUpperPercentile {
		t.Errorf("expected default upper percentile, got %v", config.Percentiles.Upper)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("sweep: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := Path(tmpDir)

	config := Default()
	config.Sweep.Repeats = 13
	config.Forest.MaxDepth = 8
	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Sweep.Repeats != 13 {
		t.Errorf("expected Repeats 13, got %d", loaded.Sweep.Repeats)
	}
	if loaded.Forest.MaxDepth != 8 {
		t.Errorf("expected MaxDepth 8, got %d", loaded.Forest.MaxDepth)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	config, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Sweep.Repeats != constants.DefaultRepeats {
		t.Errorf("expected default repeats, got %d", config.Sweep.Repeats)
	}
}

func TestLoadPath_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	if err := os.WriteFile(path, []byte("sweep:\n  repeats: 12\nforest:\n  trees: 30\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("IMPORTANCE_TREES", "9")

	config, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if config.Sweep.Repeats != 12 {
		t.Errorf("repeats = %d, want 12 from the file", config.Sweep.Repeats)
	}
	if config.Forest.Trees != 9 {
		t.Errorf("trees = %d, want 9 from the environment", config.Forest.Trees)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ExperimentConfig)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *ExperimentConfig) {},
		},
		{
			name:    "rate start above one",
			modify:  func(c *ExperimentConfig) { c.Sweep.RateStart = 1.5 },
			wantErr: "sweep.rate_start",
		},
		{
			name:    "rate stop below start",
			modify:  func(c *ExperimentConfig) { c.Sweep.RateStart = 0.6; c.Sweep.RateStop = 0.4 },
			wantErr: "sweep.rate_stop",
		},
		{
			name:    "zero step",
			modify:  func(c *ExperimentConfig) { c.Sweep.RateStep = 0 },
			wantErr: "sweep.rate_step",
		},
		{
			name:    "step does not divide interval",
			modify:  func(c *ExperimentConfig) { c.Sweep.RateStep = 0.3 },
			wantErr: "does not divide",
		},
		{
			name:    "single repeat",
			modify:  func(c *ExperimentConfig) { c.Sweep.Repeats = 1 },
			wantErr: "sweep.repeats",
		},
		{
			name:    "no trees",
			modify:  func(c *ExperimentConfig) { c.Forest.Trees = 0 },
			wantErr: "forest.trees",
		},
		{
			name:    "mtry above feature count",
			modify:  func(c *ExperimentConfig) { c.Forest.Mtry = 4 },
			wantErr: "forest.mtry",
		},
		{
			name:    "unknown importance type",
			modify:  func(c *ExperimentConfig) { c.Importance.Type = "gini" },
			wantErr: "importance.type",
		},
		{
			name:    "percentiles out of order",
			modify:  func(c *ExperimentConfig) { c.Percentiles.Median = 0.01 },
			wantErr: "percentiles.median",
		},
		{
			name:    "invalid log level",
			modify:  func(c *ExperimentConfig) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "node size too large for rows",
			modify:  func(c *ExperimentConfig) { c.Sweep.Rows = 20; c.Forest.NodeSize = 11 },
			wantErr: "node_size",
		},
		{
			name:   "single rate sweep",
			modify: func(c *ExperimentConfig) { c.Sweep.RateStart = 0.5; c.Sweep.RateStop = 0.5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IMPORTANCE_SEED", "99")
	t.Setenv("IMPORTANCE_WORKERS", "3")
	t.Setenv("IMPORTANCE_REPEATS", "12")
	t.Setenv("IMPORTANCE_ROWS", "250")
	t.Setenv("IMPORTANCE_TREES", "40")
	t.Setenv("IMPORTANCE_TYPE", "purity")
	t.Setenv("IMPORTANCE_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Sweep.Seed != 99 {
		t.Errorf("expected Seed 99, got %d", config.Sweep.Seed)
	}
	if config.Sweep.Workers != 3 {
		t.Errorf("expected Workers 3, got %d", config.Sweep.Workers)
	}
	if config.Sweep.Repeats != 12 {
		t.Errorf("expected Repeats 12, got %d", config.Sweep.Repeats)
	}
	if config.Sweep.Rows != 250 {
		t.Errorf("expected Rows 250, got %d", config.Sweep.Rows)
	}
	if config.Forest.Trees != 40 {
		t.Errorf("expected Trees 40, got %d", config.Forest.Trees)
	}
	if config.Importance.Type != constants.ImportancePurity {
		t.Errorf("expected purity, got %q", config.Importance.Type)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected debug, got %q", config.Logging.Level)
	}
}

func TestApplyEnvOverrides_IgnoresMalformed(t *testing.T) {
	t.Setenv("IMPORTANCE_SEED", "not-a-number")
	t.Setenv("IMPORTANCE_TREES", "many")

	config := Default()
	applyEnvOverrides(config)

	if config.Sweep.Seed != constants.DefaultSeed {
		t.Errorf("expected default seed, got %d", config.Sweep.Seed)
	}
	if config.Forest.Trees != constants.DefaultTrees {
		t.Errorf("expected default trees, got %d", config.Forest.Trees)
	}
}

func TestFieldPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ExperimentConfig.Sweep.RateStep", "sweep.rate_step"},
		{"ExperimentConfig.Forest.NodeSize", "forest.node_size"},
		{"Trees", "trees"},
	}
	for _, tt := range tests {
		if got := fieldPath(tt.in); got != tt.want {
			t.Errorf("fieldPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
