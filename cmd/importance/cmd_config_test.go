package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
)

func TestGetSetConfigValue_EveryKey(t *testing.T) {
	values := map[string]string{
		"sweep.rate_start":       "0",
		"sweep.rate_stop":        "1",
		"sweep.rate_step":        "0.25",
		"sweep.repeats":          "50",
		"sweep.rows":             "300",
		"sweep.seed":             "18446744073709551615",
		"sweep.workers":          "3",
		"forest.trees":           "100",
		"forest.mtry":            "2",
		"forest.node_size":       "3",
		"forest.max_depth":       "8",
		"forest.sample_fraction": "0.632",
		"importance.type":        "purity",
		"importance.scale":       "false",
		"percentiles.lower":      "0.1",
		"percentiles.median":     "0.5",
		"percentiles.upper":      "0.9",
		"logging.level":          "debug",
	}
	if len(values) != len(configKeys) {
		t.Fatalf("test covers %d keys, configKeys has %d", len(values), len(configKeys))
	}

	cfg := config.Default()
	for _, key := range configKeys {
		value, ok := values[key]
		if !ok {
			t.Fatalf("no test value for %s", key)
		}
		if err := setConfigValue(cfg, key, value); err != nil {
			t.Fatalf("setConfigValue(%s, %s) error = %v", key, value, err)
		}
		got, found := getConfigValue(cfg, key)
		if !found {
			t.Fatalf("getConfigValue(%s) not found", key)
		}
		if s := toString(got); s != value {
			t.Errorf("%s = %s after setting %s", key, s, value)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config built from every key is invalid: %v", err)
	}
}

// toString formats a config value the way it is typed on the command line.
func toString(v any) string {
	b, _ := json.Marshal(v)
	return strings.Trim(string(b), `"`)
}

func TestSetConfigValue_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"sweep.repeats", "many"},
		{"sweep.rate_step", "half"},
		{"sweep.seed", "-1"},
		{"importance.type", "gini"},
		{"importance.scale", "maybe"},
		{"forest.colour", "red"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := setConfigValue(config.Default(), tt.key, tt.value); err == nil {
				t.Errorf("setConfigValue(%s, %s) expected error", tt.key, tt.value)
			}
		})
	}
}

func TestConfigCmd_SetGetList(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	if _, err := execute(t, "config", "set", "forest.trees", "123", "--root", tmpDir); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	loaded, err := config.LoadFromFile(filepath.Join(tmpDir, constants.DataDirName, constants.ConfigFileName))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Forest.Trees != 123 {
		t.Errorf("saved trees = %d, want 123", loaded.Forest.Trees)
	}

	out, err := execute(t, "config", "get", "forest.trees", "--root", tmpDir)
	if err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if strings.TrimSpace(out) != "forest.trees = 123" {
		t.Errorf("config get = %q", out)
	}

	out, err = execute(t, "config", "list", "--root", tmpDir)
	if err != nil {
		t.Fatalf("config list error = %v", err)
	}
	for _, key := range configKeys {
		if !strings.Contains(out, key+":") {
			t.Errorf("config list missing %s", key)
		}
	}

	out, err = execute(t, "config", "list", "--root", tmpDir, "--json")
	if err != nil {
		t.Fatalf("config list --json error = %v", err)
	}
	var cfg config.ExperimentConfig
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("config list --json is not JSON: %v", err)
	}
	if cfg.Forest.Trees != 123 {
		t.Errorf("config list --json trees = %d", cfg.Forest.Trees)
	}
}

func TestConfigCmd_SetRejectsInvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	if _, err := execute(t, "config", "set", "sweep.repeats", "1", "--root", tmpDir); err == nil {
		t.Fatal("config set of an invalid value expected error")
	}
	if _, err := execute(t, "config", "get", "sweep.repeats", "--root", tmpDir); err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if _, err := execute(t, "config", "get", "no.such.key", "--root", tmpDir); err == nil {
		t.Error("config get of an unknown key expected error")
	}
}

func TestConfigCmd_EnvNotPersisted(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	t.Setenv("IMPORTANCE_TREES", "7")

	if _, err := execute(t, "config", "set", "sweep.repeats", "30", "--root", tmpDir); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	loaded, err := config.LoadFromFile(config.Path(tmpDir))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Forest.Trees == 7 {
		t.Error("environment override was written to the config file")
	}

	out, err := execute(t, "config", "get", "forest.trees", "--root", tmpDir)
	if err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if strings.TrimSpace(out) != "forest.trees = 7" {
		t.Errorf("config get = %q, want the environment value", out)
	}
}
