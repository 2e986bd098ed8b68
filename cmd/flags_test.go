package cmd

import (
	"os"
	"testing"

	"github.com/relloyd/psvexport/actions"
	"github.com/spf13/cobra"
)

func TestGetCliFlag(t *testing.T) {
	defer func() {
		twelveFactorMode = false
	}()
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar(flagName)
	d := "defaultValue"
	expected := "mockValue"
	_ = os.Unsetenv(mockEnvVar)
	defer func() {
		_ = os.Unsetenv(mockEnvVar)
	}()
	// Test 1 - test default value applied to mock CLI flag.
	twelveFactorMode = false
	got := switches.getCliFlag(flagName, d)
	if got.val != d { // if no default was applied...
		t.Fatalf("test 1 failed: expected default value %v to be applied to mock CLI flag; got %v", d, got.val)
	}
	// Test 2 - fetch flag value from environment when it is not set - expect default value to be applied.
	twelveFactorMode = true
	got = switches.getCliFlag(flagName, d)
	if got.val != d {
		t.Fatalf("test 2 failed: expected default value (%v) to be applied to mock CLI flag fetched via environment variable (%v)", d, mockEnvVar)
	}
	// Test 3 - fetch flag value from environment after setting it explicitly (requires twelveFactorMode).
	if err := os.Setenv(mockEnvVar, expected); err != nil {
		t.Fatalf("test 3 failed: unable to set environment variable %v", mockEnvVar)
	}
	got = switches.getCliFlag(flagName, d)
	if got.val != expected {
		t.Fatalf("test 3 failed: expected value (%v) to be applied to mock CLI flag (%v) fetched from environment variable (%v); got: %v", expected, flagName, mockEnvVar, got.val)
	}
	// Test 4 - the env var is ignored outside twelveFactorMode.
	twelveFactorMode = false
	if got = switches.getCliFlag(flagName, d); got.val != d {
		t.Fatalf("test 4 failed: expected default value %v; got %v", d, got.val)
	}
}

func TestAddExtractFlags(t *testing.T) {
	defer func() {
		twelveFactorMode = false
	}()
	// Test 1 - flags are registered with defaults.
	twelveFactorMode = false
	c := &cobra.Command{Use: "test"}
	cfg := actions.ExtractConfig{}
	addExtractFlags(c, &cfg)
	if err := c.ParseFlags([]string{"-c", "src", "--table-map", "tm.yaml", "-o", "/tmp/out", "--parallelism", "3", "--header"}); err != nil {
		t.Fatalf("test 1 failed: unable to parse flags: %v", err)
	}
	if cfg.ConnectionName != "src" || cfg.TableMapFile != "tm.yaml" || cfg.OutputDir != "/tmp/out" {
		t.Fatalf("test 1 failed: unexpected config: %+v", cfg)
	}
	if cfg.Parallelism != 3 || !cfg.Header || !cfg.QuoteAll || cfg.MinRows != 2 || cfg.Delimiter != "|" || cfg.EmptyResultPolicy != "skip" {
		t.Fatalf("test 1 failed: unexpected defaults: %+v", cfg)
	}
	// Test 2 - values come from the environment in twelveFactorMode.
	twelveFactorMode = true
	env := map[string]string{
		"PX_CONNECTION":          "warehouse",
		"PX_TABLE_MAP":           "/etc/tm.yaml",
		"PX_OUTPUT_DIR":          "/data",
		"PX_QUOTE_ALL":           "false",
		"PX_MIN_ROWS":            "1",
		"PX_EMPTY_RESULT_POLICY": "halt",
		"PX_NOTIFY_TO":           "a@example.com,b@example.com",
	}
	for k, v := range env {
		_ = os.Setenv(k, v)
	}
	defer func() {
		for k := range env {
			_ = os.Unsetenv(k)
		}
	}()
	cfg = actions.ExtractConfig{}
	addExtractFlags(&cobra.Command{Use: "test"}, &cfg)
	if cfg.ConnectionName != "warehouse" || cfg.TableMapFile != "/etc/tm.yaml" || cfg.OutputDir != "/data" {
		t.Fatalf("test 2 failed: unexpected config: %+v", cfg)
	}
	if cfg.QuoteAll || cfg.MinRows != 1 || cfg.EmptyResultPolicy != "halt" || cfg.NotifyTo != "a@example.com,b@example.com" {
		t.Fatalf("test 2 failed: unexpected values: %+v", cfg)
	}
}

func TestParseBoolFlag(t *testing.T) {
	cases := map[string]bool{"": false, "false": false, "0": false, "true": true, "1": true, "yes": true}
	for in, expected := range cases {
		if got := parseBoolFlag(in); got != expected {
			t.Fatalf("parseBoolFlag(%q): expected %v; got %v", in, expected, got)
		}
	}
}
