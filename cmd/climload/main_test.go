// Package main provides tests for the climload CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verdant-labs/climload/internal/cli"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "testdata")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "climload") {
		t.Errorf("version output should contain 'climload', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	for _, expected := range []string{"run", "discover", "validate", "audit", "version"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain %q, got: %s", expected, output)
		}
	}
}

func TestDiscoverCommand(t *testing.T) {
	output, err := execute(t, "discover", "--data-dir", testdataDir(t))
	if err != nil {
		t.Errorf("discover command error = %v", err)
	}
	for _, expected := range []string{"countries", "sector_benchmarks", "ASCOR_countries.csv"} {
		if !strings.Contains(output, expected) {
			t.Errorf("discover output should contain %q, got: %s", expected, output)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	output, err := execute(t, "validate", "--data-dir", testdataDir(t))
	if err != nil {
		t.Errorf("validate command error = %v", err)
	}
	if !strings.Contains(output, "PASSED") {
		t.Errorf("validate output should contain 'PASSED', got: %s", output)
	}
}

func TestRunCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "climate.db")

	output, err := execute(t, "run",
		"--data-dir", testdataDir(t),
		"--target-path", dbPath,
		"--tables",
	)
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	for _, expected := range []string{"ascor", "tpi", "PASSED", "company", "country"} {
		if !strings.Contains(output, expected) {
			t.Errorf("run output should contain %q, got: %s", expected, output)
		}
	}
}

func TestRunThenAuditCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "climate.db")

	if _, err := execute(t, "run", "--data-dir", testdataDir(t), "--target-path", dbPath); err != nil {
		t.Fatalf("run command error = %v", err)
	}

	output, err := execute(t, "audit", "--target-path", dbPath, "--limit", "100")
	if err != nil {
		t.Fatalf("audit command error = %v", err)
	}
	for _, expected := range []string{"RUN_START", "TABLE_LOADED", "RUN_COMPLETED"} {
		if !strings.Contains(output, expected) {
			t.Errorf("audit output should contain %q, got: %s", expected, output)
		}
	}
}

func TestRunCommandSingleFamily(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "climate.db")

	output, err := execute(t, "run",
		"--data-dir", testdataDir(t),
		"--target-path", dbPath,
		"--families", "ascor",
	)
	if err != nil {
		t.Fatalf("run --families ascor error = %v", err)
	}
	if strings.Contains(output, "tpi") {
		t.Errorf("run output should not mention tpi, got: %s", output)
	}
}

func TestRunCommandMissingDataDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "climate.db")

	_, err := execute(t, "run",
		"--data-dir", filepath.Join(t.TempDir(), "nope"),
		"--target-path", dbPath,
	)
	if err == nil {
		t.Error("run with a missing data directory should return an error")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "unknown-command")
	if err == nil {
		t.Error("unknown command should return an error")
	}
}
