package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/lintdoc/internal/report"
)

const sample = "../../testdata/hexagonal.md"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	for i, a := range args {
		// Paths are given relative to this package directory.
		if strings.HasPrefix(a, "../../") {
			abs, err := filepath.Abs(filepath.Join(cwd, a))
			if err != nil {
				t.Fatal(err)
			}
			args[i] = abs
		}
	}
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var cwd, _ = os.Getwd()

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want int
	}{
		{"sample passes", func(t *testing.T) []string { return []string{sample} }, report.ExitOK},
		{"missing rules fail", func(t *testing.T) []string { return []string{writeFile(t, "t.md", "# Title\nbody")} }, report.ExitFailed},
		{"missing file", func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "nope.md")} }, report.ExitError},
		{"no headings", func(t *testing.T) []string { return []string{writeFile(t, "p.txt", "plain prose")} }, report.ExitError},
		{"no args", func(t *testing.T) []string { return nil }, report.ExitError},
		{"two args", func(t *testing.T) []string { return []string{"a.md", "b.md"} }, report.ExitError},
		{"bad format", func(t *testing.T) []string { return []string{"--format", "xml", sample} }, report.ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args(t)...)
			if code != tt.want {
				t.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s", tt.want, code, stdout, stderr)
			}
		})
	}
}

func TestRun_TextReport(t *testing.T) {
	code, stdout, _ := runCLI(t, "--no-color", writeFile(t, "t.md", "# Title\nbody"))
	if code != report.ExitFailed {
		t.Fatalf("expected exit code %d, got %d", report.ExitFailed, code)
	}
	if !strings.Contains(stdout, "FAIL  mapping-table") {
		t.Errorf("expected mapping-table failure in output, got:\n%s", stdout)
	}
}

func TestRun_JSONReport(t *testing.T) {
	code, stdout, _ := runCLI(t, "--format", "json", sample)
	if code != report.ExitOK {
		t.Fatalf("expected exit code %d, got %d", report.ExitOK, code)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if rep.ExitCode != report.ExitOK || rep.Summary.Failed != 0 {
		t.Errorf("unexpected report: %+v", rep)
	}
}

func TestRun_JSONLoadError(t *testing.T) {
	code, stdout, _ := runCLI(t, "--format", "json", writeFile(t, "p.txt", "plain prose"))
	if code != report.ExitError {
		t.Fatalf("expected exit code %d, got %d", report.ExitError, code)
	}
	var got report.ErrorReport
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if got.Kind != "format" {
		t.Errorf("expected format error, got %q", got.Kind)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--config", "../../testdata/lintdoc.yaml", "--no-color", sample)
	if code != report.ExitOK {
		t.Fatalf("expected exit code %d, got %d\n%s%s", report.ExitOK, code, stdout, stderr)
	}
	for _, want := range []string{"has-glossary", "shallow-outline"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected custom rule %s in output, got:\n%s", want, stdout)
		}
	}

	strict := writeFile(t, "strict.yaml", "required_sections: [Decision Log]\n")
	if code, _, _ := runCLI(t, "--config", strict, sample); code != report.ExitFailed {
		t.Errorf("expected exit code %d with stricter config, got %d", report.ExitFailed, code)
	}

	broken := writeFile(t, "broken.yaml", "disabled: [nope]\n")
	if code, _, stderr := runCLI(t, "--config", broken, sample); code != report.ExitError || !strings.Contains(stderr, "unknown rule") {
		t.Errorf("expected config error exit %d, got %d: %s", report.ExitError, code, stderr)
	}
}

func TestRun_Rules(t *testing.T) {
	code, stdout, _ := runCLI(t, "rules")
	if code != report.ExitOK {
		t.Fatalf("expected exit code %d, got %d", report.ExitOK, code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rules, got %d:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "required-sections") {
		t.Errorf("expected required-sections first, got %q", lines[0])
	}
}
