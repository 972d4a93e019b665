package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// executeCommand runs the root command with args and returns its output
func executeCommand(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// writeModule creates a module directory with the given xgen.yml content
func writeModule(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if content != "" {
		if err := os.WriteFile(filepath.Join(dir, "xgen.yml"), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write xgen.yml: %v", err)
		}
	}
	return dir
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "xgen" {
		t.Errorf("expected Use to be 'xgen', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	expectedCommands := []string{"version", "generate", "plan", "watch", "init"}
	for _, expected := range expectedCommands {
		found := false
		for _, cmd := range cmd.Commands() {
			if cmd.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %s to be registered", expected)
		}
	}

	for _, flag := range []string{"dir", "debug", "no-color", "log-format"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to be registered", flag)
		}
	}
}

func TestNewVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"

	stdout, _, err := executeCommand(context.Background(), "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}

	for _, want := range []string{"1.0.0-test", "abc123", "2025-01-01", "go1.23"} {
		if !bytes.Contains([]byte(stdout), []byte(want)) {
			t.Errorf("version output missing %q: %q", want, stdout)
		}
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cmd := NewGenerateCommand(&globalOptions{})
	for _, flag := range []string{
		"skip", "fail-on-validation-error", "encoding", "temp-dir", "source-root",
		"java-source-root", "classpath", "classpath-filter", "source-level", "target-level",
	} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to be registered", flag)
		}
	}
}
