package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/xgen/internal/cli/config"
	"github.com/conduit-lang/xgen/internal/project"
)

func TestInit_Yes(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCommand(context.Background(), "init", "-C", dir, "--yes",
		"--setup", "org.example.dsl.MyDslStandaloneSetup",
		"--extension", ".mydsl",
		"--engine-command", "java -jar engine.jar",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Generate.Languages, 1)
	assert.Equal(t, "org.example.dsl.MyDslStandaloneSetup", cfg.Generate.Languages[0].Setup)
	assert.True(t, cfg.Generate.FailOnValidationError)
	assert.Equal(t, []string{"java", "-jar", "engine.jar"}, cfg.Engine.Command)
	require.Len(t, cfg.Engine.Setups, 1)
	assert.Equal(t, []string{"mydsl"}, cfg.Engine.Setups[0].FileExtensions)

	mod, err := project.NewLoader().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mod.Dir, "target"), mod.Build.Directory)
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := writeModule(t, "log:\n  format: json\n")

	_, _, err := executeCommand(context.Background(), "init", "-C", dir, "--yes", "--setup", "a.Setup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCommand(context.Background(), "init", "-C", dir, "--yes", "--setup", "a.Setup", "--force")
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, "xgen.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "a.Setup")
}

func TestInit_RequiresSetup(t *testing.T) {
	_, _, err := executeCommand(context.Background(), "init", "-C", t.TempDir(), "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--setup")
}

func TestRenderScaffold(t *testing.T) {
	content, err := renderScaffold(initAnswers{Setup: " a.Setup ", OutputDirectory: "gen"})
	require.NoError(t, err)

	s := string(content)
	assert.Contains(t, s, "setup: a.Setup")
	assert.Contains(t, s, "output_directory: gen")
	assert.Contains(t, s, "compile_source_roots:")
	assert.NotContains(t, s, "setups:")
	assert.NotContains(t, s, "command:")
}
