package buildconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/cluster"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/project"
)

func testModule(t *testing.T) *project.Module {
	t.Helper()
	dir := t.TempDir()
	return &project.Module{
		Dir: dir,
		Build: project.Build{
			Directory:           filepath.Join(dir, "target"),
			OutputDirectory:     filepath.Join(dir, "target", "classes"),
			TestOutputDirectory: filepath.Join(dir, "target", "test-classes"),
		},
		CompileSourceRoots: []string{filepath.Join(dir, "src", "main", "java"), filepath.Join(dir, "src", "main", "dsl")},
		CompileClasspath: []string{
			filepath.Join(dir, "target", "classes"),
			"/repo/a.jar",
			"",
			"/repo/a.jar",
			filepath.Join(dir, "target", "test-classes"),
		},
	}
}

func TestAssemble_Defaults(t *testing.T) {
	mod := testModule(t)
	langs := map[string]language.Handle{"a": {Setup: "a", JavaSupport: true}}

	cfg, err := Assemble(mod, langs, Options{FailOnValidationError: true})
	require.NoError(t, err)

	assert.Equal(t, mod.Dir, cfg.BaseDir)
	assert.Equal(t, mod.CompileSourceRoots, cfg.SourceRoots)
	assert.Equal(t, mod.CompileSourceRoots, cfg.JavaSourceRoots)
	assert.Equal(t, []string{"/repo/a.jar"}, cfg.Classpath)
	assert.Empty(t, cfg.Encoding, "encoding is left to the engine's provider")
	assert.Equal(t, DefaultCompilerLevel, cfg.Compiler.SourceLevel)
	assert.Equal(t, DefaultCompilerLevel, cfg.Compiler.TargetLevel)
	assert.Nil(t, cfg.Clustering)
	assert.True(t, cfg.FailOnValidationError)
	assert.Equal(t, filepath.Join(mod.Build.Directory, DefaultTempDirName), cfg.TempDir)
	assert.DirExists(t, cfg.TempDir)
	assert.True(t, cfg.Languages["a"].UsesDefaultOutputs())
}

func TestAssemble_SourceRootsAllOrNothing(t *testing.T) {
	mod := testModule(t)

	cfg, err := Assemble(mod, nil, Options{SourceRoots: []string{"models"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(mod.Dir, "models")}, cfg.SourceRoots, "a custom entry replaces the defaults")
	assert.Equal(t, mod.CompileSourceRoots, cfg.JavaSourceRoots)

	cfg, err = Assemble(mod, nil, Options{JavaSourceRoots: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cfg.JavaSourceRoots, "an explicit empty list is not defaulted")
	assert.NotNil(t, cfg.JavaSourceRoots)
}

func TestAssemble_ClasspathOverrideAndFilter(t *testing.T) {
	mod := testModule(t)

	cfg, err := Assemble(mod, nil, Options{
		Classpath:             []string{"lib/b.jar", " ", mod.Build.OutputDirectory + "/", "/repo/a-sources.jar", "/repo/c.jar"},
		ClasspathLookupFilter: `-sources\.jar$`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(mod.Dir, "lib", "b.jar"), "/repo/c.jar"}, cfg.Classpath)
	assert.Equal(t, `-sources\.jar$`, cfg.ClasspathLookupFilter)
}

func TestAssemble_InvalidFilter(t *testing.T) {
	_, err := Assemble(testModule(t), nil, Options{ClasspathLookupFilter: "("})
	require.Error(t, err)
	assert.True(t, builderrors.IsConfiguration(err))
}

func TestAssemble_InvalidClustering(t *testing.T) {
	_, err := Assemble(testModule(t), nil, Options{Clustering: &cluster.Policy{}})
	assert.True(t, builderrors.IsConfiguration(err))
}

func TestAssemble_Clustering(t *testing.T) {
	policy := &cluster.Policy{MaxUnitsPerBatch: 10, FlushIndex: true}
	cfg, err := Assemble(testModule(t), nil, Options{Clustering: policy})
	require.NoError(t, err)
	assert.Equal(t, policy, cfg.Clustering)

	policy.MaxUnitsPerBatch = 99
	assert.Equal(t, 10, cfg.Clustering.MaxUnitsPerBatch, "configuration keeps its own copy")
}

func TestAssemble_CompilerAndDebug(t *testing.T) {
	cfg, err := Assemble(testModule(t), nil, Options{
		Encoding:            "UTF-8",
		CompilerSourceLevel: "17",
		CompilerTargetLevel: "21",
		Debug:               true,
	})
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", cfg.Encoding)
	assert.Equal(t, Compiler{SourceLevel: "17", TargetLevel: "21", Verbose: true}, cfg.Compiler)
	assert.True(t, cfg.Debug)
}

func TestAssemble_TempDir(t *testing.T) {
	mod := testModule(t)

	// relative to the module, created with parents, idempotent
	for i := 0; i < 2; i++ {
		cfg, err := Assemble(mod, nil, Options{TempDir: "build/tmp/xgen"})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(mod.Dir, "build", "tmp", "xgen"), cfg.TempDir)
		assert.DirExists(t, cfg.TempDir)
	}
}

func TestAssemble_TempDirUnavailable(t *testing.T) {
	mod := testModule(t)
	blocker := filepath.Join(mod.Dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Assemble(mod, nil, Options{TempDir: filepath.Join(blocker, "tmp")})
	require.Error(t, err)
	assert.True(t, builderrors.IsConfiguration(err))

	_, err = Assemble(mod, nil, Options{TempDir: blocker})
	require.Error(t, err)
	assert.True(t, builderrors.IsConfiguration(err))
}

func TestAssemble_CopiesLanguages(t *testing.T) {
	langs := map[string]language.Handle{
		"a": {Setup: "a", Outputs: []language.Output{{Name: "DEFAULT_OUTPUT"}}},
	}
	cfg, err := Assemble(testModule(t), langs, Options{})
	require.NoError(t, err)

	langs["a"].Outputs[0].Name = "changed"
	delete(langs, "a")
	assert.Equal(t, "DEFAULT_OUTPUT", cfg.Languages["a"].Outputs[0].Name)
}
