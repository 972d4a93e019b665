package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conduit-lang/xgen/internal/builderrors"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "xgen.yml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if !cfg.Generate.FailOnValidationError {
		t.Error("expected fail_on_validation_error to default to true")
	}
	if cfg.Generate.Compiler.SourceLevel != "1.6" || cfg.Generate.Compiler.TargetLevel != "1.6" {
		t.Errorf("expected compiler levels 1.6, got %+v", cfg.Generate.Compiler)
	}
	if cfg.Engine.ValidationExitCode != 1 {
		t.Errorf("expected validation exit code 1, got %d", cfg.Engine.ValidationExitCode)
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected debounce 100ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("expected console log format, got %s", cfg.Log.Format)
	}
	if cfg.Generate.SourceRoots != nil || cfg.Generate.Classpath != nil {
		t.Error("expected unset path lists to stay nil")
	}
	if cfg.Generate.Clustering != nil {
		t.Error("expected no clustering policy by default")
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
project:
  modules: [core]
generate:
  fail_on_validation_error: false
  encoding: UTF-8
  source_roots: []
  classpath_lookup_filter: ".*-sources\\.jar"
  compiler:
    source_level: "11"
  clustering:
    max_units_per_batch: 200
    flush_index: true
  project_mappings:
    - project_name: shared-model
      path: ../shared/model
  languages:
    - setup: org.example.dsl.MyDslStandaloneSetup
      java_support: false
      output_configurations:
        - name: DEFAULT_OUTPUT
          output_directory: src-gen
          can_clear_output_directory: true
engine:
  command: [java, -jar, engine.jar]
  validation_exit_code: 3
  setups:
    - id: org.example.dsl.MyDslStandaloneSetup
      file_extensions: [mydsl]
log:
  format: json
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	g := cfg.Generate
	if g.FailOnValidationError {
		t.Error("expected fail_on_validation_error false")
	}
	if g.Encoding != "UTF-8" {
		t.Errorf("expected encoding UTF-8, got %s", g.Encoding)
	}
	if g.SourceRoots == nil || len(g.SourceRoots) != 0 {
		t.Errorf("expected explicit empty source roots, got %#v", g.SourceRoots)
	}
	if g.ClasspathLookupFilter != `.*-sources\.jar` {
		t.Errorf("unexpected filter %q", g.ClasspathLookupFilter)
	}
	if g.Compiler.SourceLevel != "11" || g.Compiler.TargetLevel != "1.6" {
		t.Errorf("unexpected compiler config %+v", g.Compiler)
	}
	if g.Clustering == nil || g.Clustering.MaxUnitsPerBatch != 200 || !g.Clustering.FlushIndex {
		t.Errorf("unexpected clustering %+v", g.Clustering)
	}
	if len(g.ProjectMappings) != 1 || g.ProjectMappings[0].ProjectName != "shared-model" {
		t.Errorf("unexpected project mappings %+v", g.ProjectMappings)
	}
	if len(g.Languages) != 1 {
		t.Fatalf("expected 1 language, got %d", len(g.Languages))
	}
	lang := g.Languages[0]
	if lang.JavaSupport == nil || *lang.JavaSupport {
		t.Error("expected java_support false")
	}
	if len(lang.OutputConfigurations) != 1 || !lang.OutputConfigurations[0].CanClearOutputDirectory {
		t.Errorf("unexpected outputs %+v", lang.OutputConfigurations)
	}
	if lang.OutputConfigurations[0].CreateOutputDirectory != nil {
		t.Error("expected unset create_output_directory to stay nil")
	}
	if len(cfg.Engine.Command) != 3 || cfg.Engine.ValidationExitCode != 3 {
		t.Errorf("unexpected engine config %+v", cfg.Engine)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json format, got %s", cfg.Log.Format)
	}

	registry, err := cfg.Registry()
	if err != nil || registry == nil {
		t.Fatalf("expected registry, got %v", err)
	}
	if _, ok := registry.Lookup("org.example.dsl.MyDslStandaloneSetup"); !ok {
		t.Error("expected setup to be registered")
	}
}

func TestLoadOmittedListsStayUnset(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "generate:\n  source_roots: []\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p := cfg.Parameters()
	if p.SourceRoots == nil || len(p.SourceRoots) != 0 {
		t.Errorf("expected explicit empty source roots, got %#v", p.SourceRoots)
	}
	if p.JavaSourceRoots != nil {
		t.Errorf("expected omitted java source roots to be unset, got %#v", p.JavaSourceRoots)
	}
	if p.Classpath != nil {
		t.Errorf("expected omitted classpath to be unset, got %#v", p.Classpath)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "generate:\n  skip: false\n")
	t.Setenv("XGEN_GENERATE_SKIP", "true")
	t.Setenv("XGEN_LOG_DEBUG", "true")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Generate.Skip {
		t.Error("expected XGEN_GENERATE_SKIP to override the file")
	}
	if !cfg.Parameters().Debug {
		t.Error("expected XGEN_LOG_DEBUG to enable debug parameters")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log format", "log:\n  format: xml\n"},
		{"exit code", "engine:\n  validation_exit_code: 0\n"},
		{"clustering", "generate:\n  clustering:\n    max_units_per_batch: 0\n"},
		{"yaml", "generate: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !builderrors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestParameters(t *testing.T) {
	cfg := &Config{Generate: GenerateConfig{
		Skip:      true,
		Classpath: []string{"lib/a.jar"},
		Compiler:  CompilerConfig{SourceLevel: "8", TargetLevel: "9"},
		Encoding:  "UTF-8",
		TempDir:   "tmp",
	}}

	p := cfg.Parameters()
	if !p.Skip || p.Encoding != "UTF-8" || p.TempDir != "tmp" {
		t.Errorf("unexpected parameters %+v", p)
	}
	if p.CompilerSourceLevel != "8" || p.CompilerTargetLevel != "9" {
		t.Errorf("unexpected compiler levels %s/%s", p.CompilerSourceLevel, p.CompilerTargetLevel)
	}
	if len(p.Classpath) != 1 || p.SourceRoots != nil {
		t.Errorf("unexpected path lists %+v", p)
	}

	if r, err := cfg.Registry(); r != nil || err != nil {
		t.Errorf("expected no registry without setups, got %v %v", r, err)
	}
}

func TestFindModuleRoot(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "")

	subDir := filepath.Join(tmpDir, "src", "deep", "nested")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := FindModuleRoot(subDir)
	if err != nil {
		t.Fatalf("expected to find module root, got error: %v", err)
	}

	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedTmpDir, _ := filepath.EvalSymlinks(tmpDir)
	if resolvedRoot != resolvedTmpDir {
		t.Errorf("expected module root to be %s, got %s", resolvedTmpDir, resolvedRoot)
	}
}

func TestFindModuleRootNotInModule(t *testing.T) {
	if _, err := FindModuleRoot(t.TempDir()); err == nil {
		t.Error("expected error when not in a module, got nil")
	}
}
