// Package buildconfig assembles the configuration handed to the
// generation engine for one invocation.
package buildconfig

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/classpath"
	"github.com/conduit-lang/xgen/internal/cluster"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/project"
)

// DefaultCompilerLevel is the compiler source and target level used when
// none is configured
const DefaultCompilerLevel = "1.6"

// DefaultTempDirName is the temp directory created under the module's
// build directory when none is configured
const DefaultTempDirName = "xgen-temp"

const opAssemble = "assemble configuration"

// Options are the caller-supplied parameters of an invocation. A nil slice
// means "unset" and selects the project default; a non-nil slice, even an
// empty one, replaces the default entirely.
type Options struct {
	Encoding        string
	SourceRoots     []string
	JavaSourceRoots []string

	// Classpath nil selects the module's compile classpath
	Classpath             []string
	ClasspathLookupFilter string

	Clustering            *cluster.Policy
	CompilerSourceLevel   string
	CompilerTargetLevel   string
	FailOnValidationError bool
	TempDir               string
	Debug                 bool
}

// Compiler holds the settings for intermediate stub compilation
type Compiler struct {
	SourceLevel string `json:"source_level"`
	TargetLevel string `json:"target_level"`
	Verbose     bool   `json:"verbose"`
}

// Configuration is the assembled configuration of one invocation. It is
// not modified after Assemble returns.
type Configuration struct {
	BaseDir         string
	Encoding        string
	SourceRoots     []string
	JavaSourceRoots []string
	Classpath       []string

	// ClasspathLookupFilter is the raw pattern, "" when unset
	ClasspathLookupFilter string

	Languages             map[string]language.Handle
	Clustering            *cluster.Policy
	Compiler              Compiler
	FailOnValidationError bool
	TempDir               string
	Debug                 bool
}

// Assemble builds the configuration for mod. The temp directory is created
// if absent; failing to create it is a configuration error.
func Assemble(mod *project.Module, languages map[string]language.Handle, opts Options) (*Configuration, error) {
	var filter *regexp.Regexp
	if opts.ClasspathLookupFilter != "" {
		re, err := regexp.Compile(opts.ClasspathLookupFilter)
		if err != nil {
			return nil, builderrors.WrapConfiguration(opAssemble, err, "invalid classpath lookup filter")
		}
		filter = re
	}

	if err := opts.Clustering.Validate(); err != nil {
		return nil, err
	}

	raw := mod.CompileClasspath
	if opts.Classpath != nil {
		raw = absAll(mod.Dir, opts.Classpath)
	}

	tempDir, err := prepareTempDir(mod, opts.TempDir)
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{
		BaseDir:               mod.Dir,
		Encoding:              opts.Encoding,
		SourceRoots:           orDefault(mod.Dir, opts.SourceRoots, mod.CompileSourceRoots),
		JavaSourceRoots:       orDefault(mod.Dir, opts.JavaSourceRoots, mod.CompileSourceRoots),
		Classpath:             classpath.Resolve(raw, mod.OutputDirs(), filter),
		ClasspathLookupFilter: opts.ClasspathLookupFilter,
		Languages:             copyLanguages(languages),
		Clustering:            copyPolicy(opts.Clustering),
		Compiler: Compiler{
			SourceLevel: levelOrDefault(opts.CompilerSourceLevel),
			TargetLevel: levelOrDefault(opts.CompilerTargetLevel),
			Verbose:     opts.Debug,
		},
		FailOnValidationError: opts.FailOnValidationError,
		TempDir:               tempDir,
		Debug:                 opts.Debug,
	}
	return cfg, nil
}

func prepareTempDir(mod *project.Module, dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(mod.Build.Directory, DefaultTempDirName)
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(mod.Dir, dir)
	}

	mkErr := os.MkdirAll(dir, 0755)
	info, statErr := os.Stat(dir)
	switch {
	case statErr == nil && info.IsDir():
		return dir, nil
	case statErr == nil:
		return "", builderrors.Configurationf(opAssemble, "temp directory %q is not a directory", dir)
	default:
		return "", builderrors.WrapConfiguration(opAssemble, errors.Join(mkErr, statErr), "couldn't create temp directory "+dir)
	}
}

func orDefault(baseDir string, paths, def []string) []string {
	if paths == nil {
		return slices.Clone(def)
	}
	return absAll(baseDir, paths)
}

// absAll resolves relative paths against baseDir. Blank entries are kept
// as they are.
func absAll(baseDir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" && !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		out = append(out, p)
	}
	return out
}

func levelOrDefault(level string) string {
	if level == "" {
		return DefaultCompilerLevel
	}
	return level
}

func copyLanguages(in map[string]language.Handle) map[string]language.Handle {
	out := make(map[string]language.Handle, len(in))
	for k, h := range in {
		if h.Outputs != nil {
			h.Outputs = slices.Clone(h.Outputs)
		}
		out[k] = h
	}
	return out
}

func copyPolicy(p *cluster.Policy) *cluster.Policy {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
