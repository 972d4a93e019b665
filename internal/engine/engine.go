// Package engine defines the contract with the external incremental
// generation engine and ships a process-backed implementation.
package engine

import (
	"context"

	"github.com/conduit-lang/xgen/internal/buildconfig"
	"github.com/conduit-lang/xgen/internal/cluster"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/namespace"
)

// Engine runs one parse/validate/generate/compile-stub cycle.
//
// errorsOccurred reports that the run completed but found validation
// errors in the sources. A non-nil error means the engine itself failed.
type Engine interface {
	Launch(ctx context.Context, req *Request) (errorsOccurred bool, err error)
}

// Func adapts a function to the Engine interface
type Func func(ctx context.Context, req *Request) (bool, error)

// Launch calls f(ctx, req)
func (f Func) Launch(ctx context.Context, req *Request) (bool, error) {
	return f(ctx, req)
}

// Request is everything the engine needs for one invocation
type Request struct {
	BaseDir               string                     `json:"base_dir"`
	Encoding              string                     `json:"encoding,omitempty"`
	SourceDirs            []string                   `json:"source_dirs"`
	JavaSourceDirs        []string                   `json:"java_source_dirs"`
	ClassPath             []string                   `json:"class_path"`
	ClassPathLookupFilter string                     `json:"class_path_lookup_filter,omitempty"`
	Languages             map[string]language.Handle `json:"languages"`
	Clustering            *cluster.Policy            `json:"clustering,omitempty"`
	Compiler              buildconfig.Compiler       `json:"compiler"`
	FailOnValidationError bool                       `json:"fail_on_validation_error"`
	TempDir               string                     `json:"temp_dir"`
	DebugLog              bool                       `json:"debug_log"`
	Namespace             []namespace.Entry          `json:"namespace"`

	// Resources is the live namespace for in-process engines
	Resources *namespace.Namespace `json:"-"`
}

// NewRequest builds the request for an assembled configuration
func NewRequest(cfg *buildconfig.Configuration, ns *namespace.Namespace) *Request {
	req := &Request{
		BaseDir:               cfg.BaseDir,
		Encoding:              cfg.Encoding,
		SourceDirs:            cfg.SourceRoots,
		JavaSourceDirs:        cfg.JavaSourceRoots,
		ClassPath:             cfg.Classpath,
		ClassPathLookupFilter: cfg.ClasspathLookupFilter,
		Languages:             cfg.Languages,
		Clustering:            cfg.Clustering,
		Compiler:              cfg.Compiler,
		FailOnValidationError: cfg.FailOnValidationError,
		TempDir:               cfg.TempDir,
		DebugLog:              cfg.Debug,
		Resources:             ns,
	}
	if ns != nil {
		req.Namespace = ns.Entries()
	}
	return req
}
