// Package project models the module hierarchy of a multi-module build.
//
// Each module directory may carry an xgen.yml descriptor whose `project`
// section declares the module's parent, its child modules and its build
// layout. A directory without a descriptor is a leaf module with the
// default layout.
package project

import (
	"path/filepath"
)

// DescriptorName is the file name of a module descriptor
const DescriptorName = "xgen.yml"

const (
	defaultBuildDirectory = "target"
	defaultSourceRoot     = "src/main/java"
)

// Build describes where a module writes compiled output
type Build struct {
	Directory           string
	OutputDirectory     string
	TestOutputDirectory string
}

// Module is one buildable unit of the hierarchy. Modules are read-only once
// loaded. Parent is a back-reference used for traversal only and may form a
// cycle when descriptors are misconfigured.
type Module struct {
	// Dir is the absolute base directory
	Dir string

	// Modules are the declared child module paths, relative to Dir
	Modules []string

	// Parent is the enclosing module, nil for a top-level module
	Parent *Module

	Build              Build
	CompileSourceRoots []string
	CompileClasspath   []string
}

// Name returns the module's symbolic name, its directory name
func (m *Module) Name() string {
	return filepath.Base(m.Dir)
}

// ChildDirs returns the absolute directories of the declared child modules
func (m *Module) ChildDirs() []string {
	dirs := make([]string, 0, len(m.Modules))
	for _, child := range m.Modules {
		dirs = append(dirs, m.resolve(child))
	}
	return dirs
}

// OutputDirs returns the module's compiled output and test output directories
func (m *Module) OutputDirs() []string {
	return []string{m.Build.OutputDirectory, m.Build.TestOutputDirectory}
}

func (m *Module) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.Dir, path)
}

func (m *Module) resolveAll(paths []string) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.resolve(p))
	}
	return out
}

// Canonical returns the canonical form of dir used as module identity:
// absolute, cleaned and with symlinks resolved where possible.
func Canonical(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
