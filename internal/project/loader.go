package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// descriptor is the `project` section of xgen.yml
type descriptor struct {
	Project projectSection `yaml:"project"`
}

type projectSection struct {
	Parent             string       `yaml:"parent"`
	Modules            []string     `yaml:"modules"`
	Build              buildSection `yaml:"build"`
	CompileSourceRoots []string     `yaml:"compile_source_roots"`
	Classpath          []string     `yaml:"classpath"`
}

type buildSection struct {
	Directory           string `yaml:"directory"`
	OutputDirectory     string `yaml:"output_directory"`
	TestOutputDirectory string `yaml:"test_output_directory"`
}

// Loader reads modules from disk. A Loader shares one *Module per canonical
// directory, so modules reached twice (through a parent link and a child
// declaration) are the same instance.
type Loader struct {
	modules map[string]*Module
}

// NewLoader creates a new module loader
func NewLoader() *Loader {
	return &Loader{modules: make(map[string]*Module)}
}

// Load loads the module rooted at dir together with its parent chain.
// It returns an error matching fs.ErrNotExist when dir does not exist.
func (l *Loader) Load(dir string) (*Module, error) {
	key := Canonical(dir)
	if m, ok := l.modules[key]; ok {
		return m, nil
	}

	info, err := os.Stat(key)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("module %s: %w", dir, fs.ErrNotExist)
	}

	desc, err := readDescriptor(key)
	if err != nil {
		return nil, err
	}

	m := &Module{Dir: key, Modules: desc.Modules}
	m.Build = resolveBuild(m, desc.Build)
	roots := desc.CompileSourceRoots
	if roots == nil {
		roots = []string{defaultSourceRoot}
	}
	m.CompileSourceRoots = m.resolveAll(roots)
	m.CompileClasspath = m.resolveAll(desc.Classpath)

	// Registered before the parent is resolved so a parent chain that loops
	// back here terminates.
	l.modules[key] = m

	if desc.Parent != "" {
		parent, err := l.Load(m.resolve(desc.Parent))
		switch {
		case err == nil:
			m.Parent = parent
		case errors.Is(err, fs.ErrNotExist):
			// parent not checked out
		default:
			return nil, fmt.Errorf("parent of %s: %w", key, err)
		}
	}

	return m, nil
}

func readDescriptor(dir string) (projectSection, error) {
	path := filepath.Join(dir, DescriptorName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return projectSection{}, nil
		}
		return projectSection{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var d descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return projectSection{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	modules := d.Project.Modules[:0:0]
	for _, mod := range d.Project.Modules {
		if strings.TrimSpace(mod) != "" {
			modules = append(modules, mod)
		}
	}
	d.Project.Modules = modules
	return d.Project, nil
}

func resolveBuild(m *Module, b buildSection) Build {
	dir := b.Directory
	if dir == "" {
		dir = defaultBuildDirectory
	}
	out := b.OutputDirectory
	if out == "" {
		out = filepath.Join(dir, "classes")
	}
	testOut := b.TestOutputDirectory
	if testOut == "" {
		testOut = filepath.Join(dir, "test-classes")
	}
	return Build{
		Directory:           m.resolve(dir),
		OutputDirectory:     m.resolve(out),
		TestOutputDirectory: m.resolve(testOut),
	}
}
