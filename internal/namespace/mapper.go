package namespace

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/project"
)

// ModuleLoader loads the module rooted at a directory
type ModuleLoader interface {
	Load(dir string) (*project.Module, error)
}

// Mapping is an explicit name -> path registration
type Mapping struct {
	ProjectName string `mapstructure:"project_name" yaml:"project_name"`
	Path        string `mapstructure:"path" yaml:"path"`
}

// Report summarizes one registration pass
type Report struct {
	Registered []Entry
	Warnings   []error
}

// Mapper registers module hierarchies into a Namespace
type Mapper struct {
	ns     *Namespace
	loader ModuleLoader
	logger *zap.Logger
}

// NewMapper creates a mapper writing into ns. Child modules are loaded
// through loader.
func NewMapper(ns *Namespace, loader ModuleLoader, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{ns: ns, loader: loader, logger: logger}
}

// RegisterHierarchy registers root, every declared descendant of root and
// every ancestor of root. Ancestors are registered without expanding their
// other children. Each canonical directory is registered at most once, so
// cyclic declarations terminate. Unresolvable modules are logged and
// skipped.
func (m *Mapper) RegisterHierarchy(root *project.Module) *Report {
	report := &Report{}
	visited := make(map[string]struct{})

	visit := func(mod *project.Module) bool {
		key := project.Canonical(mod.Dir)
		if _, ok := visited[key]; ok {
			return false
		}
		visited[key] = struct{}{}
		report.Registered = append(report.Registered, m.register(mod.Name(), mod.Dir))
		return true
	}

	// downward, depth first in declaration order
	stack := []*project.Module{root}
	for len(stack) > 0 {
		mod := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(mod) {
			continue
		}

		dirs := mod.ChildDirs()
		children := make([]*project.Module, 0, len(dirs))
		for _, dir := range dirs {
			child, err := m.loader.Load(dir)
			if err != nil {
				report.Warnings = append(report.Warnings, m.warn(dir, err))
				continue
			}
			children = append(children, child)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	// upward. An ancestor already reached downward is not registered again
	// but the walk continues past it; only a repeated ancestor ends it.
	seenUp := map[string]struct{}{project.Canonical(root.Dir): {}}
	for p := root.Parent; p != nil; p = p.Parent {
		key := project.Canonical(p.Dir)
		if _, ok := seenUp[key]; ok {
			break
		}
		seenUp[key] = struct{}{}
		visit(p)
	}

	return report
}

// RegisterMappings registers explicit mappings, resolving relative paths
// against baseDir. Mappings are validated before any is registered.
func (m *Mapper) RegisterMappings(baseDir string, mappings []Mapping) ([]Entry, error) {
	for i, mp := range mappings {
		if strings.TrimSpace(mp.ProjectName) == "" {
			return nil, builderrors.Configurationf("register project mappings", "project mapping #%d has a blank project name", i+1)
		}
		if strings.TrimSpace(mp.Path) == "" {
			return nil, builderrors.Configurationf("register project mappings", "project mapping %q has a blank path", mp.ProjectName)
		}
	}

	entries := make([]Entry, 0, len(mappings))
	for _, mp := range mappings {
		path := mp.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		entries = append(entries, m.register(mp.ProjectName, filepath.Clean(path)))
	}
	return entries, nil
}

func (m *Mapper) register(name, dir string) Entry {
	loc := DirURI(dir)
	if m.ns.Put(name, loc) {
		m.logger.Debug("namespace entry replaced", zap.String("name", name), zap.String("location", loc))
	} else {
		m.logger.Debug("namespace entry registered", zap.String("name", name), zap.String("location", loc))
	}
	return Entry{Name: name, Location: loc}
}

func (m *Mapper) warn(dir string, err error) error {
	w := builderrors.RegistrationWarning(dir, err)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("declared module not found, skipping", zap.String("path", dir))
	} else {
		m.logger.Warn("failed to load declared module, skipping", zap.String("path", dir), zap.Error(err))
	}
	return w
}
