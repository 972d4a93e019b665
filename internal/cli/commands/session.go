package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/cli/config"
	"github.com/conduit-lang/xgen/internal/cli/ui"
	"github.com/conduit-lang/xgen/internal/engine"
	"github.com/conduit-lang/xgen/internal/generator"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/logging"
	"github.com/conduit-lang/xgen/internal/project"
	"github.com/conduit-lang/xgen/internal/sources"
)

// generateFlags override the generate section of xgen.yml
type generateFlags struct {
	skip                  bool
	failOnValidationError bool
	encoding              string
	tempDir               string
	sourceRoots           []string
	javaSourceRoots       []string
	classpath             []string
	classpathFilter       string
	sourceLevel           string
	targetLevel           string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.skip, "skip", false, "Skip generation")
	flags.BoolVar(&f.failOnValidationError, "fail-on-validation-error", true, "Fail the build when the engine reports validation errors")
	flags.StringVar(&f.encoding, "encoding", "", "Source file encoding")
	flags.StringVar(&f.tempDir, "temp-dir", "", "Temp directory for intermediate artifacts")
	flags.StringSliceVar(&f.sourceRoots, "source-root", nil, "Source root (repeatable, replaces the project default)")
	flags.StringSliceVar(&f.javaSourceRoots, "java-source-root", nil, "Java source root (repeatable, replaces the project default)")
	flags.StringSliceVar(&f.classpath, "classpath", nil, "Classpath entry (repeatable, replaces the project classpath)")
	flags.StringVar(&f.classpathFilter, "classpath-filter", "", "Regular expression selecting classpath entries")
	flags.StringVar(&f.sourceLevel, "source-level", "", "Compiler source level")
	flags.StringVar(&f.targetLevel, "target-level", "", "Compiler target level")
}

// apply overrides the parameters with the flags the user set
func (f *generateFlags) apply(cmd *cobra.Command, p *generator.Parameters) {
	flags := cmd.Flags()
	if flags.Changed("skip") {
		p.Skip = f.skip
	}
	if flags.Changed("fail-on-validation-error") {
		p.FailOnValidationError = f.failOnValidationError
	}
	if flags.Changed("encoding") {
		p.Encoding = f.encoding
	}
	if flags.Changed("temp-dir") {
		p.TempDir = f.tempDir
	}
	if flags.Changed("source-root") {
		p.SourceRoots = nonNil(f.sourceRoots)
	}
	if flags.Changed("java-source-root") {
		p.JavaSourceRoots = nonNil(f.javaSourceRoots)
	}
	if flags.Changed("classpath") {
		p.Classpath = nonNil(f.classpath)
	}
	if flags.Changed("classpath-filter") {
		p.ClasspathLookupFilter = f.classpathFilter
	}
	if flags.Changed("source-level") {
		p.CompilerSourceLevel = f.sourceLevel
	}
	if flags.Changed("target-level") {
		p.CompilerTargetLevel = f.targetLevel
	}
}

// nonNil keeps an explicitly empty flag distinct from an unset one
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// session is the loaded state shared by generate, plan and watch
type session struct {
	cfg      *config.Config
	module   *project.Module
	logger   *zap.Logger
	registry *language.Registry
	params   generator.Parameters
}

func openSession(cmd *cobra.Command, opts *globalOptions, flags *generateFlags) (*session, error) {
	dir, err := config.FindModuleRoot(opts.dir)
	if err != nil {
		// a directory without a descriptor is a module with defaults
		if dir, err = filepath.Abs(opts.dir); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	format := cfg.Log.Format
	if opts.logFormat != "" {
		format = opts.logFormat
	}
	logger, err := logging.New(logging.Options{
		Debug:  opts.debug || cfg.Log.Debug,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, builderrors.WrapConfiguration("configure logging", err, "invalid --log-format")
	}

	mod, err := project.NewLoader().Load(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, builderrors.Configurationf("load module", "module directory %s not found", dir)
		}
		return nil, builderrors.WrapConfiguration("load module", err, "invalid "+project.DescriptorName)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	params := cfg.Parameters()
	if opts.debug {
		params.Debug = true
	}
	if flags != nil {
		flags.apply(cmd, &params)
	}

	return &session{cfg: cfg, module: mod, logger: logger, registry: registry, params: params}, nil
}

// controller builds a controller invoking e
func (s *session) controller(e engine.Engine) *generator.Controller {
	opts := []generator.Option{generator.WithLogger(s.logger)}
	if s.registry != nil {
		opts = append(opts, generator.WithRegistry(s.registry))
	}
	return generator.New(e, opts...)
}

// engine builds the configured process-backed engine
func (s *session) engine() (engine.Engine, error) {
	return engine.NewExec(s.cfg.Engine.Command, s.cfg.Engine.ValidationExitCode, s.logger)
}

// matcher selects the model files of the declared languages. Without known
// file extensions it matches every file.
func (s *session) matcher() (*sources.Matcher, error) {
	var patterns []string
	if s.registry != nil {
		patterns = s.registry.FilePatterns(s.setupIDs())
	}
	m, err := sources.NewMatcher(patterns, s.cfg.Watch.Exclude)
	if err != nil {
		return nil, builderrors.WrapConfiguration("configure sources", err, "invalid watch.exclude")
	}
	return m, nil
}

// wrap attaches setup suggestions to configuration errors
func (s *session) wrap(err error) error {
	if err == nil {
		return nil
	}
	f := &failure{err: err}
	if s.registry != nil && builderrors.IsConfiguration(err) {
		f.suggestions = ui.SuggestSetups(s.registry.Unknown(s.setupIDs()), s.registry.IDs())
	}
	return f
}

func (s *session) setupIDs() []string {
	ids := make([]string, 0, len(s.params.Languages))
	for _, l := range s.params.Languages {
		ids = append(ids, l.Setup)
	}
	return ids
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func describeOutcome(out *generator.Outcome) string {
	if out.Skipped {
		return "Generation skipped"
	}
	return fmt.Sprintf("Generation finished in %s", out.Duration.Round(time.Millisecond))
}
