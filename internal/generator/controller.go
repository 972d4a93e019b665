// Package generator orchestrates one generation invocation: namespace
// registration, configuration assembly, engine invocation and result
// interpretation.
package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/buildconfig"
	"github.com/conduit-lang/xgen/internal/cluster"
	"github.com/conduit-lang/xgen/internal/engine"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/namespace"
	"github.com/conduit-lang/xgen/internal/project"
)

// Parameters are the user-facing parameters of one invocation. Nil path
// lists are unset and take the project defaults.
type Parameters struct {
	Skip                  bool
	FailOnValidationError bool
	Encoding              string
	TempDir               string
	SourceRoots           []string
	JavaSourceRoots       []string
	Classpath             []string
	ClasspathLookupFilter string
	CompilerSourceLevel   string
	CompilerTargetLevel   string
	Clustering            *cluster.Policy
	Languages             []language.Config
	ProjectMappings       []namespace.Mapping
	Debug                 bool
}

// Plan is the result of the configuring step
type Plan struct {
	Config       *buildconfig.Configuration
	Namespace    *namespace.Namespace
	Registration *namespace.Report
}

// Outcome describes a finished invocation
type Outcome struct {
	InvocationID     string
	State            State
	Skipped          bool
	ValidationErrors bool
	Plan             *Plan
	Duration         time.Duration
}

// Controller runs invocations against an engine. Concurrent calls to Run
// and Configure are serialized.
type Controller struct {
	engine   engine.Engine
	registry *language.Registry
	logger   *zap.Logger
	shared   *namespace.Namespace

	run sync.Mutex

	mu    sync.Mutex
	state State
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry makes the controller reject languages whose setup is not
// registered
func WithRegistry(r *language.Registry) Option {
	return func(c *Controller) { c.registry = r }
}

// WithSharedNamespace registers into ns on every invocation instead of a
// fresh namespace per invocation
func WithSharedNamespace(ns *namespace.Namespace) Option {
	return func(c *Controller) { c.shared = ns }
}

// New creates a controller invoking e
func New(e engine.Engine, opts ...Option) *Controller {
	c := &Controller{
		engine: e,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state of the current or last invocation
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) transition(log *zap.Logger, to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()
	log.Debug("state transition", zap.Stringer("from", from), zap.Stringer("to", to))
}

// Run performs one invocation for mod. The returned error is a
// configuration or validation error (see builderrors.IsBuildFailure) when
// the build should fail, or another error when the engine itself failed.
func (c *Controller) Run(ctx context.Context, mod *project.Module, params Parameters) (*Outcome, error) {
	c.run.Lock()
	defer c.run.Unlock()

	start := time.Now()
	out := &Outcome{InvocationID: uuid.NewString()}
	log := c.logger.With(zap.String("invocation", out.InvocationID), zap.String("module", mod.Name()))

	finish := func(state State, err error) (*Outcome, error) {
		c.transition(log, state)
		out.State = state
		out.Duration = time.Since(start)
		return out, err
	}

	c.transition(log, StateIdle)
	if params.Skip {
		log.Info("skipped.")
		out.Skipped = true
		return finish(StateSucceeded, nil)
	}

	c.transition(log, StateConfiguring)
	plan, err := c.configure(log, mod, params)
	if err != nil {
		log.Error("configuration failed", zap.Error(err))
		return finish(StateFailed, err)
	}
	out.Plan = plan

	c.transition(log, StateInvoking)
	logState(log, plan.Config)
	errorsOccurred, err := c.engine.Launch(ctx, engine.NewRequest(plan.Config, plan.Namespace))
	if err != nil {
		log.Error("engine failed", zap.Error(err))
		return finish(StateFailed, fmt.Errorf("invoke engine: %w", err))
	}
	out.ValidationErrors = errorsOccurred

	if errorsOccurred {
		if plan.Config.FailOnValidationError {
			log.Error("execution failed due to a severe validation error")
			return finish(StateFailed, builderrors.Validationf("invoke engine", "execution failed due to a severe validation error"))
		}
		log.Warn("validation errors reported, continuing because fail_on_validation_error is disabled")
	}

	log.Info("generation finished", zap.Duration("duration", time.Since(start)))
	return finish(StateSucceeded, nil)
}

// Configure runs the configuring step only, without invoking the engine.
// It returns ctx.Err() if ctx is already done.
func (c *Controller) Configure(ctx context.Context, mod *project.Module, params Parameters) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.run.Lock()
	defer c.run.Unlock()

	log := c.logger.With(zap.String("module", mod.Name()))
	return c.configure(log, mod, params)
}

func (c *Controller) configure(log *zap.Logger, mod *project.Module, params Parameters) (*Plan, error) {
	ns := c.shared
	if ns == nil {
		ns = namespace.New()
	}

	mapper := namespace.NewMapper(ns, project.NewLoader(), log)
	report := mapper.RegisterHierarchy(mod)
	mapped, err := mapper.RegisterMappings(mod.Dir, params.ProjectMappings)
	if err != nil {
		return nil, err
	}
	report.Registered = append(report.Registered, mapped...)
	log.Debug("namespace registered", zap.Int("entries", len(report.Registered)), zap.Int("warnings", len(report.Warnings)))

	handles, err := language.Translate(params.Languages)
	if err != nil {
		return nil, err
	}
	if dups := language.Duplicates(params.Languages); len(dups) > 0 {
		log.Warn("language setups declared more than once, the last declaration wins", zap.Strings("setups", dups))
	}
	if c.registry != nil {
		if err := c.registry.Resolve(handles); err != nil {
			return nil, err
		}
	}

	cfg, err := buildconfig.Assemble(mod, handles, buildconfig.Options{
		Encoding:              params.Encoding,
		SourceRoots:           params.SourceRoots,
		JavaSourceRoots:       params.JavaSourceRoots,
		Classpath:             params.Classpath,
		ClasspathLookupFilter: params.ClasspathLookupFilter,
		Clustering:            params.Clustering,
		CompilerSourceLevel:   params.CompilerSourceLevel,
		CompilerTargetLevel:   params.CompilerTargetLevel,
		FailOnValidationError: params.FailOnValidationError,
		TempDir:               params.TempDir,
		Debug:                 params.Debug,
	})
	if err != nil {
		return nil, err
	}

	return &Plan{Config: cfg, Namespace: ns, Registration: report}, nil
}

func logState(log *zap.Logger, cfg *buildconfig.Configuration) {
	if cfg.Encoding == "" {
		log.Info("encoding: not set, encoding provider will be used")
	} else {
		log.Info("encoding: " + cfg.Encoding)
	}
	log.Info("compiler source level: " + cfg.Compiler.SourceLevel)
	log.Info("compiler target level: " + cfg.Compiler.TargetLevel)

	if ce := log.Check(zap.DebugLevel, "source dirs"); ce != nil {
		ce.Write(zap.String("dirs", strings.Join(cfg.SourceRoots, ", ")))
	}
	if ce := log.Check(zap.DebugLevel, "java source dirs"); ce != nil {
		ce.Write(zap.String("dirs", strings.Join(cfg.JavaSourceRoots, ", ")))
	}
	if ce := log.Check(zap.DebugLevel, "classpath entries"); ce != nil {
		ce.Write(zap.String("entries", strings.Join(cfg.Classpath, ", ")))
	}
	log.Debug("clustering", zap.Stringer("policy", cfg.Clustering))
}
