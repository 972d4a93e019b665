package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/cluster"
	"github.com/conduit-lang/xgen/internal/engine"
	"github.com/conduit-lang/xgen/internal/generator"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/logging"
	"github.com/conduit-lang/xgen/internal/namespace"
	"github.com/conduit-lang/xgen/internal/project"
)

// EnvPrefix prefixes environment overrides, e.g. XGEN_GENERATE_SKIP
const EnvPrefix = "XGEN"

const opLoad = "load configuration"

// Config represents the xgen configuration of one module
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`
}

// GenerateConfig holds the generator parameters
type GenerateConfig struct {
	Skip                  bool                `mapstructure:"skip"`
	FailOnValidationError bool                `mapstructure:"fail_on_validation_error"`
	Encoding              string              `mapstructure:"encoding"`
	TempDir               string              `mapstructure:"temp_dir"`
	SourceRoots           []string            `mapstructure:"source_roots"`
	JavaSourceRoots       []string            `mapstructure:"java_source_roots"`
	Classpath             []string            `mapstructure:"classpath"`
	ClasspathLookupFilter string              `mapstructure:"classpath_lookup_filter"`
	Compiler              CompilerConfig      `mapstructure:"compiler"`
	Clustering            *cluster.Policy     `mapstructure:"clustering"`
	ProjectMappings       []namespace.Mapping `mapstructure:"project_mappings"`
	Languages             []language.Config   `mapstructure:"languages"`
}

// CompilerConfig represents the stub compiler levels
type CompilerConfig struct {
	SourceLevel string `mapstructure:"source_level"`
	TargetLevel string `mapstructure:"target_level"`
}

// EngineConfig represents the process-backed engine
type EngineConfig struct {
	Command            []string         `mapstructure:"command"`
	ValidationExitCode int              `mapstructure:"validation_exit_code"`
	Setups             []language.Setup `mapstructure:"setups"`
}

// WatchConfig represents watch mode settings
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Exclude  []string      `mapstructure:"exclude"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Debug  bool   `mapstructure:"debug"`
	Format string `mapstructure:"format"`
}

// Load loads the configuration from xgen.yml in dir. A missing file yields
// the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("generate.skip", false)
	v.SetDefault("generate.fail_on_validation_error", true)
	v.SetDefault("generate.encoding", "")
	v.SetDefault("generate.temp_dir", "")
	v.SetDefault("generate.classpath_lookup_filter", "")
	v.SetDefault("generate.compiler.source_level", "1.6")
	v.SetDefault("generate.compiler.target_level", "1.6")
	v.SetDefault("engine.validation_exit_code", engine.DefaultValidationExitCode)
	v.SetDefault("watch.debounce", "100ms")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.format", logging.FormatConsole)

	v.SetConfigName(strings.TrimSuffix(project.DescriptorName, filepath.Ext(project.DescriptorName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, builderrors.WrapConfiguration(opLoad, err, "failed to read config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, builderrors.WrapConfiguration(opLoad, err, "failed to unmarshal config")
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Parameters returns the generator parameters described by the config
func (c *Config) Parameters() generator.Parameters {
	g := c.Generate
	return generator.Parameters{
		Skip:                  g.Skip,
		FailOnValidationError: g.FailOnValidationError,
		Encoding:              g.Encoding,
		TempDir:               g.TempDir,
		SourceRoots:           g.SourceRoots,
		JavaSourceRoots:       g.JavaSourceRoots,
		Classpath:             g.Classpath,
		ClasspathLookupFilter: g.ClasspathLookupFilter,
		CompilerSourceLevel:   g.Compiler.SourceLevel,
		CompilerTargetLevel:   g.Compiler.TargetLevel,
		Clustering:            g.Clustering,
		Languages:             g.Languages,
		ProjectMappings:       g.ProjectMappings,
		Debug:                 c.Log.Debug,
	}
}

// Registry returns the registry of the configured engine setups, or nil
// when none are configured
func (c *Config) Registry() (*language.Registry, error) {
	if len(c.Engine.Setups) == 0 {
		return nil, nil
	}
	r, err := language.NewRegistry(c.Engine.Setups...)
	if err != nil {
		return nil, builderrors.WrapConfiguration(opLoad, err, "invalid engine.setups")
	}
	return r, nil
}

// FindModuleRoot walks up from dir to the nearest directory holding an
// xgen.yml
func FindModuleRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, project.DescriptorName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an xgen module (no %s found)", project.DescriptorName)
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return builderrors.Configurationf(opLoad, "log.format must be %s or %s, got: %s", logging.FormatConsole, logging.FormatJSON, cfg.Log.Format)
	}
	if cfg.Engine.ValidationExitCode == 0 {
		return builderrors.Configurationf(opLoad, "engine.validation_exit_code must not be 0")
	}
	if cfg.Watch.Debounce < 0 {
		return builderrors.Configurationf(opLoad, "watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return cfg.Generate.Clustering.Validate()
}
