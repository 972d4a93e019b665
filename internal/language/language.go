// Package language translates user-declared language configurations into
// the handles consumed by the generation engine.
package language

// DefaultOutputName is the output name used when none is declared
const DefaultOutputName = "DEFAULT_OUTPUT"

// Config is one declared language
type Config struct {
	// Setup names the language's entry point; opaque to this package
	Setup string `mapstructure:"setup" yaml:"setup"`

	// JavaSupport reports whether the language links or produces Java types.
	// Nil means true.
	JavaSupport *bool `mapstructure:"java_support" yaml:"java_support,omitempty"`

	// OutputConfigurations nil means the engine's built-in outputs
	OutputConfigurations []OutputConfig `mapstructure:"output_configurations" yaml:"output_configurations,omitempty"`
}

// OutputConfig declares one output of a language. The nil *bool flags
// default to true.
type OutputConfig struct {
	Name            string `mapstructure:"name" yaml:"name"`
	Description     string `mapstructure:"description" yaml:"description,omitempty"`
	OutputDirectory string `mapstructure:"output_directory" yaml:"output_directory"`

	CreateOutputDirectory     *bool `mapstructure:"create_output_directory" yaml:"create_output_directory,omitempty"`
	CleanUpDerivedResources   *bool `mapstructure:"clean_up_derived_resources" yaml:"clean_up_derived_resources,omitempty"`
	OverrideExistingResources *bool `mapstructure:"override_existing_resources" yaml:"override_existing_resources,omitempty"`
	CanClearOutputDirectory   bool  `mapstructure:"can_clear_output_directory" yaml:"can_clear_output_directory,omitempty"`
	UseOutputPerSourceFolder  bool  `mapstructure:"use_output_per_source_folder" yaml:"use_output_per_source_folder,omitempty"`

	SourceMappings []SourceMapping `mapstructure:"source_mappings" yaml:"source_mappings,omitempty"`
}

// SourceMapping redirects the output of one source folder
type SourceMapping struct {
	SourceFolder    string `mapstructure:"source_folder" yaml:"source_folder" json:"source_folder"`
	OutputDirectory string `mapstructure:"output_directory" yaml:"output_directory" json:"output_directory"`
}

// Scope selects how an output directory is shared between source folders
type Scope string

const (
	// ScopePerGoal writes every source folder into the output directory
	ScopePerGoal Scope = "per-goal"
	// ScopePerSourceFolder writes each source folder into its mapped directory
	ScopePerSourceFolder Scope = "per-source-folder"
)

// Output is the engine's shape of an OutputConfig
type Output struct {
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Directory           string          `json:"directory,omitempty"`
	CreateDirectory     bool            `json:"create_directory"`
	CleanBeforeGenerate bool            `json:"clean_before_generate"`
	Overwrite           bool            `json:"overwrite"`
	CanClearDirectory   bool            `json:"can_clear_directory"`
	Scope               Scope           `json:"scope"`
	SourceMappings      []SourceMapping `json:"source_mappings,omitempty"`
}

// Handle identifies a language for the engine together with its
// capability flags
type Handle struct {
	Setup       string `json:"setup"`
	JavaSupport bool   `json:"java_support"`

	// Outputs is nil when the engine's default outputs apply
	Outputs []Output `json:"outputs"`
}

// UsesDefaultOutputs reports whether the engine's built-in outputs apply
func (h Handle) UsesDefaultOutputs() bool {
	return h.Outputs == nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
