package language

import (
	"strings"

	"github.com/conduit-lang/xgen/internal/builderrors"
)

const opTranslate = "translate languages"

// Translate converts declared languages into handles keyed by setup.
// A blank setup anywhere aborts the whole translation. When a setup is
// declared more than once the last declaration wins; see Duplicates.
func Translate(entries []Config) (map[string]Handle, error) {
	for i, entry := range entries {
		if strings.TrimSpace(entry.Setup) == "" {
			return nil, builderrors.Configurationf(opTranslate, "language #%d: setup must not be blank", i+1)
		}
	}

	handles := make(map[string]Handle, len(entries))
	for _, entry := range entries {
		setup := strings.TrimSpace(entry.Setup)
		handles[setup] = Handle{
			Setup:       setup,
			JavaSupport: boolOr(entry.JavaSupport, true),
			Outputs:     translateOutputs(entry.OutputConfigurations),
		}
	}
	return handles, nil
}

// Duplicates returns the setups declared more than once, in first-seen order
func Duplicates(entries []Config) []string {
	counts := make(map[string]int, len(entries))
	var dups []string
	for _, entry := range entries {
		setup := strings.TrimSpace(entry.Setup)
		counts[setup]++
		if counts[setup] == 2 {
			dups = append(dups, setup)
		}
	}
	return dups
}

func translateOutputs(configs []OutputConfig) []Output {
	if configs == nil {
		return nil
	}
	outputs := make([]Output, 0, len(configs))
	for _, c := range configs {
		outputs = append(outputs, translateOutput(c))
	}
	return outputs
}

func translateOutput(c OutputConfig) Output {
	name := c.Name
	if strings.TrimSpace(name) == "" {
		name = DefaultOutputName
	}
	scope := ScopePerGoal
	if c.UseOutputPerSourceFolder {
		scope = ScopePerSourceFolder
	}
	var mappings []SourceMapping
	if len(c.SourceMappings) > 0 {
		mappings = append(mappings, c.SourceMappings...)
	}
	return Output{
		Name:                name,
		Description:         c.Description,
		Directory:           c.OutputDirectory,
		CreateDirectory:     boolOr(c.CreateOutputDirectory, true),
		CleanBeforeGenerate: boolOr(c.CleanUpDerivedResources, true),
		Overwrite:           boolOr(c.OverrideExistingResources, true),
		CanClearDirectory:   c.CanClearOutputDirectory,
		Scope:               scope,
		SourceMappings:      mappings,
	}
}
