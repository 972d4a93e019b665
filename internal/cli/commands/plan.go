package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/xgen/internal/cli/ui"
	"github.com/conduit-lang/xgen/internal/engine"
	"github.com/conduit-lang/xgen/internal/generator"
	"github.com/conduit-lang/xgen/internal/sources"
)

// NewPlanCommand creates the plan command
func NewPlanCommand(opts *globalOptions) *cobra.Command {
	flags := &generateFlags{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved configuration without running the engine",
		Long: `Run the configuring step of a generation invocation and print the
result: the resource namespace, source roots, classpath, languages and how
the discovered model files are split into batches. Nothing is handed to the
engine.

Examples:
  xgen plan
  xgen plan --json > request.json
  xgen plan --classpath-filter '.*-sources\.jar'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts, flags, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the engine request as JSON")
	return cmd
}

func runPlan(cmd *cobra.Command, opts *globalOptions, flags *generateFlags, asJSON bool) error {
	s, err := openSession(cmd, opts, flags)
	if err != nil {
		return err
	}
	defer s.close()

	plan, err := s.controller(nil).Configure(cmd.Context(), s.module, s.params)
	if err != nil {
		return s.wrap(err)
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(engine.NewRequest(plan.Config, plan.Namespace))
	}

	m, err := s.matcher()
	if err != nil {
		return err
	}
	units, err := sources.Discover(plan.Config.SourceRoots, m)
	if err != nil {
		return err
	}

	renderPlan(w, plan, units, color.NoColor)
	return nil
}

func renderPlan(w io.Writer, plan *generator.Plan, units []string, noColor bool) {
	cfg := plan.Config

	ui.Header(w, "Module", noColor)
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Base dir", cfg.BaseDir)
	kv.AddRow("Encoding", cfg.Encoding)
	kv.AddRow("Temp dir", cfg.TempDir)
	kv.AddRow("Compiler", fmt.Sprintf("source %s, target %s", cfg.Compiler.SourceLevel, cfg.Compiler.TargetLevel))
	kv.AddRow("Fail on validation error", strconv.FormatBool(cfg.FailOnValidationError))
	kv.AddRow("Classpath filter", cfg.ClasspathLookupFilter)
	kv.AddRow("Clustering", cfg.Clustering.String())
	kv.Render()
	fmt.Fprintln(w)

	ui.Header(w, "Namespace", noColor)
	ns := ui.NewTable(w, []string{"Name", "Location"}, &ui.TableOptions{NoColor: noColor})
	for _, e := range plan.Namespace.Entries() {
		ns.AddRow(e.Name, e.Location)
	}
	ns.Render()
	if plan.Registration != nil {
		for _, warning := range plan.Registration.Warnings {
			fmt.Fprint(w, ui.Warning(warning.Error(), nil, noColor))
		}
	}
	fmt.Fprintln(w)

	renderList(w, "Source roots", cfg.SourceRoots, noColor)
	renderList(w, "Java source roots", cfg.JavaSourceRoots, noColor)
	renderList(w, "Classpath", cfg.Classpath, noColor)

	ui.Header(w, "Languages", noColor)
	langs := ui.NewTable(w, []string{"Setup", "Java", "Outputs"}, &ui.TableOptions{NoColor: noColor})
	setups := make([]string, 0, len(cfg.Languages))
	for id := range cfg.Languages {
		setups = append(setups, id)
	}
	sort.Strings(setups)
	for _, id := range setups {
		h := cfg.Languages[id]
		outputs := "engine default"
		if !h.UsesDefaultOutputs() {
			names := make([]string, 0, len(h.Outputs))
			for _, o := range h.Outputs {
				names = append(names, fmt.Sprintf("%s -> %s", o.Name, o.Directory))
			}
			outputs = strings.Join(names, ", ")
		}
		langs.AddRow(id, strconv.FormatBool(h.JavaSupport), outputs)
	}
	langs.Render()
	fmt.Fprintln(w)

	ui.Header(w, fmt.Sprintf("Batches (%d model files)", len(units)), noColor)
	batches := ui.NewTable(w, []string{"Batch", "Units", "First", "Last"}, &ui.TableOptions{NoColor: noColor})
	for i, batch := range cfg.Clustering.Partition(units) {
		batches.AddRow(strconv.Itoa(i+1), strconv.Itoa(len(batch)), relTo(cfg.BaseDir, batch[0]), relTo(cfg.BaseDir, batch[len(batch)-1]))
	}
	batches.Render()
}

func renderList(w io.Writer, title string, items []string, noColor bool) {
	ui.Header(w, title, noColor)
	list := ui.NewList(w, noColor)
	for _, item := range items {
		list.AddItem(item)
	}
	list.Render()
	fmt.Fprintln(w)
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
