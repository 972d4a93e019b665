package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/xgen/internal/cli/ui"
	"github.com/conduit-lang/xgen/internal/language"
	"github.com/conduit-lang/xgen/internal/logging"
	"github.com/conduit-lang/xgen/internal/project"
)

// initAnswers are the values of a starter xgen.yml
type initAnswers struct {
	Setup                 string
	Extension             string
	OutputDirectory       string
	EngineCommand         string
	FailOnValidationError bool
}

// scaffold is the layout of a starter xgen.yml
type scaffold struct {
	Project struct {
		Build struct {
			Directory string `yaml:"directory"`
		} `yaml:"build"`
		CompileSourceRoots []string `yaml:"compile_source_roots"`
	} `yaml:"project"`
	Generate struct {
		FailOnValidationError bool              `yaml:"fail_on_validation_error"`
		Languages             []language.Config `yaml:"languages"`
	} `yaml:"generate"`
	Engine struct {
		Command            []string         `yaml:"command,omitempty"`
		ValidationExitCode int              `yaml:"validation_exit_code"`
		Setups             []language.Setup `yaml:"setups,omitempty"`
	} `yaml:"engine"`
	Log struct {
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// NewInitCommand creates the init command
func NewInitCommand(opts *globalOptions) *cobra.Command {
	var (
		yes     bool
		force   bool
		answers = initAnswers{OutputDirectory: "src-gen", FailOnValidationError: true}
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter xgen.yml",
		Long: `Write a starter xgen.yml into the module directory.

Without --yes the values are asked interactively; flags provide the
defaults of the prompts.

Examples:
  xgen init
  xgen init --yes --setup org.example.dsl.MyDslStandaloneSetup --extension mydsl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(opts.dir, project.DescriptorName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if !yes {
				if err := askInit(&answers); err != nil {
					return err
				}
			}
			if strings.TrimSpace(answers.Setup) == "" {
				return fmt.Errorf("a language setup is required (--setup)")
			}

			content, err := renderScaffold(answers)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(opts.dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", opts.dir, err)
			}
			if err := os.WriteFile(path, content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			ui.WriteSuccess(cmd.OutOrStdout(), "Created "+path, color.NoColor)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&yes, "yes", "y", false, "Use flag values without prompting")
	f.BoolVar(&force, "force", false, "Overwrite an existing xgen.yml")
	f.StringVar(&answers.Setup, "setup", "", "Language setup id")
	f.StringVar(&answers.Extension, "extension", "", "Model file extension of the language")
	f.StringVar(&answers.OutputDirectory, "output-dir", answers.OutputDirectory, "Output directory of generated sources")
	f.StringVar(&answers.EngineCommand, "engine-command", "", "Engine command line")
	f.BoolVar(&answers.FailOnValidationError, "fail-on-validation-error", answers.FailOnValidationError, "Fail the build on validation errors")

	return cmd
}

func askInit(answers *initAnswers) error {
	questions := []*survey.Question{
		{
			Name: "setup",
			Prompt: &survey.Input{
				Message: "Language setup:",
				Default: answers.Setup,
				Help:    "Fully qualified name of the language's standalone setup",
			},
			Validate: survey.Required,
		},
		{
			Name: "extension",
			Prompt: &survey.Input{
				Message: "Model file extension (optional):",
				Default: answers.Extension,
			},
		},
		{
			Name: "outputDirectory",
			Prompt: &survey.Input{
				Message: "Output directory:",
				Default: answers.OutputDirectory,
			},
			Validate: survey.Required,
		},
		{
			Name: "engineCommand",
			Prompt: &survey.Input{
				Message: "Engine command (optional):",
				Default: answers.EngineCommand,
				Help:    "Command line of the generation engine, e.g. java -jar engine.jar",
			},
		},
		{
			Name: "failOnValidationError",
			Prompt: &survey.Confirm{
				Message: "Fail the build on validation errors?",
				Default: answers.FailOnValidationError,
			},
		},
	}

	return survey.Ask(questions, answers)
}

func renderScaffold(a initAnswers) ([]byte, error) {
	var s scaffold
	s.Project.Build.Directory = "target"
	s.Project.CompileSourceRoots = []string{"src/main/java"}

	s.Generate.FailOnValidationError = a.FailOnValidationError
	s.Generate.Languages = []language.Config{{
		Setup: strings.TrimSpace(a.Setup),
		OutputConfigurations: []language.OutputConfig{{
			Name:            language.DefaultOutputName,
			OutputDirectory: a.OutputDirectory,
		}},
	}}

	s.Engine.Command = strings.Fields(a.EngineCommand)
	s.Engine.ValidationExitCode = 1
	setup := language.Setup{ID: strings.TrimSpace(a.Setup)}
	if ext := strings.TrimPrefix(strings.TrimSpace(a.Extension), "."); ext != "" {
		setup.FileExtensions = []string{ext}
		s.Engine.Setups = []language.Setup{setup}
	}
	s.Log.Format = logging.FormatConsole

	content, err := yaml.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", project.DescriptorName, err)
	}
	return content, nil
}
