package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/harness"
	"github.com/roach88/tickseq/internal/script"
)

// ValidationError describes one scenario file that failed to load or
// compile.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidatedOwner lists the compiled top-level actions of one owner.
type ValidatedOwner struct {
	Name    string   `json:"name"`
	AtTick  uint64   `json:"at_tick,omitempty"`
	Actions []string `json:"actions"`
}

// ValidatedScenario is a scenario that loaded and compiled.
type ValidatedScenario struct {
	File   string           `json:"file"`
	Name   string           `json:"name"`
	Owners []ValidatedOwner `json:"owners"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                `json:"valid"`
	Scenarios []ValidatedScenario `json:"scenarios"`
	Errors    []ValidationError   `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-or-dir>...",
		Short: "Parse and compile scenarios without running them",
		Long: `Parse scenario files and compile every owner's action tree without
running the engine. Directories are searched for .yaml, .yml and .cue
files. Faster than test for development feedback.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	files, err := expandScenarioPaths(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := ValidationResult{Valid: true, Scenarios: []ValidatedScenario{}}
	for _, file := range files {
		formatter.VerboseLog("validating %s", file)
		vs, verr := validateScenarioFile(file)
		if verr != nil {
			result.Valid = false
			result.Errors = append(result.Errors, *verr)
			continue
		}
		result.Scenarios = append(result.Scenarios, vs)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// expandScenarioPaths replaces every directory argument with the scenario
// files under it.
func expandScenarioPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scenario path not found: %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := harness.FindScenarios(p, "")
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// validateScenarioFile loads file and compiles the actions of every owner.
func validateScenarioFile(file string) (ValidatedScenario, *ValidationError) {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ValidatedScenario{}, &ValidationError{File: file, Code: ErrCodeLoad, Message: err.Error()}
	}

	vs := ValidatedScenario{File: file, Name: scenario.Name, Owners: []ValidatedOwner{}}
	for i, decl := range scenario.Owners {
		actions, err := script.CompileAll(decl.Actions)
		if err != nil {
			return ValidatedScenario{}, &ValidationError{
				File:    file,
				Code:    ErrCodeCompile,
				Message: fmt.Sprintf("owners[%d] %q: %v", i, decl.Name, err),
			}
		}
		owner := ValidatedOwner{Name: decl.Name, AtTick: decl.AtTick, Actions: make([]string, len(actions))}
		for j, a := range actions {
			owner.Actions[j] = bridge.Label(a)
		}
		vs.Owners = append(vs.Owners, owner)
	}
	return vs, nil
}

func outputValidateSuccess(f *OutputFormatter, result ValidationResult) error {
	if f.JSON() {
		return f.Success(result)
	}
	for _, s := range result.Scenarios {
		fmt.Fprintf(f.Writer, "✓ %s (%s)\n", s.Name, s.File)
		if f.Verbose {
			for _, o := range s.Owners {
				fmt.Fprintf(f.Writer, "    %s: %v\n", o.Name, o.Actions)
			}
		}
	}
	fmt.Fprintf(f.Writer, "✓ All %d scenario(s) valid\n", len(result.Scenarios))
	return nil
}

func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if f.JSON() {
		first := result.Errors[0]
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(f.Writer, "%s\n  %s: %s\n\n", e.File, e.Code, e.Message)
	}
	return failure
}
