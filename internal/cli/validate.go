package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stockroom/internal/catalog"
	"github.com/roach88/stockroom/internal/harness"
)

// File kinds accepted by validate.
const (
	KindCatalog  = "catalog"
	KindScenario = "scenario"
)

// FileValidation is the validation outcome for one file.
type FileValidation struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check catalog and scenario files without touching storage",
		Long: `Parse and check product catalogs (CUE or YAML) and harness scenarios.

A .cue file is always a catalog. A YAML file is a scenario when it has a
top-level steps list, otherwise a catalog. Use --kind to override.

Examples:
  stockroom validate ./catalog.cue
  stockroom validate ./scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case "", KindCatalog, KindScenario:
			default:
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid kind %q: must be %s or %s", kind, KindCatalog, KindScenario))
			}
			return runValidate(rootOpts, kind, args, cmd)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "file kind (catalog|scenario), detected when empty")
	return cmd
}

func runValidate(opts *RootOptions, kind string, paths []string, cmd *cobra.Command) error {
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		fv := validateFile(path, kind)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	failed := 0
	for _, fv := range result.Files {
		if !fv.Valid {
			failed++
		}
	}

	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if failed > 0 {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    "VALIDATION_FAILED",
				Message: fmt.Sprintf("%d file(s) invalid", failed),
			}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		if failed > 0 {
			exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", failed))
			exitErr.Reported = true
			return exitErr
		}
		return nil
	}

	w := cmd.OutOrStdout()
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", fv.Path, fv.Kind)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s)\n  %s\n", fv.Path, fv.Kind, fv.Error)
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", failed))
	}
	return nil
}

func validateFile(path, kind string) FileValidation {
	fv := FileValidation{Path: path, Kind: kind}
	if fv.Kind == "" {
		detected, err := detectKind(path)
		if err != nil {
			fv.Kind = KindCatalog
			fv.Error = err.Error()
			return fv
		}
		fv.Kind = detected
	}

	var err error
	if fv.Kind == KindScenario {
		_, err = harness.LoadScenario(path)
	} else {
		_, err = catalog.Load(path)
	}
	if err != nil {
		fv.Error = err.Error()
		return fv
	}
	fv.Valid = true
	return fv
}

// detectKind classifies path as a catalog or a scenario.
func detectKind(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".cue" {
		return KindCatalog, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	if _, ok := top["steps"]; ok {
		return KindScenario, nil
	}
	return KindCatalog, nil
}
