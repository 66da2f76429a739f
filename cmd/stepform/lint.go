package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint [form...]",
	Short: "Check form definitions",
	Long: `Check form definitions for mistakes: steps without labels, duplicate or
unnamed fields, unknown field types and invalid validation rules.

Without arguments every .yml and .yaml file in the forms directory is checked.`,
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	paths := args
	if len(paths) == 0 {
		paths, err = formFiles(fs, cfg.FormsDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no forms found in %s", cfg.FormsDir)
		}
	}
	return lintForms(fs, cmd.OutOrStdout(), paths)
}

// lintForms reports each file and returns an error when any failed.
func lintForms(fs afero.Fs, w io.Writer, paths []string) error {
	failed := 0
	for _, p := range paths {
		def, err := formdef.Load(fs, p)
		if err != nil {
			failed++
			fmt.Fprintf(w, "✗ %v\n", err)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %q, %d steps, %d fields\n", p, def.Title, len(def.Steps), len(def.Fields()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d forms have errors", failed, len(paths))
	}
	return nil
}

func formFiles(fs afero.Fs, dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := afero.Glob(fs, filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.New("bad forms directory pattern")
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
