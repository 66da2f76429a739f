package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/hooks"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/tui/stepper"
	"github.com/mark3labs/stepform/internal/tui/theme"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var runFlags struct {
	route     string
	key       string
	confirm   bool
	noPersist bool
	out       string
	set       []string
}

var runCmd = &cobra.Command{
	Use:   "run <form>",
	Short: "Fill in a form step by step",
	Long: `Fill in a form defined in a YAML file.

The form argument is a path, or the name of a file in the forms directory
(with or without the .yml extension). Progress is saved as you type; quitting
with ctrl+c keeps it, and running the same form again picks up where you left
off. Completing or cancelling the form clears the saved progress.

On completion the answers are printed as JSON (or written to --out) and fed on
stdin to the on_complete hooks in .stepform.hooks.yml.`,
	Args: cobra.ExactArgs(1),
	RunE: runForm,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.route, "route", "r", "", "Route the form belongs to (default: form route, then file name)")
	runCmd.Flags().StringVarP(&runFlags.key, "key", "k", "", "Explicit storage key, overrides --route")
	runCmd.Flags().BoolVarP(&runFlags.confirm, "confirm", "c", false, "Ask before moving to the next step")
	runCmd.Flags().BoolVar(&runFlags.noPersist, "no-persist", false, "Do not save or resume progress")
	runCmd.Flags().StringVarP(&runFlags.out, "out", "o", "", "Write the completed answers to this file instead of stdout")
	runCmd.Flags().StringArrayVar(&runFlags.set, "set", nil, "Prefill a field as name=value, overriding saved progress (repeatable)")
}

func runForm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !theme.SetCurrent(cfg.Theme) {
		logger.Warn("Unknown theme %q (have %s), using the default", cfg.Theme, strings.Join(theme.Names(), ", "))
	}

	fs := afero.NewOsFs()
	formPath, err := resolveForm(fs, args[0], cfg.FormsDir)
	if err != nil {
		return err
	}
	def, err := formdef.Load(fs, formPath)
	if err != nil {
		return err
	}

	prefill, err := def.Prefill(fs, runFlags.set)
	if err != nil {
		return fmt.Errorf("invalid --set: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	hooksCfg, err := hooks.LoadConfig(fs, workDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := stepform.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}

	opts := []stepform.Option{
		stepform.WithContext(ctx),
		stepform.WithTitle(def.Title),
		stepform.WithIcon(def.Icon),
		stepform.WithInitialData(prefill),
		stepform.WithStepConfirmation(def.ConfirmSteps || cfg.ConfirmSteps || runFlags.confirm),
		stepform.WithCodec(codec),
		stepform.WithTransientKeys(def.SecretFields()...),
		stepform.WithDebounce(cfg.Debounce),
		stepform.WithNotifier(func(step int, err error) {
			logger.Error("Step %d failed: %v", step+1, err)
		}),
	}

	if !runFlags.noPersist {
		store, closeStore, err := openStore(ctx, fs, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("Failed to close snapshot store: %v", err)
			}
		}()
		opts = append(opts, stepform.WithStorage(store), stepform.WithRoute(formRoute(def, formPath, runFlags.route)))
		if runFlags.key != "" {
			opts = append(opts, stepform.WithStorageKey(runFlags.key))
		}
	}

	var result bytes.Buffer
	vars := hooks.Variables{Form: def.Title}
	opts = append(opts,
		stepform.WithOnComplete(func(ctx context.Context, data stepform.Data) error {
			payload, err := json.MarshalIndent(exportData(data), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode answers: %w", err)
			}
			result.Write(payload)
			result.WriteByte('\n')

			if hooksCfg == nil {
				return nil
			}
			out, err := hooks.ExecuteAllPiped(ctx, hooksCfg.Hooks.OnComplete, workDir, vars, payload)
			if err != nil {
				return err
			}
			if out != "" {
				result.WriteString(out)
			}
			return nil
		}),
		stepform.WithOnCancel(func() {
			if hooksCfg == nil || len(hooksCfg.Hooks.OnCancel) == 0 {
				return
			}
			if _, err := hooks.ExecuteAllPiped(ctx, hooksCfg.Hooks.OnCancel, workDir, vars, nil); err != nil {
				logger.Warn("on_cancel hooks interrupted: %v", err)
			}
		}),
	)

	ctrl, err := stepform.New(def.FormSteps(), opts...)
	if err != nil {
		return err
	}
	vars.Key = ctrl.Key()
	logger.Info("Running form %q (key %q)", def.Title, ctrl.Key())

	st, runErr := stepper.Run(ctx, ctrl, def, fs)
	if err := ctrl.Close(context.Background()); err != nil {
		logger.Warn("Failed to save progress: %v", err)
	}
	if runErr != nil {
		return runErr
	}

	return report(cmd.OutOrStdout(), st, ctrl.Key(), runFlags.out, result.Bytes())
}

// report prints the result of a finished run.
func report(w io.Writer, st stepform.State, key, outPath string, result []byte) error {
	switch st.Status {
	case stepform.StatusCompleted:
		if outPath != "" {
			if err := os.WriteFile(outPath, result, 0o644); err != nil {
				return fmt.Errorf("failed to write answers: %w", err)
			}
			fmt.Fprintf(w, "Answers written to %s\n", outPath)
			return nil
		}
		_, err := w.Write(result)
		return err
	case stepform.StatusCancelled:
		fmt.Fprintln(w, "Form cancelled, nothing was saved.")
	default:
		if key == "" {
			fmt.Fprintln(w, "Form closed, progress was not saved.")
			return nil
		}
		fmt.Fprintf(w, "Progress saved under key %s. Run the same form again to resume.\n", key)
	}
	return nil
}

// resolveForm finds the definition file for name. Paths that exist are used
// as given; otherwise name is looked up in formsDir with and without a YAML
// extension.
func resolveForm(fs afero.Fs, name, formsDir string) (string, error) {
	candidates := []string{name}
	if formsDir != "" && !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(formsDir, name))
	}
	if filepath.Ext(name) == "" {
		for _, c := range slices.Clone(candidates) {
			candidates = append(candidates, c+".yml", c+".yaml")
		}
	}

	for _, c := range candidates {
		info, err := fs.Stat(c)
		if err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("form not found: %s", name)
}

// formRoute picks the route the storage key derives from.
func formRoute(def *formdef.Definition, path, override string) string {
	if override != "" {
		return override
	}
	if def.Route != "" {
		return def.Route
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// exportData converts form data into values that encode as plain JSON.
// Local files are reported by path.
func exportData(data stepform.Data) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch fv := v.(type) {
		case formdef.LocalFile:
			out[k] = fv.Path
		case *formdef.LocalFile:
			out[k] = fv.Path
		default:
			out[k] = v
		}
	}
	return out
}
