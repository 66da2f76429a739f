// Package hooks runs user shell commands when a form completes or is
// cancelled, handing them the submitted data.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/stepform/internal/logger"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".stepform.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(fs afero.Fs, workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d, on_complete: %d, on_cancel: %d)",
		configPath, cfg.Version, len(cfg.Hooks.OnComplete), len(cfg.Hooks.OnCancel))
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
type Variables struct {
	Form string // form title
	Key  string // storage key of the session
}

// Execute runs a hook command and returns its output. stdin, usually the
// form data as JSON, is fed to the command.
// Template variables in the command ({{form}}, {{key}}) are expanded before execution.
// On error, returns an error message as output and nil error (graceful degradation).
// Only returns error for context cancellation.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables, stdin []byte) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.WaitDelay = time.Second // background children can hold the pipes open

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Cancellation is the one failure callers must see
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// ExecuteAllPiped runs hooks in order and joins the output of those with
// pipe_output set, separated by blank lines. Every hook runs even when an
// earlier one fails.
func ExecuteAllPiped(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables, stdin []byte) (string, error) {
	var outputs []string
	for _, h := range hooks {
		out, err := Execute(ctx, h, workDir, vars, stdin)
		if err != nil {
			return "", err
		}
		if h != nil && h.PipeOutput && out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	return strings.NewReplacer(
		"{{form}}", vars.Form,
		"{{key}}", vars.Key,
	).Replace(command)
}
