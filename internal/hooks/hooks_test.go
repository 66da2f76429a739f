package hooks

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := LoadConfig(fs, "/work")
	require.NoError(t, err)
	assert.Nil(t, cfg, "missing file means no hooks")

	yml := `version: 1
hooks:
  on_complete:
    - command: "curl -X POST --data-binary @- https://example.test/students"
      timeout: 10
      pipe_output: true
  on_cancel:
    - command: "echo cancelled {{key}}"
`
	require.NoError(t, afero.WriteFile(fs, filepath.Join("/work", ConfigFileName), []byte(yml), 0o644))

	cfg, err = LoadConfig(fs, "/work")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	require.Len(t, cfg.Hooks.OnComplete, 1)
	assert.Equal(t, 10, cfg.Hooks.OnComplete[0].Timeout)
	assert.True(t, cfg.Hooks.OnComplete[0].PipeOutput)
	require.Len(t, cfg.Hooks.OnCancel, 1)
	assert.Equal(t, "echo cancelled {{key}}", cfg.Hooks.OnCancel[0].Command)

	require.NoError(t, afero.WriteFile(fs, filepath.Join("/bad", ConfigFileName), []byte("hooks: ["), 0o644))
	_, err = LoadConfig(fs, "/bad")
	assert.ErrorContains(t, err, "failed to parse hooks config")
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{Form: "Enrol student", Key: "stepform_admin-students-new"}

	tests := []struct {
		name     string
		hook     *HookConfig
		stdin    string
		expected string
		contains string
	}{
		{name: "nil hook", hook: nil},
		{name: "empty command", hook: &HookConfig{}},
		{
			name:     "variables expanded",
			hook:     &HookConfig{Command: "echo '{{form}}' {{key}}"},
			expected: "Enrol student stepform_admin-students-new\n",
		},
		{
			name:     "form data on stdin",
			hook:     &HookConfig{Command: "cat"},
			stdin:    `{"name":"Ada"}`,
			expected: `{"name":"Ada"}`,
		},
		{
			name:     "stderr included",
			hook:     &HookConfig{Command: "echo out; echo err >&2"},
			expected: "out\n\n[stderr]\nerr\n",
		},
		{
			name:     "failure degrades to output",
			hook:     &HookConfig{Command: "echo partial; exit 3"},
			contains: "[Hook command failed: exit status 3]\npartial",
		},
		{
			name:     "timeout",
			hook:     &HookConfig{Command: "sleep 5", Timeout: 1},
			contains: "[Hook timed out after 1s]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := Execute(ctx, tt.hook, workDir, vars, []byte(tt.stdin))
			require.NoError(t, err)
			if tt.contains != "" {
				assert.Contains(t, output, tt.contains)
				return
			}
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestExecuteAllPiped(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{Form: "test", Key: "k"}

	tests := []struct {
		name     string
		hooks    []*HookConfig
		expected string
	}{
		{
			name:     "no hooks",
			hooks:    []*HookConfig{},
			expected: "",
		},
		{
			name: "single hook with pipe_output true",
			hooks: []*HookConfig{
				{Command: "echo 'piped'", Timeout: 5, PipeOutput: true},
			},
			expected: "piped\n",
		},
		{
			name: "single hook with pipe_output false",
			hooks: []*HookConfig{
				{Command: "echo 'not piped'", Timeout: 5, PipeOutput: false},
			},
			expected: "",
		},
		{
			name: "multiple hooks mixed pipe_output",
			hooks: []*HookConfig{
				{Command: "echo 'first piped'", Timeout: 5, PipeOutput: true},
				{Command: "echo 'not piped'", Timeout: 5, PipeOutput: false},
				{Command: "echo 'second piped'", Timeout: 5, PipeOutput: true},
			},
			expected: "first piped\n\nsecond piped\n",
		},
		{
			name: "failing hook does not stop the rest",
			hooks: []*HookConfig{
				{Command: "exit 1", Timeout: 5},
				{Command: "echo 'after'", Timeout: 5, PipeOutput: true},
			},
			expected: "after\n",
		},
		{
			name:     "nil entries skipped",
			hooks:    []*HookConfig{nil, {Command: "echo ok", PipeOutput: true}},
			expected: "ok\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := ExecuteAllPiped(ctx, tt.hooks, workDir, vars, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestExecuteAllPiped_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hooks := []*HookConfig{
		{Command: "echo 'test'", Timeout: 5, PipeOutput: true},
	}

	_, err := ExecuteAllPiped(ctx, hooks, t.TempDir(), Variables{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpandVariables(t *testing.T) {
	got := expandVariables("notify --form {{form}} --key {{key}} {{unknown}}", Variables{Form: "Cards", Key: "stepform_cards"})
	assert.Equal(t, "notify --form Cards --key stepform_cards {{unknown}}", got)
	assert.False(t, strings.Contains(got, "{{form}}"))
}
