package stepper

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageForm = `
title: New package
steps:
  - label: Details
    fields:
      - name: name
        label: Name
        rules: required
  - label: Pricing
    fields:
      - name: fee
        label: Fee
        type: number
        rules: required,gte=1
`

var (
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyEsc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	keyCtrlC = tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
)

type harness struct {
	m         *Model
	ctrl      *stepform.Controller
	store     *storage.MemoryStore
	completed []stepform.Data
	cancelled int
}

func newHarness(t *testing.T, yml string, opts ...stepform.Option) *harness {
	t.Helper()
	def, err := formdef.Parse([]byte(yml))
	require.NoError(t, err)

	h := &harness{store: storage.NewMemoryStore()}
	opts = append([]stepform.Option{
		stepform.WithTitle(def.Title),
		stepform.WithStepConfirmation(def.ConfirmSteps),
		stepform.WithStorage(h.store),
		stepform.WithStorageKey("test"),
		stepform.WithDebounce(0),
		stepform.WithOnComplete(func(ctx context.Context, d stepform.Data) error {
			h.completed = append(h.completed, d)
			return nil
		}),
		stepform.WithOnCancel(func() { h.cancelled++ }),
	}, opts...)

	h.ctrl, err = stepform.New(def.FormSteps(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.ctrl.Close(context.Background()) })

	h.m = New(context.Background(), h.ctrl, def, afero.NewMemMapFs())
	t.Cleanup(h.m.Mount())
	h.m.Init()
	return h
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// press sends a key and runs the advance command it starts, if any,
// feeding the result back the way the program loop would.
func (h *harness) press(k tea.KeyPressMsg) tea.Cmd {
	_, cmd := h.m.Update(k)
	if !h.m.busy {
		return cmd
	}

	var cmds []tea.Cmd
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		cmds = msg
	default:
		cmds = []tea.Cmd{func() tea.Msg { return msg }}
	}
	var next tea.Cmd
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if am, ok := c().(advancedMsg); ok {
			_, next = h.m.Update(am)
		}
	}
	return next
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_BlockedStepShowsFieldErrors(t *testing.T) {
	h := newHarness(t, packageForm)

	h.press(keyEnter)
	st := h.m.State()
	assert.Equal(t, 0, st.ActiveStep)
	assert.True(t, st.Errors[0])
	assert.Equal(t, stepform.FieldErrors{"name": "is required"}, st.Fields[0])
	assert.False(t, h.m.busy)
	assert.Contains(t, h.m.render(), "Name is required")
	assert.Contains(t, h.m.render(), SymbolError+" Details")
}

func TestModel_TypingSyncsAndAdvances(t *testing.T) {
	h := newHarness(t, packageForm)

	h.typeText("Starter")
	assert.Equal(t, "Starter", h.ctrl.Data()["name"], "typing merges live")

	h.press(keyEnter)
	st := h.m.State()
	assert.Equal(t, 1, st.ActiveStep)
	assert.Equal(t, []int{0}, st.Completed)
	assert.Contains(t, h.m.render(), "Step 2 of 2 · Pricing")
	assert.Contains(t, h.m.render(), "Finish")

	b, err := h.store.Get(context.Background(), "test")
	require.NoError(t, err)
	assert.Contains(t, string(b), "Starter")
}

func TestModel_CoercionErrorBlocks(t *testing.T) {
	h := newHarness(t, packageForm)
	h.typeText("Starter")
	h.press(keyEnter)

	h.typeText("ten")
	h.press(keyEnter)
	st := h.m.State()
	assert.Equal(t, 1, st.ActiveStep)
	assert.Equal(t, "must be a number", st.Fields[1]["fee"])
	assert.Equal(t, "Starter", st.FormData["name"])
}

func TestModel_CompletesAndQuits(t *testing.T) {
	h := newHarness(t, packageForm)
	h.typeText("Starter")
	h.press(keyEnter)
	h.typeText("25")

	cmd := h.press(keyEnter)
	assert.True(t, isQuit(cmd))
	assert.Equal(t, stepform.StatusCompleted, h.ctrl.State().Status)
	require.Len(t, h.completed, 1)
	assert.Equal(t, stepform.Data{"name": "Starter", "fee": 25}, h.completed[0])

	_, err := h.store.Get(context.Background(), "test")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestModel_BackReloadsInputs(t *testing.T) {
	h := newHarness(t, packageForm)
	h.typeText("Starter")
	h.press(keyEnter)

	h.press(keyEsc)
	assert.Equal(t, 0, h.m.State().ActiveStep)
	assert.Equal(t, "Starter", h.m.current().Value("name"))

	h.press(tea.KeyPressMsg{Code: '2', Mod: tea.ModAlt})
	assert.Equal(t, 1, h.m.State().ActiveStep, "alt+2 jumps to the completed step's successor")
}

func TestModel_EscOnFirstStepCancels(t *testing.T) {
	h := newHarness(t, packageForm)
	h.typeText("Starter")

	cmd := h.press(keyEsc)
	assert.True(t, isQuit(cmd))
	assert.Equal(t, 1, h.cancelled)
	assert.Equal(t, stepform.StatusCancelled, h.ctrl.State().Status)

	_, err := h.store.Get(context.Background(), "test")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestModel_CtrlCSavesAndQuits(t *testing.T) {
	h := newHarness(t, packageForm, stepform.WithDebounce(time.Hour))
	h.typeText("Starter")

	cmd := h.press(keyCtrlC)
	assert.True(t, isQuit(cmd))
	assert.True(t, h.m.Interrupted())
	assert.Equal(t, stepform.StatusActive, h.ctrl.State().Status)

	b, err := h.store.Get(context.Background(), "test")
	require.NoError(t, err)
	assert.Contains(t, string(b), "Starter")
}

func TestModel_Confirmation(t *testing.T) {
	h := newHarness(t, "confirm_steps: true\n"+packageForm)
	h.typeText("Starter")

	h.press(keyEnter)
	require.NotNil(t, h.m.State().Prompt)
	assert.Equal(t, 0, h.m.State().ActiveStep)

	h.m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	require.NotNil(t, h.m.State().Prompt, "other keys are ignored while prompting")

	h.m.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	assert.Nil(t, h.m.State().Prompt)
	assert.Equal(t, 0, h.m.State().ActiveStep)

	h.press(keyEnter)
	require.NotNil(t, h.m.State().Prompt)
	h.m.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	assert.Nil(t, h.m.State().Prompt)
	assert.Equal(t, 1, h.m.State().ActiveStep)
}

func TestModel_BusyIgnoresKeys(t *testing.T) {
	h := newHarness(t, packageForm)
	h.m.busy = true

	h.m.Update(keyEsc)
	h.typeText("x")
	assert.Equal(t, stepform.StatusActive, h.ctrl.State().Status)
	assert.Empty(t, h.ctrl.Data())
	assert.Contains(t, h.m.render(), "Submitting")
}

func TestModel_WindowResize(t *testing.T) {
	h := newHarness(t, packageForm)
	h.m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, h.m.width)
	assert.Equal(t, 100, h.m.contentWidth())

	h.m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	assert.Equal(t, 60, h.m.contentWidth())
}

func TestJumpTarget(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"alt+1", 0, true},
		{"alt+9", 8, true},
		{"alt+0", 0, false},
		{"alt+a", 0, false},
		{"1", 0, false},
		{"alt+10", 0, false},
	}
	for _, tt := range tests {
		got, ok := jumpTarget(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}
}
