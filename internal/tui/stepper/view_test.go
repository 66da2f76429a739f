package stepper

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/tui/testfixtures"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureModel(t *testing.T, store *testfixtures.MockStore, yml string) (*Model, *stepform.Controller) {
	t.Helper()
	def := testfixtures.ParseForm(t, yml)

	ctrl, err := stepform.New(def.FormSteps(),
		stepform.WithTitle(def.Title),
		stepform.WithStepConfirmation(def.ConfirmSteps),
		stepform.WithStorage(store),
		stepform.WithStorageKey(testfixtures.FixedKey),
		stepform.WithDebounce(0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close(context.Background()) })

	m := New(context.Background(), ctrl, def, afero.NewMemMapFs())
	t.Cleanup(m.Mount())
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return m, ctrl
}

func screen(m *Model) string {
	return testfixtures.RenderCanvas(m.width, m.height, m.render())
}

func TestView_FirstStep(t *testing.T) {
	m, _ := newFixtureModel(t, testfixtures.NewMockStore(), testfixtures.EnrolForm)

	out := screen(m)
	assert.Contains(t, out, "Enrol student")
	assert.Contains(t, out, SymbolActive+" Student")
	assert.Contains(t, out, SymbolPending+" Course")
	assert.Contains(t, out, "Step 1 of 3 · Student")
	assert.Contains(t, out, "Who is joining.")
	assert.Contains(t, out, "› First name *")
	assert.Contains(t, out, "Cancel")
	assert.Contains(t, out, "Next →")
	assert.Contains(t, out, "esc cancel")
	assert.NotContains(t, out, "← Back")
}

func TestView_ResumesFromSnapshot(t *testing.T) {
	store := testfixtures.NewMockStore()
	require.NoError(t, store.Seed(testfixtures.FixedKey, testfixtures.SnapshotAt(1, stepform.Data{
		"first_name": "Ada",
		"course":     "Violin",
	})))

	m, ctrl := newFixtureModel(t, store, testfixtures.EnrolForm)
	assert.Equal(t, 1, m.State().ActiveStep)
	assert.Equal(t, "Violin", m.current().Value("course"))
	assert.Equal(t, "1", m.current().Value("lessons"), "defaults fill keys the snapshot lacks")
	assert.Equal(t, "Ada", ctrl.Data()["first_name"])

	out := screen(m)
	assert.Contains(t, out, "1·"+SymbolDone+" Student", "completed steps can be jumped to")
	assert.Contains(t, out, "Step 2 of 3 · Course")
	assert.Contains(t, out, "← Back")
	assert.Zero(t, store.Calls().Set, "restoring does not write")
}

func TestView_WriteFailureKeepsFormUsable(t *testing.T) {
	store := testfixtures.NewMockStore()
	store.SetError = errors.New("disk full")
	m, ctrl := newFixtureModel(t, store, testfixtures.SingleStepForm)

	for _, r := range "ok" {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	assert.Eventually(t, func() bool { return store.Calls().Set >= 1 },
		testfixtures.DefaultWaitDuration, testfixtures.DefaultCheckInterval)

	assert.Equal(t, "ok", ctrl.Data()["comment"])
	assert.Equal(t, stepform.StatusActive, ctrl.State().Status)
	assert.False(t, store.Has(testfixtures.FixedKey))
}

func TestView_ConfirmationModal(t *testing.T) {
	m, _ := newFixtureModel(t, testfixtures.NewMockStore(), "confirm_steps: true\n"+testfixtures.EnrolForm)
	for _, r := range "Ada" {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)
	for _, c := range cmd().(tea.BatchMsg) {
		if am, ok := c().(advancedMsg); ok {
			m.Update(am)
		}
	}
	require.NotNil(t, m.State().Prompt)

	out := testfixtures.RenderCanvas(m.width, m.height, RenderConfirmation(m.State().Prompt))
	assert.Contains(t, out, "Press Y to")
	assert.True(t, strings.Contains(out, "N or ESC"))
}
