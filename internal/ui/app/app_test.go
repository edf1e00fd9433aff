package app

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/universal-console/collapse/internal/content"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
)

type fakeLoader struct {
	docs []interfaces.Document
	err  error
}

func (f fakeLoader) Load(context.Context, []string) ([]interfaces.Document, error) {
	return f.docs, f.err
}

func quietLogger() *logging.Logger {
	return logging.NewLoggerWithWriter(logging.DefaultConfig(), io.Discard)
}

func text(s string) []interfaces.ContentBlock {
	return []interfaces.ContentBlock{{Type: "text", Content: s}}
}

func testDocument() interfaces.Document {
	return interfaces.Document{
		Title: "Guide",
		Path:  "guide.yaml",
		Sections: []interfaces.Section{
			{ID: "intro", Title: "Intro", Level: 1, Open: true, Blocks: text("one\ntwo\nthree")},
			{ID: "setup", Title: "Setup", Level: 1, Open: true, Blocks: text("install")},
			{ID: "setup-go", Title: "Go", Level: 2, Open: true, Blocks: text("go install")},
			{ID: "faq", Title: "FAQ", Level: 1, Blocks: text("none yet")},
		},
	}
}

func newTestViewer(t *testing.T, loader interfaces.DocumentLoader) *AppModel {
	t.Helper()

	renderer := content.NewRenderer(content.DefaultRenderingPreferences())
	renderer.SetLogger(quietLogger())

	m := NewAppModel(testDocument(), Options{
		Renderer: renderer,
		Loader:   loader,
		Defaults: interfaces.PanelDefaults{FPS: 60},
		Logger:   quietLogger(),
	})
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *AppModel, k string) tea.Cmd {
	_, cmd := m.Update(keyMsg(k))
	return cmd
}

// settle steps every panel until no animation is left.
func settle(t *testing.T, m *AppModel) {
	t.Helper()
	for _, p := range m.panels {
		for i := 0; p.Advance(); i++ {
			if i > 2000 {
				t.Fatalf("panel %s never settled", p.ID())
			}
		}
	}
	m.refreshViewport()
}

func openStates(m *AppModel) map[string]bool {
	states := make(map[string]bool)
	for _, id := range m.Sections().Order() {
		states[id] = m.Sections().IsOpen(id)
	}
	return states
}

func TestViewerMountsOpenIntents(t *testing.T) {
	m := newTestViewer(t, nil)

	if got := m.ReportedHeight("intro"); got != 3 {
		t.Errorf("ReportedHeight(intro) = %v, want 3", got)
	}
	if m.Panel("faq").View() != "" {
		t.Error("closed section painted content")
	}
	for _, p := range m.panels {
		if p.Animating() {
			t.Errorf("panel %s animates on mount", p.ID())
		}
	}

	view := m.View()
	for _, want := range []string{"▾ Intro", "▸ FAQ", "three", "guide.yaml", "3/4 open"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}
}

func TestToggleAnimatesClosed(t *testing.T) {
	m := newTestViewer(t, nil)

	if cmd := press(m, "space"); cmd == nil {
		t.Fatal("toggle returned no command to start the frame ticker")
	}
	if m.Sections().IsOpen("intro") {
		t.Fatal("intro still open")
	}
	p := m.Panel("intro")
	if !p.Animating() {
		t.Fatal("closing did not animate")
	}
	if !strings.Contains(m.View(), "Intro …") {
		t.Error("header does not mark the running animation")
	}

	settle(t, m)
	if got := p.Collapse().Committed(); got != "0.0" {
		t.Errorf("Committed() = %q after close, want 0.0", got)
	}
	if got := m.Settles("intro"); got != 1 {
		t.Errorf("Settles(intro) = %d, want 1", got)
	}
	if got := m.ReportedHeight("intro"); got != 0 {
		t.Errorf("ReportedHeight(intro) = %v after close, want 0", got)
	}
	if p.View() != "" {
		t.Error("closed panel still painted")
	}
}

func TestToggleCascadesToChildren(t *testing.T) {
	m := newTestViewer(t, nil)

	press(m, "down")
	press(m, "space")

	want := map[string]bool{"intro": true, "setup": false, "setup-go": false, "faq": false}
	if d := cmp.Diff(want, openStates(m)); d != "" {
		t.Errorf("open states (-want +got):\n%s", d)
	}
	if !m.Panel("setup-go").Animating() {
		t.Error("child panel did not animate closed")
	}
}

func TestNavigationKeys(t *testing.T) {
	m := newTestViewer(t, nil)

	steps := []struct {
		key  string
		want string
	}{
		{"down", "setup"},
		{"l", "setup-go"},
		{"h", "setup"},
		{"up", "intro"},
		{"up", "faq"},
		{"g", "intro"},
		{"G", "faq"},
		{"j", "intro"},
		{"k", "faq"},
	}
	for i, step := range steps {
		press(m, step.key)
		if got := m.Sections().Focused(); got != step.want {
			t.Fatalf("step %d (%s): focus = %q, want %q", i, step.key, got, step.want)
		}
	}
}

func TestExpandCollapseAllAndUndo(t *testing.T) {
	m := newTestViewer(t, nil)

	press(m, "e")
	if got := m.Sections().Summary().OpenSections; got != 4 {
		t.Errorf("open after expand all = %d, want 4", got)
	}
	settle(t, m)
	if m.Panel("faq").View() == "" {
		t.Error("expanded faq paints nothing")
	}

	press(m, "c")
	if got := m.Sections().Summary().OpenSections; got != 0 {
		t.Errorf("open after collapse all = %d, want 0", got)
	}

	press(m, "u")
	if got := m.Sections().Summary().OpenSections; got != 4 {
		t.Errorf("open after undo = %d, want 4", got)
	}
	for _, p := range m.panels {
		if !p.Props().IsOpened {
			t.Errorf("panel %s not reopened by undo", p.ID())
		}
	}
}

func TestYankCopiesPlainText(t *testing.T) {
	m := newTestViewer(t, nil)
	var copied string
	m.writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	cmd := press(m, "y")
	if cmd == nil {
		t.Fatal("yank returned no command")
	}
	m.Update(cmd())

	if d := cmp.Diff("Intro\n\none\ntwo\nthree", copied); d != "" {
		t.Errorf("clipboard (-want +got):\n%s", d)
	}
	if !strings.Contains(m.View(), `Copied "intro"`) {
		t.Error("status bar does not confirm the copy")
	}
}

func TestYankFailureShowsErrorPane(t *testing.T) {
	m := newTestViewer(t, nil)
	m.writeClipboard = func(string) error { return stderrors.New("no clipboard utility") }

	m.Update(press(m, "y")())
	if m.currentError == nil {
		t.Fatal("clipboard failure not reported")
	}
	view := m.View()
	if !strings.Contains(view, "no clipboard utility") || !strings.Contains(view, "[esc]") {
		t.Errorf("error pane missing details or hint:\n%s", view)
	}

	press(m, "down")
	if m.Sections().Focused() != "intro" {
		t.Error("navigation active while the error pane is shown")
	}
	press(m, "esc")
	if m.currentError != nil {
		t.Error("esc did not dismiss the error pane")
	}
}

func TestReloadKeepsOpenIntents(t *testing.T) {
	reloaded := testDocument()
	reloaded.Sections = append(reloaded.Sections[:1], interfaces.Section{
		ID: "new", Title: "New", Level: 1, Open: true, Blocks: text("fresh"),
	})
	m := newTestViewer(t, fakeLoader{docs: []interfaces.Document{reloaded}})

	press(m, "space")
	cmd := press(m, "r")
	if cmd == nil {
		t.Fatal("reload returned no command")
	}
	m.Update(cmd())

	if d := cmp.Diff([]string{"intro", "new"}, m.Sections().Order()); d != "" {
		t.Errorf("sections (-want +got):\n%s", d)
	}
	if m.Sections().IsOpen("intro") {
		t.Error("reload reopened a section the user closed")
	}
	if !m.Sections().IsOpen("new") {
		t.Error("new section lost its open flag")
	}
	if !strings.Contains(m.View(), "Reloaded 2 sections") {
		t.Error("status bar does not confirm the reload")
	}
}

func TestReloadErrorShowsHints(t *testing.T) {
	m := newTestViewer(t, fakeLoader{err: stderrors.New("guide.yaml: permission denied")})

	m.Update(press(m, "r")())
	if m.currentError == nil || !strings.Contains(m.currentError.Message, "permission denied") {
		t.Fatalf("currentError = %+v", m.currentError)
	}
}

func TestResizeRewrapsContent(t *testing.T) {
	m := newTestViewer(t, nil)
	m.doc.Sections[0].Blocks = text(strings.Repeat("word ", 30))
	m.syncPanels()
	wide := m.ReportedHeight("intro")

	m.Update(tea.WindowSizeMsg{Width: 24, Height: 30})
	if narrow := m.ReportedHeight("intro"); narrow <= wide {
		t.Errorf("height at width 24 = %v, not above %v at width 60", narrow, wide)
	}
}

func TestBackClosesViewer(t *testing.T) {
	m := newTestViewer(t, nil)

	cmd := press(m, "esc")
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(CloseMsg); !ok {
		t.Error("esc did not produce CloseMsg")
	}
}
