package app

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/content"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
	"github.com/universal-console/collapse/internal/ui/app"
)

type staticLoader []interfaces.Document

func (l staticLoader) Load(context.Context, []string) ([]interfaces.Document, error) {
	return l, nil
}

// initMessages runs Init and returns the messages of its commands.
func initMessages(t *testing.T, c *ConsoleController) []tea.Msg {
	t.Helper()
	cmd := c.Init()
	if cmd == nil {
		t.Fatal("Init returned no command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("Init did not batch the load with the spinner")
	}
	msgs := make([]tea.Msg, 0, len(batch))
	for _, cmd := range batch {
		msgs = append(msgs, cmd())
	}
	return msgs
}

func TestControllerOpensAndClosesViewer(t *testing.T) {
	doc := interfaces.Document{
		Title: "Guide",
		Path:  "guide.yaml",
		Sections: []interfaces.Section{
			{ID: "intro", Title: "Intro", Level: 1, Open: true, Blocks: []interfaces.ContentBlock{{Type: "text", Content: "hello"}}},
		},
	}
	logger := logging.NewLoggerWithWriter(logging.DefaultConfig(), io.Discard)
	renderer := content.NewRenderer(content.DefaultRenderingPreferences())
	renderer.SetLogger(logger)

	c := NewConsoleController([]string{"guide.yaml"}, app.Options{
		Renderer: renderer,
		Loader:   staticLoader{doc},
		Logger:   logger,
	})
	c.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	var open tea.Cmd
	for _, msg := range initMessages(t, c) {
		if _, cmd := c.Update(msg); cmd != nil && open == nil {
			open = cmd
		}
	}
	if open == nil {
		t.Fatal("single document was not opened")
	}

	c.Update(open())
	if c.currentView != appView {
		t.Fatal("controller did not switch to the viewer")
	}
	viewer := c.appModel.(*app.AppModel)
	if got := viewer.ReportedHeight("intro"); got != 1 {
		t.Errorf("viewer height of intro = %v, want 1", got)
	}
	if !strings.Contains(c.View(), "Guide") {
		t.Errorf("viewer not shown:\n%s", c.View())
	}

	_, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	c.Update(cmd())
	if c.currentView != menuView || c.appModel != nil {
		t.Fatal("controller did not return to the menu")
	}
	if !strings.Contains(c.View(), "[1] Guide") {
		t.Errorf("menu not shown:\n%s", c.View())
	}
}

func TestControllerQuitsOnCtrlC(t *testing.T) {
	c := NewConsoleController(nil, app.Options{})

	_, cmd := c.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}
