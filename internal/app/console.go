// Package app provides the main application controller. It switches between
// the document menu and the viewer and forwards terminal size changes to
// whichever is visible.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/ui/app"
	"github.com/universal-console/collapse/internal/ui/menu"
)

// activeView determines which model is currently visible and receiving updates.
type activeView int

const (
	menuView activeView = iota
	appView
)

// ConsoleController is the root model of the interactive program.
type ConsoleController struct {
	// Child UI Models
	menuModel tea.Model
	appModel  tea.Model

	// Active View State
	currentView activeView

	// Terminal dimensions
	width  int
	height int
}

// NewConsoleController creates the controller. The menu lists paths; the
// options are handed to every viewer it opens.
func NewConsoleController(paths []string, opts app.Options) *ConsoleController {
	return &ConsoleController{
		menuModel:   menu.NewMenuModel(paths, opts),
		currentView: menuView,
	}
}

// Init initializes the menu.
func (c *ConsoleController) Init() tea.Cmd {
	return c.menuModel.Init()
}

// Update handles all messages and delegates them to the active child model.
// It also manages the transition between the menu and app views.
func (c *ConsoleController) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return c, tea.Quit
		}

	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		// The hidden menu is resized too so it is laid out on return.
		c.menuModel, cmd = c.menuModel.Update(msg)
		cmds = append(cmds, cmd)
		if c.currentView == appView && c.appModel != nil {
			c.appModel, cmd = c.appModel.Update(msg)
			cmds = append(cmds, cmd)
		}
		return c, tea.Batch(cmds...)

	case menu.OpenResultMsg:
		if msg.Err != nil {
			c.menuModel, cmd = c.menuModel.Update(msg)
			return c, cmd
		}
		c.appModel = msg.Model
		c.currentView = appView
		// Send window size to the new model and initialize it.
		c.appModel, cmd = c.appModel.Update(tea.WindowSizeMsg{Width: c.width, Height: c.height})
		cmds = append(cmds, cmd, c.appModel.Init())
		return c, tea.Batch(cmds...)

	case app.CloseMsg:
		c.appModel = nil
		c.currentView = menuView
		return c, nil
	}

	// Delegate messages to the active model.
	switch c.currentView {
	case menuView:
		c.menuModel, cmd = c.menuModel.Update(msg)
		cmds = append(cmds, cmd)

	case appView:
		c.appModel, cmd = c.appModel.Update(msg)
		cmds = append(cmds, cmd)
	}

	return c, tea.Batch(cmds...)
}

// View renders the view of the currently active child model.
func (c *ConsoleController) View() string {
	switch c.currentView {
	case menuView:
		return c.menuModel.View()
	case appView:
		return c.appModel.View()
	default:
		return "Error: Unknown view state."
	}
}
