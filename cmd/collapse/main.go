// Package main implements the collapse command. It opens YAML documents as an
// accordion of animated panels, prints them when stdout is not a terminal and
// traces single animations frame by frame.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/universal-console/collapse/internal/app"
	"github.com/universal-console/collapse/internal/config"
	"github.com/universal-console/collapse/internal/content"
	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
	ui "github.com/universal-console/collapse/internal/ui/app"
)

// Application metadata
const (
	Version      = "1.0.0"
	ProgramName  = "collapse"
	defaultWidth = 80
)

// CommandLineArgs represents parsed command-line arguments
type CommandLineArgs struct {
	ConfigPath string
	Theme      string
	FPS        int
	Debug      bool
	Print      bool
	Width      int
	Section    string
}

// Dependencies holds all injected application dependencies
type Dependencies struct {
	Settings *interfaces.Settings
	Theme    *interfaces.Theme
	Renderer *content.Renderer
	Loader   *content.Loader
	Logger   *logging.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var args CommandLineArgs

	root := &cobra.Command{
		Use:     ProgramName + " [documents...]",
		Short:   "Browse YAML documents as animated collapsible sections",
		Version: Version,
		Long: `collapse shows every section of a document as a panel that springs open
and closed. Without arguments it opens the documents listed in the
configuration file. When stdout is not a terminal, or with --print, the
documents are printed with their sections in their initial state.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, paths []string) error {
			deps, err := initializeDependencies(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				paths = deps.Settings.Documents
			}

			if args.Print || !term.IsTerminal(int(os.Stdout.Fd())) {
				return printDocuments(cmd.Context(), cmd.OutOrStdout(), deps, paths, outputWidth(args))
			}
			return runInteractive(deps, paths)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&args.ConfigPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/collapse/config.yaml)")
	flags.StringVar(&args.Theme, "theme", "", "theme name from the configuration file")
	flags.IntVar(&args.FPS, "fps", 0, "animation frames per second")
	flags.BoolVar(&args.Debug, "debug", false, "log at debug level")
	flags.IntVar(&args.Width, "width", 0, "output width when printing (default: terminal width or 80)")
	root.Flags().BoolVar(&args.Print, "print", false, "print the documents instead of opening the viewer")

	root.AddCommand(newFramesCommand(&args))
	return root
}

func newFramesCommand(args *CommandLineArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frames <document>",
		Short: "Toggle one section and print the height of every painted frame",
		Example: `  collapse frames guide.yaml --section install
  collapse frames guide.yaml --section 2 --fps 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			deps, err := initializeDependencies(*args)
			if err != nil {
				return err
			}
			return printFrames(cmd.Context(), cmd.OutOrStdout(), deps, paths[0], args.Section, outputWidth(*args))
		},
	}
	cmd.Flags().StringVar(&args.Section, "section", "1", "section ID or 1-based position")
	return cmd
}

// initializeDependencies loads the configuration, applies flag overrides and
// builds the logger, renderer and loader.
func initializeDependencies(args CommandLineArgs) (Dependencies, error) {
	var deps Dependencies

	configManager, err := config.NewManager(args.ConfigPath)
	if err != nil {
		return deps, fmt.Errorf("failed to initialize config manager: %w", err)
	}
	settings, err := configManager.Load()
	if err != nil {
		return deps, err
	}
	deps.Settings = settings

	logger, err := initializeLogging(settings.Logging, args.Debug)
	if err != nil {
		return deps, err
	}
	deps.Logger = logger

	if args.Theme != "" {
		settings.Theme = args.Theme
	}
	if args.FPS != 0 {
		settings.Panel.FPS = args.FPS
	}
	if err := configManager.Validate(settings); err != nil {
		return deps, fmt.Errorf("invalid options: %w", err)
	}

	theme, err := configManager.LoadTheme(settings.Theme)
	if err != nil {
		return deps, err
	}
	deps.Theme = theme

	prefs := content.DefaultRenderingPreferences()
	deps.Renderer = content.NewRenderer(prefs)
	deps.Renderer.SetLogger(logger.WithComponent("content"))
	deps.Loader = content.NewLoader(content.DefaultLoadConcurrency)
	deps.Loader.SetLogger(logger.WithComponent("content"))

	logger.Debug("Application components initialized",
		"config", configManager.GetConfigPath(),
		"theme", theme.Name,
		"fps", settings.Panel.FPS)
	return deps, nil
}

// initializeLogging sets up the global logger from the configuration. The
// viewer owns the terminal, so logs go to a file unless configured otherwise.
func initializeLogging(settings interfaces.LoggingSettings, debug bool) (*logging.Logger, error) {
	logConfig, err := config.LoggingConfig(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	if debug {
		logConfig.Level = logging.DebugLevel
	}

	if err := logging.InitGlobalLogger(logConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	logger := logging.GetGlobalLogger()
	logger.Info("collapse starting", "version", Version)
	return logger, nil
}

func viewerOptions(deps Dependencies) ui.Options {
	return ui.Options{
		Renderer: deps.Renderer,
		Loader:   deps.Loader,
		Theme:    deps.Theme,
		Defaults: deps.Settings.Panel,
		Logger:   deps.Logger.WithComponent("ui"),
	}
}

// runInteractive starts the full-screen program on the document menu.
func runInteractive(deps Dependencies, paths []string) error {
	controller := app.NewConsoleController(paths, viewerOptions(deps))
	program := tea.NewProgram(controller, tea.WithAltScreen())

	deps.Logger.Info("Starting TUI application", "documents", len(paths))
	return runProgram(program, deps.Logger)
}

type runner interface {
	Run() (tea.Model, error)
}

func runProgram(program runner, logger *logging.Logger) error {
	if _, err := program.Run(); err != nil {
		return errors.NewRuntimeError("main").
			WithLogger(logger).
			WithOperation("run").
			WithMessage("viewer terminated").
			WithCause(err).
			WithRecoverable(false).
			Build()
	}
	logger.Info("Application shutdown completed successfully")
	return nil
}

// printDocuments writes each document with its sections at rest. Documents
// that fail to load are reported after the others are printed.
func printDocuments(ctx context.Context, w io.Writer, deps Dependencies, paths []string, width int) error {
	if len(paths) == 0 {
		return fmt.Errorf("no documents given and none configured")
	}

	docs, loadErr := deps.Loader.Load(ctx, paths)
	for i, doc := range docs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		viewer := ui.NewAppModel(doc, viewerOptions(deps))
		viewer.SetTerminalSize(width, 0)
		fmt.Fprintf(w, "# %s\n\n%s\n", doc.Title, viewer.Body())
	}
	return loadErr
}

// printFrames toggles one section of a document and prints a line per frame:
// the frame number, the committed height and the painted rows.
func printFrames(ctx context.Context, w io.Writer, deps Dependencies, path, section string, width int) error {
	docs, err := deps.Loader.Load(ctx, []string{path})
	if err != nil {
		return err
	}
	doc := docs[0]

	id, err := resolveSection(doc, section)
	if err != nil {
		return err
	}

	viewer := ui.NewAppModel(doc, viewerOptions(deps))
	viewer.SetTerminalSize(width, 0)
	p := viewer.Panel(id)

	direction := "opening"
	if viewer.Sections().IsOpen(id) {
		direction = "closing"
	}
	fmt.Fprintf(w, "%s %s from %s rows\n", direction, id, p.Collapse().Committed())

	viewer.Toggle(id)
	frame := 0
	for more := p.Animating(); more; {
		more = p.Advance()
		frame++
		fmt.Fprintf(w, "%4d\t%s\t%d\n", frame, p.Collapse().Committed(), rows(p.View()))
	}
	fmt.Fprintf(w, "rest after %d frames at %s rows (%s)\n", frame, p.Collapse().Committed(), p.Collapse().Phase())
	return nil
}

// resolveSection accepts a section ID or a 1-based position.
func resolveSection(doc interfaces.Document, section string) (string, error) {
	for _, s := range doc.Sections {
		if s.ID == section {
			return s.ID, nil
		}
	}
	if n, err := strconv.Atoi(section); err == nil && n >= 1 && n <= len(doc.Sections) {
		return doc.Sections[n-1].ID, nil
	}
	return "", fmt.Errorf("%s has no section %q", doc.Path, section)
}

func rows(view string) int {
	if view == "" {
		return 0
	}
	return lipgloss.Height(view)
}

// outputWidth prefers --width, then the terminal width, then 80 columns.
func outputWidth(args CommandLineArgs) int {
	if args.Width > 0 {
		return args.Width
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultWidth
}
