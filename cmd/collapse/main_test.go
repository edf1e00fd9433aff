package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/config"
	"github.com/universal-console/collapse/internal/content"
	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
)

const guide = `
title: Guide
sections:
  - id: intro
    title: Introduction
    open: true
    blocks:
      - type: text
        content: "one\ntwo\nthree"
  - id: install
    title: Install
    blocks:
      - type: list
        items: [download, unpack]
`

func testDependencies(t *testing.T) (Dependencies, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.yaml")
	if err := os.WriteFile(path, []byte(guide), 0o600); err != nil {
		t.Fatal(err)
	}

	logger := logging.NewLoggerWithWriter(logging.DefaultConfig(), io.Discard)
	settings := config.DefaultSettings()
	theme := settings.Themes[settings.Theme]

	deps := Dependencies{
		Settings: settings,
		Theme:    &theme,
		Renderer: content.NewRenderer(content.DefaultRenderingPreferences()),
		Loader:   content.NewLoader(1),
		Logger:   logger,
	}
	deps.Renderer.SetLogger(logger)
	deps.Loader.SetLogger(logger)
	return deps, path
}

func TestPrintFramesClosing(t *testing.T) {
	deps, path := testDependencies(t)

	var out bytes.Buffer
	if err := printFrames(context.Background(), &out, deps, path, "intro", 40); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "closing intro from 3.0 rows" {
		t.Errorf("first line = %q", lines[0])
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "at 0.0 rows (animated)") {
		t.Errorf("last line = %q", last)
	}
	if len(lines) < 4 {
		t.Fatalf("only %d lines; the close did not animate:\n%s", len(lines), out.String())
	}
	if final := lines[len(lines)-2]; !strings.HasSuffix(final, "\t0.0\t0") {
		t.Errorf("final frame = %q, want zero height and no rows", final)
	}
}

func TestPrintFramesOpensByPosition(t *testing.T) {
	deps, path := testDependencies(t)

	var out bytes.Buffer
	if err := printFrames(context.Background(), &out, deps, path, "2", 40); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "opening install from 0.0 rows") {
		t.Errorf("output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "\t2.0\t2\n") {
		t.Errorf("no frame painted the full list:\n%s", out.String())
	}
}

func TestPrintDocuments(t *testing.T) {
	deps, path := testDependencies(t)

	var out bytes.Buffer
	if err := printDocuments(context.Background(), &out, deps, []string{path}, 40); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"# Guide", "Introduction", "three", "Install"} {
		if !strings.Contains(got, want) {
			t.Errorf("output is missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "download") {
		t.Errorf("closed section printed:\n%s", got)
	}

	if err := printDocuments(context.Background(), &out, deps, nil, 40); err == nil {
		t.Error("printing without documents succeeded")
	}
}

func TestResolveSection(t *testing.T) {
	doc := interfaces.Document{Path: "guide.yaml", Sections: []interfaces.Section{{ID: "intro"}, {ID: "2"}, {ID: "usage"}}}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "usage", want: "usage"},
		{in: "1", want: "intro"},
		{in: "2", want: "2"},
		{in: "3", want: "usage"},
		{in: "4", wantErr: true},
		{in: "missing", wantErr: true},
	}
	for _, tt := range tests {
		got, err := resolveSection(doc, tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveSection(%q) = %q, %v", tt.in, got, err)
		}
	}
}

type failingProgram struct{ err error }

func (p failingProgram) Run() (tea.Model, error) { return nil, p.err }

func TestRunProgramWrapsFailure(t *testing.T) {
	logger := logging.NewLoggerWithWriter(logging.DefaultConfig(), io.Discard)
	cause := stderrors.New("no tty")

	err := runProgram(failingProgram{err: cause}, logger)
	var ctxErr *errors.ContextualError
	if !stderrors.As(err, &ctxErr) {
		t.Fatalf("runProgram() = %v, want a contextual error", err)
	}
	if ctxErr.Type != errors.ErrorTypeRuntime || ctxErr.Recoverable || !stderrors.Is(err, cause) {
		t.Errorf("got %+v", ctxErr)
	}

	if err := runProgram(failingProgram{}, logger); err != nil {
		t.Errorf("runProgram() = %v after a clean exit", err)
	}
}
