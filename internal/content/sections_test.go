package content

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/universal-console/collapse/internal/interfaces"
)

// newTestManager registers an outline with two top-level sections, the
// first of which has two children, and a clock that advances one second per
// read.
func newTestManager(t *testing.T) *SectionManager {
	t.Helper()

	sm := NewSectionManager()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := 0
	sm.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}

	for _, s := range []interfaces.Section{
		{ID: "intro", Level: 1, Open: true},
		{ID: "intro-a", Level: 2, Open: true},
		{ID: "intro-b", Level: 2},
		{ID: "usage", Level: 1},
	} {
		if err := sm.Register(s); err != nil {
			t.Fatalf("Register(%s): %v", s.ID, err)
		}
	}
	return sm
}

func TestRegisterBuildsHierarchy(t *testing.T) {
	sm := newTestManager(t)

	intro, err := sm.State("intro")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"intro-a", "intro-b"}, intro.ChildrenIDs); d != "" {
		t.Errorf("children (-want +got):\n%s", d)
	}

	child, _ := sm.State("intro-b")
	if child.ParentID != "intro" || child.Index != 2 {
		t.Errorf("intro-b = %+v", child)
	}

	usage, _ := sm.State("usage")
	if usage.ParentID != "" {
		t.Errorf("usage has parent %q", usage.ParentID)
	}

	if err := sm.Register(interfaces.Section{ID: "usage"}); err == nil {
		t.Error("duplicate ID accepted")
	}
	if err := sm.Register(interfaces.Section{}); err == nil {
		t.Error("empty ID accepted")
	}
}

func TestToggleCascades(t *testing.T) {
	sm := newTestManager(t)

	if err := sm.Toggle("intro"); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"intro", "intro-a", "intro-b"} {
		if sm.IsOpen(id) {
			t.Errorf("%s still open after closing its parent", id)
		}
	}

	sm.UpdatePreferences(Preferences{RememberState: true, MaxHistorySize: 10})
	_ = sm.Toggle("intro")
	_ = sm.Toggle("intro-a")
	_ = sm.Toggle("intro")
	if !sm.IsOpen("intro-a") {
		t.Error("child closed without CascadeCollapse")
	}

	if err := sm.Toggle("missing"); err == nil {
		t.Error("toggling an unknown section succeeded")
	}
}

func TestSetOpenIsIdempotent(t *testing.T) {
	sm := newTestManager(t)
	before := len(sm.GetStateHistory())

	if err := sm.SetOpen("intro", true); err != nil {
		t.Fatal(err)
	}
	state, _ := sm.State("intro")
	if state.ToggleCount != 0 || len(sm.GetStateHistory()) != before {
		t.Errorf("no-op SetOpen changed state: %+v", state)
	}

	_ = sm.SetOpen("usage", true)
	state, _ = sm.State("usage")
	if !state.Open || state.ToggleCount != 1 || state.LastToggled.IsZero() {
		t.Errorf("usage = %+v", state)
	}
}

func TestExpandCollapseAll(t *testing.T) {
	sm := newTestManager(t)

	sm.ExpandAll()
	if got := sm.Summary().OpenSections; got != 4 {
		t.Errorf("open after ExpandAll = %d, want 4", got)
	}
	sm.CollapseAll()
	if got := sm.Summary().OpenSections; got != 0 {
		t.Errorf("open after CollapseAll = %d, want 0", got)
	}
}

func TestNavigate(t *testing.T) {
	sm := newTestManager(t)

	steps := []struct {
		dir  NavigationDirection
		want string
	}{
		{NavigationPrevious, "usage"},
		{NavigationNext, "intro"},
		{NavigationChild, "intro-a"},
		{NavigationNext, "intro-b"},
		{NavigationParent, "intro"},
		{NavigationLast, "usage"},
		{NavigationNext, "intro"},
		{NavigationFirst, "intro"},
	}
	for i, step := range steps {
		got, err := sm.Navigate(step.dir)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != step.want || sm.Focused() != step.want {
			t.Fatalf("step %d: focus = %q, want %q", i, got, step.want)
		}
	}

	if _, err := sm.Navigate(NavigationParent); err == nil {
		t.Error("top-level section navigated to a parent")
	}
	_ = sm.Focus("usage")
	if _, err := sm.Navigate(NavigationChild); err == nil {
		t.Error("leaf section navigated to a child")
	}

	if _, err := NewSectionManager().Navigate(NavigationNext); err == nil {
		t.Error("navigation without sections succeeded")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	sm := newTestManager(t)
	sm.UpdatePreferences(Preferences{RememberState: true, MaxHistorySize: 3, CascadeCollapse: true})

	for range 5 {
		_ = sm.Toggle("usage")
	}
	history := sm.GetStateHistory()
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[2].Operation != "toggle" || history[2].SectionID != "usage" {
		t.Errorf("last snapshot = %+v", history[2])
	}
}

func TestLoweringHistoryLimitTrims(t *testing.T) {
	sm := newTestManager(t)
	if n := len(sm.GetStateHistory()); n != 4 {
		t.Fatalf("history length after registration = %d, want 4", n)
	}

	sm.UpdatePreferences(Preferences{RememberState: true, MaxHistorySize: 2})
	history := sm.GetStateHistory()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[1].SectionID != "usage" {
		t.Errorf("newest snapshot = %+v, want the usage registration", history[1])
	}

	sm.UpdatePreferences(Preferences{RememberState: true, MaxHistorySize: 0})
	if n := len(sm.GetStateHistory()); n != 0 {
		t.Errorf("history length = %d, want 0", n)
	}
}

func TestRestoreAndUndo(t *testing.T) {
	sm := newTestManager(t)

	_ = sm.Toggle("usage")
	mark := sm.GetStateHistory()
	restorePoint := mark[len(mark)-1].Timestamp

	sm.CollapseAll()
	if sm.IsOpen("usage") {
		t.Fatal("usage open after CollapseAll")
	}

	if err := sm.RestoreFromSnapshot(restorePoint); err != nil {
		t.Fatal(err)
	}
	if !sm.IsOpen("usage") || !sm.IsOpen("intro") {
		t.Error("restore did not reopen sections")
	}

	if err := sm.Undo(); err != nil {
		t.Fatal(err)
	}
	if sm.IsOpen("usage") {
		t.Error("undo did not revert the restore")
	}

	if err := sm.RestoreFromSnapshot(time.Time{}); err == nil {
		t.Error("restore before the first snapshot succeeded")
	}
}

func TestSummaryAndReset(t *testing.T) {
	sm := newTestManager(t)

	want := Summary{TotalSections: 4, OpenSections: 2, FocusedSection: "intro", MaxNestingLevel: 2}
	if d := cmp.Diff(want, sm.Summary()); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}

	sm.Reset()
	if d := cmp.Diff(Summary{}, sm.Summary()); d != "" {
		t.Errorf("after Reset (-want +got):\n%s", d)
	}
	if sm.Focused() != "" || len(sm.Order()) != 0 {
		t.Error("Reset kept focus or order")
	}
}
