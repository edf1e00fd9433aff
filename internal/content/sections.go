package content

import (
	"fmt"
	"sync"
	"time"

	"github.com/universal-console/collapse/internal/interfaces"
)

// SectionManager owns the open intent of every section and the keyboard
// focus. Panels read their IsOpened prop from it.
type SectionManager struct {
	sections     map[string]*SectionState
	order        []string
	stateHistory []StateSnapshot
	focusIndex   int
	mutex        sync.RWMutex
	preferences  Preferences
	now          func() time.Time
}

// NewSectionManager creates a section manager with default preferences
func NewSectionManager() *SectionManager {
	return &SectionManager{
		sections:     make(map[string]*SectionState),
		stateHistory: make([]StateSnapshot, 0),
		focusIndex:   -1,
		preferences:  DefaultPreferences(),
		now:          time.Now,
	}
}

// Register adds a section in display order. A section's parent is the
// closest preceding section one level up.
func (sm *SectionManager) Register(section interfaces.Section) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if section.ID == "" {
		return fmt.Errorf("section ID cannot be empty")
	}
	if _, exists := sm.sections[section.ID]; exists {
		return fmt.Errorf("section '%s' is already registered", section.ID)
	}

	state := &SectionState{
		ID:    section.ID,
		Open:  section.Open,
		Level: section.Level,
		Index: len(sm.order),
	}

	for i := len(sm.order) - 1; i >= 0; i-- {
		candidate := sm.sections[sm.order[i]]
		if candidate.Level < section.Level {
			if candidate.Level == section.Level-1 {
				state.ParentID = candidate.ID
				candidate.ChildrenIDs = append(candidate.ChildrenIDs, section.ID)
			}
			break
		}
	}

	sm.sections[section.ID] = state
	sm.order = append(sm.order, section.ID)
	if sm.focusIndex < 0 {
		sm.focusIndex = 0
	}

	sm.createStateSnapshot("register", section.ID)
	return nil
}

// Reset forgets all sections, focus and history
func (sm *SectionManager) Reset() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.sections = make(map[string]*SectionState)
	sm.order = nil
	sm.stateHistory = sm.stateHistory[:0]
	sm.focusIndex = -1
}

// Toggle flips the open intent of a section. Closing a parent closes its
// descendants when CascadeCollapse is set.
func (sm *SectionManager) Toggle(sectionID string) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	section, exists := sm.sections[sectionID]
	if !exists {
		return fmt.Errorf("section '%s' not found", sectionID)
	}

	sm.setOpen(section, !section.Open)
	if !section.Open && sm.preferences.CascadeCollapse {
		sm.collapseChildSections(section.ChildrenIDs)
	}

	sm.createStateSnapshot("toggle", sectionID)
	return nil
}

// SetOpen sets the open intent of a section
func (sm *SectionManager) SetOpen(sectionID string, open bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	section, exists := sm.sections[sectionID]
	if !exists {
		return fmt.Errorf("section '%s' not found", sectionID)
	}
	if section.Open == open {
		return nil
	}

	sm.setOpen(section, open)
	if !open && sm.preferences.CascadeCollapse {
		sm.collapseChildSections(section.ChildrenIDs)
	}

	sm.createStateSnapshot("set_open", sectionID)
	return nil
}

// ExpandAll opens every section
func (sm *SectionManager) ExpandAll() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	for _, id := range sm.order {
		if section := sm.sections[id]; !section.Open {
			sm.setOpen(section, true)
		}
	}
	sm.createStateSnapshot("expand_all", "")
}

// CollapseAll closes every section
func (sm *SectionManager) CollapseAll() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	for _, id := range sm.order {
		if section := sm.sections[id]; section.Open {
			sm.setOpen(section, false)
		}
	}
	sm.createStateSnapshot("collapse_all", "")
}

// IsOpen reports the open intent of a section
func (sm *SectionManager) IsOpen(sectionID string) bool {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	section, exists := sm.sections[sectionID]
	return exists && section.Open
}

// Navigate moves the focus and returns the newly focused section
func (sm *SectionManager) Navigate(direction NavigationDirection) (string, error) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if len(sm.order) == 0 {
		return "", fmt.Errorf("no sections available for navigation")
	}

	switch direction {
	case NavigationNext:
		return sm.navigateNext(), nil
	case NavigationPrevious:
		return sm.navigatePrevious(), nil
	case NavigationFirst:
		sm.focusIndex = 0
		return sm.order[0], nil
	case NavigationLast:
		sm.focusIndex = len(sm.order) - 1
		return sm.order[sm.focusIndex], nil
	case NavigationParent:
		return sm.navigateToParent()
	case NavigationChild:
		return sm.navigateToChild()
	default:
		return "", fmt.Errorf("unsupported navigation direction")
	}
}

// Focus moves the focus to a section
func (sm *SectionManager) Focus(sectionID string) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	section, exists := sm.sections[sectionID]
	if !exists {
		return fmt.Errorf("section '%s' not found", sectionID)
	}
	sm.focusIndex = section.Index
	return nil
}

// Focused returns the focused section, or "" when there are none
func (sm *SectionManager) Focused() string {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	if sm.focusIndex < 0 || sm.focusIndex >= len(sm.order) {
		return ""
	}
	return sm.order[sm.focusIndex]
}

// Order returns section IDs in display order
func (sm *SectionManager) Order() []string {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	return append([]string(nil), sm.order...)
}

// State returns a copy of the state of a section
func (sm *SectionManager) State(sectionID string) (SectionState, error) {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	section, exists := sm.sections[sectionID]
	if !exists {
		return SectionState{}, fmt.Errorf("section '%s' not found", sectionID)
	}
	return *section, nil
}

// RestoreFromSnapshot restores all sections to the latest snapshot taken at
// or before timestamp
func (sm *SectionManager) RestoreFromSnapshot(timestamp time.Time) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	var target *StateSnapshot
	for i := len(sm.stateHistory) - 1; i >= 0; i-- {
		if !sm.stateHistory[i].Timestamp.After(timestamp) {
			target = &sm.stateHistory[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no snapshot found for timestamp %v", timestamp)
	}

	sm.restore(target)
	sm.createStateSnapshot("restore", "")
	return nil
}

// Undo reverts the last open/close operation
func (sm *SectionManager) Undo() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if len(sm.stateHistory) < 2 {
		return fmt.Errorf("nothing to undo")
	}

	previous := sm.stateHistory[len(sm.stateHistory)-2]
	sm.restore(&previous)
	sm.stateHistory = sm.stateHistory[:len(sm.stateHistory)-1]
	return nil
}

// GetStateHistory returns the history of state changes
func (sm *SectionManager) GetStateHistory() []StateSnapshot {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	history := make([]StateSnapshot, len(sm.stateHistory))
	copy(history, sm.stateHistory)
	return history
}

// UpdatePreferences updates the manager preferences
func (sm *SectionManager) UpdatePreferences(preferences Preferences) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.preferences = preferences
	sm.trimHistory()
}

// Summary returns summary information about all sections
func (sm *SectionManager) Summary() Summary {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	summary := Summary{TotalSections: len(sm.order)}
	if sm.focusIndex >= 0 && sm.focusIndex < len(sm.order) {
		summary.FocusedSection = sm.order[sm.focusIndex]
	}

	for _, section := range sm.sections {
		if section.Open {
			summary.OpenSections++
		}
		if section.Level > summary.MaxNestingLevel {
			summary.MaxNestingLevel = section.Level
		}
	}

	return summary
}

func (sm *SectionManager) setOpen(section *SectionState, open bool) {
	section.Open = open
	section.LastToggled = sm.now()
	section.ToggleCount++
}

// collapseChildSections recursively collapses child sections
func (sm *SectionManager) collapseChildSections(childIDs []string) {
	for _, childID := range childIDs {
		child, exists := sm.sections[childID]
		if !exists {
			continue
		}
		if child.Open {
			sm.setOpen(child, false)
		}
		sm.collapseChildSections(child.ChildrenIDs)
	}
}

func (sm *SectionManager) restore(snapshot *StateSnapshot) {
	for id, state := range snapshot.States {
		if section, exists := sm.sections[id]; exists {
			section.Open = state.Open
			section.LastToggled = state.LastToggled
			section.ToggleCount = state.ToggleCount
		}
	}
	if snapshot.FocusIndex < len(sm.order) {
		sm.focusIndex = snapshot.FocusIndex
	}
}

func (sm *SectionManager) navigateNext() string {
	if sm.focusIndex < len(sm.order)-1 {
		sm.focusIndex++
	} else {
		sm.focusIndex = 0 // Wrap around
	}
	return sm.order[sm.focusIndex]
}

func (sm *SectionManager) navigatePrevious() string {
	if sm.focusIndex > 0 {
		sm.focusIndex--
	} else {
		sm.focusIndex = len(sm.order) - 1 // Wrap around
	}
	return sm.order[sm.focusIndex]
}

func (sm *SectionManager) navigateToParent() (string, error) {
	if sm.focusIndex < 0 || sm.focusIndex >= len(sm.order) {
		return "", fmt.Errorf("invalid focus index")
	}

	current := sm.sections[sm.order[sm.focusIndex]]
	if current.ParentID == "" {
		return "", fmt.Errorf("current section has no parent")
	}

	sm.focusIndex = sm.sections[current.ParentID].Index
	return current.ParentID, nil
}

func (sm *SectionManager) navigateToChild() (string, error) {
	if sm.focusIndex < 0 || sm.focusIndex >= len(sm.order) {
		return "", fmt.Errorf("invalid focus index")
	}

	current := sm.sections[sm.order[sm.focusIndex]]
	if !current.HasChildren() {
		return "", fmt.Errorf("current section has no children")
	}

	childID := current.ChildrenIDs[0]
	sm.focusIndex = sm.sections[childID].Index
	return childID, nil
}

// createStateSnapshot records the current state in the bounded history
func (sm *SectionManager) createStateSnapshot(operation, sectionID string) {
	if !sm.preferences.RememberState {
		return
	}

	snapshot := StateSnapshot{
		Timestamp:  sm.now(),
		States:     make(map[string]SectionState, len(sm.sections)),
		FocusIndex: sm.focusIndex,
		Operation:  operation,
		SectionID:  sectionID,
	}
	for id, section := range sm.sections {
		snapshot.States[id] = *section
	}

	sm.stateHistory = append(sm.stateHistory, snapshot)
	sm.trimHistory()
}

// trimHistory drops the oldest snapshots beyond MaxHistorySize.
func (sm *SectionManager) trimHistory() {
	if over := len(sm.stateHistory) - max(sm.preferences.MaxHistorySize, 0); over > 0 {
		sm.stateHistory = sm.stateHistory[over:]
	}
}
