// Package content implements the document side of the collapse viewer:
// section state management, rendering of content blocks into terminal text
// and concurrent loading of YAML documents.
package content

import (
	"time"
)

// SectionState tracks the open intent and position of one section
type SectionState struct {
	ID          string    `json:"id"`
	Open        bool      `json:"open"`
	LastToggled time.Time `json:"lastToggled"`
	ToggleCount int       `json:"toggleCount"`
	Level       int       `json:"level"`
	ParentID    string    `json:"parentId,omitempty"`
	ChildrenIDs []string  `json:"childrenIds,omitempty"`
	Index       int       `json:"index"`
}

// HasChildren reports whether nested sections follow this one
func (s SectionState) HasChildren() bool {
	return len(s.ChildrenIDs) > 0
}

// StateSnapshot captures the state of all sections at a point in time
type StateSnapshot struct {
	Timestamp  time.Time               `json:"timestamp"`
	States     map[string]SectionState `json:"states"`
	FocusIndex int                     `json:"focusIndex"`
	Operation  string                  `json:"operation"`
	SectionID  string                  `json:"sectionId,omitempty"`
}

// Preferences defines user preferences for section behavior
type Preferences struct {
	RememberState   bool `json:"rememberState"`
	MaxHistorySize  int  `json:"maxHistorySize"`
	CascadeCollapse bool `json:"cascadeCollapse"`
}

// DefaultPreferences returns the preferences used by NewSectionManager
func DefaultPreferences() Preferences {
	return Preferences{
		RememberState:   true,
		MaxHistorySize:  50,
		CascadeCollapse: true,
	}
}

// NavigationDirection represents navigation directions between sections
type NavigationDirection int

const (
	NavigationNext NavigationDirection = iota
	NavigationPrevious
	NavigationParent
	NavigationChild
	NavigationFirst
	NavigationLast
)

// Summary provides overview information about all sections
type Summary struct {
	TotalSections   int    `json:"totalSections"`
	OpenSections    int    `json:"openSections"`
	FocusedSection  string `json:"focusedSection"`
	MaxNestingLevel int    `json:"maxNestingLevel"`
}

// RenderingPreferences control block rendering
type RenderingPreferences struct {
	ShowLineNumbers bool `json:"showLineNumbers"`
	MaxTableRows    int  `json:"maxTableRows"`
	MaxColumnWidth  int  `json:"maxColumnWidth"`
	MinColumnWidth  int  `json:"minColumnWidth"`
}

// ContentMetrics counts what the renderer produced
type ContentMetrics struct {
	ElementCounts map[string]int `json:"elementCounts"`
	TotalLines    int            `json:"totalLines"`
	CacheHits     int            `json:"cacheHits"`
}
