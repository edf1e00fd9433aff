package content

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
)

const (
	defaultSeparatorWidth = 40
	cellTail              = "…"
)

// Renderer implements the ContentRenderer interface. Its output is the
// Children text of a collapse panel.
type Renderer struct {
	syntaxHighlighter *SyntaxHighlighter
	themeManager      *ThemeManager
	cache             *RenderCache
	mutex             sync.Mutex
	preferences       RenderingPreferences
	metrics           ContentMetrics
	logger            *logging.Logger
}

var _ interfaces.ContentRenderer = (*Renderer)(nil)

// RenderCache keeps rendered sections keyed by section, width, theme and
// content fingerprint
type RenderCache struct {
	renderedContent map[string]string
	lastAccessed    map[string]time.Time
	mutex           sync.RWMutex
	maxSize         int
}

// SyntaxHighlighter provides code syntax highlighting capabilities using Chroma
type SyntaxHighlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
	theme     string
}

// ThemeManager turns a configured theme into Lip Gloss styles
type ThemeManager struct {
	currentTheme   *interfaces.Theme
	lipglossStyles map[string]lipgloss.Style
}

// DefaultRenderingPreferences returns the preferences used by NewRenderer
func DefaultRenderingPreferences() RenderingPreferences {
	return RenderingPreferences{
		ShowLineNumbers: false,
		MaxTableRows:    50,
		MaxColumnWidth:  40,
		MinColumnWidth:  3,
	}
}

// NewRenderer creates a content renderer
func NewRenderer(preferences RenderingPreferences) *Renderer {
	return &Renderer{
		syntaxHighlighter: NewSyntaxHighlighter("github", "terminal256"),
		themeManager:      NewThemeManager(),
		cache: &RenderCache{
			renderedContent: make(map[string]string),
			lastAccessed:    make(map[string]time.Time),
			maxSize:         256,
		},
		preferences: preferences,
		metrics: ContentMetrics{
			ElementCounts: make(map[string]int),
		},
		logger: logging.GetContentLogger(),
	}
}

// SetLogger replaces the renderer's logger
func (r *Renderer) SetLogger(logger *logging.Logger) {
	r.logger = logger
}

// RenderSection renders every block of a section, separated by blank lines
func (r *Renderer) RenderSection(section interfaces.Section, width int, theme *interfaces.Theme) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.applyTheme(theme)

	key := r.cacheKey(section, width)
	if rendered, ok := r.cache.get(key); ok {
		r.metrics.CacheHits++
		return rendered, nil
	}

	parts := make([]string, 0, len(section.Blocks))
	for i, block := range section.Blocks {
		rendered, err := r.renderBlock(block, width)
		if err != nil {
			return "", errors.NewRenderError("renderer").
				WithLogger(r.logger).
				WithMessage(fmt.Sprintf("failed to render block %d of section %q", i, section.ID)).
				WithOperation("render_section").
				WithContext("section", section.ID).
				WithCause(err).
				WithoutStackTrace().
				Build()
		}
		parts = append(parts, rendered)
	}

	rendered := strings.Join(parts, "\n\n")
	r.metrics.TotalLines += lipgloss.Height(rendered)
	r.cache.put(key, rendered)
	return rendered, nil
}

// RenderBlock renders a single content block
func (r *Renderer) RenderBlock(block interfaces.ContentBlock, width int, theme *interfaces.Theme) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.applyTheme(theme)
	return r.renderBlock(block, width)
}

// PlainText returns the section content without styling, for the clipboard
func (r *Renderer) PlainText(section interfaces.Section) string {
	var b strings.Builder
	b.WriteString(section.Title)
	for _, block := range section.Blocks {
		b.WriteString("\n\n")
		if block.Title != "" {
			b.WriteString(block.Title + "\n")
		}
		switch block.Type {
		case "list":
			for _, item := range block.Items {
				b.WriteString("- " + item + "\n")
			}
		case "table":
			b.WriteString(strings.Join(block.Headers, "\t") + "\n")
			for _, row := range block.Rows {
				b.WriteString(strings.Join(row, "\t") + "\n")
			}
		default:
			b.WriteString(block.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ClearCache drops every cached section
func (r *Renderer) ClearCache() {
	r.cache.mutex.Lock()
	defer r.cache.mutex.Unlock()

	r.cache.renderedContent = make(map[string]string)
	r.cache.lastAccessed = make(map[string]time.Time)
}

// Metrics returns a copy of the rendering counters
func (r *Renderer) Metrics() ContentMetrics {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	counts := make(map[string]int, len(r.metrics.ElementCounts))
	for k, v := range r.metrics.ElementCounts {
		counts[k] = v
	}
	return ContentMetrics{
		ElementCounts: counts,
		TotalLines:    r.metrics.TotalLines,
		CacheHits:     r.metrics.CacheHits,
	}
}

func (r *Renderer) applyTheme(theme *interfaces.Theme) {
	if theme == nil || theme == r.themeManager.currentTheme {
		return
	}
	r.themeManager.SetTheme(theme)
	if theme.CodeStyle != "" {
		if err := r.syntaxHighlighter.SetTheme(theme.CodeStyle); err != nil {
			r.logger.Warn("Unknown code style, keeping previous", "style", theme.CodeStyle)
		}
	}
}

func (r *Renderer) cacheKey(section interfaces.Section, width int) string {
	digest := collapse.Fingerprint(fmt.Sprintf("%s%v", section.Title, section.Blocks))
	return fmt.Sprintf("%s|%d|%s|%s|%s", section.ID, width, r.themeManager.name(), r.syntaxHighlighter.theme, hex.EncodeToString(digest[:8]))
}

func (r *Renderer) renderBlock(block interfaces.ContentBlock, width int) (string, error) {
	var body string
	switch block.Type {
	case "text", "":
		body = r.renderTextContent(block, width)
	case "code":
		code, err := r.renderCodeContent(block)
		if err != nil {
			return "", err
		}
		body = code
	case "list":
		body = r.formatList(block.Items, width)
	case "table":
		body = r.formatTable(block.Headers, block.Rows)
	case "separator":
		return r.formatSeparator(block.Title, width), nil
	default:
		return "", fmt.Errorf("unsupported block type %q", block.Type)
	}

	r.metrics.ElementCounts[blockType(block)]++

	if block.Title == "" {
		return body, nil
	}
	title := r.themeManager.GetBlockTitleStyle().Render(block.Title)
	return title + "\n" + body, nil
}

func blockType(block interfaces.ContentBlock) string {
	if block.Type == "" {
		return "text"
	}
	return block.Type
}

func (r *Renderer) renderTextContent(block interfaces.ContentBlock, width int) string {
	text := strings.TrimRight(block.Content, "\n")
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

func (r *Renderer) renderCodeContent(block interfaces.ContentBlock) (string, error) {
	code := strings.TrimRight(block.Content, "\n")
	highlighted, err := r.syntaxHighlighter.Highlight(code, block.Language)
	if err != nil {
		r.logger.Debug("Highlighting failed, using plain code", "language", block.Language, "error", err.Error())
		highlighted = code
	}
	highlighted = strings.TrimRight(highlighted, "\n")

	if r.preferences.ShowLineNumbers {
		highlighted = r.addLineNumbers(highlighted)
	}
	return highlighted, nil
}

// formatList renders bulleted items, indenting wrapped lines under the text
func (r *Renderer) formatList(items []string, width int) string {
	marker := r.themeManager.GetListMarkerStyle().Render("•")
	lines := make([]string, 0, len(items))
	for _, item := range items {
		text := item
		if width > 2 {
			text = wordwrap.String(item, width-2)
		}
		lines = append(lines, marker+" "+strings.ReplaceAll(text, "\n", "\n  "))
	}
	return strings.Join(lines, "\n")
}

// formatTable creates formatted table output
func (r *Renderer) formatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := r.calculateColumnWidths(headers, rows)

	lines := []string{
		r.formatTableRow(headers, widths, true),
		r.createTableSeparator(widths),
	}

	maxRows := r.preferences.MaxTableRows
	for i, row := range rows {
		if maxRows > 0 && i >= maxRows {
			lines = append(lines, fmt.Sprintf("... and %d more rows", len(rows)-maxRows))
			break
		}
		lines = append(lines, r.formatTableRow(row, widths, false))
	}

	return strings.Join(lines, "\n")
}

// calculateColumnWidths determines column widths in terminal cells
func (r *Renderer) calculateColumnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	for i := range widths {
		widths[i] = max(widths[i], r.preferences.MinColumnWidth)
		if r.preferences.MaxColumnWidth > 0 {
			widths[i] = min(widths[i], r.preferences.MaxColumnWidth)
		}
	}
	return widths
}

// formatTableRow pads or truncates each cell to its column width. Missing
// cells are left blank.
func (r *Renderer) formatTableRow(cells []string, widths []int, isHeader bool) string {
	formatted := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if runewidth.StringWidth(cell) > width {
			cell = truncate.StringWithTail(cell, uint(width), cellTail)
		}
		cell = runewidth.FillRight(cell, width)
		if isHeader {
			cell = r.themeManager.GetTableHeaderStyle().Render(cell)
		}
		formatted[i] = cell
	}
	return "│ " + strings.Join(formatted, " │ ") + " │"
}

// createTableSeparator creates table separator lines
func (r *Renderer) createTableSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("─", width)
	}
	return "├─" + strings.Join(parts, "─┼─") + "─┤"
}

// formatSeparator draws a horizontal rule across width, with an optional
// centered label
func (r *Renderer) formatSeparator(label string, width int) string {
	if width <= 0 {
		width = defaultSeparatorWidth
	}
	style := r.themeManager.GetSeparatorStyle()

	labelWidth := runewidth.StringWidth(label)
	if label == "" || labelWidth+2 >= width {
		return style.Render(strings.Repeat("─", width))
	}

	left := (width - labelWidth - 2) / 2
	right := width - labelWidth - 2 - left
	return style.Render(strings.Repeat("─", left) + " " + label + " " + strings.Repeat("─", right))
}

// addLineNumbers adds line numbers to code blocks
func (r *Renderer) addLineNumbers(code string) string {
	lines := strings.Split(code, "\n")
	style := r.themeManager.GetMutedStyle()
	for i, line := range lines {
		lines[i] = style.Render(fmt.Sprintf("%3d │ ", i+1)) + line
	}
	return strings.Join(lines, "\n")
}

func (c *RenderCache) get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	rendered, ok := c.renderedContent[key]
	if ok {
		c.lastAccessed[key] = time.Now()
	}
	return rendered, ok
}

// put stores a rendered section, evicting the least recently used entry
// when the cache is full
func (c *RenderCache) put(key, rendered string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.renderedContent[key]; !exists && len(c.renderedContent) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, accessed := range c.lastAccessed {
			if oldestKey == "" || accessed.Before(oldest) {
				oldestKey, oldest = k, accessed
			}
		}
		delete(c.renderedContent, oldestKey)
		delete(c.lastAccessed, oldestKey)
	}

	c.renderedContent[key] = rendered
	c.lastAccessed[key] = time.Now()
}

func (c *RenderCache) size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.renderedContent)
}

// NewSyntaxHighlighter creates a new syntax highlighter with specified theme and format
func NewSyntaxHighlighter(themeName, formatterName string) *SyntaxHighlighter {
	style, ok := styles.Registry[themeName]
	if !ok {
		style, themeName = styles.GitHub, "github"
	}

	return &SyntaxHighlighter{
		formatter: formatters.Get(formatterName),
		style:     style,
		theme:     themeName,
	}
}

// Highlight applies syntax highlighting to code
func (sh *SyntaxHighlighter) Highlight(code, language string) (string, error) {
	// Get lexer for the language
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var highlighted strings.Builder
	if err := sh.formatter.Format(&highlighted, sh.style, iterator); err != nil {
		return code, err
	}

	return highlighted.String(), nil
}

// SetTheme updates the syntax highlighting theme
func (sh *SyntaxHighlighter) SetTheme(themeName string) error {
	style, ok := styles.Registry[themeName]
	if !ok {
		return fmt.Errorf("theme '%s' not found", themeName)
	}

	sh.style = style
	sh.theme = themeName
	return nil
}

// NewThemeManager creates a new theme manager with default settings
func NewThemeManager() *ThemeManager {
	tm := &ThemeManager{}
	tm.initializeDefaultStyles()
	return tm
}

// SetTheme updates the current theme and rebuilds styles
func (tm *ThemeManager) SetTheme(theme *interfaces.Theme) {
	tm.currentTheme = theme
	tm.initializeDefaultStyles()
	tm.buildLipglossStyles()
}

func (tm *ThemeManager) name() string {
	if tm.currentTheme == nil {
		return ""
	}
	return tm.currentTheme.Name
}

func (tm *ThemeManager) GetBlockTitleStyle() lipgloss.Style {
	return tm.lipglossStyles["block_title"]
}

func (tm *ThemeManager) GetTableHeaderStyle() lipgloss.Style {
	return tm.lipglossStyles["table_header"]
}

func (tm *ThemeManager) GetListMarkerStyle() lipgloss.Style {
	return tm.lipglossStyles["list_marker"]
}

func (tm *ThemeManager) GetSeparatorStyle() lipgloss.Style {
	return tm.lipglossStyles["separator"]
}

func (tm *ThemeManager) GetMutedStyle() lipgloss.Style {
	return tm.lipglossStyles["muted"]
}

// initializeDefaultStyles creates default Lipgloss styles
func (tm *ThemeManager) initializeDefaultStyles() {
	tm.lipglossStyles = map[string]lipgloss.Style{
		"block_title":  lipgloss.NewStyle().Bold(true),
		"table_header": lipgloss.NewStyle().Bold(true),
		"list_marker":  lipgloss.NewStyle().Foreground(lipgloss.Color("#17a2b8")),
		"separator":    lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")),
		"muted":        lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")),
	}
}

// buildLipglossStyles creates Lipgloss styles based on the current theme
func (tm *ThemeManager) buildLipglossStyles() {
	if tm.currentTheme == nil {
		return
	}

	if c := tm.currentTheme.Accent; c != "" {
		tm.lipglossStyles["block_title"] = tm.lipglossStyles["block_title"].Foreground(lipgloss.Color(c))
		tm.lipglossStyles["table_header"] = tm.lipglossStyles["table_header"].Foreground(lipgloss.Color(c))
	}
	if c := tm.currentTheme.Info; c != "" {
		tm.lipglossStyles["list_marker"] = tm.lipglossStyles["list_marker"].Foreground(lipgloss.Color(c))
	}
	if c := tm.currentTheme.Muted; c != "" {
		tm.lipglossStyles["separator"] = tm.lipglossStyles["separator"].Foreground(lipgloss.Color(c))
		tm.lipglossStyles["muted"] = tm.lipglossStyles["muted"].Foreground(lipgloss.Color(c))
	}
}
