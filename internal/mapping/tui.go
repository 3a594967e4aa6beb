package mapping

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/Hsbtqemy/Mapala/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// UI States
type state int

const (
	stateSelectField state = iota
	stateSelectSource
	stateEditConcat
	stateConfirm
)

// Text entry targets inside the concat editor.
type textTarget int

const (
	textNone textTarget = iota
	textSeparator
	textPrefix
)

// UIConfig represents UI configuration settings
type UIConfig struct {
	ColumnsPerRow int
	RowsPerPage   int
}

// Model represents the TUI model
type model struct {
	fields  []engine.TemplateField
	columns []engine.SourceColumn
	file    *File

	// UI state
	state        state
	currentField engine.TemplateField

	// Grid navigation for template fields
	page         int
	row          int
	col          int
	colsPerRow   int
	rowsPerPage  int
	itemsPerPage int

	// Source column selection
	sourceCursor  int
	sourcePage    int
	sourcePerPage int
	concatAdd     bool // picking a column to append to the concat rule

	// Concat rule editor
	rule       engine.ConcatRule
	ruleCursor int
	textTarget textTarget
	textBuffer string
	errMsg     string

	// Screen dimensions
	width  int
	height int

	saved bool

	// Styling
	titleStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	normalStyle   lipgloss.Style
	helpStyle     lipgloss.Style
	progressStyle lipgloss.Style
	mappedStyle   lipgloss.Style
	concatStyle   lipgloss.Style
	errorStyle    lipgloss.Style
}

// Initialize the model with config
func initialModel(fields []engine.TemplateField, columns []engine.SourceColumn, file *File, uiConfig UIConfig) model {
	return model{
		fields:        fields,
		columns:       columns,
		file:          file,
		state:         stateSelectField,
		page:          0,
		row:           0,
		col:           0,
		colsPerRow:    uiConfig.ColumnsPerRow,
		rowsPerPage:   uiConfig.RowsPerPage,
		itemsPerPage:  uiConfig.ColumnsPerRow * uiConfig.RowsPerPage,
		sourceCursor:  0,
		sourcePage:    0,
		sourcePerPage: 15,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Align(lipgloss.Center),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		progressStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),
		mappedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Padding(0, 1),
		concatStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Padding(0, 1),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.sourcePerPage = m.height - 6
		if m.sourcePerPage < 5 {
			m.sourcePerPage = 5
		}
	case tea.KeyMsg:
		switch m.state {
		case stateSelectField:
			return m.updateSelectField(msg)
		case stateSelectSource:
			return m.updateSelectSource(msg)
		case stateEditConcat:
			return m.updateEditConcat(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) updateSelectField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.row > 0 {
			m.row--
		}

	case "down", "j":
		maxRow := m.getMaxRowForCurrentPage()
		if m.row < maxRow {
			m.row++
		}

	case "left", "h":
		if m.col > 0 {
			m.col--
		} else if m.page > 0 {
			m.page--
			m.col = m.colsPerRow - 1
			m.adjustPosition()
		}

	case "right", "l":
		maxCol := m.getMaxColForCurrentRow()
		if m.col < maxCol {
			m.col++
		} else if m.hasNextPage() {
			m.page++
			m.col = 0
			m.row = 0
		}

	case "enter":
		currentIdx := m.getCurrentIndex()
		if currentIdx < len(m.fields) {
			m.currentField = m.fields[currentIdx]
			m.state = stateSelectSource
			m.concatAdd = false
			m.sourceCursor = 0
			m.sourcePage = 0
		}

	case "c":
		// Open the concat rule editor for the current field
		currentIdx := m.getCurrentIndex()
		if currentIdx < len(m.fields) {
			m.currentField = m.fields[currentIdx]
			m.rule = engine.ConcatRule{Separator: "; ", SkipEmpty: true}
			if existing, ok := m.file.Find(m.currentField.Name, m.currentField.Index); ok {
				if existing.Mode == ModeConcat && existing.Concat != nil {
					m.rule = *existing.Concat
				}
			}
			m.ruleCursor = 0
			m.errMsg = ""
			m.state = stateEditConcat
		}

	case "x", "backspace":
		// Clear the mapping for the current field
		currentIdx := m.getCurrentIndex()
		if currentIdx < len(m.fields) {
			field := m.fields[currentIdx]
			m.file.Remove(field.Name, field.Index)
		}

	case "n":
		m.moveToNextUnmapped()

	case "s":
		m.state = stateConfirm
	}
	return m, nil
}

func (m model) updateSelectSource(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.concatAdd {
			return m, tea.Quit
		}
	case "esc":
		if m.concatAdd {
			m.state = stateEditConcat
		} else {
			m.state = stateSelectField
		}
	case "up", "k":
		if m.sourceCursor > 0 {
			m.sourceCursor--
		} else if m.sourcePage > 0 {
			m.sourcePage--
			m.sourceCursor = m.sourcePerPage - 1
		}
	case "down", "j":
		maxCursor := m.getMaxSourceCursor()
		if m.sourceCursor < maxCursor {
			m.sourceCursor++
		} else if m.hasNextSourcePage() {
			m.sourcePage++
			m.sourceCursor = 0
		}
	case "left", "h":
		if m.sourcePage > 0 {
			m.sourcePage--
		}
	case "right", "l":
		if m.hasNextSourcePage() {
			m.sourcePage++
		}
	case "enter":
		sourceIdx := m.sourcePage*m.sourcePerPage + m.sourceCursor
		if sourceIdx < len(m.columns) {
			column := m.columns[sourceIdx]

			if m.concatAdd {
				m.rule.Sources = append(m.rule.Sources, engine.ConcatSource{Column: column.Name})
				m.ruleCursor = len(m.rule.Sources) - 1
				m.errMsg = ""
				m.state = stateEditConcat
			} else {
				m.file.Set(FieldMapping{
					Target:       m.currentField.Name,
					ColIndex:     m.currentField.Index,
					Mode:         ModeSimple,
					SourceColumn: column.Name,
				})
				m.state = stateSelectField
				m.moveToNextUnmapped()
			}
		}
	}
	return m, nil
}

func (m model) updateEditConcat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text entry for the separator or a source prefix
	if m.textTarget != textNone {
		switch msg.Type {
		case tea.KeyEnter:
			m.commitText()
		case tea.KeyEsc:
			m.textTarget = textNone
			m.textBuffer = ""
		case tea.KeyBackspace:
			if len(m.textBuffer) > 0 {
				runes := []rune(m.textBuffer)
				m.textBuffer = string(runes[:len(runes)-1])
			}
		case tea.KeySpace:
			m.textBuffer += " "
		case tea.KeyRunes:
			m.textBuffer += string(msg.Runes)
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		// Leave the editor without touching the stored mapping
		m.state = stateSelectField
		m.errMsg = ""
	case "up", "k":
		if m.ruleCursor > 0 {
			m.ruleCursor--
		}
	case "down", "j":
		if m.ruleCursor < len(m.rule.Sources)-1 {
			m.ruleCursor++
		}
	case "a":
		m.concatAdd = true
		m.sourceCursor = 0
		m.sourcePage = 0
		m.state = stateSelectSource
	case "d":
		if m.ruleCursor >= 0 && m.ruleCursor < len(m.rule.Sources) {
			m.rule.Sources = append(m.rule.Sources[:m.ruleCursor], m.rule.Sources[m.ruleCursor+1:]...)
			if m.ruleCursor >= len(m.rule.Sources) && m.ruleCursor > 0 {
				m.ruleCursor--
			}
		}
	case "K":
		if m.ruleCursor > 0 {
			s := m.rule.Sources
			s[m.ruleCursor-1], s[m.ruleCursor] = s[m.ruleCursor], s[m.ruleCursor-1]
			m.ruleCursor--
		}
	case "J":
		if m.ruleCursor < len(m.rule.Sources)-1 {
			s := m.rule.Sources
			s[m.ruleCursor+1], s[m.ruleCursor] = s[m.ruleCursor], s[m.ruleCursor+1]
			m.ruleCursor++
		}
	case "e":
		if m.ruleCursor >= 0 && m.ruleCursor < len(m.rule.Sources) {
			m.textTarget = textPrefix
			m.textBuffer = m.rule.Sources[m.ruleCursor].Prefix
		}
	case "p":
		m.textTarget = textSeparator
		m.textBuffer = m.rule.Separator
	case "t":
		m.rule.SkipEmpty = !m.rule.SkipEmpty
	case "u":
		m.rule.Dedupe = !m.rule.Dedupe
	case "enter":
		// Empty rules are rejected here, before anything is stored
		if err := m.rule.Validate(m.currentField.Name); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		rule := m.rule
		m.file.Set(FieldMapping{
			Target:   m.currentField.Name,
			ColIndex: m.currentField.Index,
			Mode:     ModeConcat,
			Concat:   &rule,
		})
		m.errMsg = ""
		m.state = stateSelectField
		m.moveToNextUnmapped()
	}
	return m, nil
}

func (m *model) commitText() {
	switch m.textTarget {
	case textSeparator:
		m.rule.Separator = m.textBuffer
	case textPrefix:
		if m.ruleCursor >= 0 && m.ruleCursor < len(m.rule.Sources) {
			m.rule.Sources[m.ruleCursor].Prefix = m.textBuffer
		}
	}
	m.textTarget = textNone
	m.textBuffer = ""
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "n":
		return m, tea.Quit
	case "y":
		m.saved = true
		return m, tea.Quit
	case "esc":
		m.state = stateSelectField
	}
	return m, nil
}

// Helper functions
func (m model) getCurrentIndex() int {
	return m.page*m.itemsPerPage + m.row*m.colsPerRow + m.col
}

func (m model) getMaxRowForCurrentPage() int {
	startOfPage := m.page * m.itemsPerPage
	remainingItems := len(m.fields) - startOfPage
	if remainingItems <= 0 {
		return 0
	}

	maxRowsNeeded := int(math.Ceil(float64(remainingItems) / float64(m.colsPerRow)))
	if maxRowsNeeded > m.rowsPerPage {
		return m.rowsPerPage - 1
	}
	return maxRowsNeeded - 1
}

func (m model) getMaxColForCurrentRow() int {
	startOfRow := m.page*m.itemsPerPage + m.row*m.colsPerRow
	endOfRow := startOfRow + m.colsPerRow
	if endOfRow > len(m.fields) {
		endOfRow = len(m.fields)
	}
	return (endOfRow - startOfRow) - 1
}

func (m model) hasNextPage() bool {
	return (m.page+1)*m.itemsPerPage < len(m.fields)
}

func (m model) hasNextSourcePage() bool {
	return (m.sourcePage+1)*m.sourcePerPage < len(m.columns)
}

func (m model) getMaxSourceCursor() int {
	itemsOnPage := len(m.columns) - m.sourcePage*m.sourcePerPage
	if itemsOnPage > m.sourcePerPage {
		return m.sourcePerPage - 1
	}
	return itemsOnPage - 1
}

func (m *model) adjustPosition() {
	currentIdx := m.getCurrentIndex()
	if currentIdx >= len(m.fields) {
		m.moveToLastValidPosition()
	}
}

func (m *model) moveToLastValidPosition() {
	if len(m.fields) == 0 {
		return
	}
	lastIdx := len(m.fields) - 1
	m.page = lastIdx / m.itemsPerPage
	remainder := lastIdx % m.itemsPerPage
	m.row = remainder / m.colsPerRow
	m.col = remainder % m.colsPerRow
}

func (m *model) isMapped(field engine.TemplateField) bool {
	_, ok := m.file.Find(field.Name, field.Index)
	return ok
}

func (m *model) moveToNextUnmapped() {
	// Safety check - prevent division by zero
	if m.itemsPerPage == 0 || m.colsPerRow == 0 {
		return
	}

	currentIdx := m.getCurrentIndex()

	moveTo := func(i int) {
		m.page = i / m.itemsPerPage
		remainder := i % m.itemsPerPage
		m.row = remainder / m.colsPerRow
		m.col = remainder % m.colsPerRow
	}

	// First search from current position forward
	for i := currentIdx + 1; i < len(m.fields); i++ {
		if !m.isMapped(m.fields[i]) {
			moveTo(i)
			return
		}
	}

	// If no unmapped found after cursor, search from beginning
	for i := 0; i < currentIdx; i++ {
		if !m.isMapped(m.fields[i]) {
			moveTo(i)
			return
		}
	}
}

func (m model) mappedCount() (simple, concat int) {
	for _, f := range m.fields {
		entry, ok := m.file.Find(f.Name, f.Index)
		if !ok {
			continue
		}
		if entry.Mode == ModeConcat {
			concat++
		} else {
			simple++
		}
	}
	return simple, concat
}

func (m model) View() string {
	switch m.state {
	case stateSelectField:
		return m.viewSelectField()
	case stateSelectSource:
		return m.viewSelectSource()
	case stateEditConcat:
		return m.viewEditConcat()
	case stateConfirm:
		return m.viewConfirm()
	}
	return ""
}

func (m model) fieldDisplay(field engine.TemplateField) (string, lipgloss.Style) {
	name := field.Name
	if name == "" {
		name = fmt.Sprintf("(col %d)", field.Index+1)
	}

	entry, ok := m.file.Find(field.Name, field.Index)
	if !ok {
		return name, m.normalStyle
	}
	if entry.Mode == ModeConcat && entry.Concat != nil {
		return fmt.Sprintf("%s ⊕ %d cols", name, len(entry.Concat.Sources)), m.concatStyle
	}
	return fmt.Sprintf("%s → %s", name, entry.SourceColumn), m.mappedStyle
}

func (m model) viewSelectField() string {
	var b strings.Builder

	// Title
	title := m.titleStyle.Width(m.width).Render("Mapala - Field Mapping")
	b.WriteString(title)
	b.WriteString("\n\n")

	// Progress
	simple, concat := m.mappedCount()
	progress := fmt.Sprintf("Progress: %d/%d mapped (%d simple, %d concat)",
		simple+concat, len(m.fields), simple, concat)
	b.WriteString(m.progressStyle.Render(progress))
	b.WriteString("\n\n")

	// Page info
	totalPages := int(math.Ceil(float64(len(m.fields)) / float64(m.itemsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	pageInfo := fmt.Sprintf("Page %d/%d", m.page+1, totalPages)
	b.WriteString(m.helpStyle.Render(pageInfo))
	b.WriteString("\n\n")

	// Calculate column width dynamically
	columnWidth := (m.width - 4) / m.colsPerRow
	if columnWidth < 10 {
		columnWidth = 10
	}

	// Field grid
	for row := 0; row < m.rowsPerPage; row++ {
		var rowItems []string
		for col := 0; col < m.colsPerRow; col++ {
			idx := m.page*m.itemsPerPage + row*m.colsPerRow + col
			if idx >= len(m.fields) {
				break
			}

			displayText, style := m.fieldDisplay(m.fields[idx])

			// Highlight if selected
			if row == m.row && col == m.col {
				style = m.selectedStyle
			}

			if len(displayText) > columnWidth-2 {
				displayText = displayText[:columnWidth-5] + "..."
			}
			displayText = fmt.Sprintf("%-*s", columnWidth-2, displayText)

			rowItems = append(rowItems, style.Render(displayText))
		}

		if len(rowItems) > 0 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rowItems...))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	// Help
	help := "↑↓←→: navigate | Enter: map | c: concat | x: clear | n: next unmapped | s: save | q: quit"
	b.WriteString(m.helpStyle.Render(help))

	return b.String()
}

func (m model) viewSelectSource() string {
	var b strings.Builder

	// Title
	var title string
	if m.concatAdd {
		title = fmt.Sprintf("Add source column to concat rule for '%s':", m.currentField.Name)
	} else {
		title = fmt.Sprintf("Map '%s' to source column:", m.currentField.Name)
	}
	b.WriteString(m.titleStyle.Render(title))
	b.WriteString("\n\n")

	// Page info
	totalPages := int(math.Ceil(float64(len(m.columns)) / float64(m.sourcePerPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	pageInfo := fmt.Sprintf("Page %d/%d", m.sourcePage+1, totalPages)
	b.WriteString(m.helpStyle.Render(pageInfo))
	b.WriteString("\n\n")

	// Source columns list
	start := m.sourcePage * m.sourcePerPage
	end := start + m.sourcePerPage
	if end > len(m.columns) {
		end = len(m.columns)
	}

	for i := start; i < end; i++ {
		column := m.columns[i]
		localIndex := i - start

		name := column.Name
		if name == "" {
			name = fmt.Sprintf("(col %d)", column.Index+1)
		}

		if localIndex == m.sourceCursor {
			b.WriteString(m.selectedStyle.Render("> " + name))
		} else {
			b.WriteString(m.normalStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")

	// Help
	help := "↑↓: navigate | ←→: prev/next page | Enter: select | Esc: back"
	b.WriteString(m.helpStyle.Render(help))

	return b.String()
}

func (m model) viewEditConcat() string {
	var b strings.Builder

	title := fmt.Sprintf("Concat rule for '%s'", m.currentField.Name)
	b.WriteString(m.titleStyle.Render(title))
	b.WriteString("\n\n")

	flag := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	b.WriteString(fmt.Sprintf("Separator: %q    %s skip empty (t)    %s dedupe (u)\n\n",
		m.rule.Separator, flag(m.rule.SkipEmpty), flag(m.rule.Dedupe)))

	if len(m.rule.Sources) == 0 {
		b.WriteString(m.helpStyle.Render("  (no source columns yet - press 'a' to add one)"))
		b.WriteString("\n")
	}
	for i, src := range m.rule.Sources {
		line := src.Column
		if src.Prefix != "" {
			line = fmt.Sprintf("%s  (prefix %q)", src.Column, src.Prefix)
		}
		if i == m.ruleCursor {
			b.WriteString(m.selectedStyle.Render("> " + line))
		} else {
			b.WriteString(m.normalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if m.textTarget != textNone {
		label := "Separator"
		if m.textTarget == textPrefix {
			label = "Prefix"
		}
		b.WriteString(fmt.Sprintf("%s: %s▌\n", label, m.textBuffer))
		b.WriteString(m.helpStyle.Render("Enter: apply | Esc: cancel"))
		return b.String()
	}

	if m.errMsg != "" {
		b.WriteString(m.errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	help := "a: add col | d: delete | K/J: reorder | e: prefix | p: separator | t/u: toggles | Enter: apply | Esc: cancel"
	b.WriteString(m.helpStyle.Render(help))

	return b.String()
}

func (m model) viewConfirm() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Save Field Mappings?"))
	b.WriteString("\n\n")

	simple, concat := m.mappedCount()
	b.WriteString(fmt.Sprintf("Template fields: %d\n", len(m.fields)))
	b.WriteString(fmt.Sprintf("Simple mappings: %d\n", simple))
	b.WriteString(fmt.Sprintf("Concat mappings: %d\n", concat))
	b.WriteString(fmt.Sprintf("Unmapped: %d\n", len(m.fields)-simple-concat))
	b.WriteString("\n")

	b.WriteString(m.helpStyle.Render("y/n to confirm, Esc to go back"))

	return b.String()
}

// RunMappingTUI starts the interactive mapping interface and saves the
// resulting mappings to outputMappingFile when the user confirms.
func RunMappingTUI(fields []engine.TemplateField, columns []engine.SourceColumn, outputMappingFile string, uiConfig UIConfig) error {
	if len(fields) == 0 {
		return fmt.Errorf("template has no fields to map")
	}
	if len(columns) == 0 {
		return fmt.Errorf("source has no columns")
	}

	file := &File{}
	if _, err := os.Stat(outputMappingFile); err == nil {
		existing, err := LoadFromFile(outputMappingFile)
		if err != nil {
			return fmt.Errorf("failed to load existing mappings: %v", err)
		}
		file = existing
		fmt.Printf("📂 Loaded %d existing mappings from %s\n", len(file.Mappings), outputMappingFile)
	} else {
		fmt.Printf("📝 No existing mappings found, starting fresh\n")
	}

	m := initialModel(fields, columns, file, uiConfig)
	m.moveToNextUnmapped()

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %v", err)
	}

	final := finalModel.(model)
	if !final.saved {
		fmt.Println("Mappings discarded.")
		return nil
	}

	if err := final.file.SaveToFile(outputMappingFile); err != nil {
		return fmt.Errorf("failed to save mappings: %v", err)
	}

	simple, concat := final.mappedCount()
	fmt.Printf("✓ Mappings saved to: %s\n", outputMappingFile)
	fmt.Printf("✓ %d simple, %d concat, %d unmapped\n", simple, concat, len(final.fields)-simple-concat)
	return nil
}
