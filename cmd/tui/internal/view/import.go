package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/infaq/internal/importer"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateCategorySelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	ledgerService *ledger.Service
	actorID       string

	state            importState
	filePicker       filepicker.Model
	selectedCategory ledger.Category
	categoryCursor   int

	newCandidates []ledger.Candidate
	conflicts     []ledger.Conflict
	conflictList  list.Model
	selected      map[int]bool

	status string
	stale  bool
	err    error
}

func NewImportModel(svc *ledger.Service, actorID string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		ledgerService:  svc,
		actorID:        actorID,
		filePicker:     fp,
		categoryCursor: len(ledger.Categories) - 1,
		selected:       make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import CSV" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateCategorySelect {
			return m.updateCategorySelect(msg)
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		return m.handleImportResult(msg)

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.stale = msg.stale
		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleImportResult(msg importResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = importStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		return m, nil
	}

	if len(msg.result.Conflicts) == 0 {
		m.state = importStateResult
		m.stale = msg.stale
		m.status = fmt.Sprintf("Imported %d transactions (%s, %s).",
			len(msg.result.Imported), msg.profile, msg.charset)

		return m, nil
	}

	m.newCandidates = msg.result.New
	m.conflicts = msg.result.Conflicts
	m.selected = make(map[int]bool)
	m.state = importStateConflicts

	items := make([]list.Item, len(m.conflicts))
	for i, c := range m.conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	delegate := conflictDelegate{selected: &m.selected}
	m.conflictList = list.New(items, delegate, 90, 20)
	m.conflictList.Title = fmt.Sprintf("Possible duplicates (%d new rows will be imported)", len(m.newCandidates))
	m.conflictList.SetShowStatusBar(false)
	m.conflictList.SetFilteringEnabled(false)
	m.conflictList.SetShowHelp(false)

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateCategorySelect
		return m, nil
	case importStateResult:
		m.state = importStateCategorySelect
		m.err = nil
		m.stale = false
		m.status = ""

		return m, nil
	case importStateConflicts:
		m.state = importStateCategorySelect
		m.conflicts = nil
		m.newCandidates = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateCategorySelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.categoryCursor > 0 {
			m.categoryCursor--
		}
	case tea.KeyDown:
		if m.categoryCursor < len(ledger.Categories)-1 {
			m.categoryCursor++
		}
	case tea.KeyEnter:
		m.selectedCategory = ledger.Categories[m.categoryCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateCategorySelect:
		return m.viewCategorySelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewCategorySelect() string {
	s := "Category for rows without one:\n\n"

	for i, c := range ledger.Categories {
		cursor := " "
		if i == m.categoryCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, c.Label())
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (default category: %s):\n\n%s",
			m.selectedCategory.Label(), m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	s := successStyle.Render(m.status)
	if m.stale {
		s += "\n" + warnStyle.Render("Monthly summaries could not be refreshed; recompute them from the summary screen.")
	}

	return style.Render(s + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	result  *ledger.ImportResult
	profile string
	charset string
	stale   bool
	err     error
}

type confirmResultMsg struct {
	count int
	stale bool
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	category := m.selectedCategory
	actorID := m.actorID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		parsed, err := importer.NewParser(category).Parse(f, actorID)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.ledgerService.ImportBatch(ctx, parsed.Candidates)
		stale := errors.Is(err, ledger.ErrSummaryStale)
		if err != nil && !stale {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result, profile: parsed.Profile, charset: parsed.Charset, stale: stale}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	newCandidates := m.newCandidates
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		var all []ledger.Candidate
		all = append(all, newCandidates...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			all = append(all, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.ledgerService.RecordBatch(ctx, all)
		stale := errors.Is(err, ledger.ErrSummaryStale)
		if err != nil && !stale {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs), stale: stale}
	}
}

// Conflict list item

type conflictItem struct {
	conflict ledger.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s %s  %s  %s  %s",
		cursor, checkbox,
		FormatDate(incoming.Date),
		incoming.Category.Label(),
		FormatAmount(incoming.Type, incoming.Amount),
		incoming.Description,
	)

	line2 := fmt.Sprintf("      Recorded: %s  %s  %s  %s",
		FormatDate(existing.Date),
		existing.Category.Label(),
		FormatAmount(existing.Type, existing.Amount),
		existing.Description,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
