package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/report"
)

// limitSteps are the page sizes the "l" key cycles through.
var limitSteps = []int{10, 25, 50, 100}

type ListModel struct {
	CommonModel
	reportService *report.Service

	table    table.Model
	txs      []*ledger.Transaction
	limitIdx int

	loading bool
	err     error
}

func NewListModel(svc *report.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 18},
		{Title: "Description", Width: 36},
		{Title: "Donor", Width: 18},
		{Title: "Recorded By", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		reportService: svc,
		table:         t,
		loading:       true,
	}
}

func (m ListModel) Title() string { return "Recent Transactions" }

func (m ListModel) ShortHelp() string {
	return "Esc: back | l: limit | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) limit() int {
	return m.reportService.Limits().Clamp(limitSteps[m.limitIdx])
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.txs = msg.txs
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "l":
			m.limitIdx = (m.limitIdx + 1) % len(limitSteps)
			m.loading = true

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Showing the newest %s | [l] change limit",
		activeStyle(fmt.Sprint(m.limit())))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	))
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			tx.Category.Label(),
			FormatAmount(tx.Type, tx.Amount),
			tx.Description,
			tx.DonorName,
			tx.CreatorName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs []*ledger.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	limit := m.limit()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.reportService.GetRecentTransactions(ctx, limit)

		return loadListMsg{txs: txs, err: err}
	}
}
