package view

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/infaq/internal/export"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/report"
)

type summaryState int

const (
	summaryStatePeriod summaryState = iota
	summaryStateShow
)

// SummaryModel shows the cached totals of one month and can rebuild them.
type SummaryModel struct {
	CommonModel
	reportService *report.Service
	ledgerService *ledger.Service

	state  summaryState
	picker PeriodPicker
	period ledger.Period

	summary *ledger.MonthlySummary
	missing bool
	loading bool
	err     error
}

func NewSummaryModel(reports *report.Service, ledgerSvc *ledger.Service) SummaryModel {
	return SummaryModel{
		reportService: reports,
		ledgerService: ledgerSvc,
		picker:        NewPeriodPicker(),
	}
}

func (m SummaryModel) Title() string { return "Monthly Summary" }

func (m SummaryModel) ShortHelp() string {
	if m.state == summaryStateShow {
		return "Esc: pick month | r: recompute"
	}

	return "Esc: back | Enter: select"
}

func (m SummaryModel) Init() tea.Cmd {
	return nil
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.period = msg.Period
		m.state = summaryStateShow
		m.loading = true

		return m, m.loadCmd()

	case summaryLoadedMsg:
		m.loading = false
		m.summary = msg.summary
		m.missing = errors.Is(msg.err, ledger.ErrNotFound)
		m.err = nil

		if msg.err != nil && !m.missing {
			m.err = msg.err
		}

		return m, nil
	}

	if m.state == summaryStatePeriod {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = summaryStatePeriod
			m.picker.Reset()
			m.summary = nil

			return m, nil
		case "r":
			if m.loading {
				return m, nil
			}

			m.loading = true

			return m, m.recomputeCmd()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.state == summaryStatePeriod {
		return style.Render(m.picker.View())
	}

	title := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("Ringkasan %s", export.MonthName(m.period)))

	var body string

	switch {
	case m.loading:
		body = "Loading..."
	case m.err != nil:
		body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.missing:
		body = warnStyle.Render("No summary has been computed for this month yet. Press r to compute it.")
	default:
		t := m.summary.Totals
		body = fmt.Sprintf("Pemasukan   : %s\nPengeluaran : %s\nSaldo       : %s\n\n%s",
			export.Rupiah(t.Income),
			export.Rupiah(t.Expense),
			balanceStyle(t.Balance).Render(export.Rupiah(t.Balance)),
			lipgloss.NewStyle().Faint(true).Render("Computed "+m.summary.ComputedAt.Local().Format("02/01/2006 15:04")),
		)
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}

func balanceStyle(balance int64) lipgloss.Style {
	if balance < 0 {
		return errorStyle
	}

	return successStyle
}

// Messages

type summaryLoadedMsg struct {
	summary *ledger.MonthlySummary
	err     error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	period := m.period

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sum, err := m.reportService.GetMonthlyTotals(ctx, period)

		return summaryLoadedMsg{summary: sum, err: err}
	}
}

func (m SummaryModel) recomputeCmd() tea.Cmd {
	period := m.period

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sum, err := m.ledgerService.RecomputeSummary(ctx, period)

		return summaryLoadedMsg{summary: sum, err: err}
	}
}
