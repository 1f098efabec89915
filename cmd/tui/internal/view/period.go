package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

// PeriodChoice is a predefined or custom month selection.
type PeriodChoice int

const (
	PeriodThisMonth PeriodChoice = iota
	PeriodLastMonth
	PeriodCustom
)

func (c PeriodChoice) String() string {
	switch c {
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodCustom:
		return "Other Month"
	}

	return "Unknown"
}

func choiceToPeriod(c PeriodChoice, now time.Time) ledger.Period {
	if c == PeriodLastMonth {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return ledger.PeriodOf(first.AddDate(0, -1, 0))
	}

	return ledger.PeriodOf(now)
}

// PeriodSelectedMsg is emitted when the user has picked a valid month.
type PeriodSelectedMsg struct {
	Period ledger.Period
}

type periodState int

const (
	periodStateSelect periodState = iota
	periodStateCustom
)

// PeriodPicker is a reusable component for choosing an accounting month.
type PeriodPicker struct {
	state    periodState
	selected PeriodChoice
	input    textinput.Model
	now      func() time.Time

	err error
}

func NewPeriodPicker() PeriodPicker {
	in := textinput.New()
	in.Placeholder = "YYYY-MM"
	in.CharLimit = 7
	in.Width = 10
	in.Prompt = "Month: "

	return PeriodPicker{
		state:    periodStateSelect,
		selected: PeriodThisMonth,
		input:    in,
		now:      time.Now,
	}
}

func (m PeriodPicker) Init() tea.Cmd {
	return nil
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case periodStateSelect:
			return m.updateSelect(keyMsg)
		case periodStateCustom:
			return m.updateCustom(keyMsg)
		}
	}

	if m.state == periodStateCustom {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == PeriodCustom {
			m.state = periodStateCustom
			m.input.Focus()

			return m, textinput.Blink
		}

		period := choiceToPeriod(m.selected, m.now())

		return m, func() tea.Msg {
			return PeriodSelectedMsg{Period: period}
		}
	}

	return m, nil
}

func (m PeriodPicker) updateCustom(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		period, err := ledger.ParsePeriod(m.input.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid month (YYYY-MM)")
			return m, nil
		}

		m.err = nil

		return m, func() tea.Msg {
			return PeriodSelectedMsg{Period: period}
		}

	case tea.KeyEsc:
		m.state = periodStateSelect
		m.err = nil

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == periodStateCustom {
		return fmt.Sprintf("Enter Month:\n\n%s\n\n(Enter to confirm, Esc to back)%s", m.input.View(), errStr)
	}

	s := "Select Month:\n\n"
	for c := PeriodThisMonth; c <= PeriodCustom; c++ {
		cursor := " "
		if m.selected == c {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, c.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker shows the choice list rather than
// the custom month input.
func (m PeriodPicker) IsSelecting() bool {
	return m.state == periodStateSelect
}

func (m *PeriodPicker) Reset() {
	m.state = periodStateSelect
	m.selected = PeriodThisMonth
	m.err = nil
	m.input.SetValue("")
}
