package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

type recordState int

const (
	recordStateForm recordState = iota
	recordStateSaving
	recordStateResult
)

// recordForm holds the values bound to the huh fields.
type recordForm struct {
	date        string
	category    ledger.Category
	typ         ledger.Type
	amount      string
	description string
	donorName   string
	donorPhone  string
	method      ledger.PaymentMethod
	reference   string
	notes       string
}

type RecordModel struct {
	CommonModel
	ledgerService *ledger.Service
	actorID       string

	state  recordState
	form   *huh.Form
	values *recordForm

	saved *ledger.Transaction
	stale bool
	err   error
}

func NewRecordModel(svc *ledger.Service, actorID string) RecordModel {
	m := RecordModel{
		ledgerService: svc,
		actorID:       actorID,
	}
	m.reset()

	return m
}

func (m RecordModel) Title() string { return "Record Transaction" }

func (m RecordModel) ShortHelp() string {
	switch m.state {
	case recordStateResult:
		return "Esc: back to menu | n: record another"
	case recordStateSaving:
		return "Saving..."
	}

	return "Esc: cancel | Enter/Tab: navigate form"
}

func (m *RecordModel) reset() {
	m.values = &recordForm{
		date:     time.Now().Format(time.DateOnly),
		category: ledger.CategoryGeneral,
		typ:      ledger.TypeIncome,
		method:   ledger.PaymentCash,
	}
	m.form = buildRecordForm(m.values)
	m.state = recordStateForm
	m.saved = nil
	m.stale = false
	m.err = nil
}

func buildRecordForm(v *recordForm) *huh.Form {
	categories := make([]huh.Option[ledger.Category], len(ledger.Categories))
	for i, c := range ledger.Categories {
		categories[i] = huh.NewOption(c.Label(), c)
	}

	methods := make([]huh.Option[ledger.PaymentMethod], len(ledger.PaymentMethods))
	for i, pm := range ledger.PaymentMethods {
		methods[i] = huh.NewOption(pm.Label(), pm)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("date").
				Title("Tanggal").
				Placeholder("YYYY-MM-DD").
				Value(&v.date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewSelect[ledger.Type]().
				Key("type").
				Title("Jenis").
				Options(
					huh.NewOption(ledger.TypeIncome.Label(), ledger.TypeIncome),
					huh.NewOption(ledger.TypeExpense.Label(), ledger.TypeExpense),
				).
				Value(&v.typ),

			huh.NewSelect[ledger.Category]().
				Key("category").
				Title("Kategori").
				Options(categories...).
				Value(&v.category),

			huh.NewInput().
				Key("amount").
				Title("Jumlah (Rp)").
				Placeholder("150.000").
				Value(&v.amount).
				Validate(func(s string) error {
					_, err := ledger.ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("description").
				Title("Keterangan").
				Value(&v.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().Key("donor_name").Title("Donatur (optional)").Value(&v.donorName),
			huh.NewInput().Key("donor_phone").Title("Telepon (optional)").Value(&v.donorPhone),

			huh.NewSelect[ledger.PaymentMethod]().
				Key("method").
				Title("Metode").
				Options(methods...).
				Value(&v.method),

			huh.NewInput().Key("reference").Title("Referensi (optional)").Value(&v.reference),
			huh.NewText().Key("notes").Title("Catatan (optional)").Value(&v.notes),
		),
	).WithWidth(60).WithShowHelp(false)
}

// candidate converts the form values. The form validators already accepted
// date and amount, so parse errors are only reported, not expected.
func (v *recordForm) candidate(actorID string) (ledger.Candidate, error) {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(v.date))
	if err != nil {
		return ledger.Candidate{}, &ledger.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	amount, err := ledger.ParseAmount(v.amount)
	if err != nil {
		return ledger.Candidate{}, err
	}

	return ledger.Candidate{
		Date:            date,
		Category:        v.category,
		Type:            v.typ,
		Amount:          amount,
		Description:     v.description,
		DonorName:       v.donorName,
		DonorPhone:      v.donorPhone,
		PaymentMethod:   v.method,
		ReferenceNumber: v.reference,
		Notes:           v.notes,
		CreatedBy:       actorID,
	}, nil
}

func (m RecordModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if saved, ok := msg.(recordSavedMsg); ok {
		m.state = recordStateResult
		m.saved = saved.tx
		m.stale = errors.Is(saved.err, ledger.ErrSummaryStale)
		m.err = nil

		if saved.err != nil && !m.stale {
			m.err = saved.err
		}

		return m, nil
	}

	switch m.state {
	case recordStateForm:
		return m.updateForm(msg)
	case recordStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "n":
				m.reset()
				return m, m.form.Init()
			}
		}
	}

	return m, nil
}

func (m RecordModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = recordStateSaving

	return m, m.saveCmd()
}

func (m RecordModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case recordStateForm:
		return style.Render(m.form.View())
	case recordStateSaving:
		return style.Render("Saving transaction...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(n to try again, Esc to go back)")
	}

	tx := m.saved
	s := successStyle.Render("Transaction recorded.") + "\n\n" +
		fmt.Sprintf("%s  %s  %s  %s\n%s",
			FormatDate(tx.Date), tx.Category.Label(), FormatAmount(tx.Type, tx.Amount), tx.Description,
			lipgloss.NewStyle().Faint(true).Render(tx.ID.String()))

	if m.stale {
		s += "\n\n" + warnStyle.Render("The monthly summary could not be refreshed; recompute it from the summary screen.")
	}

	return style.Render(s)
}

// Messages

type recordSavedMsg struct {
	tx  *ledger.Transaction
	err error
}

func (m RecordModel) saveCmd() tea.Cmd {
	values := m.values
	actorID := m.actorID

	return func() tea.Msg {
		c, err := values.candidate(actorID)
		if err != nil {
			return recordSavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.ledgerService.RecordTransaction(ctx, c)

		return recordSavedMsg{tx: tx, err: err}
	}
}
