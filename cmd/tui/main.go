package main

import (
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/infaq/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/infaq/internal/config"
	"github.com/MrJamesThe3rd/infaq/internal/database"
	"github.com/MrJamesThe3rd/infaq/internal/export"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/infaq/internal/ledger/store"
	"github.com/MrJamesThe3rd/infaq/internal/report"
	"github.com/MrJamesThe3rd/infaq/internal/summary"
	"github.com/MrJamesThe3rd/infaq/internal/user"
	userStore "github.com/MrJamesThe3rd/infaq/internal/user/store"
)

type model struct {
	appName       string
	actorID       string
	ledgerService *ledger.Service
	reportService *report.Service
	exportService *export.Service

	currentView View

	recordView  view.RecordModel
	listView    view.ListModel
	summaryView view.SummaryModel
	importView  view.ImportModel
	exportView  view.ExportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewRecord  View = 1
	ViewList    View = 2
	ViewSummary View = 3
	ViewImport  View = 4
	ViewExport  View = 5
)

func initialModel(db *database.DB, cfg *config.Config) model {
	store := ledgerStore.New(db, cfg.DB.Timeout)

	ledgerSvc := ledger.NewService(store, summary.NewAggregator(store))
	reportSvc := report.NewService(store, report.Limits{
		Default: cfg.Ledger.RecentDefault,
		Max:     cfg.Ledger.RecentMax,
	})
	expSvc := export.NewService(reportSvc)

	// The terminal user always acts as the configured default actor.
	userSvc := user.NewService(userStore.New(db))

	ctx, cancel := view.DbCtx()
	defer cancel()

	if err := userSvc.Register(ctx, cfg.Auth.DefaultActorID, cfg.Auth.DefaultActorName); err != nil {
		slog.Warn("failed to register actor", "actor_id", cfg.Auth.DefaultActorID, "error", err)
	}

	return model{
		appName:       cfg.App.Name,
		actorID:       cfg.Auth.DefaultActorID,
		ledgerService: ledgerSvc,
		reportService: reportSvc,
		exportService: expSvc,
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRecord
				m.recordView = view.NewRecordModel(m.ledgerService, m.actorID)

				return m, m.recordView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.reportService)

				return m, m.listView.Init()
			case "3":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.reportService, m.ledgerService)

				return m, m.summaryView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.ledgerService, m.actorID)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewRecord:
		var newModel tea.Model
		newModel, cmd = m.recordView.Update(msg)
		m.recordView = newModel.(view.RecordModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Record Transaction\n" +
				"2. Recent Transactions\n" +
				"3. Monthly Summary\n" +
				"4. Import CSV\n" +
				"5. Export Month\n\n" +
				"q. Quit",
		)
	case ViewRecord:
		current = m.recordView
	case ViewList:
		current = m.listView
	case ViewSummary:
		current = m.summaryView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Driver() == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
			slog.Error("failed to create database directory", "error", err)
			os.Exit(1)
		}
	}

	if err := database.Migrate(cfg.Driver(), cfg.ConnectionString()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.Driver(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Log lines would corrupt the alternate screen; send them to a file.
	logFile, err := tea.LogToFile(filepath.Join(os.TempDir(), "infaq-tui.log"), "")
	if err == nil {
		defer logFile.Close()
	}

	p := tea.NewProgram(initialModel(db, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
