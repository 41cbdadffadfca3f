package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/clerk/internal/app"
	"github.com/MrJamesThe3rd/clerk/internal/config"
	"github.com/MrJamesThe3rd/clerk/internal/logger"
)

// terminalID keys the checkout session this terminal owns.
const terminalID = "tui"

type model struct {
	services *app.App
	log      *zap.Logger
	size     tea.WindowSizeMsg

	currentView View

	checkoutView view.CheckoutModel
	historyView  view.HistoryModel
	reportView   view.ReportModel
	importView   view.ImportModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewCheckout View = 1
	ViewHistory  View = 2
	ViewReport   View = 3
	ViewImport   View = 4
	ViewExport   View = 5
)

func initialModel(services *app.App, log *zap.Logger) model {
	return model{
		services:    services,
		log:         log,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCheckout
				m.checkoutView = view.NewCheckoutModel(
					m.services.Catalog,
					m.services.Sessions.Get(terminalID),
					m.services.Receipt,
				)

				return m, tea.Batch(m.checkoutView.Init(), m.resize)
			case "2":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.services.Transactions, m.services.Receipt)

				return m, tea.Batch(m.historyView.Init(), m.resize)
			case "3":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.services.Reports, time.Now())

				return m, tea.Batch(m.reportView.Init(), m.resize)
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.services.Catalog, m.services.Parser)

				return m, tea.Batch(m.importView.Init(), m.resize)
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.services.Export, m.services.Location)

				return m, tea.Batch(m.exportView.Init(), m.resize)
			}
		}
	case view.BackMsg:
		m.log.Debug("back to menu", zap.Int("from", int(m.currentView)))
		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewCheckout:
		var newModel tea.Model
		newModel, cmd = m.checkoutView.Update(msg)
		m.checkoutView = newModel.(view.CheckoutModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
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
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Clerk POS\n\n" +
				"1. Checkout\n" +
				"2. Sales History\n" +
				"3. Daily Report\n" +
				"4. Import Catalog\n" +
				"5. Export Receipts\n\n" +
				"q. Quit",
		)
	case ViewCheckout:
		return m.checkoutView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewReport:
		return m.reportView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

// resize replays the last window size to a freshly opened view.
func (m model) resize() tea.Msg {
	return m.size
}

// newLogger writes to LOG_FILE when set. The terminal belongs to the UI.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.File == "" {
		return zap.NewNop(), nil
	}

	return logger.New(cfg.Logger())
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	services, err := app.New(context.Background(), cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build services:", err)
		os.Exit(1)
	}
	defer services.Close()

	p := tea.NewProgram(initialModel(services, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("failed to run TUI", zap.Error(err))
		fmt.Fprintln(os.Stderr, "failed to run TUI:", err)
	}
}
