package view

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clerk/internal/export"
	"github.com/MrJamesThe3rd/clerk/internal/format"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

const (
	exportTimeout    = 2 * time.Minute
	defaultExportDir = "./receipts"
)

type exportStep int

const (
	exportPickRange exportStep = iota
	exportPickDir
	exportWriting
	exportDone
)

// ExportModel writes the receipts of a date range to a directory.
type ExportModel struct {
	CommonModel
	receipts *export.Service

	step   exportStep
	picker TimeframePicker
	filter transaction.ListFilter
	label  string

	dirForm *huh.Form
	dir     *string
	spinner spinner.Model

	written []export.Item
	summary viewport.Model
	err     error
}

func NewExportModel(svc *export.Service, loc *time.Location) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	dir := defaultExportDir

	return ExportModel{
		receipts: svc,
		picker:   NewTimeframePicker(TimeframeToday, loc),
		dir:      &dir,
		spinner:  s,
		summary:  viewport.New(80, 15),
	}
}

func (m ExportModel) Title() string { return "Export Receipts" }

func (m ExportModel) ShortHelp() string {
	switch m.step {
	case exportWriting:
		return "Writing receipts..."
	case exportDone:
		return "↑/↓: scroll | Enter: export another range | Esc: back to menu"
	case exportPickDir:
		return "Enter: write receipts | Esc: change range"
	}

	return "Enter: choose range | Esc: back"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.summary.Height = m.fit(10, 5, 15)

		return m, nil

	case TimeframeSelectedMsg:
		m.filter, m.label = msg.Filter, msg.Label
		m.dirForm = newDirForm(m.dir)
		m.step = exportPickDir

		return m, m.dirForm.Init()

	case receiptsWrittenMsg:
		m.step = exportDone
		m.err = msg.err
		m.written = msg.items
		m.summary.SetContent(msg.summary)
		m.summary.GotoTop()

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	switch m.step {
	case exportPickRange:
		if isKey && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case exportPickDir:
		if isKey && keyMsg.Type == tea.KeyEsc {
			m.picker.Reset()
			m.step = exportPickRange

			return m, nil
		}

		return m.updateDirForm(msg)

	case exportWriting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case exportDone:
		if isKey {
			switch keyMsg.Type {
			case tea.KeyEsc:
				return m, Back
			case tea.KeyEnter:
				m.picker.Reset()
				m.step = exportPickRange
				m.err = nil
				m.written = nil

				return m, nil
			}
		}

		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ExportModel) updateDirForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.dirForm.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.dirForm = f
	}

	if m.dirForm.State != huh.StateCompleted {
		return m, cmd
	}

	m.step = exportWriting

	return m, tea.Batch(m.spinner.Tick, writeReceiptsCmd(m.receipts, m.filter, *m.dir))
}

func newDirForm(dir *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("dir").
				Title("Receipt directory").
				Description("One receipt-<id>.txt per sale").
				Placeholder(defaultExportDir).
				Value(dir),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) View() string {
	var body string

	switch m.step {
	case exportPickRange:
		body = m.picker.View()
	case exportPickDir:
		body = lipgloss.JoinVertical(lipgloss.Left, "Range: "+activeStyle(m.label), "", m.dirForm.View())
	case exportWriting:
		body = fmt.Sprintf("%s Writing receipts for %s to %s", m.spinner.View(), m.label, *m.dir)
	case exportDone:
		body = m.doneView()
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, body, "", faintStyle.Render(m.ShortHelp())),
	)
}

func (m ExportModel) doneView() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Export failed: %v", m.err))
	}

	if len(m.written) == 0 {
		return faintStyle.Render(fmt.Sprintf("No sales in %s, nothing written.", m.label))
	}

	var total int64
	for _, it := range m.written {
		total += it.Transaction.Total
	}

	dir, err := filepath.Abs(*m.dir)
	if err != nil {
		dir = *m.dir
	}

	headline := successStyle.Render(fmt.Sprintf("%d receipts (%s) written to %s", len(m.written), format.Price(total), dir))

	return lipgloss.JoinVertical(lipgloss.Left, headline, "", panelStyle.Render(m.summary.View()))
}

type receiptsWrittenMsg struct {
	items   []export.Item
	summary string
	err     error
}

func writeReceiptsCmd(svc *export.Service, filter transaction.ListFilter, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		items, err := svc.Export(ctx, filter, dir)
		if err != nil {
			return receiptsWrittenMsg{err: err}
		}

		return receiptsWrittenMsg{items: items, summary: svc.GenerateSummary(items)}
	}
}
