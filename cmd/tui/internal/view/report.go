package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clerk/internal/format"
	"github.com/MrJamesThe3rd/clerk/internal/report"
)

// ReportModel shows one day's sales summary. Left and right step through days.
type ReportModel struct {
	CommonModel
	reports *report.Service

	date    time.Time
	summary *report.DailySummary
	top     table.Model
	err     error
}

func NewReportModel(reports *report.Service, now time.Time) ReportModel {
	day, _ := reports.DayBounds(now)

	t := newTable([]table.Column{
		{Title: "SKU", Width: 8},
		{Title: "Name", Width: 30},
		{Title: "Sold", Width: 6},
		{Title: "Revenue", Width: 10},
	}, report.TopItemsLimit+1)
	t.Blur()

	return ReportModel{
		reports: reports,
		date:    day,
		top:     t,
	}
}

func (m ReportModel) Title() string { return "Daily Report" }

func (m ReportModel) ShortHelp() string {
	return "←/→: previous/next day | t: today | Esc: back"
}

func (m ReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		if !msg.date.Equal(m.date) {
			return m, nil
		}

		m.err = msg.err
		m.summary = msg.summary

		if msg.summary != nil {
			m.top.SetRows(topRows(msg.summary.TopSellingItems))
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.date = m.date.AddDate(0, 0, -1)
			return m, m.loadCmd()
		case "right", "l":
			m.date = m.date.AddDate(0, 0, 1)
			return m, m.loadCmd()
		case "t":
			m.date, _ = m.reports.DayBounds(time.Now())
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func topRows(items []report.TopItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{it.SKU, it.Name, strconv.Itoa(it.QuantitySold), format.Price(it.Revenue)}
	}

	return rows
}

func (m ReportModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Daily Summary: " + format.Date(m.date))

	parts := []string{header, ""}

	switch {
	case m.err != nil:
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.summary == nil:
		parts = append(parts, faintStyle.Render("Loading..."))
	case m.summary.TransactionCount == 0:
		parts = append(parts, faintStyle.Render("No sales recorded."))
	default:
		parts = append(parts,
			fmt.Sprintf("Revenue       %10s", format.Price(m.summary.TotalRevenue)),
			fmt.Sprintf("Transactions  %10d", m.summary.TransactionCount),
			fmt.Sprintf("Average sale  %10s", format.Price(m.summary.AverageTransactionValue)),
			"",
			"Top sellers",
			panelStyle.Render(m.top.View()),
		)
	}

	parts = append(parts, "", faintStyle.Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

type reportLoadedMsg struct {
	date    time.Time
	summary *report.DailySummary
	err     error
}

func (m ReportModel) loadCmd() tea.Cmd {
	svc := m.reports
	date := m.date

	return func() tea.Msg {
		ctx, cancel := serviceCtx()
		defer cancel()

		summary, err := svc.DailySummary(ctx, date)

		return reportLoadedMsg{date: date, summary: summary, err: err}
	}
}
