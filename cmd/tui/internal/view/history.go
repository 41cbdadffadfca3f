package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clerk/internal/format"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type historyState int

const (
	historyStateTimeframe historyState = iota
	historyStateList
	historyStateSearch
	historyStateReceipt
)

// HistoryModel lists recorded sales, newest first.
type HistoryModel struct {
	CommonModel
	txService *transaction.Service
	store     receipt.Store

	state           historyState
	timeframePicker TimeframePicker
	filter          transaction.ListFilter
	label           string

	search  textinput.Model
	txs     []*transaction.Transaction
	table   table.Model
	receipt viewport.Model
	note    string
	err     error
}

func NewHistoryModel(txSvc *transaction.Service, store receipt.Store) HistoryModel {
	ti := textinput.New()
	ti.Placeholder = "ID, SKU or item name"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 30

	t := newTable([]table.Column{
		{Title: "Time", Width: 22},
		{Title: "ID", Width: 42},
		{Title: "Items", Width: 5},
		{Title: "Total", Width: 10},
	}, 15)

	return HistoryModel{
		txService:       txSvc,
		store:           store,
		timeframePicker: NewTimeframePicker(TimeframeToday, store.Location),
		search:          ti,
		table:           t,
		receipt:         viewport.New(receipt.Width+4, 20),
	}
}

func (m HistoryModel) Title() string { return "Sales History" }

func (m HistoryModel) ShortHelp() string {
	switch m.state {
	case historyStateList:
		return "/: search | Enter: receipt | t: timeframe | Esc: back"
	case historyStateSearch:
		return "Enter: search | Esc: clear"
	case historyStateReceipt:
		return "s: save receipt | Esc: back to list"
	}

	return "Enter: select | Esc: back"
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(m.fit(10, 5, 15))
		m.receipt.Height = m.fit(8, 10, 20)

		return m, nil

	case TimeframeSelectedMsg:
		m.filter = msg.Filter
		m.label = msg.Label
		m.state = historyStateList

		return m, m.loadCmd()

	case historyLoadedMsg:
		m.err = msg.err
		m.txs = msg.txs
		m.table.SetRows(m.rows())
		m.table.SetCursor(0)

		return m, nil

	case receiptSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.note = "Saved " + msg.path

		return m, nil
	}

	switch m.state {
	case historyStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	case historyStateSearch:
		return m.updateSearch(msg)
	case historyStateReceipt:
		return m.updateReceipt(msg)
	}

	return m.updateList(msg)
}

func (m HistoryModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.state = historyStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "/":
			m.state = historyStateSearch
			return m, m.search.Focus()
		case "enter":
			tx := m.selected()
			if tx == nil {
				return m, nil
			}

			m.note = ""
			m.receipt.SetContent(renderReceipt(tx, m.store))
			m.receipt.GotoTop()
			m.state = historyStateReceipt

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.search.Blur()
			m.state = historyStateList

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateReceipt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = historyStateList
			return m, nil
		case "s":
			return m, m.saveCmd(m.selected())
		}
	}

	var cmd tea.Cmd
	m.receipt, cmd = m.receipt.Update(msg)

	return m, cmd
}

func (m HistoryModel) selected() *transaction.Transaction {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.txs) {
		return nil
	}

	return m.txs[i]
}

func (m HistoryModel) rows() []table.Row {
	loc := m.location()

	rows := make([]table.Row, len(m.txs))
	for i, tx := range m.txs {
		rows[i] = table.Row{
			format.DateTime(tx.Timestamp.In(loc)),
			tx.ID,
			strconv.Itoa(tx.ItemCount()),
			format.Price(tx.Total),
		}
	}

	return rows
}

func (m HistoryModel) location() *time.Location {
	if m.store.Location == nil {
		return time.UTC
	}

	return m.store.Location
}

func (m HistoryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case historyStateTimeframe:
		return style.Render(m.timeframePicker.View())
	case historyStateReceipt:
		parts := []string{panelStyle.Render(m.receipt.View())}
		if m.note != "" {
			parts = append(parts, faintStyle.Render(m.note))
		}

		if m.err != nil {
			parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		parts = append(parts, faintStyle.Render(m.ShortHelp()))

		return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	}

	var total int64
	for _, tx := range m.txs {
		total += tx.Total
	}

	header := fmt.Sprintf("%s: %d sales, %s", m.label, len(m.txs), format.Price(total))

	searchLine := faintStyle.Render("(/ to search)")
	if m.state == historyStateSearch || m.search.Value() != "" {
		searchLine = m.search.View()
	}

	parts := []string{header, searchLine, panelStyle.Render(m.table.View())}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	parts = append(parts, faintStyle.Render(m.ShortHelp()))

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

type historyLoadedMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	svc := m.txService
	query := m.search.Value()
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := serviceCtx()
		defer cancel()

		txs, err := svc.Search(ctx, query, filter)

		return historyLoadedMsg{txs: txs, err: err}
	}
}

func (m HistoryModel) saveCmd(tx *transaction.Transaction) tea.Cmd {
	store := m.store

	return func() tea.Msg {
		if tx == nil {
			return nil
		}

		path, err := saveReceipt(".", tx, store)

		return receiptSavedMsg{path: path, err: err}
	}
}
