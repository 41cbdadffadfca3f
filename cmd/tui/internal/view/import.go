package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/importer"
	"github.com/MrJamesThe3rd/clerk/internal/format"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	catalogService *catalog.Service
	parser         *importer.Parser

	state      importState
	filePicker filepicker.Model

	plan         *catalog.ImportPlan
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(catalogSvc *catalog.Service, parser *importer.Parser) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		catalogService: catalogSvc,
		parser:         parser,
		filePicker:     fp,
		selected:       make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Catalog" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle overwrite | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importPlanMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.plan.Conflicts) == 0 {
			return m, storeProductsCmd(m.catalogService, msg.plan.New)
		}

		m.plan = msg.plan
		m.selected = make(map[int]bool)
		m.state = importStateConflicts
		m.conflictList = m.buildConflictList()

		return m, nil

	case importDoneMsg:
		m.state = importStateResult
		m.plan = nil

		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.err = nil
		m.status = fmt.Sprintf("Imported %d products.", msg.count)

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

		return m, m.planCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult, importStateConflicts:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.plan = nil
		m.selected = make(map[int]bool)

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) buildConflictList() list.Model {
	items := make([]list.Item, len(m.plan.Conflicts))
	for i, c := range m.plan.Conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	delegate := conflictDelegate{selected: &m.selected}

	l := list.New(items, delegate, 80, 20)
	l.Title = fmt.Sprintf("%d SKUs already in the catalog (%d new)", len(m.plan.Conflicts), len(m.plan.New))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.plan.Conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.plan.Conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, storeProductsCmd(m.catalogService, m.confirmed())
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

// confirmed returns the new products plus the conflicts marked for overwrite.
func (m ImportModel) confirmed() []*catalog.Product {
	products := append([]*catalog.Product{}, m.plan.New...)

	for i, c := range m.plan.Conflicts {
		if m.selected[i] {
			products = append(products, c.Incoming)
		}
	}

	return products
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a product CSV to import:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		style := successStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

type importPlanMsg struct {
	plan *catalog.ImportPlan
	err  error
}

type importDoneMsg struct {
	count int
	err   error
}

func (m ImportModel) planCmd(path string) tea.Cmd {
	parser := m.parser
	svc := m.catalogService

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importPlanMsg{err: err}
		}
		defer f.Close()

		products, err := parser.Parse(f)
		if err != nil {
			return importPlanMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		plan, err := svc.Plan(ctx, products)
		if err != nil {
			return importPlanMsg{err: err}
		}

		return importPlanMsg{plan: plan}
	}
}

func storeProductsCmd(svc *catalog.Service, products []*catalog.Product) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := svc.Import(ctx, products); err != nil {
			return importDoneMsg{err: err}
		}

		return importDoneMsg{count: len(products)}
	}
}

type conflictItem struct {
	conflict catalog.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

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

	line1 := fmt.Sprintf("%s%s %-8s %9s  stock %-5d %s",
		cursor, checkbox,
		incoming.SKU,
		format.Price(incoming.Price),
		incoming.StockQuantity,
		incoming.Name,
	)

	line2 := fmt.Sprintf("      Existing: %9s  stock %-5d %s",
		format.Price(existing.Price),
		existing.StockQuantity,
		existing.Name,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
