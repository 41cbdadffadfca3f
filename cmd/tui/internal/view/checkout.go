package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/format"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type checkoutPane int

const (
	paneCatalog checkoutPane = iota
	paneCart
)

type checkoutState int

const (
	checkoutStateBrowse checkoutState = iota
	checkoutStateSearch
	checkoutStateQuantity
	checkoutStateReceipt
)

// CheckoutModel is the register screen: catalog on the left, cart on the right.
type CheckoutModel struct {
	CommonModel
	catalogService *catalog.Service
	session        *checkout.Session
	store          receipt.Store

	state checkoutState
	pane  checkoutPane
	busy  bool

	search       textinput.Model
	products     []*catalog.Product
	catalogTable table.Model
	cartTable    table.Model

	form       *huh.Form
	quantity   *string
	pendingSKU string

	lastSale *transaction.Transaction
	receipt  viewport.Model
	note     string
	err      error
}

func NewCheckoutModel(catalogSvc *catalog.Service, session *checkout.Session, store receipt.Store) CheckoutModel {
	ti := textinput.New()
	ti.Placeholder = "name, SKU or category"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 30

	catalogTable := newTable([]table.Column{
		{Title: "SKU", Width: 8},
		{Title: "Name", Width: 30},
		{Title: "Price", Width: 9},
		{Title: "Stock", Width: 6},
	}, 15)

	cartTable := newTable([]table.Column{
		{Title: "SKU", Width: 8},
		{Title: "Name", Width: 22},
		{Title: "Qty", Width: 4},
		{Title: "Total", Width: 10},
	}, 10)
	cartTable.Blur()

	qty := "1"

	m := CheckoutModel{
		catalogService: catalogSvc,
		session:        session,
		store:          store,
		search:         ti,
		catalogTable:   catalogTable,
		cartTable:      cartTable,
		quantity:       &qty,
		receipt:        viewport.New(receipt.Width+4, 20),
	}
	m.refreshCart()

	return m
}

func (m CheckoutModel) Title() string { return "Checkout" }

func (m CheckoutModel) ShortHelp() string {
	switch m.state {
	case checkoutStateSearch:
		return "Enter: search | Esc: cancel"
	case checkoutStateQuantity:
		return "Enter: add to cart | Esc: cancel"
	case checkoutStateReceipt:
		return "s: save receipt | Enter/Esc: next sale"
	}

	if m.pane == paneCart {
		return "Tab: catalog | +/-: quantity | d: remove | x: clear | c: complete sale | Esc: back"
	}

	return "/: search | Enter: add | Tab: cart | c: complete sale | Esc: back"
}

func (m CheckoutModel) Init() tea.Cmd {
	return m.searchCmd("")
}

func (m CheckoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.catalogTable.SetHeight(m.fit(12, 5, 15))
		m.receipt.Height = m.fit(8, 10, 20)

		return m, nil

	case productsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.products = msg.products
		m.catalogTable.SetRows(productRows(msg.products))
		m.catalogTable.SetCursor(0)

		return m, nil

	case itemAddedMsg:
		m.busy = false
		m.err = msg.err
		m.note = ""
		m.refreshCart()

		return m, nil

	case saleCompletedMsg:
		m.busy = false
		m.err = msg.err
		m.refreshCart()

		if msg.err != nil {
			return m, nil
		}

		m.lastSale = msg.tx
		m.note = ""
		m.receipt.SetContent(renderReceipt(msg.tx, m.store))
		m.receipt.GotoTop()
		m.state = checkoutStateReceipt

		// Stock levels changed with the sale.
		return m, m.searchCmd(m.search.Value())

	case receiptSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.note = "Saved " + msg.path

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case checkoutStateSearch:
			return m.updateSearch(msg)
		case checkoutStateQuantity:
			return m.updateQuantity(msg)
		case checkoutStateReceipt:
			return m.updateReceipt(msg)
		}

		return m.updateBrowse(msg)
	}

	if m.state == checkoutStateQuantity {
		return m.updateQuantity(msg)
	}

	if m.state == checkoutStateSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m CheckoutModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back
	case "tab":
		return m.togglePane(), nil
	case "c":
		if m.busy {
			return m, nil
		}

		m.busy = true
		m.err = nil

		return m, m.completeSaleCmd()
	case "x":
		m.err = m.session.Clear()
		m.refreshCart()

		return m, nil
	}

	if m.pane == paneCart {
		return m.updateCart(msg)
	}

	switch msg.String() {
	case "/":
		m.state = checkoutStateSearch
		return m, m.search.Focus()
	case "enter":
		row := m.catalogTable.SelectedRow()
		if row == nil || m.busy {
			return m, nil
		}

		m.pendingSKU = row[0]
		*m.quantity = "1"
		m.form = m.buildQuantityForm(row[1])
		m.state = checkoutStateQuantity

		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.catalogTable, cmd = m.catalogTable.Update(msg)

	return m, cmd
}

func (m CheckoutModel) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := m.cartTable.SelectedRow()

	switch msg.String() {
	case "d", "delete", "backspace":
		if row != nil {
			m.err = m.session.Remove(row[0])
			m.refreshCart()
		}

		return m, nil
	case "+", "=":
		if row != nil {
			m.err = m.session.UpdateQuantity(row[0], m.cartQuantity(row[0])+1)
			m.refreshCart()
		}

		return m, nil
	case "-":
		if row != nil {
			m.err = m.session.UpdateQuantity(row[0], m.cartQuantity(row[0])-1)
			m.refreshCart()
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.cartTable, cmd = m.cartTable.Update(msg)

	return m, cmd
}

func (m CheckoutModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = checkoutStateBrowse
		m.search.Blur()
		m.search.SetValue("")

		return m, m.searchCmd("")
	case tea.KeyEnter:
		m.state = checkoutStateBrowse
		m.search.Blur()

		return m, m.searchCmd(m.search.Value())
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m CheckoutModel) updateQuantity(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = checkoutStateBrowse
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = checkoutStateBrowse

	qty, err := strconv.Atoi(strings.TrimSpace(*m.quantity))
	if err != nil {
		m.err = err
		return m, nil
	}

	m.busy = true
	m.err = nil

	return m, m.addItemCmd(m.pendingSKU, qty)
}

func (m CheckoutModel) updateReceipt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.state = checkoutStateBrowse
		m.note = ""

		return m, nil
	case "s":
		return m, m.saveReceiptCmd()
	}

	var cmd tea.Cmd
	m.receipt, cmd = m.receipt.Update(msg)

	return m, cmd
}

func (m CheckoutModel) togglePane() CheckoutModel {
	if m.pane == paneCatalog {
		m.pane = paneCart
		m.catalogTable.Blur()
		m.cartTable.Focus()

		return m
	}

	m.pane = paneCatalog
	m.cartTable.Blur()
	m.catalogTable.Focus()

	return m
}

func (m CheckoutModel) cartQuantity(sku string) int {
	for _, it := range m.session.Items() {
		if it.SKU == sku {
			return it.Quantity
		}
	}

	return 0
}

func (m *CheckoutModel) refreshCart() {
	items := m.session.Items()

	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{it.SKU, it.Name, strconv.Itoa(it.Quantity), format.Price(it.LineTotal())}
	}

	m.cartTable.SetRows(rows)

	// SetRows leaves the cursor at -1 after the cart was empty.
	if c := m.cartTable.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.cartTable.SetCursor(min(max(c, 0), len(rows)-1))
	}
}

func (m CheckoutModel) buildQuantityForm(name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Description(name).
				Value(m.quantity).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return errors.New("enter a whole number of at least 1")
					}

					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func productRows(products []*catalog.Product) []table.Row {
	rows := make([]table.Row, len(products))
	for i, p := range products {
		stock := strconv.Itoa(p.StockQuantity)
		if p.LowStock() {
			stock += "!"
		}

		rows[i] = table.Row{p.SKU, p.Name, format.Price(p.Price), stock}
	}

	return rows
}

func (m CheckoutModel) View() string {
	if m.state == checkoutStateReceipt {
		header := successStyle.Bold(true).Render(fmt.Sprintf("Sale %s completed", m.lastSale.ID))

		parts := []string{header, "", panelStyle.Render(m.receipt.View())}
		if m.note != "" {
			parts = append(parts, faintStyle.Render(m.note))
		}

		if m.err != nil {
			parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.paneTitle("Catalog", paneCatalog),
		m.searchLine(),
		panelStyle.Render(m.catalogTable.View()),
	)

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.paneTitle("Cart", paneCart),
		"",
		panelStyle.Render(m.cartTable.View()),
		m.totalsView(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	if m.state == checkoutStateQuantity {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.form.View())
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, body, "", m.statusLine(), faintStyle.Render(m.ShortHelp())),
	)
}

func (m CheckoutModel) paneTitle(title string, pane checkoutPane) string {
	if m.pane == pane {
		return activeStyle(title)
	}

	return title
}

func (m CheckoutModel) searchLine() string {
	if m.state == checkoutStateSearch || m.search.Value() != "" {
		return m.search.View()
	}

	return faintStyle.Render(fmt.Sprintf("%d products", len(m.products)))
}

func (m CheckoutModel) totalsView() string {
	t := m.session.Totals()

	return fmt.Sprintf("Subtotal %10s\nTax      %10s\n%s",
		format.Price(t.Subtotal),
		format.Price(t.Tax),
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Total    %10s", format.Price(t.Total))),
	)
}

func (m CheckoutModel) statusLine() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	status := m.session.Status()

	switch status.Kind {
	case checkout.StatusError:
		return errorStyle.Render(status.Message)
	case checkout.StatusSuccess:
		return successStyle.Render(status.Message)
	case checkout.StatusProcessing:
		return faintStyle.Render(status.Message)
	}

	return ""
}

type productsLoadedMsg struct {
	products []*catalog.Product
	err      error
}

type itemAddedMsg struct {
	err error
}

type saleCompletedMsg struct {
	tx  *transaction.Transaction
	err error
}

type receiptSavedMsg struct {
	path string
	err  error
}

func (m CheckoutModel) searchCmd(query string) tea.Cmd {
	svc := m.catalogService

	return func() tea.Msg {
		ctx, cancel := serviceCtx()
		defer cancel()

		products, err := svc.Search(ctx, query)

		return productsLoadedMsg{products: products, err: err}
	}
}

// The session applies its own lookup and finalize timeouts.
func (m CheckoutModel) addItemCmd(sku string, quantity int) tea.Cmd {
	session := m.session

	return func() tea.Msg {
		_, err := session.Add(context.Background(), sku, quantity)
		return itemAddedMsg{err: err}
	}
}

func (m CheckoutModel) completeSaleCmd() tea.Cmd {
	session := m.session

	return func() tea.Msg {
		tx, err := session.CompleteSale(context.Background())
		return saleCompletedMsg{tx: tx, err: err}
	}
}

func (m CheckoutModel) saveReceiptCmd() tea.Cmd {
	tx := m.lastSale
	store := m.store

	return func() tea.Msg {
		dir, err := os.Getwd()
		if err != nil {
			return receiptSavedMsg{err: err}
		}

		path, err := saveReceipt(dir, tx, store)

		return receiptSavedMsg{path: path, err: err}
	}
}
