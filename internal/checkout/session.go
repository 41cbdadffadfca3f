package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrJamesThe3rd/clerk/internal/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

// State is the lifecycle position of a Session.
type State string

const (
	StateIdle       State = "idle"
	StateBuilding   State = "building"
	StateFinalizing State = "finalizing"
)

type StatusKind string

const (
	StatusIdle       StatusKind = "idle"
	StatusProcessing StatusKind = "processing"
	StatusSuccess    StatusKind = "success"
	StatusError      StatusKind = "error"
)

// Status is what a terminal shows the cashier about the last operation.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

// AvailabilityChecker is implemented by *inventory.Checker.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, sku string, quantity int) (inventory.Availability, error)
}

// Session is one terminal's checkout: a cart plus the idle, building and
// finalizing states around it. The lock is never held across lookups or
// writes, so mutations during a sale fail fast with ErrSessionBusy.
type Session struct {
	engine  *Engine
	checker AvailabilityChecker

	mu     sync.Mutex
	cart   *Cart
	state  State
	status Status
}

func NewSession(engine *Engine, checker AvailabilityChecker, opts ...CartOption) *Session {
	return &Session{
		engine:  engine,
		checker: checker,
		cart:    NewCart(opts...),
		state:   StateIdle,
		status:  Status{Kind: StatusIdle},
	}
}

func (s *Session) setStatus(kind StatusKind, msg string) {
	s.status = Status{Kind: kind, Message: msg}
}

// settle moves between idle and building to match the cart. Callers hold mu.
func (s *Session) settle() {
	if s.cart.Len() == 0 {
		s.state = StateIdle
		return
	}

	s.state = StateBuilding
}

// Add checks stock for quantity units of sku and adds them to the cart.
// Only the quantity being added is checked, not the merged line total.
func (s *Session) Add(ctx context.Context, sku string, quantity int) (Item, error) {
	s.mu.Lock()
	if s.state == StateFinalizing {
		s.mu.Unlock()
		return Item{}, ErrSessionBusy
	}

	s.setStatus(StatusProcessing, "Checking inventory...")
	s.mu.Unlock()

	avail, err := s.checker.CheckAvailability(ctx, sku, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalizing {
		return Item{}, ErrSessionBusy
	}

	if err != nil {
		s.setStatus(StatusError, "Failed to check inventory. Please try again.")
		return Item{}, fmt.Errorf("adding %s: %w", sku, err)
	}

	if err := avail.Err(); err != nil {
		var stockErr *inventory.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.setStatus(StatusError, fmt.Sprintf("Insufficient stock. Available: %d", stockErr.Available))
		} else {
			s.setStatus(StatusError, "Product not found")
		}

		return Item{}, err
	}

	item, err := s.cart.AddItem(avail.Product, quantity)
	if err != nil {
		return Item{}, err
	}

	s.settle()
	s.setStatus(StatusSuccess, "Item added to cart")

	return item, nil
}

func (s *Session) Remove(sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalizing {
		return ErrSessionBusy
	}

	s.cart.RemoveItem(sku)
	s.settle()

	return nil
}

func (s *Session) UpdateQuantity(sku string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalizing {
		return ErrSessionBusy
	}

	s.cart.UpdateQuantity(sku, quantity)
	s.settle()

	return nil
}

// Clear empties the cart, cancelling the sale being built.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalizing {
		return ErrSessionBusy
	}

	s.cart.Clear()
	s.settle()
	s.setStatus(StatusIdle, "")

	return nil
}

// CompleteSale finalizes the cart. On success the cart is cleared; on failure
// it is left exactly as it was.
func (s *Session) CompleteSale(ctx context.Context) (*transaction.Transaction, error) {
	s.mu.Lock()
	if s.state == StateFinalizing {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}

	if s.cart.Len() == 0 {
		s.setStatus(StatusError, "Cart is empty")
		s.mu.Unlock()

		return nil, ErrEmptyCart
	}

	items := s.cart.Items()
	s.state = StateFinalizing
	s.setStatus(StatusProcessing, "Processing transaction...")
	s.mu.Unlock()

	tx, err := s.engine.Finalize(ctx, items)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.settle()

		var notFound *ProductNotFoundError
		if errors.As(err, &notFound) {
			s.setStatus(StatusError, fmt.Sprintf("Product %s is no longer available", notFound.SKU))
		} else {
			s.setStatus(StatusError, "Transaction failed. Please try again.")
		}

		return nil, err
	}

	s.cart.Clear()
	s.settle()
	s.setStatus(StatusSuccess, "Transaction completed!")

	return tx, nil
}

func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Items()
}

func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.ComputeTotals(s.cart.items)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Sessions hands out one Session per terminal ID, creating them on first use.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	create   func() *Session
}

func NewSessions(create func() *Session) *Sessions {
	return &Sessions{sessions: make(map[string]*Session), create: create}
}

func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = r.create()
		r.sessions[id] = s
	}

	return s
}
