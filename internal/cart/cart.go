package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// ErrLocked is returned by mutations while an order submission holds the cart
var ErrLocked = errors.New("cart is locked while an order is being submitted")

// LineItem is one distinct dish in the cart
type LineItem struct {
	Dish      models.Dish         `json:"dish"`
	UnitPrice decimal.NullDecimal `json:"unitPrice"`
	Quantity  int                 `json:"quantity"`
}

// Subtotal is UnitPrice × Quantity, with a missing price counting as zero
func (li LineItem) Subtotal() decimal.Decimal {
	if !li.UnitPrice.Valid {
		return decimal.Zero
	}
	return li.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Sum returns the total of items
func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Snapshot is a point-in-time copy of the cart
type Snapshot struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Listener is notified with a snapshot after every change
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store holds the line items of one session and their derived total.
// It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	items  []LineItem
	total  decimal.Decimal
	locked bool

	subs   []subscription
	nextID int
}

// New returns an empty cart
func New() *Store {
	return &Store{
		items: []LineItem{},
		total: decimal.Zero,
	}
}

// AddItem increments the quantity of dish if present, otherwise appends it with quantity 1
func (s *Store) AddItem(dish models.Dish, price decimal.NullDecimal) error {
	return s.mutate(true, func() bool {
		if i := s.indexOf(dish.ID); i >= 0 {
			s.items[i].Quantity++
			return true
		}
		s.items = append(s.items, LineItem{Dish: dish, UnitPrice: price, Quantity: 1})
		return true
	})
}

// UpdateQuantity sets the quantity of dishID. Quantities below 1 and unknown ids are ignored.
func (s *Store) UpdateQuantity(dishID int64, quantity int) error {
	return s.mutate(true, func() bool {
		if quantity < 1 {
			return false
		}
		i := s.indexOf(dishID)
		if i < 0 || s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

// RemoveItem deletes the line for dishID if present
func (s *Store) RemoveItem(dishID int64) error {
	return s.mutate(true, func() bool {
		i := s.indexOf(dishID)
		if i < 0 {
			return false
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	})
}

// Clear empties the cart. It is permitted while the cart is locked.
func (s *Store) Clear() {
	_ = s.mutate(false, func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = []LineItem{}
		return true
	})
}

// Lock blocks AddItem, UpdateQuantity and RemoveItem until Unlock.
// It returns false if the cart is already locked.
func (s *Store) Lock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return false
	}
	s.locked = true
	return true
}

// Unlock releases a lock taken by Lock
func (s *Store) Unlock() {
	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
}

// Locked reports whether a submission holds the cart
func (s *Store) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Total returns the derived total
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Len returns the number of distinct dishes
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns items and total read under the same lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Items: s.copyItems(), Total: s.total}
}

// Subscribe registers fn for change notifications. The returned func cancels it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// mutate applies fn under the mutex, recomputes the total when fn reports a
// change and notifies listeners outside the mutex.
func (s *Store) mutate(respectLock bool, fn func() bool) error {
	s.mu.Lock()
	if respectLock && s.locked {
		s.mu.Unlock()
		return ErrLocked
	}
	if !fn() {
		s.mu.Unlock()
		return nil
	}
	s.total = Sum(s.items)
	snap := Snapshot{Items: s.copyItems(), Total: s.total}
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

func (s *Store) indexOf(dishID int64) int {
	for i := range s.items {
		if s.items[i].Dish.ID == dishID {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}
