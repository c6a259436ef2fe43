package cart

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/backend"
)

var (
	// ErrQuantityFloor rejects quantities below 1 before any network call.
	ErrQuantityFloor = errors.New("quantity must be at least 1")
	// ErrInsufficientStock rejects additions past the known stock ceiling.
	ErrInsufficientStock = errors.New("not enough stock for this product")
)

// State is the locally cached cart. The backend owns the authoritative cart;
// this copy is replaced wholesale by Load and recomputed from the item list
// after every local mutation, never adjusted with incremental arithmetic.
type State struct {
	Items     []backend.CartItem
	Total     float64
	ItemCount int
}

// Store keeps one State per authenticated session. It registers itself on
// the session store so a session ending drops its cart synchronously.
type Store struct {
	api *backend.Client

	mu    sync.RWMutex
	bySID map[string]State
}

func NewStore(api *backend.Client) *Store {
	return &Store{api: api, bySID: make(map[string]State)}
}

// Drop discards local state for a session. Wired to session.Store.OnEnd.
func (s *Store) Drop(sid string) {
	s.mu.Lock()
	delete(s.bySID, sid)
	s.mu.Unlock()
}

func (s *Store) Get(sid string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySID[sid]
}

func (s *Store) set(sid string, items []backend.CartItem) State {
	st := State{Items: items}
	for _, it := range items {
		st.Total += it.Subtotal()
		st.ItemCount += it.Quantity
	}
	s.mu.Lock()
	s.bySID[sid] = st
	s.mu.Unlock()
	return st
}

// Load replaces local state with the authoritative cart.
func (s *Store) Load(ctx context.Context, sid, token string) (State, error) {
	cart, err := s.api.GetCart(ctx, token)
	if err != nil {
		return s.Get(sid), err
	}
	return s.set(sid, cart.Items), nil
}

// Add sends the add and reloads the full cart rather than merging
// optimistically: the extra round trip buys consistency with authoritative
// stock and pricing. The stock ceiling is checked locally first when the
// product is already in the cached cart.
func (s *Store) Add(ctx context.Context, sid, token, productID string, qty int) error {
	if qty < 1 {
		return ErrQuantityFloor
	}
	if it, ok := s.item(sid, productID); ok && it.Product.Stock > 0 && it.Quantity+qty > it.Product.Stock {
		return ErrInsufficientStock
	}
	if err := s.api.AddToCart(ctx, token, productID, qty); err != nil {
		return err
	}
	_, err := s.Load(ctx, sid, token)
	return err
}

// UpdateItem changes a line quantity. Quantities below 1 never reach the
// network. On success the confirmed quantity is applied locally and totals
// recomputed; on failure the authoritative cart is re-fetched so local state
// cannot silently diverge.
func (s *Store) UpdateItem(ctx context.Context, sid, token, productID string, qty int) error {
	if qty < 1 {
		return ErrQuantityFloor
	}
	if it, ok := s.item(sid, productID); ok && it.Product.Stock > 0 && qty > it.Product.Stock {
		return ErrInsufficientStock
	}
	if err := s.api.UpdateCartItem(ctx, token, productID, qty); err != nil {
		if _, lerr := s.Load(ctx, sid, token); lerr != nil {
			s.Drop(sid)
		}
		return err
	}
	st := s.Get(sid)
	items := make([]backend.CartItem, len(st.Items))
	copy(items, st.Items)
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity = qty
		}
	}
	s.set(sid, items)
	return nil
}

// Remove drops a line after server confirmation. The backend treats removing
// an absent product as success, and so do we: a 404 here means the item is
// already gone.
func (s *Store) Remove(ctx context.Context, sid, token, productID string) error {
	if err := s.api.RemoveFromCart(ctx, token, productID); err != nil && !errors.Is(err, backend.ErrNotFound) {
		return err
	}
	st := s.Get(sid)
	items := st.Items[:0:0]
	for _, it := range st.Items {
		if it.Product.ID != productID {
			items = append(items, it)
		}
	}
	s.set(sid, items)
	return nil
}

// Clear empties the cart; local state is cleared only after the server
// confirms. The view layer is responsible for asking the user first.
func (s *Store) Clear(ctx context.Context, sid, token string) error {
	if err := s.api.ClearCart(ctx, token); err != nil {
		return err
	}
	s.set(sid, nil)
	return nil
}

func (s *Store) item(sid, productID string) (backend.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.bySID[sid].Items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return backend.CartItem{}, false
}
