package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"storefront/internal/backend"
)

// cartServer is a scripted backend cart: it applies mutations to an in-memory
// line map and serves the result on GET /cart, mirroring how the real API
// owns the authoritative cart.
type cartServer struct {
	mu    sync.Mutex
	lines map[string]int // productID -> qty
	stock map[string]int
	price map[string]float64

	calls []string
	fail  map[string]int // "METHOD /path" -> status to return
}

func newCartServer() *cartServer {
	return &cartServer{
		lines: map[string]int{},
		stock: map[string]int{"p1": 5, "p2": 2},
		price: map[string]float64{"p1": 10, "p2": 25},
		fail:  map[string]int{},
	}
}

func (cs *cartServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		key := r.Method + " " + r.URL.Path
		cs.calls = append(cs.calls, key)
		if status, ok := cs.fail[key]; ok {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"scripted failure"}`))
			return
		}
		switch {
		case key == "GET /cart":
			cs.writeCart(w)
		case key == "POST /cart/add":
			var in struct {
				ProductID string `json:"productId"`
				Quantity  int    `json:"quantity"`
			}
			json.NewDecoder(r.Body).Decode(&in)
			if cs.lines[in.ProductID]+in.Quantity > cs.stock[in.ProductID] {
				w.WriteHeader(400)
				w.Write([]byte(`{"message":"Insufficient stock"}`))
				return
			}
			cs.lines[in.ProductID] += in.Quantity
			cs.writeCart(w)
		case key == "PUT /cart/update":
			var in struct {
				ProductID string `json:"productId"`
				Quantity  int    `json:"quantity"`
			}
			json.NewDecoder(r.Body).Decode(&in)
			cs.lines[in.ProductID] = in.Quantity
			cs.writeCart(w)
		case strings.HasPrefix(key, "DELETE /cart/remove/"):
			id := strings.TrimPrefix(r.URL.Path, "/cart/remove/")
			if _, ok := cs.lines[id]; !ok {
				w.WriteHeader(404)
				w.Write([]byte(`{"message":"not in cart"}`))
				return
			}
			delete(cs.lines, id)
			cs.writeCart(w)
		case key == "DELETE /cart/clear":
			cs.lines = map[string]int{}
			cs.writeCart(w)
		default:
			w.WriteHeader(404)
		}
	})
}

func (cs *cartServer) writeCart(w http.ResponseWriter) {
	items := make([]map[string]any, 0, len(cs.lines))
	for id, qty := range cs.lines {
		items = append(items, map[string]any{
			"product":  map[string]any{"id": id, "name": id, "price": cs.price[id], "stock": cs.stock[id]},
			"quantity": qty,
		})
	}
	json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"items": items}})
}

func (cs *cartServer) callCount(key string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	n := 0
	for _, c := range cs.calls {
		if c == key {
			n++
		}
	}
	return n
}

func newTestStore(t *testing.T) (*Store, *cartServer, func()) {
	t.Helper()
	cs := newCartServer()
	srv := httptest.NewServer(cs.handler())
	return NewStore(backend.New(srv.URL)), cs, srv.Close
}

func TestAddReloadsAuthoritativeCart(t *testing.T) {
	store, cs, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	st := store.Get("sid")
	if st.ItemCount != 2 || st.Total != 20 {
		t.Errorf("state = %+v", st)
	}
	if err := store.Add(ctx, "sid", "tok", "p2", 1); err != nil {
		t.Fatalf("add second: %v", err)
	}
	st = store.Get("sid")
	if st.ItemCount != 3 || st.Total != 45 {
		t.Errorf("state after second add = %+v", st)
	}
	// every add is followed by a full reload
	if got := cs.callCount("GET /cart"); got != 2 {
		t.Errorf("GET /cart called %d times, want 2", got)
	}
}

func TestAddQuantityFloorSkipsNetwork(t *testing.T) {
	store, cs, done := newTestStore(t)
	defer done()

	if err := store.Add(context.Background(), "sid", "tok", "p1", 0); !errors.Is(err, ErrQuantityFloor) {
		t.Fatalf("err = %v, want ErrQuantityFloor", err)
	}
	if len(cs.calls) != 0 {
		t.Errorf("network called for qty 0: %v", cs.calls)
	}
}

func TestAddPastStockCeiling(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p2", 2); err != nil {
		t.Fatal(err)
	}
	// p2 stock is 2; the cached line blocks the third locally
	if err := store.Add(ctx, "sid", "tok", "p2", 1); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("err = %v, want ErrInsufficientStock", err)
	}
	if st := store.Get("sid"); st.ItemCount != 2 {
		t.Errorf("count changed on rejected add: %+v", st)
	}
}

func TestUpdateRecomputesTotals(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p1", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateItem(ctx, "sid", "tok", "p1", 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	st := store.Get("sid")
	if st.ItemCount != 4 || st.Total != 40 {
		t.Errorf("state = %+v, want count 4 total 40", st)
	}
}

func TestUpdateFloorNeverReachesNetwork(t *testing.T) {
	store, cs, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p1", 2); err != nil {
		t.Fatal(err)
	}
	before := len(cs.calls)
	if err := store.UpdateItem(ctx, "sid", "tok", "p1", 0); !errors.Is(err, ErrQuantityFloor) {
		t.Fatalf("err = %v, want ErrQuantityFloor", err)
	}
	if len(cs.calls) != before {
		t.Error("rejected quantity still produced a network call")
	}
	if st := store.Get("sid"); st.ItemCount != 2 {
		t.Errorf("local state changed: %+v", st)
	}
}

// A failed update must not leave the optimistic value behind: the
// authoritative cart is re-fetched.
func TestFailedUpdateRefetchesAuthoritative(t *testing.T) {
	store, cs, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p1", 2); err != nil {
		t.Fatal(err)
	}
	cs.mu.Lock()
	cs.fail["PUT /cart/update"] = 500
	cs.mu.Unlock()

	if err := store.UpdateItem(ctx, "sid", "tok", "p1", 4); err == nil {
		t.Fatal("expected error from scripted 500")
	}
	st := store.Get("sid")
	if st.ItemCount != 2 || st.Total != 20 {
		t.Errorf("state after failed update = %+v, want server truth (2 items)", st)
	}
}

// Removing an item the server no longer has is success: the goal state is
// "not in cart" either way.
func TestRemoveIsIdempotent(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p1", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, "sid", "tok", "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, "sid", "tok", "p1"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if st := store.Get("sid"); st.ItemCount != 0 || len(st.Items) != 0 {
		t.Errorf("state = %+v", st)
	}
}

func TestRemoveRecomputesCountFromItems(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	// 3 of p1, 1 of p2; removing the p1 line drops the count by 3, not 1
	if err := store.Add(ctx, "sid", "tok", "p1", 3); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, "sid", "tok", "p2", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, "sid", "tok", "p1"); err != nil {
		t.Fatal(err)
	}
	st := store.Get("sid")
	if st.ItemCount != 1 || st.Total != 25 {
		t.Errorf("state = %+v, want count 1 total 25", st)
	}
}

func TestClearThenLoadIsEmpty(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid", "tok", "p1", 2); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx, "sid", "tok"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	st, err := store.Load(ctx, "sid", "tok")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st.Items) != 0 || st.Total != 0 || st.ItemCount != 0 {
		t.Errorf("state after clear = %+v", st)
	}
}

func TestDropIsolatesSessions(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Add(ctx, "sid-a", "tok", "p1", 1); err != nil {
		t.Fatal(err)
	}
	store.Drop("sid-a")
	if st := store.Get("sid-a"); st.ItemCount != 0 {
		t.Errorf("state survived Drop: %+v", st)
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("sid-%d", i%2)
			_ = store.Add(ctx, sid, "tok", "p1", 1)
			_ = store.Get(sid)
		}(i)
	}
	wg.Wait()
}
