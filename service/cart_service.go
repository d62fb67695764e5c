package service

import (
	"log"
	"sync"
	"time"

	"ekta-storefront/models"
)

// CartStore holds the line items of one session's cart.
// Memory only; totals are recomputed on every read.
type CartStore struct {
	mu     sync.RWMutex
	lines  []models.CartLine
	isOpen bool
}

// NewCartStore creates an empty CartStore
func NewCartStore() *CartStore {
	return &CartStore{}
}

func (c *CartStore) indexOf(productID, size, color string) int {
	for i, line := range c.lines {
		if line.Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

// AddToCart increments the matching line or appends a new one with quantity 1,
// then opens the cart drawer
func (c *CartStore) AddToCart(product models.Product, size, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(product.ID, size, color); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, models.CartLine{
			Product:  product,
			Size:     size,
			Color:    color,
			Quantity: 1,
		})
	}
	c.isOpen = true
}

// RemoveFromCart deletes the matching line; no-op when absent
func (c *CartStore) RemoveFromCart(productID, size, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID, size, color)
}

func (c *CartStore) removeLocked(productID, size, color string) {
	if i := c.indexOf(productID, size, color); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity replaces a line's quantity; quantity <= 0 removes the line
func (c *CartStore) UpdateQuantity(productID, size, color string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(productID, size, color)
		return
	}
	if i := c.indexOf(productID, size, color); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// ClearCart empties all lines
func (c *CartStore) ClearCart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Items returns a copy of the lines in insertion order
func (c *CartStore) Items() []models.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems is the sum of all line quantities
func (c *CartStore) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the sum of quantity × unit price over all lines
func (c *CartStore) TotalPrice() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, line := range c.lines {
		total += int64(line.Quantity) * line.Product.Price
	}
	return total
}

// IsOpen reports the cart drawer visibility
func (c *CartStore) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isOpen
}

// SetOpen changes the cart drawer visibility
func (c *CartStore) SetOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isOpen = open
}

// Snapshot returns the cart as served by the API
func (c *CartStore) Snapshot() models.CartResponse {
	return models.CartResponse{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		IsOpen:     c.IsOpen(),
	}
}

type cartEntry struct {
	cart     *CartStore
	lastSeen time.Time
}

// CartRegistry hands out one CartStore per session, created on first use
type CartRegistry struct {
	mu    sync.Mutex
	carts map[string]*cartEntry
	now   func() time.Time
}

// NewCartRegistry creates an empty CartRegistry
func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[string]*cartEntry), now: time.Now}
}

// For returns the cart of sessionID
func (r *CartRegistry) For(sessionID string) *CartStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.carts[sessionID]
	if !ok {
		e = &cartEntry{cart: NewCartStore()}
		r.carts[sessionID] = e
		log.Printf("🛒 New cart for session %s", sessionID)
	}
	e.lastSeen = r.now()
	return e.cart
}

// Evict drops carts not requested for longer than idle and returns how many were dropped
func (r *CartRegistry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for id, e := range r.carts {
		if e.lastSeen.Before(cutoff) {
			delete(r.carts, id)
			n++
		}
	}
	return n
}

// Len is the number of carts held in memory
func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
