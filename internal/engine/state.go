package engine

import (
	"sync"

	"github.com/ballop/merchplan/internal/models"
)

// State holds the local mirrors of the remote store: the product
// collection, the brand registry, and the resolved account. The engine is
// its sole writer while attached; the mutation pipeline while not.
type State struct {
	mu       sync.RWMutex
	products []models.Product
	brands   []string
	account  *models.Account
}

// NewState returns a State seeded with the static local collection.
func NewState() *State {
	return &State{
		products: models.SeedProducts(),
		brands:   append([]string(nil), models.DefaultBrands...),
	}
}

// Products returns a copy of the product mirror.
func (s *State) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Product looks a product up by identifier.
func (s *State) Product(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// SetProducts replaces the product mirror wholesale.
func (s *State) SetProducts(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

// UpsertProduct replaces the product with the same identifier, or appends.
func (s *State) UpsertProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}

// RemoveProduct filters the product out of the mirror and reports whether
// it was present.
func (s *State) RemoveProduct(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return true
		}
	}
	return false
}

// Brands returns a copy of the brand registry mirror.
func (s *State) Brands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.brands...)
}

// SetBrands replaces the brand registry mirror.
func (s *State) SetBrands(brands []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands = brands
}

// Account returns the resolved account, if any.
func (s *State) Account() (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return models.Account{}, false
	}
	return *s.account, true
}

// SetAccount replaces the account mirror; nil clears it.
func (s *State) SetAccount(a *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a == nil {
		s.account = nil
		return
	}
	cp := *a
	s.account = &cp
}
