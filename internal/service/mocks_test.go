package service

import (
	"context"
	"sort"
	"sync"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/repository"

	"github.com/google/uuid"
)

type mockProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
	err      error
}

func newMockProductRepository(products ...domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[string]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; exists {
		return repository.ErrProductAlreadyExists
	}
	m.products[product.ID] = product.Clone()
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product.Clone()
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	c := p.Clone()
	return &c, nil
}

// sorted mirrors the repository order: newest first, then id.
func (m *mockProductRepository) sorted(keep func(domain.Product) bool) []domain.Product {
	out := []domain.Product{}
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(domain.Product) bool { return true }), nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(p domain.Product) bool { return p.Category == category }), nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.products), nil
}

type mockPromotionRepository struct {
	mu         sync.Mutex
	promotions []domain.Promotion
	err        error
}

func (m *mockPromotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions = append([]domain.Promotion{*promotion}, m.promotions...)
	return nil
}

func (m *mockPromotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.promotions {
		if m.promotions[i].ID == promotion.ID {
			m.promotions[i] = *promotion
			return nil
		}
	}
	return repository.ErrPromotionNotFound
}

func (m *mockPromotionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.promotions {
		if m.promotions[i].ID == id {
			m.promotions = append(m.promotions[:i], m.promotions[i+1:]...)
			return nil
		}
	}
	return repository.ErrPromotionNotFound
}

func (m *mockPromotionRepository) FindByID(ctx context.Context, id string) (*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.promotions {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrPromotionNotFound
}

func (m *mockPromotionRepository) filter(keep func(domain.Promotion) bool) ([]domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Promotion{}
	for _, p := range m.promotions {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPromotionRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	return m.filter(func(domain.Promotion) bool { return true })
}

func (m *mockPromotionRepository) ListEnabled(ctx context.Context) ([]domain.Promotion, error) {
	return m.filter(func(p domain.Promotion) bool { return p.IsActive })
}

func (m *mockPromotionRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Promotion, error) {
	return m.filter(func(p domain.Promotion) bool { return p.ProductID == productID })
}

type mockAdminRepository struct {
	admins map[string]*domain.Admin
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{admins: make(map[string]*domain.Admin)}
}

func (m *mockAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	if _, exists := m.admins[admin.Username]; exists {
		return repository.ErrAdminAlreadyExists
	}
	m.admins[admin.Username] = admin
	return nil
}

func (m *mockAdminRepository) FindByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	admin, exists := m.admins[username]
	if !exists {
		return nil, repository.ErrAdminNotFound
	}
	return admin, nil
}

func (m *mockAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	for _, admin := range m.admins {
		if admin.ID == id {
			return admin, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

type mockSessionRepository struct {
	sessions map[string]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *mockSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	session, exists := m.sessions[token]
	if !exists {
		return nil, repository.ErrSessionNotFound
	}
	if session.Revoked {
		return nil, repository.ErrSessionRevoked
	}
	return session, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, token string) error {
	session, exists := m.sessions[token]
	if !exists {
		return repository.ErrSessionNotFound
	}
	session.Revoked = true
	return nil
}
