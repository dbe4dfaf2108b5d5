package transport

import (
	"context"
	"sort"
	"sync"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/repository"

	"github.com/google/uuid"
)

type memProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
	err      error
}

func newMemProductRepository() *memProductRepository {
	return &memProductRepository{products: make(map[string]domain.Product)}
}

func (m *memProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; exists {
		return repository.ErrProductAlreadyExists
	}
	m.products[product.ID] = product.Clone()
	return nil
}

func (m *memProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product.Clone()
	return nil
}

func (m *memProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
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

func (m *memProductRepository) list(keep func(domain.Product) bool) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
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
	return out, nil
}

func (m *memProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return m.list(func(domain.Product) bool { return true })
}

func (m *memProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return m.list(func(p domain.Product) bool { return p.Category == category })
}

func (m *memProductRepository) Count(ctx context.Context) (int, error) {
	products, err := m.List(ctx)
	return len(products), err
}

type memPromotionRepository struct {
	mu         sync.Mutex
	promotions []domain.Promotion
}

func (m *memPromotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions = append([]domain.Promotion{*promotion}, m.promotions...)
	return nil
}

func (m *memPromotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
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

func (m *memPromotionRepository) Delete(ctx context.Context, id string) error {
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

func (m *memPromotionRepository) FindByID(ctx context.Context, id string) (*domain.Promotion, error) {
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

func (m *memPromotionRepository) filter(keep func(domain.Promotion) bool) ([]domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Promotion{}
	for _, p := range m.promotions {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPromotionRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	return m.filter(func(domain.Promotion) bool { return true })
}

func (m *memPromotionRepository) ListEnabled(ctx context.Context) ([]domain.Promotion, error) {
	return m.filter(func(p domain.Promotion) bool { return p.IsActive })
}

func (m *memPromotionRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Promotion, error) {
	return m.filter(func(p domain.Promotion) bool { return p.ProductID == productID })
}

type memAdminRepository struct {
	mu     sync.Mutex
	admins map[string]*domain.Admin
}

func (m *memAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.admins[admin.Username]; exists {
		return repository.ErrAdminAlreadyExists
	}
	m.admins[admin.Username] = admin
	return nil
}

func (m *memAdminRepository) FindByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if admin, exists := m.admins[username]; exists {
		return admin, nil
	}
	return nil, repository.ErrAdminNotFound
}

func (m *memAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if admin.ID == id {
			return admin, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

type memSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func (m *memSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return nil
}

func (m *memSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[token]
	if !exists {
		return nil, repository.ErrSessionNotFound
	}
	if session.Revoked {
		return nil, repository.ErrSessionRevoked
	}
	return session, nil
}

func (m *memSessionRepository) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[token]
	if !exists {
		return repository.ErrSessionNotFound
	}
	session.Revoked = true
	return nil
}

type memEventRepository struct {
	mu     sync.Mutex
	stored []domain.Event
}

func (m *memEventRepository) Append(ctx context.Context, events []domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, events...)
	return nil
}

func (m *memEventRepository) Aggregate(ctx context.Context) (*domain.EventAggregate, error) {
	return &domain.EventAggregate{Totals: map[domain.EventType]int{}}, nil
}

func (m *memEventRepository) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }
