package merchant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unimarket/internal/domain"
	"unimarket/internal/domain/merchant"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/text"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrMerchantNotFound = domain.NotFound("Merchant not found")
	ErrProductNotFound  = domain.NotFound("Product not found")
	ErrSlugTaken        = domain.Rule("Merchant name already taken")
	ErrNotOwner         = domain.Forbidden("Only the merchant owner can do this")
	ErrInvalidStatus    = domain.Rule("Product status must be ON_SALE or OFF_SHELF")
	ErrNegativePrice    = domain.Rule("Price must not be negative")
	ErrNegativeStock    = domain.Rule("Stock must not be negative")
	ErrMerchantInactive = domain.Rule("Merchant is not active")
)

type MerchantInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
	Active      *bool
}

type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Status      string
}

type Service struct {
	merchants repository.MerchantRepository
	products  repository.ProductRepository
}

func NewService(merchants repository.MerchantRepository, products repository.ProductRepository) *Service {
	return &Service{merchants: merchants, products: products}
}

// Register creates a merchant owned by the caller, who gains the MERCHANT role.
func (s *Service) Register(ctx context.Context, ownerID uuid.UUID, in MerchantInput) (merchant.Merchant, error) {
	name := strings.TrimSpace(in.Name)
	m := merchant.Merchant{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Slug:        text.Slug(name),
		Description: text.Plain(in.Description),
		Address:     strings.TrimSpace(in.Address),
		Phone:       strings.TrimSpace(in.Phone),
		Active:      true,
	}
	if err := s.merchants.CreateWithOwnerRole(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return merchant.Merchant{}, ErrSlugTaken
		}
		return merchant.Merchant{}, fmt.Errorf("create merchant: %w", err)
	}
	return s.Get(ctx, m.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (merchant.Merchant, error) {
	m, err := s.merchants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMerchantNotFound) {
			return merchant.Merchant{}, ErrMerchantNotFound
		}
		return merchant.Merchant{}, fmt.Errorf("load merchant: %w", err)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, keyword string, limit, offset int) ([]merchant.Merchant, error) {
	out, err := s.merchants.List(ctx, keyword, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	return out, nil
}

func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]merchant.Merchant, error) {
	out, err := s.merchants.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list own merchants: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor user.Actor, id uuid.UUID, in MerchantInput) (merchant.Merchant, error) {
	m, err := s.owned(ctx, actor, id)
	if err != nil {
		return merchant.Merchant{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		m.Name = name
	}
	m.Description = text.Plain(in.Description)
	m.Address = strings.TrimSpace(in.Address)
	m.Phone = strings.TrimSpace(in.Phone)
	if in.Active != nil {
		m.Active = *in.Active
	}
	if err := s.merchants.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrMerchantNotFound) {
			return merchant.Merchant{}, ErrMerchantNotFound
		}
		return merchant.Merchant{}, fmt.Errorf("update merchant: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.merchants.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMerchantNotFound) {
			return ErrMerchantNotFound
		}
		return fmt.Errorf("delete merchant: %w", err)
	}
	return nil
}

func (s *Service) AddProduct(ctx context.Context, actor user.Actor, merchantID uuid.UUID, in ProductInput) (merchant.Product, error) {
	m, err := s.owned(ctx, actor, merchantID)
	if err != nil {
		return merchant.Product{}, err
	}
	if !m.Active {
		return merchant.Product{}, ErrMerchantInactive
	}
	p := merchant.Product{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Status:     merchant.ProductOnSale,
	}
	if err := applyProductInput(&p, in); err != nil {
		return merchant.Product{}, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrMerchantNotFound) {
			return merchant.Product{}, ErrMerchantNotFound
		}
		return merchant.Product{}, fmt.Errorf("create product: %w", err)
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (merchant.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return merchant.Product{}, ErrProductNotFound
		}
		return merchant.Product{}, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

// ListProducts shows only ON_SALE products unless the caller manages the merchant.
func (s *Service) ListProducts(ctx context.Context, actor *user.Actor, merchantID uuid.UUID, limit, offset int) ([]merchant.Product, error) {
	m, err := s.Get(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	onlyOnSale := actor == nil || !(actor.IsAdmin() || actor.ID == m.OwnerID)
	out, err := s.products.ListByMerchant(ctx, merchantID, onlyOnSale, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, actor user.Actor, id uuid.UUID, in ProductInput) (merchant.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return merchant.Product{}, err
	}
	if _, err := s.owned(ctx, actor, p.MerchantID); err != nil {
		return merchant.Product{}, err
	}
	if err := applyProductInput(&p, in); err != nil {
		return merchant.Product{}, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return merchant.Product{}, ErrProductNotFound
		}
		return merchant.Product{}, fmt.Errorf("update product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.owned(ctx, actor, p.MerchantID); err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, actor user.Actor, merchantID uuid.UUID) (merchant.Merchant, error) {
	m, err := s.Get(ctx, merchantID)
	if err != nil {
		return merchant.Merchant{}, err
	}
	if !actor.IsAdmin() && m.OwnerID != actor.ID {
		return merchant.Merchant{}, ErrNotOwner
	}
	return m, nil
}

func applyProductInput(p *merchant.Product, in ProductInput) error {
	if in.PriceCents < 0 {
		return ErrNegativePrice
	}
	if in.Stock < 0 {
		return ErrNegativeStock
	}
	if in.Status != "" {
		status := strings.ToUpper(strings.TrimSpace(in.Status))
		if !merchant.ValidProductStatus(status) {
			return ErrInvalidStatus
		}
		p.Status = status
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	p.Description = text.Plain(in.Description)
	p.PriceCents = in.PriceCents
	p.Stock = in.Stock
	return nil
}
