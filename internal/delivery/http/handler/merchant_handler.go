package handler

import (
	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/merchant"

	"github.com/gofiber/fiber/v3"
)

type MerchantHandler struct {
	svc *merchant.Service
}

func NewMerchantHandler(svc *merchant.Service) *MerchantHandler {
	return &MerchantHandler{svc: svc}
}

// RegisterPublicRoutes expects r to run the optional auth middleware so owners
// see their own off-shelf products.
func (h *MerchantHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/merchants", h.List)
	r.Get("/merchants/:id", h.Get)
	r.Get("/merchants/:id/products", h.ListProducts)
	r.Get("/products/:id", h.GetProduct)
}

func (h *MerchantHandler) RegisterRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/merchants", h.Register)
	r.Put("/merchants/:id", audit("merchant.update"), h.Update)
	r.Delete("/merchants/:id", audit("merchant.delete"), h.Delete)
	r.Post("/merchants/:id/products", h.AddProduct)
	r.Put("/products/:id", audit("product.update"), h.UpdateProduct)
	r.Delete("/products/:id", audit("product.delete"), h.DeleteProduct)
}

func (h *MerchantHandler) RegisterMeRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/merchants", h.ListMine)
}

func (h *MerchantHandler) Register(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.MerchantRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	m, err := h.svc.Register(c.Context(), actor.ID, merchantInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewMerchantResponse(m))
}

func (h *MerchantHandler) List(c fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.List(c.Context(), c.Query("keyword"), limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewMerchantResponses(items), limit, offset)
}

func (h *MerchantHandler) ListMine(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListMine(c.Context(), actor.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMerchantResponses(items))
}

func (h *MerchantHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	m, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMerchantResponse(m))
}

func (h *MerchantHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.MerchantRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	m, err := h.svc.Update(c.Context(), actor, id, merchantInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMerchantResponse(m))
}

func (h *MerchantHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *MerchantHandler) AddProduct(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	merchantID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.svc.AddProduct(c.Context(), actor, merchantID, productInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewProductResponse(p))
}

func (h *MerchantHandler) ListProducts(c fiber.Ctx) error {
	merchantID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListProducts(c.Context(), optionalActor(c), merchantID, limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewProductResponses(items), limit, offset)
}

func (h *MerchantHandler) GetProduct(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	p, err := h.svc.GetProduct(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProductResponse(p))
}

func (h *MerchantHandler) UpdateProduct(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.svc.UpdateProduct(c.Context(), actor, id, productInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProductResponse(p))
}

func (h *MerchantHandler) DeleteProduct(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteProduct(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func merchantInput(req dto.MerchantRequest) merchant.MerchantInput {
	return merchant.MerchantInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Active:      req.Active,
	}
}

func productInput(req dto.ProductRequest) merchant.ProductInput {
	return merchant.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Status:      req.Status,
	}
}
