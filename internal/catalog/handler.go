package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/rbac"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Handler exposes catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermProductsView))
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.showProduct)
		r.Get("/products/{id}/recipe/{kind}", h.showRecipe)
		r.Get("/products/{id}/sizes", h.showSizes)
		r.Get("/components/{kind}", h.listComponents)
		r.Get("/components/{kind}/{id}", h.showComponent)
		r.Get("/units", h.listUnits)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermProductsManage))
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Put("/products/{id}/recipe/{kind}", h.replaceRecipe)
		r.Put("/products/{id}/sizes", h.replaceSizes)
		r.Post("/components/{kind}", h.createComponent)
		r.Put("/components/{kind}/{id}", h.updateComponent)
		r.Delete("/components/{kind}/{id}", h.deleteComponent)
		r.Post("/units", h.createUnit)
		r.Delete("/units/{id}", h.deleteUnit)
	})
}

type productForm struct {
	Name           string  `json:"name" validate:"required,max=200"`
	HasIngredients bool    `json:"has_ingredients"`
	HasConsumables bool    `json:"has_consumables"`
	HasSizes       bool    `json:"has_sizes"`
	Quantity       float64 `json:"quantity" validate:"gte=0"`
	CostPrice      float64 `json:"cost_price" validate:"gte=0"`
	SellingPrice   float64 `json:"selling_price" validate:"gte=0"`
}

type componentForm struct {
	Name   string  `json:"name" validate:"required,max=200"`
	UnitID int64   `json:"unit_id" validate:"gte=0"`
	Price  float64 `json:"price" validate:"gte=0"`
}

type unitForm struct {
	Name         string `json:"name" validate:"required,max=50"`
	Abbreviation string `json:"abbreviation" validate:"max=10"`
}

type recipeForm struct {
	Requirements []recipeEdge `json:"requirements" validate:"dive"`
}

type recipeEdge struct {
	ComponentID int64   `json:"component_id" validate:"required,gt=0"`
	Quantity    float64 `json:"quantity"`
	UnitID      int64   `json:"unit_id" validate:"gte=0"`
}

type sizesForm struct {
	Sizes []sizeEdge `json:"sizes" validate:"dive"`
}

type sizeEdge struct {
	Name         string  `json:"name" validate:"required,max=100"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*shared.Actor, bool) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	return actor, true
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func pathKind(r *http.Request) (ComponentKind, bool) {
	kind := ComponentKind(chi.URLParam(r, "kind"))
	return kind, ValidComponentKind(kind)
}

func listFilterFrom(r *http.Request) ListFilter {
	filter := ListFilter{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}
	return filter
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateName):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrSizesDisabled):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("catalog operation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var form productForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	product, err := h.service.CreateProduct(r.Context(), Product{
		BusinessID:     actor.BusinessID,
		Name:           form.Name,
		HasIngredients: form.HasIngredients,
		HasConsumables: form.HasConsumables,
		HasSizes:       form.HasSizes,
		Quantity:       form.Quantity,
		CostPrice:      form.CostPrice,
		SellingPrice:   form.SellingPrice,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	product, err := h.service.GetProduct(r.Context(), actor.BusinessID, id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	products, err := h.service.ListProducts(r.Context(), actor.BusinessID, listFilterFrom(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	var form productForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), Product{
		ID:             id,
		BusinessID:     actor.BusinessID,
		Name:           form.Name,
		HasIngredients: form.HasIngredients,
		HasConsumables: form.HasConsumables,
		HasSizes:       form.HasSizes,
		Quantity:       form.Quantity,
		CostPrice:      form.CostPrice,
		SellingPrice:   form.SellingPrice,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	if err := h.service.DeleteProduct(r.Context(), actor.BusinessID, id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) showRecipe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	kind, valid := pathKind(r)
	if !valid || kind == KindAddon {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "recipe kind must be ingredient or consumable")
		return
	}
	requirements, err := h.service.Recipe(r.Context(), actor.BusinessID, id, kind)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requirements": requirements})
}

func (h *Handler) replaceRecipe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	kind, valid := pathKind(r)
	if !valid || kind == KindAddon {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "recipe kind must be ingredient or consumable")
		return
	}
	var form recipeForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	inputs := make([]RequirementInput, 0, len(form.Requirements))
	for _, edge := range form.Requirements {
		inputs = append(inputs, RequirementInput{
			ComponentID: edge.ComponentID,
			Quantity:    edge.Quantity,
			UnitID:      edge.UnitID,
		})
	}
	if err := h.service.ReplaceRecipe(r.Context(), actor.BusinessID, id, kind, inputs); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) showSizes(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	sizes, err := h.service.Sizes(r.Context(), actor.BusinessID, id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sizes": sizes})
}

func (h *Handler) replaceSizes(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be numeric")
		return
	}
	var form sizesForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	inputs := make([]ProductSizeInput, 0, len(form.Sizes))
	for _, edge := range form.Sizes {
		inputs = append(inputs, ProductSizeInput{
			Name:         edge.Name,
			CostPrice:    edge.CostPrice,
			SellingPrice: edge.SellingPrice,
		})
	}
	if err := h.service.ReplaceSizes(r.Context(), actor.BusinessID, id, inputs); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createComponent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind, valid := pathKind(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "unknown component kind")
		return
	}
	var form componentForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	component, err := h.service.CreateComponent(r.Context(), Component{
		BusinessID: actor.BusinessID,
		Kind:       kind,
		Name:       form.Name,
		UnitID:     form.UnitID,
		Price:      form.Price,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, component)
}

func (h *Handler) showComponent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind, valid := pathKind(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "unknown component kind")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Component", "component id must be numeric")
		return
	}
	component, err := h.service.GetComponent(r.Context(), actor.BusinessID, kind, id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, component)
}

func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind, valid := pathKind(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "unknown component kind")
		return
	}
	components, err := h.service.ListComponents(r.Context(), actor.BusinessID, kind, listFilterFrom(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"components": components})
}

func (h *Handler) updateComponent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind, valid := pathKind(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "unknown component kind")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Component", "component id must be numeric")
		return
	}
	var form componentForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	component, err := h.service.UpdateComponent(r.Context(), Component{
		ID:         id,
		BusinessID: actor.BusinessID,
		Kind:       kind,
		Name:       form.Name,
		UnitID:     form.UnitID,
		Price:      form.Price,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, component)
}

func (h *Handler) deleteComponent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind, valid := pathKind(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "unknown component kind")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Component", "component id must be numeric")
		return
	}
	if err := h.service.DeleteComponent(r.Context(), actor.BusinessID, kind, id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createUnit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var form unitForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	unit, err := h.service.CreateUnit(r.Context(), Unit{
		BusinessID:   actor.BusinessID,
		Name:         form.Name,
		Abbreviation: form.Abbreviation,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, unit)
}

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	units, err := h.service.ListUnits(r.Context(), actor.BusinessID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"units": units})
}

func (h *Handler) deleteUnit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Unit", "unit id must be numeric")
		return
	}
	if err := h.service.DeleteUnit(r.Context(), actor.BusinessID, id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
