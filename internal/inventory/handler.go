package inventory

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

// Handler exposes stock transaction and level endpoints.
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

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermInventoryView))
		r.Get("/transactions", h.list)
		r.Get("/transactions/{id}", h.show)
		r.Get("/levels", h.levels)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermInventoryManage))
		r.Post("/transactions", h.create)
		r.Patch("/transactions/{id}", h.update)
	})
}

type postRequest struct {
	Code          string  `json:"code"`
	ItemType      string  `json:"item_type" validate:"required,oneof=product ingredient consumable addon"`
	ItemID        int64   `json:"item_id" validate:"required,gt=0"`
	Quantity      float64 `json:"quantity" validate:"required,gt=0"`
	CostPerUnit   float64 `json:"cost_per_unit" validate:"gte=0"`
	Discount      float64 `json:"discount" validate:"gte=0"`
	Status        string  `json:"status" validate:"required,oneof=delivered ordered damaged returned"`
	PaymentStatus string  `json:"payment_status" validate:"required,oneof=paid unpaid partial refunded"`
	PaidAmount    float64 `json:"paid_amount" validate:"gte=0"`
	Note          string  `json:"note"`
}

type updateRequest struct {
	Quantity      *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	CostPerUnit   *float64 `json:"cost_per_unit,omitempty" validate:"omitempty,gte=0"`
	Discount      *float64 `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Status        *string  `json:"status,omitempty" validate:"omitempty,oneof=delivered ordered damaged returned"`
	PaymentStatus *string  `json:"payment_status,omitempty" validate:"omitempty,oneof=paid unpaid partial refunded"`
	PaidAmount    *float64 `json:"paid_amount,omitempty" validate:"omitempty,gte=0"`
	Note          *string  `json:"note,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	record, err := h.service.Post(r.Context(), actor.BusinessID, PostInput{
		Code:          req.Code,
		ItemType:      ItemType(req.ItemType),
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		CostPerUnit:   req.CostPerUnit,
		Discount:      req.Discount,
		Status:        Status(req.Status),
		PaymentStatus: PaymentStatus(req.PaymentStatus),
		PaidAmount:    req.PaidAmount,
		Note:          req.Note,
		ActorID:       actor.UserID,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Transaction", "transaction id must be numeric")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	patch := UpdateInput{
		Quantity:    req.Quantity,
		CostPerUnit: req.CostPerUnit,
		Discount:    req.Discount,
		PaidAmount:  req.PaidAmount,
		Note:        req.Note,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		patch.Status = &status
	}
	if req.PaymentStatus != nil {
		payment := PaymentStatus(*req.PaymentStatus)
		patch.PaymentStatus = &payment
	}

	record, err := h.service.Update(r.Context(), actor.BusinessID, id, patch)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Transaction", "transaction id must be numeric")
		return
	}
	record, err := h.service.Get(r.Context(), actor.BusinessID, id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter := ListFilter{ItemType: ItemType(r.URL.Query().Get("item_type"))}
	if v := r.URL.Query().Get("item_id"); v != "" {
		filter.ItemID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = Status(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	txs, err := h.service.List(r.Context(), actor.BusinessID, filter)
	if err != nil {
		h.logger.Error("list stock transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (h *Handler) levels(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	levels, err := h.service.Levels(r.Context(), actor.BusinessID, ItemType(r.URL.Query().Get("item_type")))
	if err != nil {
		h.logger.Error("list inventory levels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"levels": levels})
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidCost), errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("stock transaction failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
