package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	"github.com/go-chi/chi/v5"
)

type MenuHandler struct {
	service interfaces.MenuService
	logger  logger.Logger
}

func NewMenuHandler(service interfaces.MenuService, logger logger.Logger) *MenuHandler {
	return &MenuHandler{service: service, logger: logger}
}

func (h *MenuHandler) Register(r chi.Router) {
	r.Post("/menu", h.CreateItem)
	r.Get("/menu", h.ListItems)
	r.Get("/menu/available", h.ListAvailableItems)
	r.Get("/menu/{id}", h.GetItem)
	r.Put("/menu/{id}", h.UpdateItem)
	r.Patch("/menu/{id}/stock", h.SetStock)
	r.Delete("/menu/{id}", h.DeleteItem)
}

type CreateMenuItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

type SetStockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.service.CreateItem(r.Context(), interfaces.CreateMenuItemCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	respondData(w, http.StatusCreated, "Menu item created successfully", toMenuItemResponse(item))
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", toMenuItemResponse(item))
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(items), toMenuItemResponses(items))
}

func (h *MenuHandler) ListAvailableItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAvailableItems(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(items), toMenuItemResponses(items))
}

func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), interfaces.UpdateMenuItemCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Menu item updated successfully", toMenuItemResponse(item))
}

func (h *MenuHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.service.SetStock(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Stock updated successfully", toMenuItemResponse(item))
}

func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Menu item deleted successfully", nil)
}
