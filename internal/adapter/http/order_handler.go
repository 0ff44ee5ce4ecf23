package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

func (h *OrderHandler) Register(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrder)
	r.Get("/orders/{id}/status", h.GetOrderStatus)
	r.Get("/orders/user/{user_id}", h.ListOrdersByUser)
	r.Patch("/orders/{id}/payment", h.CompletePayment)
	r.Patch("/orders/{id}/pickup", h.CompletePickup)
	r.Delete("/orders/{id}", h.CancelOrder)
}

type CreateOrderRequest struct {
	UserID string             `json:"user_id"`
	Items  []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	cmd := interfaces.CreateOrderCommand{UserID: req.UserID}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, interfaces.CreateOrderItemCommand{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.service.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.logger.Error("order_creation_failed", "Failed to create order", requestID(r), nil, err)
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated,
		"Order created successfully. Please complete payment before the deadline.",
		toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", toOrderResponse(order))
}

func (h *OrderHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetOrderStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", map[string]string{"status": string(status)})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(orders), toOrderResponses(orders))
}

func (h *OrderHandler) ListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrdersByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(orders), toOrderResponses(orders))
}

func (h *OrderHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.CompletePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Payment completed successfully", toOrderResponse(order))
}

func (h *OrderHandler) CompletePickup(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.CompletePickup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Order completed successfully", toOrderResponse(order))
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("order_cancel_failed", "Failed to cancel order", requestID(r), nil, err)
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Order cancelled successfully. Stock has been restored.", toOrderResponse(order))
}
