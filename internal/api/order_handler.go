package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"riparo-be/internal/order"
	"riparo-be/internal/user"
	"riparo-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// requireActor resolves the authenticated actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return user.Actor{}, false
	}
	return actor, true
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	input := order.CreateInput{
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		CustomerAddress:  req.CustomerAddress,
		DeviceBrand:      req.DeviceBrand,
		DeviceModel:      req.DeviceModel,
		DeviceIMEI:       req.DeviceImei,
		IssueDescription: req.IssueDescription,
		EstimatedCost:    req.EstimatedCost,
		Notes:            req.Notes,
	}
	if req.Priority != nil {
		p := order.Priority(*req.Priority)
		input.Priority = &p
	}

	o, err := h.orders.Create(r.Context(), input, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(o))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	input := order.ListInput{
		Page:             atoiDefault(q.Get("page"), 1),
		Limit:            atoiDefault(q.Get("limit"), 0),
		TechnicianFilter: q.Get("technician"),
		Unassigned:       q.Get("unassigned") == "true",
	}
	if s := q.Get("status"); s != "" && s != "ALL" {
		status := order.Status(s)
		input.Status = &status
	}

	page, err := h.orders.List(r.Context(), input, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	detail, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDetail(detail))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	input := order.UpdateInput{
		Notes:         req.Notes,
		EstimatedCost: req.EstimatedCost,
		FinalCost:     req.FinalCost,
		TechnicianID:  req.TechnicianID,
	}
	if req.Status != nil {
		status := order.Status(*req.Status)
		input.Status = &status
	}

	o, err := h.orders.Update(r.Context(), chi.URLParam(r, "id"), input, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Lookup is the public, unauthenticated order tracking endpoint.
func (h *OrderHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	view, err := h.orders.LookupPublic(r.Context(), r.URL.Query().Get("orderNumber"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Quote is the public, unauthenticated estimate endpoint.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	result, err := h.orders.Quote(r.Context(), order.QuoteInput{
		DeviceBrand:      req.DeviceBrand,
		DeviceModel:      req.DeviceModel,
		IssueDescription: req.IssueDescription,
		RepairType:       req.RepairType,
		CustomerEmail:    req.CustomerEmail,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
