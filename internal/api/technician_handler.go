package api

import (
	"encoding/json"
	"net/http"

	"riparo-be/internal/technician"
)

type TechnicianHandler struct {
	technicians technician.Service
}

func NewTechnicianHandler(technicians technician.Service) *TechnicianHandler {
	return &TechnicianHandler{technicians: technicians}
}

func (h *TechnicianHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	t, err := h.technicians.Create(r.Context(), technician.CreateInput{
		UserID:         req.UserID,
		FullName:       req.FullName,
		Specialization: req.Specialization,
		MaxOrdersLimit: req.MaxOrdersLimit,
	}, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapTechnician(&technician.WithActiveCount{Technician: *t}))
}

func (h *TechnicianHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	list, err := h.technicians.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]technicianResponse, 0, len(list))
	for _, t := range list {
		out = append(out, mapTechnician(t))
	}
	writeJSON(w, http.StatusOK, out)
}
