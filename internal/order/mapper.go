package order

import "time"

// Pagination is the page envelope returned by List.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type Page struct {
	Orders     []*Order   `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// PublicHistoryEntry is the redacted history view exposed without
// authentication: no actor identity.
type PublicHistoryEntry struct {
	Status    Status    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicOrderView hides customer contact details, internal notes and cost
// fields from the unauthenticated lookup endpoint.
type PublicOrderView struct {
	ID                  string               `json:"id"`
	OrderNumber         string               `json:"orderNumber"`
	DeviceBrand         string               `json:"deviceBrand"`
	DeviceModel         string               `json:"deviceModel"`
	Status              Status               `json:"status"`
	EstimatedCompletion *time.Time           `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time           `json:"actualCompletion,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	CustomerName        string               `json:"customerName"`
	TechnicianName      *string              `json:"technicianName,omitempty"`
	StatusHistory       []PublicHistoryEntry `json:"statusHistory"`
}

// ToPublicView redacts an order for the public lookup endpoint.
func ToPublicView(o *Order, customerName string, technicianName *string, history []*StatusHistoryEntry) *PublicOrderView {
	entries := make([]PublicHistoryEntry, 0, len(history))
	for _, e := range history {
		entries = append(entries, PublicHistoryEntry{
			Status:    e.Status,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt,
		})
	}

	return &PublicOrderView{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		DeviceBrand:         o.DeviceBrand,
		DeviceModel:         o.DeviceModel,
		Status:              o.Status,
		EstimatedCompletion: o.EstimatedCompletion,
		ActualCompletion:    o.ActualCompletion,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		CustomerName:        customerName,
		TechnicianName:      technicianName,
		StatusHistory:       entries,
	}
}
