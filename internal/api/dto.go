package api

import (
	"time"

	"riparo-be/internal/order"
	"riparo-be/internal/technician"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"fullName"`
	Phone    *string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

type createOrderRequest struct {
	CustomerName     string   `json:"customerName"`
	CustomerPhone    string   `json:"customerPhone"`
	CustomerEmail    *string  `json:"customerEmail,omitempty"`
	CustomerAddress  *string  `json:"customerAddress,omitempty"`
	DeviceBrand      string   `json:"deviceBrand"`
	DeviceModel      string   `json:"deviceModel"`
	DeviceImei       *string  `json:"deviceImei,omitempty"`
	IssueDescription string   `json:"issueDescription"`
	Priority         *string  `json:"priority,omitempty"`
	EstimatedCost    *float64 `json:"estimatedCost,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

type updateOrderRequest struct {
	Status        *string  `json:"status,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	EstimatedCost *float64 `json:"estimatedCost,omitempty"`
	FinalCost     *float64 `json:"finalCost,omitempty"`
	TechnicianID  *string  `json:"technicianId,omitempty"`
}

type quoteRequest struct {
	DeviceBrand      string  `json:"deviceBrand"`
	DeviceModel      string  `json:"deviceModel"`
	IssueDescription string  `json:"issueDescription"`
	RepairType       *string `json:"repairType,omitempty"`
	CustomerEmail    *string `json:"customerEmail,omitempty"`
}

type createTechnicianRequest struct {
	UserID         string  `json:"userId"`
	FullName       string  `json:"fullName"`
	Specialization *string `json:"specialization,omitempty"`
	MaxOrdersLimit *int    `json:"maxOrdersLimit,omitempty"`
}

type orderResponse struct {
	ID                  string     `json:"id"`
	OrderNumber         string     `json:"orderNumber"`
	CustomerID          string     `json:"customerId"`
	DeviceBrand         string     `json:"deviceBrand"`
	DeviceModel         string     `json:"deviceModel"`
	DeviceImei          *string    `json:"deviceImei,omitempty"`
	IssueDescription    string     `json:"issueDescription"`
	Status              string     `json:"status"`
	Priority            string     `json:"priority"`
	EstimatedCost       *float64   `json:"estimatedCost,omitempty"`
	FinalCost           *float64   `json:"finalCost,omitempty"`
	TechnicianID        *string    `json:"technicianId,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time `json:"actualCompletion,omitempty"`
}

func mapOrder(o *order.Order) orderResponse {
	return orderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		DeviceBrand:         o.DeviceBrand,
		DeviceModel:         o.DeviceModel,
		DeviceImei:          o.DeviceIMEI,
		IssueDescription:    o.IssueDescription,
		Status:              string(o.Status),
		Priority:            string(o.Priority),
		EstimatedCost:       o.EstimatedCost,
		FinalCost:           o.FinalCost,
		TechnicianID:        o.TechnicianID,
		Notes:               o.Notes,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		EstimatedCompletion: o.EstimatedCompletion,
		ActualCompletion:    o.ActualCompletion,
	}
}

type listOrdersResponse struct {
	Orders     []orderResponse  `json:"orders"`
	Pagination order.Pagination `json:"pagination"`
}

func mapPage(p *order.Page) listOrdersResponse {
	orders := make([]orderResponse, 0, len(p.Orders))
	for _, o := range p.Orders {
		orders = append(orders, mapOrder(o))
	}
	return listOrdersResponse{Orders: orders, Pagination: p.Pagination}
}

type historyEntryResponse struct {
	Status    string    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	ChangedBy string    `json:"changedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderDetailResponse struct {
	orderResponse
	StatusHistory []historyEntryResponse `json:"statusHistory"`
}

func mapDetail(d *order.Detail) orderDetailResponse {
	history := make([]historyEntryResponse, 0, len(d.History))
	for _, e := range d.History {
		history = append(history, historyEntryResponse{
			Status:    string(e.Status),
			Notes:     e.Notes,
			ChangedBy: e.ChangedBy,
			CreatedAt: e.CreatedAt,
		})
	}
	return orderDetailResponse{orderResponse: mapOrder(d.Order), StatusHistory: history}
}

type technicianResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	FullName       string  `json:"fullName"`
	Specialization *string `json:"specialization,omitempty"`
	MaxOrdersLimit *int    `json:"maxOrdersLimit,omitempty"`
	ActiveOrders   int     `json:"activeOrders"`
}

func mapTechnician(t *technician.WithActiveCount) technicianResponse {
	return technicianResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		FullName:       t.FullName,
		Specialization: t.Specialization,
		MaxOrdersLimit: t.MaxOrdersLimit,
		ActiveOrders:   t.ActiveOrders,
	}
}
