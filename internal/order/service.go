package order

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"riparo-be/internal/apperror"
	"riparo-be/internal/cache"
	"riparo-be/internal/customer"
	"riparo-be/internal/logger"
	"riparo-be/internal/metrics"
	"riparo-be/internal/pricing"
	"riparo-be/internal/technician"
	"riparo-be/internal/user"
	"riparo-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	// bounded retries against the order-number uniqueness constraint
	maxNumberAttempts = 5

	lookupCacheTTL = 30 * time.Second
	quoteValidity  = 30 * 24 * time.Hour
	quoteCurrency  = "EUR"
)

type CreateInput struct {
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    *string
	CustomerAddress  *string
	DeviceBrand      string
	DeviceModel      string
	DeviceIMEI       *string
	IssueDescription string
	Priority         *Priority
	EstimatedCost    *float64
	Notes            *string
}

type ListInput struct {
	Page             int
	Limit            int
	Status           *Status
	TechnicianFilter string // technician id, admin-only scoping
	Unassigned       bool
}

type UpdateInput struct {
	Status        *Status
	Notes         *string
	EstimatedCost *float64
	FinalCost     *float64
	TechnicianID  *string
}

type QuoteInput struct {
	DeviceBrand      string
	DeviceModel      string
	IssueDescription string
	RepairType       *string
	CustomerEmail    *string
}

type QuoteResult struct {
	DeviceBrand      string    `json:"deviceBrand"`
	DeviceModel      string    `json:"deviceModel"`
	IssueDescription string    `json:"issueDescription"`
	RepairType       string    `json:"repairType"`
	EstimatedPrice   float64   `json:"estimatedPrice"`
	Currency         string    `json:"currency"`
	ValidUntil       time.Time `json:"validUntil"`
	WarrantyDays     int       `json:"warrantyDays"`
	Notes            []string  `json:"notes"`
}

// Detail is the authenticated order view: the order plus its full history.
type Detail struct {
	Order   *Order                `json:"order"`
	History []*StatusHistoryEntry `json:"history"`
}

type Service interface {
	Create(ctx context.Context, input CreateInput, actor user.Actor) (*Order, error)
	List(ctx context.Context, input ListInput, actor user.Actor) (*Page, error)
	Get(ctx context.Context, id string, actor user.Actor) (*Detail, error)
	Update(ctx context.Context, id string, input UpdateInput, actor user.Actor) (*Order, error)
	Delete(ctx context.Context, id string, actor user.Actor) error
	LookupPublic(ctx context.Context, orderNumber string) (*PublicOrderView, error)
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
}

type service struct {
	repo        Repository
	customers   customer.Repository
	technicians technician.Service
	engine      *Engine
	estimator   *pricing.Estimator
	cache       cache.Cache // nil-safe: caching skipped if nil
	now         func() time.Time
	genNumber   func() string
}

func NewService(
	repo Repository,
	customers customer.Repository,
	technicians technician.Service,
	engine *Engine,
	estimator *pricing.Estimator,
	c cache.Cache,
) Service {
	return &service{
		repo:        repo,
		customers:   customers,
		technicians: technicians,
		engine:      engine,
		estimator:   estimator,
		cache:       c,
		now:         time.Now,
		genNumber:   utils.GenerateOrderNumber,
	}
}

func (s *service) Create(ctx context.Context, input CreateInput, actor user.Actor) (*Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" ||
		strings.TrimSpace(input.CustomerPhone) == "" ||
		strings.TrimSpace(input.DeviceBrand) == "" ||
		strings.TrimSpace(input.DeviceModel) == "" ||
		strings.TrimSpace(input.IssueDescription) == "" {
		return nil, apperror.Validation("missing_fields",
			"customer name, phone, device brand, device model and issue description are required")
	}

	priority := PriorityNormal
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperror.Validation("invalid_priority", "unknown priority value")
		}
		priority = *input.Priority
	}

	cust, err := s.findOrCreateCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	changedBy := actor.UserID
	if changedBy == "" {
		changedBy = "system"
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("customer_id", cust.ID),
	)

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		now := s.now()
		o := &Order{
			ID:               uuid.NewString(),
			OrderNumber:      s.genNumber(),
			CustomerID:       cust.ID,
			DeviceBrand:      strings.TrimSpace(input.DeviceBrand),
			DeviceModel:      strings.TrimSpace(input.DeviceModel),
			DeviceIMEI:       input.DeviceIMEI,
			IssueDescription: strings.TrimSpace(input.IssueDescription),
			Status:           StatusReceived,
			Priority:         priority,
			EstimatedCost:    input.EstimatedCost,
			Notes:            input.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		note := "order created"
		first := &StatusHistoryEntry{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			Status:    StatusReceived,
			Notes:     &note,
			ChangedBy: changedBy,
			CreatedAt: now,
		}

		err := s.repo.Create(ctx, o, first)
		if err == nil {
			metrics.OrdersCreated.Inc()
			log.Info("order created",
				zap.String("order_id", o.ID),
				zap.String("order_number", o.OrderNumber),
			)
			return o, nil
		}
		if errors.Is(err, ErrNumberTaken) {
			log.Warn("order number collision, retrying",
				zap.String("order_number", o.OrderNumber),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, apperror.FromRepository(err)
	}

	return nil, apperror.Generation("could not generate a unique order number")
}

func (s *service) findOrCreateCustomer(ctx context.Context, input CreateInput) (*customer.Customer, error) {
	existing, err := s.customers.FindByPhoneOrEmail(ctx, strings.TrimSpace(input.CustomerPhone), input.CustomerEmail)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if existing != nil {
		return existing, nil
	}

	cust := &customer.Customer{
		Name:    strings.TrimSpace(input.CustomerName),
		Phone:   strings.TrimSpace(input.CustomerPhone),
		Email:   input.CustomerEmail,
		Address: input.CustomerAddress,
	}
	if err := s.customers.Create(ctx, cust); err != nil {
		return nil, apperror.FromRepository(err)
	}
	return cust, nil
}

func (s *service) List(ctx context.Context, input ListInput, actor user.Actor) (*Page, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := (page - 1) * limit

	filter := ListFilter{Status: input.Status}

	switch {
	case actor.IsAdmin():
		switch {
		case input.Unassigned:
			filter.Unassigned = true
		case input.TechnicianFilter != "":
			tid := input.TechnicianFilter
			filter.TechnicianID = &tid
		}
	case actor.IsTechnician():
		if actor.TechnicianID == nil {
			return nil, apperror.Forbidden("no_technician_profile", "technician profile not found")
		}
		if input.Unassigned {
			// technicians may browse the unassigned pool to claim work
			filter.Unassigned = true
		} else {
			filter.TechnicianID = actor.TechnicianID
		}
	default:
		return nil, apperror.Forbidden("staff_only", "customers track orders via the public lookup")
	}

	orders, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Page{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *service) Get(ctx context.Context, id string, actor user.Actor) (*Detail, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if o == nil {
		return nil, apperror.NotFound("order_not_found", "order not found")
	}

	switch {
	case actor.IsAdmin():
	case actor.IsTechnician():
		// technicians see their own orders and the unassigned pool
		if o.Assigned() && !actor.OwnsTechnician(*o.TechnicianID) {
			return nil, apperror.Forbidden("not_your_order", "order is assigned to another technician")
		}
	default:
		return nil, apperror.Forbidden("staff_only", "customers track orders via the public lookup")
	}

	history, err := s.repo.History(ctx, o.ID)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	return &Detail{Order: o, History: history}, nil
}

// Update applies a PATCH: technician assignment, a status transition and
// plain field edits are validated independently; each accepted mutation is one
// atomic write.
func (s *service) Update(ctx context.Context, id string, input UpdateInput, actor user.Actor) (*Order, error) {
	if actor.Role == user.RoleCustomer || actor.Role == "" {
		return nil, apperror.Forbidden("read_only", "customers may not update orders")
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if o == nil {
		return nil, apperror.NotFound("order_not_found", "order not found")
	}

	if input.TechnicianID != nil {
		if _, err := s.technicians.Get(ctx, *input.TechnicianID); err != nil {
			return nil, err
		}
		if err := s.technicians.CheckCapacity(ctx, *input.TechnicianID); err != nil {
			return nil, err
		}
		if o, err = s.engine.Assign(ctx, id, *input.TechnicianID, actor); err != nil {
			return nil, err
		}
	}

	if input.Status != nil {
		if o, err = s.engine.Transition(ctx, id, *input.Status, actor, input.Notes); err != nil {
			return nil, err
		}
	}

	if o, err = s.applyFieldEdits(ctx, o, input, actor); err != nil {
		return nil, err
	}

	s.invalidateLookup(ctx, o.OrderNumber)
	return o, nil
}

func (s *service) applyFieldEdits(ctx context.Context, o *Order, input UpdateInput, actor user.Actor) (*Order, error) {
	changed := false

	if input.EstimatedCost != nil {
		o.EstimatedCost = input.EstimatedCost
		changed = true
	}
	if input.FinalCost != nil {
		if !finalCostAllowed(o.Status) {
			return nil, apperror.Validation("final_cost_too_early",
				"final cost may only be set once the repair is completed")
		}
		o.FinalCost = input.FinalCost
		changed = true
	}
	if input.Notes != nil && input.Status == nil {
		// without a status change the notes field updates the order itself
		o.Notes = input.Notes
		changed = true
	}

	if !changed {
		return o, nil
	}

	if actor.IsTechnician() && (!o.Assigned() || !actor.OwnsTechnician(*o.TechnicianID)) {
		return nil, apperror.Forbidden("not_your_order", "technicians may only update their own orders")
	}

	prevUpdatedAt := o.UpdatedAt
	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o, prevUpdatedAt, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return o, nil
}

// finalCostAllowed reports whether the order has reached COMPLETED in the
// canonical flow.
func finalCostAllowed(s Status) bool {
	switch s {
	case StatusCompleted, StatusReadyPickup, StatusDelivered:
		return true
	}
	return false
}

func (s *service) Delete(ctx context.Context, id string, actor user.Actor) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("admin_only", "only administrators may delete orders")
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.FromRepository(err)
	}
	if o == nil {
		return apperror.NotFound("order_not_found", "order not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return apperror.NotFound("order_not_found", "order not found")
		}
		return apperror.FromRepository(err)
	}

	s.invalidateLookup(ctx, o.OrderNumber)
	return nil
}

func (s *service) LookupPublic(ctx context.Context, orderNumber string) (*PublicOrderView, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	if orderNumber == "" {
		return nil, apperror.Validation("missing_order_number", "order number is required")
	}

	if view, ok := s.cachedLookup(ctx, orderNumber); ok {
		return view, nil
	}

	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if o == nil {
		return nil, apperror.NotFound("order_not_found", "order not found")
	}

	history, err := s.repo.History(ctx, o.ID)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}

	customerName := ""
	if cust, err := s.customers.GetByID(ctx, o.CustomerID); err == nil && cust != nil {
		customerName = cust.Name
	}

	var technicianName *string
	if o.TechnicianID != nil {
		if t, err := s.technicians.Get(ctx, *o.TechnicianID); err == nil {
			technicianName = &t.FullName
		}
	}

	view := ToPublicView(o, customerName, technicianName, history)
	s.storeLookup(ctx, orderNumber, view)
	return view, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	if strings.TrimSpace(input.DeviceBrand) == "" ||
		strings.TrimSpace(input.DeviceModel) == "" ||
		strings.TrimSpace(input.IssueDescription) == "" {
		return nil, apperror.Validation("missing_fields",
			"device brand, device model and issue description are required")
	}

	repairType := ""
	if input.RepairType != nil && strings.TrimSpace(*input.RepairType) != "" {
		repairType = strings.TrimSpace(*input.RepairType)
	} else {
		repairType = pricing.ClassifyIssue(input.IssueDescription)
	}

	result, err := s.estimator.Estimate(pricing.Request{
		DeviceBrand: input.DeviceBrand,
		DeviceModel: input.DeviceModel,
		RepairType:  repairType,
		Urgency:     pricing.UrgencyNormal,
		PartQuality: pricing.PartOEM,
	})
	if err != nil {
		return nil, err
	}

	metrics.QuoteRequests.Inc()
	return &QuoteResult{
		DeviceBrand:      input.DeviceBrand,
		DeviceModel:      input.DeviceModel,
		IssueDescription: input.IssueDescription,
		RepairType:       repairType,
		EstimatedPrice:   result.TotalCost,
		Currency:         quoteCurrency,
		ValidUntil:       s.now().Add(quoteValidity),
		WarrantyDays:     result.WarrantyDays,
		Notes:            result.Notes,
	}, nil
}

func (s *service) cachedLookup(ctx context.Context, orderNumber string) (*PublicOrderView, bool) {
	if s.cache == nil {
		return nil, false
	}
	key := s.cache.GenerateKey("lookup", orderNumber)
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil, false
	}
	var view PublicOrderView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil, false
	}
	return &view, true
}

func (s *service) storeLookup(ctx context.Context, orderNumber string, view *PublicOrderView) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	key := s.cache.GenerateKey("lookup", orderNumber)
	if err := s.cache.Set(ctx, key, raw, lookupCacheTTL); err != nil {
		logger.FromCtx(ctx).Warn("failed to cache public lookup", zap.Error(err))
	}
}

func (s *service) invalidateLookup(ctx context.Context, orderNumber string) {
	if s.cache == nil {
		return
	}
	key := s.cache.GenerateKey("lookup", orderNumber)
	if err := s.cache.Del(ctx, key); err != nil {
		logger.FromCtx(ctx).Warn("failed to invalidate lookup cache", zap.Error(err))
	}
}
