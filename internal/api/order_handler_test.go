package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"riparo-be/internal/apperror"
	"riparo-be/internal/order"
	"riparo-be/internal/user"
	"riparo-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, input order.CreateInput, actor user.Actor) (*order.Order, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, input order.ListInput, actor user.Actor) (*order.Page, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Page), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id string, actor user.Actor) (*order.Detail, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Detail), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, id string, input order.UpdateInput, actor user.Actor) (*order.Order, error) {
	args := m.Called(ctx, id, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id string, actor user.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockOrderService) LookupPublic(ctx context.Context, orderNumber string) (*order.PublicOrderView, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PublicOrderView), args.Error(1)
}

func (m *MockOrderService) Quote(ctx context.Context, input order.QuoteInput) (*order.QuoteResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.QuoteResult), args.Error(1)
}

var adminActor = user.Actor{UserID: "admin-1", Role: user.RoleAdmin}

func sampleOrder() *order.Order {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &order.Order{
		ID:               "order-1",
		OrderNumber:      "AB123",
		CustomerID:       "cust-1",
		DeviceBrand:      "Apple",
		DeviceModel:      "iPhone 14",
		IssueDescription: "screen cracked",
		Status:           order.StatusReceived,
		Priority:         order.PriorityNormal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// authedRequest builds a request pre-resolved the way AuthMiddleware leaves it.
func authedRequest(method, target, body string, actor user.Actor) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(utils.SetActorContext(r.Context(), actor))
}

// withURLParam injects a chi route parameter without going through the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in order.CreateInput) bool {
			return in.CustomerName == "Mario Rossi" && in.DeviceBrand == "Apple"
		}), adminActor).Return(sampleOrder(), nil)
		h := NewOrderHandler(svc)

		body := `{"customerName":"Mario Rossi","customerPhone":"13800138000","deviceBrand":"Apple","deviceModel":"iPhone 14","issueDescription":"screen cracked"}`
		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/orders", body, adminActor))

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp orderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "AB123", resp.OrderNumber)
		assert.Equal(t, "RECEIVED", resp.Status)
		svc.AssertExpectations(t)
	})

	t.Run("invalid json", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/orders", "{not json", adminActor))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", decodeError(t, rec).Error.Code)
		svc.AssertNotCalled(t, "Create")
	})

	t.Run("missing actor", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{}")))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Error.Code)
		svc.AssertNotCalled(t, "Create")
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Create", mock.Anything, mock.Anything, adminActor).
			Return(nil, apperror.Validation("missing_field", "customerName is required"))
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/orders", "{}", adminActor))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "missing_field", body.Error.Code)
		assert.Equal(t, "customerName is required", body.Error.Message)
	})
}

func TestOrderHandler_List(t *testing.T) {
	t.Run("query filters parsed", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(in order.ListInput) bool {
			return in.Page == 2 && in.Limit == 5 && in.Status != nil &&
				*in.Status == order.StatusRepairing && in.TechnicianFilter == "tech-1" && in.Unassigned
		}), adminActor).Return(&order.Page{
			Orders:     []*order.Order{sampleOrder()},
			Pagination: order.Pagination{Page: 2, Limit: 5, Total: 6, TotalPages: 2},
		}, nil)
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet,
			"/api/orders?page=2&limit=5&status=REPAIRING&technician=tech-1&unassigned=true", "", adminActor))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp listOrdersResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, int64(6), resp.Pagination.Total)
		svc.AssertExpectations(t)
	})

	t.Run("ALL status is no filter", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(in order.ListInput) bool {
			return in.Status == nil && in.Page == 1
		}), adminActor).Return(&order.Page{Orders: []*order.Order{}}, nil)
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "/api/orders?status=ALL&page=bogus", "", adminActor))

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	t.Run("found with history", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Get", mock.Anything, "order-1", adminActor).Return(&order.Detail{
			Order: sampleOrder(),
			History: []*order.StatusHistoryEntry{
				{Status: order.StatusReceived, ChangedBy: "system", CreatedAt: time.Now()},
			},
		}, nil)
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodGet, "/api/orders/order-1", "", adminActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Get(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp orderDetailResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "order-1", resp.ID)
		require.Len(t, resp.StatusHistory, 1)
		assert.Equal(t, "system", resp.StatusHistory[0].ChangedBy)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Get", mock.Anything, "missing", adminActor).
			Return(nil, apperror.NotFound("order_not_found", "order not found"))
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodGet, "/api/orders/missing", "", adminActor), "id", "missing")
		rec := httptest.NewRecorder()
		h.Get(rec, r)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "order_not_found", decodeError(t, rec).Error.Code)
	})
}

func TestOrderHandler_Update(t *testing.T) {
	t.Run("status transition", func(t *testing.T) {
		svc := new(MockOrderService)
		updated := sampleOrder()
		updated.Status = order.StatusDiagnosing
		svc.On("Update", mock.Anything, "order-1", mock.MatchedBy(func(in order.UpdateInput) bool {
			return in.Status != nil && *in.Status == order.StatusDiagnosing
		}), adminActor).Return(updated, nil)
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodPatch, "/api/orders/order-1",
			`{"status":"DIAGNOSING"}`, adminActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Update(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp orderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "DIAGNOSING", resp.Status)
	})

	t.Run("invalid transition maps to conflict", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Update", mock.Anything, "order-1", mock.Anything, adminActor).
			Return(nil, apperror.InvalidTransition("cannot move from RECEIVED to COMPLETED"))
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodPatch, "/api/orders/order-1",
			`{"status":"COMPLETED"}`, adminActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Update(rec, r)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "invalid_transition", decodeError(t, rec).Error.Code)
	})

	t.Run("stale write maps to conflict", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Update", mock.Anything, "order-1", mock.Anything, adminActor).
			Return(nil, apperror.Conflict("stale_order", "order was modified concurrently, retry"))
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodPatch, "/api/orders/order-1",
			`{"notes":"x"}`, adminActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Update(rec, r)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "stale_order", decodeError(t, rec).Error.Code)
	})

	t.Run("internal errors are hidden", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Update", mock.Anything, "order-1", mock.Anything, adminActor).
			Return(nil, apperror.Wrap(apperror.KindInternal, "internal_error", "pq: connection reset", nil))
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodPatch, "/api/orders/order-1",
			`{"notes":"x"}`, adminActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Update(rec, r)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "internal_error", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "pq:")
	})
}

func TestOrderHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Delete", mock.Anything, "order-1", adminActor).Return(nil)
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodDelete, "/api/orders/order-1", "", adminActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Delete(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("forbidden for technician", func(t *testing.T) {
		techID := "tech-1"
		techActor := user.Actor{UserID: "user-2", Role: user.RoleTechnician, TechnicianID: &techID}
		svc := new(MockOrderService)
		svc.On("Delete", mock.Anything, "order-1", techActor).
			Return(apperror.Forbidden("forbidden", "only admins can delete orders"))
		h := NewOrderHandler(svc)

		r := withURLParam(authedRequest(http.MethodDelete, "/api/orders/order-1", "", techActor), "id", "order-1")
		rec := httptest.NewRecorder()
		h.Delete(rec, r)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestOrderHandler_Lookup(t *testing.T) {
	t.Run("public view without actor", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("LookupPublic", mock.Anything, "AB123").Return(&order.PublicOrderView{
			OrderNumber: "AB123",
			Status:      order.StatusRepairing,
			DeviceBrand: "Apple",
			DeviceModel: "iPhone 14",
		}, nil)
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/orders/lookup?orderNumber=AB123", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp order.PublicOrderView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, order.StatusRepairing, resp.Status)
	})

	t.Run("unknown number", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("LookupPublic", mock.Anything, "ZZ999").
			Return(nil, apperror.NotFound("order_not_found", "order not found"))
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/orders/lookup?orderNumber=ZZ999", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrderHandler_Quote(t *testing.T) {
	t.Run("estimate returned", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Quote", mock.Anything, mock.MatchedBy(func(in order.QuoteInput) bool {
			return in.DeviceBrand == "Apple" && in.IssueDescription == "screen cracked"
		})).Return(&order.QuoteResult{
			DeviceBrand:    "Apple",
			DeviceModel:    "iPhone 14",
			RepairType:     "屏幕维修",
			EstimatedPrice: 1400,
			Currency:       "CNY",
			WarrantyDays:   90,
		}, nil)
		h := NewOrderHandler(svc)

		body := `{"deviceBrand":"Apple","deviceModel":"iPhone 14","issueDescription":"screen cracked"}`
		rec := httptest.NewRecorder()
		h.Quote(rec, httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp order.QuoteResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, float64(1400), resp.EstimatedPrice)
	})

	t.Run("invalid json", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc)

		rec := httptest.NewRecorder()
		h.Quote(rec, httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader("{")))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
