package technician

import (
	"context"
	"errors"
	"testing"

	"riparo-be/internal/apperror"
	"riparo-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, t *Technician) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Technician), args.Error(1)
}

func (m *MockRepository) GetByUserID(ctx context.Context, userID string) (*Technician, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Technician), args.Error(1)
}

func (m *MockRepository) ListWithActiveCounts(ctx context.Context) ([]*WithActiveCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*WithActiveCount), args.Error(1)
}

func (m *MockRepository) CountActiveOrders(ctx context.Context, technicianID string) (int, error) {
	args := m.Called(ctx, technicianID)
	return args.Int(0), args.Error(1)
}

type MockPromoter struct {
	mock.Mock
}

func (m *MockPromoter) PromoteToTechnician(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var (
	adminActor = user.Actor{UserID: "admin-1", Role: user.RoleAdmin}
	techActor  = user.Actor{UserID: "user-tech", Role: user.RoleTechnician}
	custActor  = user.Actor{UserID: "cust-1", Role: user.RoleCustomer}
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*technician.Technician")).Return(nil)

		limit := 5
		tech, err := svc.Create(ctx, CreateInput{
			UserID:         "user-1",
			FullName:       "  Li Wei ",
			MaxOrdersLimit: &limit,
		}, adminActor)

		require.NoError(t, err)
		assert.Equal(t, "Li Wei", tech.FullName)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PromotesUserRole", func(t *testing.T) {
		mockRepo := new(MockRepository)
		promoter := new(MockPromoter)
		svc := NewServiceWithPromotion(mockRepo, promoter)

		mockRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*technician.Technician")).Return(nil)
		promoter.On("PromoteToTechnician", ctx, "user-1").Return(nil)

		_, err := svc.Create(ctx, CreateInput{UserID: "user-1", FullName: "Li Wei"}, adminActor)
		require.NoError(t, err)
		promoter.AssertExpectations(t)
	})

	t.Run("NonAdminForbidden", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		for _, actor := range []user.Actor{techActor, custActor} {
			_, err := svc.Create(ctx, CreateInput{UserID: "user-1", FullName: "Li Wei"}, actor)
			require.Error(t, err)
			assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(ctx, CreateInput{FullName: "Li Wei"}, adminActor)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		_, err = svc.Create(ctx, CreateInput{UserID: "user-1", FullName: "  "}, adminActor)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("NonPositiveLimit", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		zero := 0
		_, err := svc.Create(ctx, CreateInput{UserID: "user-1", FullName: "Li Wei", MaxOrdersLimit: &zero}, adminActor)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("AlreadyTechnician", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByUserID", ctx, "user-1").Return(&Technician{ID: "tech-1"}, nil)

		_, err := svc.Create(ctx, CreateInput{UserID: "user-1", FullName: "Li Wei"}, adminActor)
		require.Error(t, err)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "tech-1").Return(&Technician{ID: "tech-1", FullName: "Li Wei"}, nil)

		tech, err := svc.Get(ctx, "tech-1")
		require.NoError(t, err)
		assert.Equal(t, "Li Wei", tech.FullName)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "missing").Return(nil, nil)

		_, err := svc.Get(ctx, "missing")
		require.Error(t, err)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("StaffMaySeeWorkload", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("ListWithActiveCounts", ctx).Return([]*WithActiveCount{
			{Technician: Technician{ID: "tech-1", FullName: "Li Wei"}, ActiveOrders: 2},
		}, nil)

		for _, actor := range []user.Actor{adminActor, techActor} {
			list, err := svc.List(ctx, actor)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, 2, list[0].ActiveOrders)
		}
	})

	t.Run("CustomerForbidden", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.List(ctx, custActor)
		require.Error(t, err)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	})
}

func TestService_CheckCapacity(t *testing.T) {
	ctx := context.Background()
	limit := 3

	t.Run("NoLimitAlwaysPasses", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "tech-1").Return(&Technician{ID: "tech-1"}, nil)

		assert.NoError(t, svc.CheckCapacity(ctx, "tech-1"))
		mockRepo.AssertNotCalled(t, "CountActiveOrders", mock.Anything, mock.Anything)
	})

	t.Run("UnderLimit", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "tech-1").Return(&Technician{ID: "tech-1", MaxOrdersLimit: &limit}, nil)
		mockRepo.On("CountActiveOrders", ctx, "tech-1").Return(2, nil)

		assert.NoError(t, svc.CheckCapacity(ctx, "tech-1"))
	})

	t.Run("AtLimit", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "tech-1").Return(&Technician{ID: "tech-1", MaxOrdersLimit: &limit}, nil)
		mockRepo.On("CountActiveOrders", ctx, "tech-1").Return(3, nil)

		err := svc.CheckCapacity(ctx, "tech-1")
		require.Error(t, err)
		assert.Equal(t, apperror.KindCapacityExceeded, apperror.KindOf(err))
	})

	t.Run("UnknownTechnician", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "ghost").Return(nil, nil)

		err := svc.CheckCapacity(ctx, "ghost")
		require.Error(t, err)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, "tech-1").Return(nil, errors.New("db error"))

		err := svc.CheckCapacity(ctx, "tech-1")
		assert.Error(t, err)
	})
}
