package technician

import (
	"context"
	"strings"

	"riparo-be/internal/apperror"
	"riparo-be/internal/logger"
	"riparo-be/internal/user"

	"go.uber.org/zap"
)

type CreateInput struct {
	UserID         string
	FullName       string
	Specialization *string
	MaxOrdersLimit *int
}

type Service interface {
	Create(ctx context.Context, input CreateInput, actor user.Actor) (*Technician, error)
	Get(ctx context.Context, id string) (*Technician, error)
	List(ctx context.Context, actor user.Actor) ([]*WithActiveCount, error)
	// CheckCapacity enforces the soft maxOrdersLimit policy before a new
	// assignment. Technicians without a limit always pass.
	CheckCapacity(ctx context.Context, technicianID string) error
}

// RolePromoter flips a user's role once their technician profile exists. The
// user repository satisfies this.
type RolePromoter interface {
	PromoteToTechnician(ctx context.Context, userID string) error
}

type service struct {
	repo  Repository
	users RolePromoter // optional
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// NewServiceWithPromotion wires role promotion into technician creation.
func NewServiceWithPromotion(repo Repository, users RolePromoter) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Create(ctx context.Context, input CreateInput, actor user.Actor) (*Technician, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("admin_only", "only administrators may create technicians")
	}
	if input.UserID == "" || strings.TrimSpace(input.FullName) == "" {
		return nil, apperror.Validation("missing_fields", "user id and full name are required")
	}
	if input.MaxOrdersLimit != nil && *input.MaxOrdersLimit <= 0 {
		return nil, apperror.Validation("invalid_limit", "max orders limit must be positive")
	}

	existing, err := s.repo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("already_technician", "user is already a technician")
	}

	t := &Technician{
		UserID:         input.UserID,
		FullName:       strings.TrimSpace(input.FullName),
		Specialization: input.Specialization,
		MaxOrdersLimit: input.MaxOrdersLimit,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperror.FromRepository(err)
	}

	if s.users != nil {
		if err := s.users.PromoteToTechnician(ctx, t.UserID); err != nil {
			logger.FromCtx(ctx).Error("failed to promote user role",
				zap.String("user_id", t.UserID), zap.Error(err))
		}
	}

	logger.FromCtx(ctx).Info("technician created",
		zap.String("technician_id", t.ID),
		zap.String("user_id", t.UserID),
	)
	return t, nil
}

func (s *service) Get(ctx context.Context, id string) (*Technician, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if t == nil {
		return nil, apperror.NotFound("technician_not_found", "technician not found")
	}
	return t, nil
}

func (s *service) List(ctx context.Context, actor user.Actor) ([]*WithActiveCount, error) {
	if !actor.IsAdmin() && !actor.IsTechnician() {
		return nil, apperror.Forbidden("staff_only", "customers may not list technicians")
	}

	list, err := s.repo.ListWithActiveCounts(ctx)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	return list, nil
}

func (s *service) CheckCapacity(ctx context.Context, technicianID string) error {
	t, err := s.repo.GetByID(ctx, technicianID)
	if err != nil {
		return apperror.FromRepository(err)
	}
	if t == nil {
		return apperror.NotFound("technician_not_found", "technician not found")
	}
	if t.MaxOrdersLimit == nil {
		return nil
	}

	active, err := s.repo.CountActiveOrders(ctx, technicianID)
	if err != nil {
		return apperror.FromRepository(err)
	}
	if active >= *t.MaxOrdersLimit {
		return apperror.CapacityExceeded("technician has reached the concurrent order limit")
	}
	return nil
}
