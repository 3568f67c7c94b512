package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/normalization"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type UserFields struct {
	Name     *string
	Email    *string
	Role     *string
	Password *string
}

// UserService is the admin-only user management surface.
type UserService interface {
	List(ctx context.Context, q query.ListQuery) (ListResult[*domain.User], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, in UserFields) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, in UserFields) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	bcryptCost int
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, bcryptCost int) UserService {
	serviceLog := log.With("service", "UserService")
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{db: db, log: serviceLog, userRepo: userRepo, bcryptCost: bcryptCost}
}

func (us *userService) List(ctx context.Context, q query.ListQuery) (ListResult[*domain.User], error) {
	rows, total, err := us.userRepo.List(ctx, nil, q)
	if err != nil {
		return ListResult[*domain.User]{}, listErr("users.list", err)
	}
	return ListResult[*domain.User]{Items: rows, Total: total, Pagination: q.Paginate(total)}, nil
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := us.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistErr("users.get", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "User not found with id of %s", id)
	}
	return u, nil
}

func (us *userService) Create(ctx context.Context, in UserFields) (*domain.User, error) {
	if in.Name == nil || in.Email == nil || in.Password == nil {
		return nil, apierr.BadRequest("validation", "Please add a name, email and password")
	}
	role := domain.RoleUser
	if in.Role != nil {
		role = strings.TrimSpace(*in.Role)
	}
	if !validRole(role) {
		return nil, apierr.BadRequest("invalid_role", "Unknown role %s", role)
	}
	hash, err := us.hash(*in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:     strings.TrimSpace(*in.Name),
		Email:    normalization.ParseInputString(*in.Email),
		Role:     role,
		Password: hash,
	}
	if _, err := us.userRepo.Create(ctx, nil, []*domain.User{u}); err != nil {
		return nil, persistErr("users.create", err)
	}
	return u, nil
}

func (us *userService) Update(ctx context.Context, id uuid.UUID, in UserFields) (*domain.User, error) {
	if _, err := us.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Role != nil {
		role := strings.TrimSpace(*in.Role)
		if !validRole(role) {
			return nil, apierr.BadRequest("invalid_role", "Unknown role %s", role)
		}
		fields["role"] = role
	}
	if in.Password != nil {
		hash, err := us.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}
	if err := us.userRepo.Update(ctx, nil, id, fields); err != nil {
		return nil, persistErr("users.update", err)
	}
	return us.Get(ctx, id)
}

func (us *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := us.Get(ctx, id); err != nil {
		return err
	}
	if err := us.userRepo.Delete(ctx, nil, id); err != nil {
		return persistErr("users.delete", err)
	}
	us.log.Info("user deleted", "user_id", id)
	return nil
}

func (us *userService) hash(password string) (string, error) {
	if len(password) < 6 {
		return "", apierr.BadRequest("invalid_password", "Password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), us.bcryptCost)
	if err != nil {
		return "", apierr.Internal("internal", err)
	}
	return string(hash), nil
}

func validRole(role string) bool {
	return role == domain.RoleUser || role == domain.RolePublisher || role == domain.RoleAdmin
}

// listErr reports whitelist and syntax failures from the query layer as 400s.
func listErr(op string, err error) error {
	if errors.Is(err, query.ErrInvalid) {
		return apierr.BadRequest("invalid_query", "%s", err.Error())
	}
	return persistErr(op, err)
}
