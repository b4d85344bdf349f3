package user

import (
	"context"
	"strings"

	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/google/uuid"
)

type Service interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
}

type UserServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewUserService(repo Repo, clock utils.Clock) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, clock: clock}
}

// CreateUser assigns the uid and creation time. Emails are stored lower-cased so that
// uniqueness does not depend on letter case.
func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Id = 0
	user.Uid = uuid.NewString()
	user.Name = strings.TrimSpace(user.Name)
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = u.clock.Now()
	return u.repo.CreateUser(ctx, user)
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return u.repo.GetUserByEmail(ctx, normalizeEmail(email))
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return u.repo.GetAllUsers(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
