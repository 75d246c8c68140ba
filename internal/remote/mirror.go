package remote

import (
	"context"

	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"go.uber.org/zap"
)

// Pusher is the part of Client the mirror needs.
type Pusher interface {
	PushUser(ctx context.Context, u *store.User) error
}

// MirroredUserRepository writes users locally and then mirrors them to the
// remote backend. The local store stays authoritative: a failed push is
// logged and the local result returned.
type MirroredUserRepository struct {
	usecase.UserRepository
	remote Pusher
	logger *zap.Logger
}

func NewMirroredUserRepository(local usecase.UserRepository, remote Pusher, logger *zap.Logger) *MirroredUserRepository {
	return &MirroredUserRepository{UserRepository: local, remote: remote, logger: logger}
}

func (r *MirroredUserRepository) CreateUser(ctx context.Context, user *store.User) error {
	if err := r.UserRepository.CreateUser(ctx, user); err != nil {
		return err
	}
	r.push(ctx, user)
	return nil
}

func (r *MirroredUserRepository) UpdateUser(ctx context.Context, user *store.User) (*store.User, error) {
	saved, err := r.UserRepository.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	r.push(ctx, saved)
	return saved, nil
}

func (r *MirroredUserRepository) push(ctx context.Context, user *store.User) {
	if err := r.remote.PushUser(ctx, user); err != nil {
		r.logger.Warn("Failed to mirror user to remote backend",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

var _ usecase.UserRepository = (*MirroredUserRepository)(nil)
