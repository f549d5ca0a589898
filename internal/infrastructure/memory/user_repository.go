package memory

import (
	"context"

	"bankapi/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	r.s.usersMu.Lock()
	defer r.s.usersMu.Unlock()

	if _, taken := r.s.emails[params.Email]; taken {
		return nil, user.ErrEmailTaken
	}

	r.s.nextUserID++
	u := &user.User{
		ID:           r.s.nextUserID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    r.s.now(),
	}
	r.s.users[u.ID] = u
	r.s.emails[u.Email] = u.ID

	out := *u
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.usersMu.RLock()
	defer r.s.usersMu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	out := *r.s.users[id]
	return &out, nil
}
