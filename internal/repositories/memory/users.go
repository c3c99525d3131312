package memory

import (
	"context"

	"freelink/internal/models"
	"freelink/internal/repositories"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock()()
	for _, u := range r.s.st.users {
		if u.Email == user.Email || u.Username == user.Username || u.Phone == user.Phone {
			return repositories.ErrDuplicate
		}
	}
	user.ID = r.s.st.id()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	if user.TokenVersion == 0 {
		user.TokenVersion = 1
	}
	r.s.st.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.st.users {
		if u.Email == login || u.Username == login || u.Phone == login {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) Update(ctx context.Context, user *models.User) error {
	defer r.s.lock()()
	if _, ok := r.s.st.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = r.s.now()
	r.s.st.users[user.ID] = *user
	return nil
}
