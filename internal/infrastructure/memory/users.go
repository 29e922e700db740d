package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var (
	_ repository.UserRepository  = (*UserRepo)(nil)
	_ repository.AuditRepository = (*AuditRepo)(nil)
)

// UserRepo usuarios en memoria. El email es único sin distinguir mayúsculas.
type UserRepo struct{ v view }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.v.write(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, user.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

// AuditRepo bitácora en memoria.
type AuditRepo struct{ v view }

func (r *AuditRepo) Create(_ context.Context, entry *entity.AuditEntry) error {
	return r.v.write(func(st *state) error {
		st.audit = append(st.audit, *entry)
		return nil
	})
}
