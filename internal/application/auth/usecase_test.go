package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/auth"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/Inmobiliaria-api/pkg/jwt"
)

const secret = "secreto-de-pruebas"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	st := memory.New()
	rec := audit.NewRecorder(st.Audit(), zerolog.Nop())
	uc := auth.NewAuthUseCase(st.Users(), rec, auth.JWTConfig{Secret: secret, ExpMinutes: 30, Issuer: "inmobiliaria-test"})
	return uc, st
}

func TestRegisterUser_SiempreCliente(t *testing.T) {
	uc, st := newAuth(t)
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Juan@Correo.COM ", Password: "clave-segura", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "juan@correo.com", u.Email)
	assert.Equal(t, entity.RoleClient, u.Role, "el registro público no elige rol")
	assert.Equal(t, "juan@correo.com", u.Name)

	stored, err := st.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "clave-segura", stored.PasswordHash)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "juan@correo.com", Password: "otra-clave-1"})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "sin-arroba", Password: "clave-segura"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "corta@correo.com", Password: "1234"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestLogin(t *testing.T) {
	uc, st := newAuth(t)
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "maria@correo.com", Password: "clave-segura", Name: "María"})
	require.NoError(t, err)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "maria@correo.com", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	userID, role, err := pkgjwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleClient, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "maria@correo.com", Password: "incorrecta"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@correo.com", Password: "clave-segura"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	stored, err := st.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	stored.Active = false
	inactive := *stored
	inactive.ID = "inactivo"
	inactive.Email = "inactivo@correo.com"
	require.NoError(t, st.Users().Create(ctx, &inactive))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "inactivo@correo.com", Password: "clave-segura"})
	assert.True(t, errors.Is(err, domain.ErrPermission))
}

func TestEnsureAdminYCreateUser(t *testing.T) {
	uc, st := newAuth(t)
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin@inmo.test", "admin-inicial")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin@inmo.test", "admin-inicial")
	require.NoError(t, err)
	assert.False(t, created, "idempotente")

	admin, err := st.Users().GetByEmail(ctx, "admin@inmo.test")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, entity.RoleAdmin, admin.Role)

	secre, err := uc.CreateUser(ctx, audit.Actor{UserID: admin.ID}, dto.RegisterRequest{
		Email: "secre@inmo.test", Password: "clave-segura", Name: "Sara", Role: entity.RoleSecretary,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSecretary, secre.Role)

	plain, err := uc.CreateUser(ctx, audit.Actor{UserID: admin.ID}, dto.RegisterRequest{Email: "user@inmo.test", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, plain.Role)

	_, err = uc.CreateUser(ctx, audit.Actor{UserID: secre.ID}, dto.RegisterRequest{Email: "x@inmo.test", Password: "clave-segura"})
	assert.True(t, errors.Is(err, domain.ErrPermission))

	_, err = uc.CreateUser(ctx, audit.Actor{UserID: admin.ID}, dto.RegisterRequest{Email: "y@inmo.test", Password: "clave-segura", Role: "GERENTE"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	me, err := uc.Me(ctx, secre.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sara", me.Name)

	_, err = uc.Me(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
