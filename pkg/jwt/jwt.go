package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken envuelve cualquier motivo de rechazo (firma, expiración, formato, claims).
var ErrInvalidToken = errors.New("jwt: token inválido")

var errNoSecret = errors.New("jwt: secret vacío")

// claims: sub = id de usuario. El rol viaja en el token para que el middleware no consulte la DB;
// los casos de uso vuelven a validar contra el directorio de usuarios.
type claims struct {
	jwt.RegisteredClaims
	Role string `json:"rol"`
}

// Generate firma un token HS256 para userID con su rol, válido expMinutes minutos.
func Generate(secret, userID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errNoSecret
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Parse valida firma y vigencia y devuelve el usuario (sub) y su rol.
func Parse(secret, token string) (userID, role string, err error) {
	if secret == "" {
		return "", "", errNoSecret
	}
	var c claims
	_, err = jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.Subject == "" || c.Role == "" {
		return "", "", fmt.Errorf("%w: faltan sub o rol", ErrInvalidToken)
	}
	return c.Subject, c.Role, nil
}
