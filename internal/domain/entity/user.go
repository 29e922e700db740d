package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "ADMINISTRADOR"
	RoleAdvisor   = "ASESOR"
	RoleSecretary = "SECRETARIA"
	RoleClient    = "CLIENTE"
	RoleUser      = "USUARIO"
)

// ValidRole indica si r es uno de los roles del sistema.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleAdvisor, RoleSecretary, RoleClient, RoleUser:
		return true
	}
	return false
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
