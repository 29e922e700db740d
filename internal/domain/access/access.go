// Package access centraliza qué rol puede ejecutar cada operación del núcleo.
package access

import (
	"context"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

// Capability es una operación protegida.
type Capability string

const (
	ManageRegister   Capability = "caja:gestionar"    // abrir, cerrar, crear, arqueo
	RecordMovement   Capability = "caja:movimiento"   // ingresos y egresos
	ManagePromotions Capability = "promocion:gestionar"
	ManageCatalog    Capability = "catalogo:gestionar" // urbanizaciones y lotes
	ChangeLotState   Capability = "lote:estado"        // reservar, vender, liberar
	ManageUsers      Capability = "usuario:gestionar"
)

var grants = map[Capability][]string{
	ManageRegister:   {entity.RoleAdmin, entity.RoleSecretary},
	RecordMovement:   {entity.RoleAdmin, entity.RoleSecretary, entity.RoleAdvisor},
	ManagePromotions: {entity.RoleAdmin},
	ManageCatalog:    {entity.RoleAdmin},
	ChangeLotState:   {entity.RoleAdmin, entity.RoleSecretary, entity.RoleAdvisor},
	ManageUsers:      {entity.RoleAdmin},
}

// Can indica si role tiene la capacidad cap.
func Can(role string, cap Capability) bool {
	for _, r := range grants[cap] {
		if r == role {
			return true
		}
	}
	return false
}

// Require valida que el usuario exista, esté activo y tenga la capacidad.
// Devuelve un error de clase domain.ErrNotFound o domain.ErrPermission.
func Require(user *entity.User, cap Capability) error {
	if user == nil {
		return domain.NotFound("usuario no encontrado")
	}
	if !user.Active {
		return domain.Permission("usuario inactivo")
	}
	if !Can(user.Role, cap) {
		return domain.Permission("el rol %s no puede ejecutar %s", user.Role, cap)
	}
	return nil
}

// Resolve carga al usuario desde el directorio y valida la capacidad.
func Resolve(ctx context.Context, users repository.UserRepository, userID string, cap Capability) (*entity.User, error) {
	if userID == "" {
		return nil, domain.NotFound("usuario no encontrado")
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := Require(user, cap); err != nil {
		return nil, err
	}
	return user, nil
}
