package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/access"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

// UrbanizationUseCase casos de uso para urbanizaciones.
type UrbanizationUseCase struct {
	repo  repository.UrbanizationRepository
	users repository.UserRepository
	audit *audit.Recorder
}

// NewUrbanizationUseCase construye el caso de uso.
func NewUrbanizationUseCase(repo repository.UrbanizationRepository, users repository.UserRepository, recorder *audit.Recorder) *UrbanizationUseCase {
	return &UrbanizationUseCase{repo: repo, users: users, audit: recorder}
}

// Create crea una nueva urbanización.
func (uc *UrbanizationUseCase) Create(ctx context.Context, actor audit.Actor, in dto.CreateUrbanizationRequest) (*dto.UrbanizationResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageCatalog); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("el nombre de la urbanización es obligatorio")
	}
	now := time.Now()
	u := &entity.Urbanization{
		ID:          uuid.New().String(),
		Name:        name,
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreate, "urbanizaciones", u.ID, nil, u)
	return toUrbanizationResponse(u), nil
}

// GetByID obtiene una urbanización por ID.
func (uc *UrbanizationUseCase) GetByID(ctx context.Context, id string) (*dto.UrbanizationResponse, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("urbanización %s no encontrada", id)
	}
	return toUrbanizationResponse(u), nil
}

// List lista las urbanizaciones.
func (uc *UrbanizationUseCase) List(ctx context.Context) ([]dto.UrbanizationResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UrbanizationResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUrbanizationResponse(u))
	}
	return items, nil
}

func toUrbanizationResponse(u *entity.Urbanization) *dto.UrbanizationResponse {
	if u == nil {
		return nil
	}
	return &dto.UrbanizationResponse{
		ID:          u.ID,
		Name:        u.Name,
		Location:    u.Location,
		Description: u.Description,
		CreatedAt:   u.CreatedAt,
	}
}
