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

const tableLots = "lotes"

// LotTxRunner transacción sobre lotes y sus enlaces de promoción.
type LotTxRunner interface {
	RunLots(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		promoRepo repository.PromotionRepository,
		linkRepo repository.LotPromotionRepository,
	) error) error
}

// LotUseCase casos de uso del catálogo de lotes.
type LotUseCase struct {
	tx    LotTxRunner
	lots  repository.LotRepository
	urbs  repository.UrbanizationRepository
	users repository.UserRepository
	audit *audit.Recorder
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(
	tx LotTxRunner,
	lots repository.LotRepository,
	urbs repository.UrbanizationRepository,
	users repository.UserRepository,
	recorder *audit.Recorder,
) *LotUseCase {
	return &LotUseCase{tx: tx, lots: lots, urbs: urbs, users: users, audit: recorder}
}

// Create crea un lote DISPONIBLE con precio_actual = precio_base.
func (uc *LotUseCase) Create(ctx context.Context, actor audit.Actor, urbanizationID string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageCatalog); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, domain.Validation("numero_lote es obligatorio")
	}
	if !in.Area.IsPositive() {
		return nil, domain.Validation("el área debe ser mayor a 0")
	}
	if !in.BasePrice.IsPositive() || !in.BasePrice.Equal(in.BasePrice.Round(2)) {
		return nil, domain.Validation("precio_base inválido: %s", in.BasePrice.String())
	}
	urb, err := uc.urbs.GetByID(ctx, urbanizationID)
	if err != nil {
		return nil, err
	}
	if urb == nil {
		return nil, domain.NotFound("urbanización %s no encontrada", urbanizationID)
	}
	now := time.Now()
	lot := &entity.Lot{
		ID:             uuid.New().String(),
		UrbanizationID: urbanizationID,
		Number:         number,
		Area:           in.Area,
		BasePrice:      in.BasePrice,
		CurrentPrice:   in.BasePrice,
		State:          entity.LotStateAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreate, tableLots, lot.ID, nil, lot)
	return toLotResponse(lot), nil
}

// GetByID obtiene un lote por ID.
func (uc *LotUseCase) GetByID(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.NotFound("lote %s no encontrado", id)
	}
	return toLotResponse(lot), nil
}

// List lista lotes filtrando por urbanización y estado, con paginación.
func (uc *LotUseCase) List(ctx context.Context, urbanizationID, state string, page dto.PageRequest) (*dto.LotListResponse, error) {
	page.Normalize()
	state = strings.ToUpper(strings.TrimSpace(state))
	if state != "" && !entity.ValidLotState(state) {
		return nil, domain.Validation("estado de lote inválido: %q", state)
	}
	list, err := uc.lots.List(ctx, repository.LotFilter{
		UrbanizationID: urbanizationID,
		State:          state,
		Limit:          page.Limit + 1,
		Offset:         page.Offset,
	})
	if err != nil {
		return nil, err
	}
	more := len(list) > page.Limit
	if more {
		list = list[:page.Limit]
	}
	items := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLotResponse(l))
	}
	return &dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, HasMore: more},
	}, nil
}

// ChangeState reserva, vende o libera un lote.
// RESERVADO y VENDIDO congelan el precio vigente. Al liberar, el precio se vuelve a derivar:
// del enlace de promoción más reciente (CON_OFERTA) o del precio base (DISPONIBLE).
func (uc *LotUseCase) ChangeState(ctx context.Context, actor audit.Actor, lotID, target string) (*dto.LotResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ChangeLotState); err != nil {
		return nil, err
	}
	target = strings.ToUpper(strings.TrimSpace(target))
	switch target {
	case entity.LotStateAvailable, entity.LotStateReserved, entity.LotStateSold:
	case entity.LotStateWithOffer:
		return nil, domain.Validation("el estado CON_OFERTA lo asignan las promociones")
	default:
		return nil, domain.Validation("estado de lote inválido: %q", target)
	}

	var before, after entity.Lot
	err := uc.tx.RunLots(ctx, func(lots repository.LotRepository, _ repository.PromotionRepository, links repository.LotPromotionRepository) error {
		lot, err := lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.NotFound("lote %s no encontrado", lotID)
		}
		if err := checkTransition(lot.State, target); err != nil {
			return err
		}
		before = *lot
		price, state := lot.CurrentPrice, target
		if target == entity.LotStateAvailable {
			linked, err := links.ListByLot(ctx, lotID)
			if err != nil {
				return err
			}
			price = lot.BasePrice
			if len(linked) > 0 {
				price, state = linked[0].DiscountedPrice, entity.LotStateWithOffer
			}
		}
		if err := lots.UpdatePricing(ctx, lotID, price, state); err != nil {
			return err
		}
		lot.CurrentPrice, lot.State, lot.UpdatedAt = price, state, time.Now()
		after = *lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditUpdate, tableLots, lotID, before, after)
	return toLotResponse(&after), nil
}

// Delete elimina un lote DISPONIBLE sin promociones enlazadas.
func (uc *LotUseCase) Delete(ctx context.Context, actor audit.Actor, lotID string) error {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageCatalog); err != nil {
		return err
	}
	var before entity.Lot
	err := uc.tx.RunLots(ctx, func(lots repository.LotRepository, _ repository.PromotionRepository, links repository.LotPromotionRepository) error {
		lot, err := lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.NotFound("lote %s no encontrado", lotID)
		}
		if lot.State != entity.LotStateAvailable {
			return domain.State("el lote %s está %s", lot.Number, lot.State)
		}
		linked, err := links.ListByLot(ctx, lotID)
		if err != nil {
			return err
		}
		if len(linked) > 0 {
			return domain.State("el lote %s tiene promociones enlazadas", lot.Number)
		}
		before = *lot
		return lots.Delete(ctx, lotID)
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, actor, entity.AuditDelete, tableLots, lotID, before, nil)
	return nil
}

// checkTransition valida el cambio de estado manual de un lote.
func checkTransition(from, to string) error {
	if from == entity.LotStateSold {
		return domain.State("el lote ya está vendido")
	}
	switch to {
	case entity.LotStateAvailable:
		if from != entity.LotStateReserved {
			return domain.State("solo se puede liberar un lote reservado (estado actual %s)", from)
		}
	case entity.LotStateReserved:
		if from == entity.LotStateReserved {
			return domain.State("el lote ya está reservado")
		}
	}
	return nil
}

func toLotResponse(l *entity.Lot) *dto.LotResponse {
	if l == nil {
		return nil
	}
	return &dto.LotResponse{
		ID:             l.ID,
		UrbanizationID: l.UrbanizationID,
		Number:         l.Number,
		Area:           l.Area,
		BasePrice:      l.BasePrice,
		CurrentPrice:   l.CurrentPrice,
		State:          l.State,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
