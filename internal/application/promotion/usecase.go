package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/access"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/pricing"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

const (
	tablePromotions = "promociones"
	tableLinks      = "lote_promocion"
)

// UseCase motor de promociones: aplica descuentos sobre lotes, controla superposición
// y restaura precios al quitar, eliminar o vencer una promoción.
type UseCase struct {
	tx     TxRunner
	users  repository.UserRepository
	urbs   repository.UrbanizationRepository
	promos repository.PromotionRepository
	links  repository.LotPromotionRepository
	audit  *audit.Recorder
	log    zerolog.Logger
	now    func() time.Time
}

// Option configura el caso de uso.
type Option func(*UseCase)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

// NewUseCase construye el motor de promociones.
func NewUseCase(
	tx TxRunner,
	users repository.UserRepository,
	urbs repository.UrbanizationRepository,
	promos repository.PromotionRepository,
	links repository.LotPromotionRepository,
	recorder *audit.Recorder,
	log zerolog.Logger,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		tx:     tx,
		users:  users,
		urbs:   urbs,
		promos: promos,
		links:  links,
		audit:  recorder,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ─── Operaciones públicas ────────────────────────────────────────────────────

// CreatePromotion valida, persiste la promoción activa y la aplica a su alcance en la misma transacción.
func (uc *UseCase) CreatePromotion(ctx context.Context, actor audit.Actor, in dto.CreatePromotionRequest) (*dto.CreatePromotionResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManagePromotions); err != nil {
		return nil, err
	}
	scope, err := in.Scope()
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validation("el título es obligatorio")
	}
	if !pricing.ValidDiscount(in.Discount) {
		return nil, domain.Validation("el descuento debe ser mayor a 0 y menor o igual a 100")
	}
	if !in.StartDate.Before(in.EndDate) {
		return nil, domain.Validation("fecha_inicio debe ser anterior a fecha_fin")
	}
	if err := uc.checkScope(ctx, scope); err != nil {
		return nil, err
	}

	now := uc.now()
	p := &entity.Promotion{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Discount:    in.Discount,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var result *dto.ApplyResult
	var linked []*entity.LotPromotion
	err = uc.tx.RunLots(ctx, func(lots repository.LotRepository, promos repository.PromotionRepository, links repository.LotPromotionRepository) error {
		if err := promos.Create(ctx, p); err != nil {
			return err
		}
		r, err := uc.applyScope(ctx, lots, promos, links, p, scope)
		if err != nil {
			return err
		}
		result = r
		linked, err = links.ListByPromotion(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logBatch(p.ID, result)
	uc.audit.Record(ctx, actor, entity.AuditCreate, tablePromotions, p.ID, nil, p)
	return &dto.CreatePromotionResponse{Promotion: toPromotionResponse(p, linked), Applied: *result}, nil
}

// Apply reaplica una promoción existente con el alcance indicado.
func (uc *UseCase) Apply(ctx context.Context, actor audit.Actor, promotionID string, scope entity.PromotionScope) (*dto.ApplyResult, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManagePromotions); err != nil {
		return nil, err
	}
	if promotionID == "" {
		return nil, domain.Validation("promocion_id es obligatorio")
	}
	if scope == nil {
		return nil, domain.Validation("debe indicar el alcance de la promoción")
	}
	if err := uc.checkScope(ctx, scope); err != nil {
		return nil, err
	}

	var result *dto.ApplyResult
	var before, after entity.Promotion
	err := uc.tx.RunLots(ctx, func(lots repository.LotRepository, promos repository.PromotionRepository, links repository.LotPromotionRepository) error {
		p, err := promos.GetForUpdate(ctx, promotionID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("promoción %s no encontrada", promotionID)
		}
		if !p.Active {
			return domain.State("la promoción %s no está activa", promotionID)
		}
		before = *p
		r, err := uc.applyScope(ctx, lots, promos, links, p, scope)
		if err != nil {
			return err
		}
		result = r
		after = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logBatch(promotionID, result)
	uc.audit.Record(ctx, actor, entity.AuditApply, tablePromotions, promotionID, before, after)
	return result, nil
}

// ApplyToLots aplica la promoción a una lista explícita de lotes.
func (uc *UseCase) ApplyToLots(ctx context.Context, actor audit.Actor, promotionID string, lotIDs []string) (*dto.ApplyResult, error) {
	scope, err := dto.PromotionScopeRequest{LotIDs: lotIDs}.Scope()
	if err != nil {
		return nil, err
	}
	return uc.Apply(ctx, actor, promotionID, scope)
}

// ApplyToUrbanization aplica la promoción a los lotes disponibles de una urbanización.
func (uc *UseCase) ApplyToUrbanization(ctx context.Context, actor audit.Actor, promotionID, urbanizationID string) (*dto.ApplyResult, error) {
	scope, err := dto.PromotionScopeRequest{UrbanizationID: urbanizationID}.Scope()
	if err != nil {
		return nil, err
	}
	return uc.Apply(ctx, actor, promotionID, scope)
}

// ApplyToAllAvailable aplica la promoción a todos los lotes disponibles.
func (uc *UseCase) ApplyToAllAvailable(ctx context.Context, actor audit.Actor, promotionID string) (*dto.ApplyResult, error) {
	return uc.Apply(ctx, actor, promotionID, entity.ScopeAllAvailable{})
}

// RemoveFromLot quita la promoción del lote. Sin enlace no hace nada (Removed=false).
func (uc *UseCase) RemoveFromLot(ctx context.Context, actor audit.Actor, lotID, promotionID string) (*dto.RemoveFromLotResult, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManagePromotions); err != nil {
		return nil, err
	}
	if lotID == "" || promotionID == "" {
		return nil, domain.Validation("lote_id y promocion_id son obligatorios")
	}
	res := &dto.RemoveFromLotResult{}
	var removed *entity.LotPromotion
	err := uc.tx.RunLots(ctx, func(lots repository.LotRepository, _ repository.PromotionRepository, links repository.LotPromotionRepository) error {
		link, err := links.Get(ctx, lotID, promotionID)
		if err != nil || link == nil {
			return err
		}
		restored, err := uc.detach(ctx, lots, links, link)
		if err != nil {
			return err
		}
		removed = link
		res.Removed = true
		res.PriceRestored = restored
		return nil
	})
	if err != nil {
		return nil, err
	}
	if removed != nil {
		uc.audit.Record(ctx, actor, entity.AuditDelete, tableLinks, lotID+":"+promotionID, removed, nil)
	}
	return res, nil
}

// UpdateDiscount cambia el porcentaje y recalcula desde el precio original el precio de todos los
// enlaces, incluidos los de lotes RESERVADO o VENDIDO, para que una liberación posterior use el
// descuento vigente. Solo se reprecian los lotes modificables, tomando el enlace más reciente.
func (uc *UseCase) UpdateDiscount(ctx context.Context, actor audit.Actor, promotionID string, discount decimal.Decimal) (*dto.UpdateDiscountResult, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManagePromotions); err != nil {
		return nil, err
	}
	if !pricing.ValidDiscount(discount) {
		return nil, domain.Validation("el descuento debe ser mayor a 0 y menor o igual a 100")
	}
	res := &dto.UpdateDiscountResult{PromotionID: promotionID}
	var before, after entity.Promotion
	err := uc.tx.RunLots(ctx, func(lots repository.LotRepository, promos repository.PromotionRepository, links repository.LotPromotionRepository) error {
		p, err := promos.GetForUpdate(ctx, promotionID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("promoción %s no encontrada", promotionID)
		}
		before = *p
		linked, err := links.ListByPromotion(ctx, promotionID)
		if err != nil {
			return err
		}
		now := uc.now()
		for _, link := range linked {
			lot, err := lots.GetForUpdate(ctx, link.LotID)
			if err != nil {
				return err
			}
			link.DiscountedPrice = pricing.DiscountedPrice(link.OriginalPrice, discount)
			link.UpdatedAt = now
			if err := links.Upsert(ctx, link); err != nil {
				return err
			}
			if lot == nil || !lot.PriceMutable() {
				continue
			}
			price, ok, err := latestOfferPrice(ctx, links, lot.ID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := lots.UpdatePricing(ctx, lot.ID, price, entity.LotStateWithOffer); err != nil {
				return err
			}
			res.RepricedLots++
		}
		p.Discount = discount
		p.UpdatedAt = now
		after = *p
		return promos.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditUpdate, tablePromotions, promotionID, before, after)
	return res, nil
}

// DeletePromotion quita la promoción de todos sus lotes (restaurando precios) y la elimina.
func (uc *UseCase) DeletePromotion(ctx context.Context, actor audit.Actor, promotionID string) (*dto.DeletePromotionResult, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManagePromotions); err != nil {
		return nil, err
	}
	res := &dto.DeletePromotionResult{PromotionID: promotionID}
	var before entity.Promotion
	err := uc.tx.RunLots(ctx, func(lots repository.LotRepository, promos repository.PromotionRepository, links repository.LotPromotionRepository) error {
		p, err := promos.GetForUpdate(ctx, promotionID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("promoción %s no encontrada", promotionID)
		}
		before = *p
		restored, err := uc.detachAll(ctx, lots, links, promotionID)
		if err != nil {
			return err
		}
		res.RestoredLots = restored
		return promos.Delete(ctx, promotionID)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditDelete, tablePromotions, promotionID, before, nil)
	return res, nil
}

// SweepExpired desactiva las promociones activas vencidas y restaura los precios de sus lotes.
// Cada promoción se procesa en su propia transacción; una ya inactiva se omite.
// Los fallos por promoción se registran y se devuelven unidos sin detener el barrido.
func (uc *UseCase) SweepExpired(ctx context.Context) (*dto.SweepResult, error) {
	now := uc.now()
	expired, err := uc.promos.ListExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("listar promociones vencidas: %w", err)
	}
	res := &dto.SweepResult{}
	var errs []error
	for _, candidate := range expired {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		processed, restored, err := uc.expire(ctx, candidate.ID, now)
		if err != nil {
			uc.log.Error().Err(err).Str("promotion_id", candidate.ID).Msg("no se pudo vencer la promoción")
			errs = append(errs, fmt.Errorf("promoción %s: %w", candidate.ID, err))
			continue
		}
		if !processed {
			continue
		}
		res.ProcessedPromotions++
		res.RestoredLots += restored
	}
	if res.ProcessedPromotions > 0 {
		uc.log.Info().
			Int("promociones", res.ProcessedPromotions).
			Int("lotes_restaurados", res.RestoredLots).
			Msg("barrido de promociones vencidas")
	}
	return res, errors.Join(errs...)
}

// GetPromotion devuelve la promoción con sus lotes enlazados.
func (uc *UseCase) GetPromotion(ctx context.Context, id string) (*dto.PromotionResponse, error) {
	p, err := uc.promos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("promoción %s no encontrada", id)
	}
	linked, err := uc.links.ListByPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toPromotionResponse(p, linked)
	return &out, nil
}

// ListPromotions lista promociones; onlyActive filtra las activas.
func (uc *UseCase) ListPromotions(ctx context.Context, onlyActive bool) ([]dto.PromotionResponse, error) {
	list, err := uc.promos.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PromotionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPromotionResponse(p, nil))
	}
	return out, nil
}

// ─── Lógica interna ──────────────────────────────────────────────────────────

// checkScope valida el alcance antes de abrir la transacción.
func (uc *UseCase) checkScope(ctx context.Context, scope entity.PromotionScope) error {
	switch s := scope.(type) {
	case entity.ScopeLots:
		if len(s.LotIDs) == 0 {
			return domain.Validation("lotes_especificos no puede estar vacío")
		}
	case entity.ScopeUrbanization:
		u, err := uc.urbs.GetByID(ctx, s.UrbanizationID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.NotFound("urbanización %s no encontrada", s.UrbanizationID)
		}
	case entity.ScopeAllAvailable:
	default:
		return domain.Validation("alcance de promoción desconocido")
	}
	return nil
}

// applyScope reemplaza los enlaces de p por los del nuevo alcance.
// Los errores de dominio por lote se acumulan; un error de infraestructura aborta la transacción.
func (uc *UseCase) applyScope(
	ctx context.Context,
	lots repository.LotRepository,
	promos repository.PromotionRepository,
	links repository.LotPromotionRepository,
	p *entity.Promotion,
	scope entity.PromotionScope,
) (*dto.ApplyResult, error) {
	restored, err := uc.detachAll(ctx, lots, links, p.ID)
	if err != nil {
		return nil, err
	}
	candidates, err := candidateLots(ctx, lots, scope)
	if err != nil {
		return nil, err
	}
	result := &dto.ApplyResult{
		PromotionID:  p.ID,
		Method:       scope.Kind(),
		RestoredLots: restored,
		Errors:       []dto.LotError{},
	}
	for _, lotID := range candidates {
		err := uc.applyToLot(ctx, lots, promos, links, lotID, p)
		if err == nil {
			result.AssignedLots++
			continue
		}
		var de *domain.Error
		if !errors.As(err, &de) {
			return nil, err
		}
		result.Errors = append(result.Errors, dto.LotError{
			LotID:   lotID,
			Code:    domain.Code(err),
			Message: domain.Message(err),
		})
	}
	p.Scope = scope
	p.UpdatedAt = uc.now()
	if err := promos.Update(ctx, p); err != nil {
		return nil, err
	}
	return result, nil
}

// candidateLots resuelve los lotes a los que se intentará aplicar el alcance.
// Para una lista explícita se intentan todos y applyToLot reporta los no disponibles.
func candidateLots(ctx context.Context, lots repository.LotRepository, scope entity.PromotionScope) ([]string, error) {
	var filter repository.LotFilter
	switch s := scope.(type) {
	case entity.ScopeLots:
		return s.LotIDs, nil
	case entity.ScopeUrbanization:
		filter = repository.LotFilter{UrbanizationID: s.UrbanizationID, State: entity.LotStateAvailable}
	case entity.ScopeAllAvailable:
		filter = repository.LotFilter{State: entity.LotStateAvailable}
	}
	list, err := lots.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, l := range list {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

// applyToLot enlaza un lote con la promoción. Todas las validaciones ocurren antes de escribir.
func (uc *UseCase) applyToLot(
	ctx context.Context,
	lots repository.LotRepository,
	promos repository.PromotionRepository,
	links repository.LotPromotionRepository,
	lotID string,
	p *entity.Promotion,
) error {
	lot, err := lots.GetForUpdate(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.NotFound("lote %s no encontrado", lotID)
	}
	if !lot.PriceMutable() {
		return domain.State("el lote %s está %s", lot.Number, lot.State)
	}
	active, err := promos.ListActiveByLot(ctx, lotID)
	if err != nil {
		return err
	}
	for _, other := range active {
		if other.ID == p.ID {
			continue
		}
		if pricing.RangesOverlap(other.StartDate, other.EndDate, p.StartDate, p.EndDate) {
			return domain.Overlap("el lote %s ya tiene la promoción %q en fechas superpuestas", lot.Number, other.Title)
		}
	}

	now := uc.now()
	link := &entity.LotPromotion{
		LotID:           lotID,
		PromotionID:     p.ID,
		OriginalPrice:   lot.BasePrice,
		DiscountedPrice: pricing.DiscountedPrice(lot.BasePrice, p.Discount),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := links.Upsert(ctx, link); err != nil {
		return err
	}
	return lots.UpdatePricing(ctx, lotID, link.DiscountedPrice, entity.LotStateWithOffer)
}

// detachAll quita todos los enlaces de la promoción y devuelve cuántos precios se restauraron.
func (uc *UseCase) detachAll(ctx context.Context, lots repository.LotRepository, links repository.LotPromotionRepository, promotionID string) (int, error) {
	linked, err := links.ListByPromotion(ctx, promotionID)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, link := range linked {
		ok, err := uc.detach(ctx, lots, links, link)
		if err != nil {
			return 0, err
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}

// detach borra el enlace y, si el lote sigue siendo modificable, restaura su precio.
// Si el lote conserva otro enlace toma el precio de ese enlace y sigue CON_OFERTA;
// si no, vuelve al precio original y a DISPONIBLE. Un lote RESERVADO o VENDIDO no se toca.
func (uc *UseCase) detach(ctx context.Context, lots repository.LotRepository, links repository.LotPromotionRepository, link *entity.LotPromotion) (bool, error) {
	lot, err := lots.GetForUpdate(ctx, link.LotID)
	if err != nil {
		return false, err
	}
	if err := links.Delete(ctx, link.LotID, link.PromotionID); err != nil {
		return false, err
	}
	if lot == nil || !lot.PriceMutable() {
		return false, nil
	}
	price, state := link.OriginalPrice, entity.LotStateAvailable
	offer, ok, err := latestOfferPrice(ctx, links, lot.ID)
	if err != nil {
		return false, err
	}
	if ok {
		price, state = offer, entity.LotStateWithOffer
	}
	if err := lots.UpdatePricing(ctx, lot.ID, price, state); err != nil {
		return false, err
	}
	return true, nil
}

// latestOfferPrice devuelve el precio del enlace aplicado más recientemente al lote.
func latestOfferPrice(ctx context.Context, links repository.LotPromotionRepository, lotID string) (decimal.Decimal, bool, error) {
	linked, err := links.ListByLot(ctx, lotID)
	if err != nil || len(linked) == 0 {
		return decimal.Zero, false, err
	}
	return linked[0].DiscountedPrice, true, nil
}

// expire procesa una promoción vencida en su propia transacción.
func (uc *UseCase) expire(ctx context.Context, promotionID string, now time.Time) (processed bool, restored int, err error) {
	var before, after entity.Promotion
	err = uc.tx.RunLots(ctx, func(lots repository.LotRepository, promos repository.PromotionRepository, links repository.LotPromotionRepository) error {
		p, err := promos.GetForUpdate(ctx, promotionID)
		if err != nil {
			return err
		}
		if p == nil || !p.Active || !p.Expired(now) {
			return nil
		}
		before = *p
		n, err := uc.detachAll(ctx, lots, links, promotionID)
		if err != nil {
			return err
		}
		p.Active = false
		p.UpdatedAt = now
		if err := promos.Update(ctx, p); err != nil {
			return err
		}
		after = *p
		processed, restored = true, n
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if processed {
		uc.audit.Record(ctx, audit.System, entity.AuditExpire, tablePromotions, promotionID, before, after)
	}
	return processed, restored, nil
}

func (uc *UseCase) logBatch(promotionID string, r *dto.ApplyResult) {
	for _, e := range r.Errors {
		uc.log.Warn().
			Str("promotion_id", promotionID).
			Str("lote_id", e.LotID).
			Str("code", e.Code).
			Msg(e.Message)
	}
}

func toPromotionResponse(p *entity.Promotion, linked []*entity.LotPromotion) dto.PromotionResponse {
	out := dto.PromotionResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Discount:    p.Discount,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	switch s := p.Scope.(type) {
	case entity.ScopeLots:
		out.Method = s.Kind()
		out.LotIDs = s.LotIDs
	case entity.ScopeUrbanization:
		out.Method = s.Kind()
		out.UrbanizationID = s.UrbanizationID
	case entity.ScopeAllAvailable:
		out.Method = s.Kind()
	}
	for _, l := range linked {
		out.Lots = append(out.Lots, dto.PromotionLotResponse{
			LotID:           l.LotID,
			OriginalPrice:   l.OriginalPrice,
			DiscountedPrice: l.DiscountedPrice,
		})
	}
	return out
}
