// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y al levantar la API con STORAGE=memory.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

type linkKey struct{ lotID, promotionID string }

type state struct {
	users   map[string]entity.User
	urbs    map[string]entity.Urbanization
	lots    map[string]entity.Lot
	promos  map[string]entity.Promotion
	links   map[linkKey]entity.LotPromotion
	cajas   map[string]entity.Caja
	movs    []entity.MovimientoCaja
	cierres []entity.CierreCaja
	audit   []entity.AuditEntry
}

func newState() *state {
	return &state{
		users:  map[string]entity.User{},
		urbs:   map[string]entity.Urbanization{},
		lots:   map[string]entity.Lot{},
		promos: map[string]entity.Promotion{},
		links:  map[linkKey]entity.LotPromotion{},
		cajas:  map[string]entity.Caja{},
	}
}

func (s *state) clone() *state {
	return &state{
		users:   maps.Clone(s.users),
		urbs:    maps.Clone(s.urbs),
		lots:    maps.Clone(s.lots),
		promos:  maps.Clone(s.promos),
		links:   maps.Clone(s.links),
		cajas:   maps.Clone(s.cajas),
		movs:    slices.Clone(s.movs),
		cierres: slices.Clone(s.cierres),
		audit:   slices.Clone(s.audit),
	}
}

// Store guarda todo el estado bajo un único mutex. Una transacción toma el lock exclusivo,
// trabaja sobre una copia y la publica solo si fn termina sin error.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// view da acceso al estado: dentro de una tx usa la copia; fuera toma el lock del store.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(*state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.st)
}

func (v view) write(fn func(*state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (s *Store) root() view { return view{store: s} }

func (s *Store) run(ctx context.Context, fn func(v view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(view{store: s, tx: tx}); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// RunLots ejecuta fn con repos de lotes, promociones y enlaces atados a una transacción.
func (s *Store) RunLots(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	promoRepo repository.PromotionRepository,
	linkRepo repository.LotPromotionRepository,
) error) error {
	return s.run(ctx, func(v view) error {
		return fn(&LotRepo{v}, &PromotionRepo{v}, &LotPromotionRepo{v})
	})
}

// RunCaja ejecuta fn con repos de caja, movimientos y cierres atados a una transacción.
func (s *Store) RunCaja(ctx context.Context, fn func(
	cajaRepo repository.CajaRepository,
	movRepo repository.MovimientoCajaRepository,
	cierreRepo repository.CierreCajaRepository,
) error) error {
	return s.run(ctx, func(v view) error {
		return fn(&CajaRepo{v}, &MovimientoRepo{v}, &CierreRepo{v})
	})
}

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s.root()} }

// Urbanizations devuelve el repositorio de urbanizaciones.
func (s *Store) Urbanizations() *UrbanizationRepo { return &UrbanizationRepo{s.root()} }

// Lots devuelve el repositorio de lotes.
func (s *Store) Lots() *LotRepo { return &LotRepo{s.root()} }

// Promotions devuelve el repositorio de promociones.
func (s *Store) Promotions() *PromotionRepo { return &PromotionRepo{s.root()} }

// LotPromotions devuelve el repositorio de enlaces lote-promoción.
func (s *Store) LotPromotions() *LotPromotionRepo { return &LotPromotionRepo{s.root()} }

// Cajas devuelve el repositorio de cajas.
func (s *Store) Cajas() *CajaRepo { return &CajaRepo{s.root()} }

// Movimientos devuelve el repositorio de movimientos de caja.
func (s *Store) Movimientos() *MovimientoRepo { return &MovimientoRepo{s.root()} }

// Cierres devuelve el repositorio de cierres de caja.
func (s *Store) Cierres() *CierreRepo { return &CierreRepo{s.root()} }

// Audit devuelve el sumidero de auditoría.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s.root()} }

// AuditEntries devuelve una copia de la bitácora.
func (s *Store) AuditEntries() []entity.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.audit)
}
