package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var (
	_ repository.UrbanizationRepository = (*UrbanizationRepo)(nil)
	_ repository.LotRepository          = (*LotRepo)(nil)
)

// UrbanizationRepo urbanizaciones en memoria.
type UrbanizationRepo struct{ v view }

func (r *UrbanizationRepo) Create(_ context.Context, u *entity.Urbanization) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.urbs {
			if existing.Name == u.Name {
				return fmt.Errorf("urbanización %q: %w", u.Name, domain.ErrDuplicate)
			}
		}
		st.urbs[u.ID] = *u
		return nil
	})
}

func (r *UrbanizationRepo) GetByID(_ context.Context, id string) (*entity.Urbanization, error) {
	var out *entity.Urbanization
	r.v.read(func(st *state) {
		if u, ok := st.urbs[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UrbanizationRepo) List(_ context.Context) ([]*entity.Urbanization, error) {
	var out []*entity.Urbanization
	r.v.read(func(st *state) {
		for _, u := range st.urbs {
			u := u
			out = append(out, &u)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LotRepo lotes en memoria.
type LotRepo struct{ v view }

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.lots {
			if existing.UrbanizationID == lot.UrbanizationID && existing.Number == lot.Number {
				return fmt.Errorf("lote %s: %w", lot.Number, domain.ErrDuplicate)
			}
		}
		st.lots[lot.ID] = *lot
		return nil
	})
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	r.v.read(func(st *state) {
		if l, ok := st.lots[id]; ok {
			out = &l
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el lock exclusivo del store.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *LotRepo) List(_ context.Context, filter repository.LotFilter) ([]*entity.Lot, error) {
	var out []*entity.Lot
	r.v.read(func(st *state) {
		for _, l := range st.lots {
			if filter.UrbanizationID != "" && l.UrbanizationID != filter.UrbanizationID {
				continue
			}
			if filter.State != "" && l.State != filter.State {
				continue
			}
			l := l
			out = append(out, &l)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].UrbanizationID != out[j].UrbanizationID {
			return out[i].UrbanizationID < out[j].UrbanizationID
		}
		return out[i].Number < out[j].Number
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *LotRepo) UpdatePricing(_ context.Context, id string, currentPrice decimal.Decimal, lotState string) error {
	return r.v.write(func(st *state) error {
		l, ok := st.lots[id]
		if !ok {
			return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
		}
		l.CurrentPrice = currentPrice
		l.State = lotState
		l.UpdatedAt = time.Now()
		st.lots[id] = l
		return nil
	})
}

func (r *LotRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.lots, id)
		for k := range st.links {
			if k.lotID == id {
				delete(st.links, k)
			}
		}
		return nil
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
