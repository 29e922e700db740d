package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var (
	_ repository.PromotionRepository    = (*PromotionRepo)(nil)
	_ repository.LotPromotionRepository = (*LotPromotionRepo)(nil)
)

// PromotionRepo promociones en memoria.
type PromotionRepo struct{ v view }

func (r *PromotionRepo) Create(_ context.Context, p *entity.Promotion) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.promos[p.ID]; ok {
			return fmt.Errorf("promoción %s: %w", p.ID, domain.ErrDuplicate)
		}
		st.promos[p.ID] = *p
		return nil
	})
}

func (r *PromotionRepo) GetByID(_ context.Context, id string) (*entity.Promotion, error) {
	var out *entity.Promotion
	r.v.read(func(st *state) {
		if p, ok := st.promos[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *PromotionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Promotion, error) {
	return r.GetByID(ctx, id)
}

func (r *PromotionRepo) List(_ context.Context, onlyActive bool) ([]*entity.Promotion, error) {
	var out []*entity.Promotion
	r.v.read(func(st *state) {
		for _, p := range st.promos {
			if onlyActive && !p.Active {
				continue
			}
			p := p
			out = append(out, &p)
		}
	})
	sortPromotions(out)
	return out, nil
}

func (r *PromotionRepo) Update(_ context.Context, p *entity.Promotion) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.promos[p.ID]; !ok {
			return fmt.Errorf("promoción %s: %w", p.ID, domain.ErrNotFound)
		}
		st.promos[p.ID] = *p
		return nil
	})
}

func (r *PromotionRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.promos, id)
		for k := range st.links {
			if k.promotionID == id {
				delete(st.links, k)
			}
		}
		return nil
	})
}

func (r *PromotionRepo) ListExpired(_ context.Context, now time.Time) ([]*entity.Promotion, error) {
	var out []*entity.Promotion
	r.v.read(func(st *state) {
		for _, p := range st.promos {
			if p.Active && p.EndDate.Before(now) {
				p := p
				out = append(out, &p)
			}
		}
	})
	sortPromotions(out)
	return out, nil
}

func (r *PromotionRepo) ListActiveByLot(_ context.Context, lotID string) ([]*entity.Promotion, error) {
	var out []*entity.Promotion
	r.v.read(func(st *state) {
		for k := range st.links {
			if k.lotID != lotID {
				continue
			}
			if p, ok := st.promos[k.promotionID]; ok && p.Active {
				out = append(out, &p)
			}
		}
	})
	sortPromotions(out)
	return out, nil
}

func sortPromotions(list []*entity.Promotion) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// LotPromotionRepo enlaces lote-promoción en memoria.
type LotPromotionRepo struct{ v view }

func (r *LotPromotionRepo) Upsert(_ context.Context, link *entity.LotPromotion) error {
	return r.v.write(func(st *state) error {
		k := linkKey{link.LotID, link.PromotionID}
		if prev, ok := st.links[k]; ok {
			link.CreatedAt = prev.CreatedAt
		}
		st.links[k] = *link
		return nil
	})
}

func (r *LotPromotionRepo) Get(_ context.Context, lotID, promotionID string) (*entity.LotPromotion, error) {
	var out *entity.LotPromotion
	r.v.read(func(st *state) {
		if l, ok := st.links[linkKey{lotID, promotionID}]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *LotPromotionRepo) ListByPromotion(_ context.Context, promotionID string) ([]*entity.LotPromotion, error) {
	return r.filter(func(k linkKey) bool { return k.promotionID == promotionID }), nil
}

func (r *LotPromotionRepo) ListByLot(_ context.Context, lotID string) ([]*entity.LotPromotion, error) {
	return r.filter(func(k linkKey) bool { return k.lotID == lotID }), nil
}

func (r *LotPromotionRepo) Delete(_ context.Context, lotID, promotionID string) error {
	return r.v.write(func(st *state) error {
		delete(st.links, linkKey{lotID, promotionID})
		return nil
	})
}

func (r *LotPromotionRepo) filter(match func(linkKey) bool) []*entity.LotPromotion {
	var out []*entity.LotPromotion
	r.v.read(func(st *state) {
		for k, l := range st.links {
			if match(k) {
				l := l
				out = append(out, &l)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if out[i].LotID != out[j].LotID {
			return out[i].LotID < out[j].LotID
		}
		return out[i].PromotionID < out[j].PromotionID
	})
	return out
}
