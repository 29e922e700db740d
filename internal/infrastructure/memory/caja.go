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
	_ repository.CajaRepository           = (*CajaRepo)(nil)
	_ repository.MovimientoCajaRepository = (*MovimientoRepo)(nil)
	_ repository.CierreCajaRepository     = (*CierreRepo)(nil)
)

// CajaRepo cajas en memoria.
type CajaRepo struct{ v view }

func (r *CajaRepo) Create(_ context.Context, c *entity.Caja) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.cajas {
			if existing.Name == c.Name {
				return fmt.Errorf("caja %q: %w", c.Name, domain.ErrDuplicate)
			}
		}
		st.cajas[c.ID] = *c
		return nil
	})
}

func (r *CajaRepo) GetByID(_ context.Context, id string) (*entity.Caja, error) {
	var out *entity.Caja
	r.v.read(func(st *state) {
		if c, ok := st.cajas[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *CajaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Caja, error) {
	return r.GetByID(ctx, id)
}

func (r *CajaRepo) List(_ context.Context) ([]*entity.Caja, error) {
	var out []*entity.Caja
	r.v.read(func(st *state) {
		for _, c := range st.cajas {
			c := c
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CajaRepo) Update(_ context.Context, c *entity.Caja) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.cajas[c.ID]; !ok {
			return fmt.Errorf("caja %s: %w", c.ID, domain.ErrNotFound)
		}
		st.cajas[c.ID] = *c
		return nil
	})
}

func (r *CajaRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	return r.v.write(func(st *state) error {
		c, ok := st.cajas[id]
		if !ok {
			return fmt.Errorf("caja %s: %w", id, domain.ErrNotFound)
		}
		c.Balance = balance
		c.UpdatedAt = time.Now()
		st.cajas[id] = c
		return nil
	})
}

// MovimientoRepo movimientos de caja en memoria (append-only).
type MovimientoRepo struct{ v view }

func (r *MovimientoRepo) Create(_ context.Context, m *entity.MovimientoCaja) error {
	return r.v.write(func(st *state) error {
		st.movs = append(st.movs, *m)
		return nil
	})
}

func (r *MovimientoRepo) ListByCaja(_ context.Context, cajaID string, from, to *time.Time) ([]*entity.MovimientoCaja, error) {
	var out []*entity.MovimientoCaja
	r.each(cajaID, func(m entity.MovimientoCaja) {
		if from != nil && m.CreatedAt.Before(*from) {
			return
		}
		if to != nil && !m.CreatedAt.Before(*to) {
			return
		}
		out = append(out, &m)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MovimientoRepo) Summarize(_ context.Context, cajaID string, from, to time.Time) (repository.MovementSummary, error) {
	sum := repository.MovementSummary{IncomeTotal: decimal.Zero, ExpenseTotal: decimal.Zero}
	r.each(cajaID, func(m entity.MovimientoCaja) {
		if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			return
		}
		if m.Type == entity.MovimientoEgreso {
			sum.ExpenseTotal = sum.ExpenseTotal.Add(m.Amount)
		} else {
			sum.IncomeTotal = sum.IncomeTotal.Add(m.Amount)
		}
		sum.MovementCount++
	})
	return sum, nil
}

func (r *MovimientoRepo) TotalsByMethod(_ context.Context, cajaID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	r.each(cajaID, func(m entity.MovimientoCaja) {
		out[m.PaymentMethod] = out[m.PaymentMethod].Add(m.Signed())
	})
	return out, nil
}

func (r *MovimientoRepo) SumSignedSince(_ context.Context, cajaID string, from time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	r.each(cajaID, func(m entity.MovimientoCaja) {
		if !m.CreatedAt.Before(from) {
			total = total.Add(m.Signed())
		}
	})
	return total, nil
}

func (r *MovimientoRepo) each(cajaID string, fn func(entity.MovimientoCaja)) {
	r.v.read(func(st *state) {
		for _, m := range st.movs {
			if m.CajaID == cajaID {
				fn(m)
			}
		}
	})
}

// CierreRepo cierres de caja en memoria (append-only).
type CierreRepo struct{ v view }

func (r *CierreRepo) Create(_ context.Context, c *entity.CierreCaja) error {
	return r.v.write(func(st *state) error {
		st.cierres = append(st.cierres, *c)
		return nil
	})
}

func (r *CierreRepo) GetByID(_ context.Context, id string) (*entity.CierreCaja, error) {
	var out *entity.CierreCaja
	r.v.read(func(st *state) {
		for _, c := range st.cierres {
			if c.ID == id {
				c := c
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *CierreRepo) ListByCaja(_ context.Context, cajaID string) ([]*entity.CierreCaja, error) {
	var out []*entity.CierreCaja
	r.v.read(func(st *state) {
		for _, c := range st.cierres {
			if c.CajaID == cajaID {
				c := c
				out = append(out, &c)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
