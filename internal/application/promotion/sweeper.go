package promotion

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const sweepLockKey = "inmobiliaria:promociones:barrido"

// Locker exclusión mutua entre instancias para el barrido. Nil = sin lock (una sola instancia).
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Sweeper ejecuta SweepExpired periódicamente.
type Sweeper struct {
	uc       *UseCase
	interval time.Duration
	locker   Locker
	log      zerolog.Logger
}

// NewSweeper construye el barrido periódico. locker puede ser nil.
func NewSweeper(uc *UseCase, interval time.Duration, locker Locker, log zerolog.Logger) *Sweeper {
	return &Sweeper{uc: uc, interval: interval, locker: locker, log: log}
}

// Start lanza la goroutine del barrido; termina cuando ctx se cancela.
// Con interval <= 0 no hace nada.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("barrido de promociones desactivado")
		return
	}
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info().Dur("interval", s.interval).Msg("barrido de promociones iniciado")
		s.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("barrido de promociones detenido")
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Tick ejecuta un barrido si obtiene el lock. Devuelve false si otra instancia lo tenía.
func (s *Sweeper) Tick(ctx context.Context) bool {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL())
		if err != nil {
			s.log.Error().Err(err).Msg("no se pudo tomar el lock del barrido")
			return false
		}
		if !ok {
			s.log.Debug().Msg("barrido en curso en otra instancia")
			return false
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn().Err(err).Msg("no se pudo liberar el lock del barrido")
			}
		}()
	}

	if _, err := s.uc.SweepExpired(ctx); err != nil {
		s.log.Error().Err(err).Msg("barrido de promociones con errores")
	}
	return true
}

func (s *Sweeper) lockTTL() time.Duration {
	if s.interval > 0 {
		return s.interval
	}
	return time.Minute
}
