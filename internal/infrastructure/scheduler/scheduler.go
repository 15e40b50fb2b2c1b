// Package scheduler tareas periódicas (marcado de facturas vencidas).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	jobOverdue     = "overdue_invoices"
	overdueLockKey = "facturo:jobs:overdue"
	overdueLockTTL = 10 * time.Minute
	jobTimeout     = 5 * time.Minute
)

// OverdueRunner caso de uso que marca y notifica facturas vencidas.
type OverdueRunner interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

// Locker lock distribuido; nil = una sola réplica, sin lock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// JobObserver métricas de ejecución.
type JobObserver interface {
	ObserveJob(job string, d time.Duration, err error)
	SkipJob(job string)
}

// Scheduler envuelve cron.Cron con las tareas de la app.
type Scheduler struct {
	cron    *cron.Cron
	overdue OverdueRunner
	locker  Locker
	obs     JobObserver
	log     zerolog.Logger
	now     func() time.Time
}

// New registra la tarea de vencidas con la expresión spec (ej. "@hourly", "0 * * * *").
func New(spec string, overdue OverdueRunner, locker Locker, obs JobObserver, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		overdue: overdue,
		locker:  locker,
		obs:     obs,
		log:     log,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.RunOverdue(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduler: spec %q: %w", spec, err)
	}
	return s, nil
}

// Start arranca el cron en segundo plano.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler iniciado")
}

// Stop detiene el cron y espera la tarea en curso o el fin de ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler: tarea en curso no terminó antes del apagado")
	}
}

// RunOverdue ejecuta una pasada. Si otra réplica tiene el lock, no hace nada.
func (s *Scheduler) RunOverdue(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, overdueLockKey, overdueLockTTL)
		if err != nil {
			s.log.Error().Err(err).Msg("scheduler: no se pudo tomar el lock")
			s.observe(0, err)
			return err
		}
		if !ok {
			s.log.Debug().Msg("scheduler: otra réplica ejecuta la tarea")
			if s.obs != nil {
				s.obs.SkipJob(jobOverdue)
			}
			return nil
		}
		defer func() {
			if err := s.locker.Release(context.Background(), overdueLockKey, token); err != nil {
				s.log.Warn().Err(err).Msg("scheduler: liberar lock")
			}
		}()
	}

	start := time.Now()
	n, err := s.overdue.Run(ctx, s.now())
	s.observe(time.Since(start), err)
	if err != nil {
		s.log.Error().Err(err).Int("marked", n).Msg("scheduler: facturas vencidas")
		return err
	}
	s.log.Info().Int("marked", n).Dur("took", time.Since(start)).Msg("scheduler: facturas vencidas")
	return nil
}

func (s *Scheduler) observe(d time.Duration, err error) {
	if s.obs != nil {
		s.obs.ObserveJob(jobOverdue, d, err)
	}
}
