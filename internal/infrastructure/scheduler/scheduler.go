package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
)

// Job es una tarea periódica: los barridos de expiración del reconciliador.
type Job struct {
	Name       string
	Interval   time.Duration
	RunAtStart bool // ejecutar una vez al arrancar, antes del primer tick
	Run        func(ctx context.Context) error
}

// Scheduler ejecuta trabajos periódicos con un ticker por trabajo. Sin cron:
// los intervalos vienen de configuración y no necesitan expresiones. Cada
// trabajo corre en su propia goroutine; un pánico o error no tumba el resto.
type Scheduler struct {
	log    *logger.Logger
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	active bool
}

// New construye el scheduler.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Register agrega un trabajo. Llamar antes de Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Start lanza una goroutine por trabajo. Idempotente.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler iniciado")
}

// Stop cancela los trabajos y espera a que terminen.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.log.Info().Msg("scheduler detenido")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if job.RunAtStart {
		s.execute(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Interface("panic", rec).Str("job", job.Name).Msg("pánico en trabajo periódico")
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Error().Err(err).Str("job", job.Name).Msg("trabajo periódico falló")
		return
	}
	s.log.Info().Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("trabajo periódico completado")
}
