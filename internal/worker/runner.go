package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/marklangat/waleads-backend/internal/dispatch"
)

// Runner owns the tick schedules for all registered pipelines. Jobs are
// wrapped with cron's Recover and SkipIfStillRunning chains: a panicking
// tick is logged and the schedule keeps recurring, and a stalled tick
// suppresses the next firing instead of overlapping it.
type Runner struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewRunner(log zerolog.Logger) *Runner {
	cronLog := cron.PrintfLogger(&log)
	return &Runner{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		log: log,
	}
}

// Register schedules one pipeline at the given interval.
func (r *Runner) Register(name string, every time.Duration, p *dispatch.Pipeline) {
	log := r.log.With().Str("worker", name).Logger()
	r.cron.Schedule(cron.Every(every), cron.FuncJob(func() {
		started := time.Now()
		if err := p.RunTick(context.Background()); err != nil {
			log.Error().Err(err).Msg("tick failed")
			return
		}
		log.Debug().Dur("took", time.Since(started)).Msg("tick completed")
	}))
	log.Info().Dur("every", every).Msg("worker registered")
}

// Start begins firing ticks.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for the tick in flight to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}
