package scheduler

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/feedpulse/feedpulse/internal/pipeline"
)

// Scheduler triggers the refresh pipeline at a fixed interval. The job
// is wrapped with SkipIfStillRunning so at most one refresh is ever in
// flight; an overlapping trigger is skipped, not queued.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
}

func New(spec string, p *pipeline.Pipeline) (*Scheduler, error) {
	logger := cron.VerbosePrintfLogger(log.New(os.Stderr, "cron: ", log.LstdFlags))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(logger)))

	s := &Scheduler{
		cron:     c,
		pipeline: p,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// Delay the first collection so startup requests are not competing
	// with a full fetch cycle.
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce exposes a single manual refresh.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start refresh cycle...")
	if err := s.pipeline.Refresh(context.Background()); err != nil {
		log.Printf("refresh cycle error: %v", err)
		return
	}
	log.Println("refresh cycle done")
}
