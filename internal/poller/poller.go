package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"newshub/internal/refresher"

	"github.com/robfig/cron/v3"
)

// Poller triggers the refresh routine on a fixed interval. The scheduled
// path only logs; results surface through the manual HTTP trigger.
type Poller struct {
	cron      *cron.Cron
	refresher *refresher.Refresher
	interval  time.Duration
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func New(r *refresher.Refresher, interval time.Duration) *Poller {
	return &Poller{
		cron:      cron.New(),
		refresher: r,
		interval:  interval,
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRunning {
		return
	}

	spec := fmt.Sprintf("@every %s", p.interval)
	entryID, err := p.cron.AddFunc(spec, p.runScheduled)
	if err != nil {
		log.Printf("Warning: failed to schedule refresh (%s): %v", spec, err)
		return
	}
	p.entryID = entryID
	p.cron.Start()
	p.isRunning = true

	log.Printf("Starting refresh scheduler with interval: %v", p.interval)
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isRunning {
		return
	}

	log.Println("Stopping refresh scheduler...")
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.isRunning = false
	log.Println("Refresh scheduler stopped")
}

func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// NextRun returns the next scheduled refresh time, or the zero time when
// the scheduler is stopped.
func (p *Poller) NextRun() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.isRunning {
		return time.Time{}
	}
	return p.cron.Entry(p.entryID).Next
}

func (p *Poller) runScheduled() {
	log.Printf("Scheduled refresh triggered at %s", time.Now().UTC().Format(time.RFC3339))

	result, err := p.refresher.Run(context.Background())
	if errors.Is(err, refresher.ErrAlreadyRunning) {
		log.Println("Scheduled refresh skipped: another refresh is in progress")
		return
	}
	if err != nil {
		log.Printf("Scheduled refresh failed: %v", err)
		return
	}

	if result.Success {
		log.Println("Scheduled refresh completed successfully")
	} else {
		log.Printf("Scheduled refresh finished with errors:\n%s", strings.Join(result.Errors, "\n"))
	}
}
