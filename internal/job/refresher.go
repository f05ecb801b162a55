package job

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

// QuoteRefresher refreshes every tracked symbol and reports how many
// quotes were updated.
type QuoteRefresher interface {
	RefreshAll(ctx context.Context) int
}

// Refresher keeps the quote store warm. It refreshes once on start,
// then on a cron schedule, with an optional fixed-interval ticker as
// a fallback when no schedule is configured.
type Refresher struct {
	tracer          trace.Tracer
	quotes          QuoteRefresher
	schedule        string
	refreshInterval time.Duration
}

func NewRefresher(tracer trace.Tracer, quotes QuoteRefresher, schedule string, refreshIntervalSecs int) *Refresher {
	if refreshIntervalSecs <= 0 {
		refreshIntervalSecs = 300
	}
	return &Refresher{
		tracer:          tracer,
		quotes:          quotes,
		schedule:        schedule,
		refreshInterval: time.Duration(refreshIntervalSecs) * time.Second,
	}
}

// Start launches the refresh loop. Blocks until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	log.Println("Quote refresher starting...")

	// Run immediately on start so the store is warm before the first tick.
	r.runOnce(ctx)

	if r.schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(r.schedule, func() { r.runOnce(ctx) }); err != nil {
			log.Printf("refresher: invalid schedule %q, falling back to %v interval: %v", r.schedule, r.refreshInterval, err)
			r.tickLoop(ctx)
			return
		}
		c.Start()
		<-ctx.Done()
		c.Stop()
		log.Println("Quote refresher stopped")
		return
	}

	r.tickLoop(ctx)
}

func (r *Refresher) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Quote refresher stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context) {
	ctx, span := r.tracer.Start(ctx, "refresher.run")
	defer span.End()

	start := time.Now()
	updated := r.quotes.RefreshAll(ctx)
	log.Printf("refresher: updated %d quotes in %v", updated, time.Since(start).Round(time.Millisecond))
}
