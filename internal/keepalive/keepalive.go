// Package keepalive wires up the cron job that periodically pings the
// service's own health endpoint so free-tier hosts do not idle it out.
package keepalive

import (
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is the ping cadence when none is configured.
const DefaultInterval = 10 * time.Minute

// Pinger wraps robfig/cron and manages the self-ping loop. It never touches
// pipeline state; a failed ping is logged and retried on the next tick.
type Pinger struct {
	cron   *cron.Cron
	client *http.Client
	url    string
	spec   string // cron spec, e.g. "@every 10m0s"
	logger zerolog.Logger
}

// New creates a Pinger that hits serviceURL/health every interval.
// serviceURL empty means keep-alive is disabled; Start becomes a no-op.
func New(serviceURL string, interval time.Duration, logger zerolog.Logger) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pinger{
		cron:   cron.New(),
		client: &http.Client{Timeout: 30 * time.Second},
		url:    serviceURL,
		spec:   "@every " + interval.String(),
		logger: logger,
	}
}

// Start registers the ping job and starts the scheduler.
func (p *Pinger) Start() error {
	if p.url == "" {
		p.logger.Info().Msg("keep-alive disabled: no service URL configured")
		return nil
	}

	_, err := p.cron.AddFunc(p.spec, p.ping)
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	p.cron.Start()
	p.logger.Info().Str("spec", p.spec).Str("url", p.url).Msg("keep-alive started")
	return nil
}

// Stop gracefully shuts down the scheduler.
func (p *Pinger) Stop() {
	p.cron.Stop()
}

// ping hits the health endpoint and logs the latency.
func (p *Pinger) ping() {
	start := time.Now()

	resp, err := p.client.Get(p.url + "/health")
	if err != nil {
		p.logger.Warn().Err(err).Msg("keep-alive ping failed")
		return
	}
	defer resp.Body.Close()

	p.logger.Info().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("keep-alive ping")
}
