package helicone

import (
	"context"
	"sync"
	"time"

	"github.com/k3ss/backend/internal/logger"
)

// destination for polled cost totals, satisfied by the usage tracker
type CostSink interface {
	AddCost(ctx context.Context, amountUSD float64) error
}

// periodically folds Helicone-measured request costs into the usage summary
type Poller struct {
	client   *Client
	sink     CostSink
	interval time.Duration
	lastPoll time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// creates a poller; polling starts from the creation time
func NewPoller(client *Client, sink CostSink, interval time.Duration) *Poller {
	return &Poller{
		client:   client,
		sink:     sink,
		interval: interval,
		lastPoll: time.Now(),
		stopCh:   make(chan struct{}),
	}
}

// begins the background poll loop
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
	logger.Info("helicone cost poller started", "interval", p.interval.String())
}

// stops the poller
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	logger.Info("helicone cost poller stopped")
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll()
		case <-p.stopCh:
			return
		}
	}
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	cost, newest, err := p.client.CostSince(ctx, p.lastPoll)
	if err != nil {
		// window is not advanced, costs are picked up next poll
		logger.ErrorErr(err, "failed to poll helicone costs")
		return
	}

	// advance to the newest returned row so rows Helicone records while the
	// request is in flight are not summed again next poll
	if newest.IsZero() {
		p.lastPoll = now
	} else {
		p.lastPoll = newest
	}

	if cost == 0 {
		return
	}

	if err := p.sink.AddCost(ctx, cost); err != nil {
		logger.ErrorErr(err, "failed to record polled cost", "cost_usd", cost)
		return
	}

	logger.Debug("recorded helicone costs", "cost_usd", cost)
}
