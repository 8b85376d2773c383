package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/k3ss/backend/internal/logger"
	"github.com/k3ss/backend/internal/memory"
)

const (
	keySessionUsage = "context:usage:%s"
	keySessions     = "context:sessions"
	keyTotals       = "context:usage:totals"
	keyByModel      = "context:usage:by_model"
	keyByProvider   = "context:usage:by_provider"
	keyCost         = "context:cost_usd"
)

// publishes threshold-crossing alerts
type AlertPublisher interface {
	Publish(ctx context.Context, alert Alert) error
}

// Tracker records token usage per session in Redis and evaluates
// context-window thresholds
type Tracker struct {
	client           *redis.Client
	maxContextSize   int
	warningThreshold float64
	publisher        AlertPublisher
}

// creates a tracker on an existing Redis client
func NewTracker(client *redis.Client, maxContextSize int, warningThreshold float64) *Tracker {
	return &Tracker{
		client:           client,
		maxContextSize:   maxContextSize,
		warningThreshold: warningThreshold,
	}
}

// attaches an alert publisher; without one, transitions are only logged
func (t *Tracker) WithPublisher(p AlertPublisher) *Tracker {
	t.publisher = p
	return t
}

// verifies the Redis connection
func (t *Tracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

// records a usage event, returning the session's new status and a non-nil
// alert when the event pushed the session over a threshold
func (t *Tracker) Track(ctx context.Context, session string, ev UsageEvent) (SessionStatus, *Alert, error) {
	sessionKey := fmt.Sprintf(keySessionUsage, session)

	pipe := t.client.Pipeline()
	pipe.HIncrBy(ctx, sessionKey, "input", int64(ev.InputTokens))
	pipe.HIncrBy(ctx, sessionKey, "output", int64(ev.OutputTokens))
	pipe.HIncrBy(ctx, sessionKey, "requests", 1)
	pipe.HSet(ctx, sessionKey, "last_model", ev.Model, "last_provider", ev.Provider)
	pipe.SAdd(ctx, keySessions, session)

	pipe.HIncrBy(ctx, keyTotals, "input", int64(ev.InputTokens))
	pipe.HIncrBy(ctx, keyTotals, "output", int64(ev.OutputTokens))
	pipe.HIncrBy(ctx, keyTotals, "requests", 1)

	if ev.Model != "" {
		pipe.HIncrBy(ctx, keyByModel, ev.Model+":input", int64(ev.InputTokens))
		pipe.HIncrBy(ctx, keyByModel, ev.Model+":output", int64(ev.OutputTokens))
	}

	if ev.Provider != "" {
		pipe.HIncrBy(ctx, keyByProvider, ev.Provider+":input", int64(ev.InputTokens))
		pipe.HIncrBy(ctx, keyByProvider, ev.Provider+":output", int64(ev.OutputTokens))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return SessionStatus{}, nil, fmt.Errorf("failed to record usage: %w", err)
	}

	status, err := t.Status(ctx, session)
	if err != nil {
		return SessionStatus{}, nil, err
	}

	alert, err := t.evaluateTransition(ctx, sessionKey, status)
	if err != nil {
		// the usage was recorded; alert bookkeeping failures are non-fatal
		logger.ErrorErr(err, "failed to evaluate alert transition", "session", session)
		return status, nil, nil
	}

	return status, alert, nil
}

// returns the session's current status
func (t *Tracker) Status(ctx context.Context, session string) (SessionStatus, error) {
	sessionKey := fmt.Sprintf(keySessionUsage, session)

	fields, err := t.client.HGetAll(ctx, sessionKey).Result()
	if err != nil {
		return SessionStatus{}, fmt.Errorf("failed to read session usage: %w", err)
	}

	input := parseInt64(fields["input"])
	output := parseInt64(fields["output"])

	return t.buildStatus(session, input+output, parseInt64(fields["requests"])), nil
}

// computes the status a session would have after adding pending tokens
func (t *Tracker) Project(ctx context.Context, session string, pendingTokens int) (SessionStatus, error) {
	status, err := t.Status(ctx, session)
	if err != nil {
		return SessionStatus{}, err
	}

	return t.buildStatus(session, status.Used+int64(pendingTokens), status.Requests), nil
}

// clears a session's counters and alert state; global aggregates are kept
func (t *Tracker) Reset(ctx context.Context, session string) error {
	sessionKey := fmt.Sprintf(keySessionUsage, session)

	pipe := t.client.Pipeline()
	pipe.Del(ctx, sessionKey)
	pipe.SRem(ctx, keySessions, session)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to reset session usage: %w", err)
	}

	return nil
}

// returns the global usage rollup
func (t *Tracker) Summary(ctx context.Context) (Summary, error) {
	pipe := t.client.Pipeline()
	totalsCmd := pipe.HGetAll(ctx, keyTotals)
	modelsCmd := pipe.HGetAll(ctx, keyByModel)
	providersCmd := pipe.HGetAll(ctx, keyByProvider)
	costCmd := pipe.Get(ctx, keyCost)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Summary{}, fmt.Errorf("failed to read usage summary: %w", err)
	}

	totals := totalsCmd.Val()
	input := parseInt64(totals["input"])
	output := parseInt64(totals["output"])

	cost, _ := strconv.ParseFloat(costCmd.Val(), 64) //nolint:errcheck // absent key means zero cost

	return Summary{
		TotalInput:  input,
		TotalOutput: output,
		TotalTokens: input + output,
		Requests:    parseInt64(totals["requests"]),
		CostUSD:     cost,
		ByModel:     parseCounts(modelsCmd.Val()),
		ByProvider:  parseCounts(providersCmd.Val()),
	}, nil
}

// folds externally measured cost (Helicone) into the global summary
func (t *Tracker) AddCost(ctx context.Context, amountUSD float64) error {
	if err := t.client.IncrByFloat(ctx, keyCost, amountUSD).Err(); err != nil {
		return fmt.Errorf("failed to record cost: %w", err)
	}

	return nil
}

// evaluates the session level against the stored one, persisting and
// publishing upward transitions exactly once
// promotes the stored level only if the new one ranks strictly higher.
// Concurrent calls race on the compare-and-set; exactly one wins per level.
var promoteLevelScript = redis.NewScript(`
local ranks = {ok = 0, warning = 1, handover = 2}
local current = redis.call('HGET', KEYS[1], 'level')
if not current or current == '' then current = 'ok' end
if (ranks[ARGV[1]] or 0) <= (ranks[current] or 0) then return 0 end
redis.call('HSET', KEYS[1], 'level', ARGV[1])
return 1
`)

func (t *Tracker) evaluateTransition(ctx context.Context, sessionKey string, status SessionStatus) (*Alert, error) {
	if status.Level == LevelOK {
		return nil, nil
	}

	promoted, err := promoteLevelScript.Run(ctx, t.client, []string{sessionKey}, string(status.Level)).Int()
	if err != nil {
		return nil, fmt.Errorf("failed to update alert level: %w", err)
	}

	if promoted == 0 {
		return nil, nil
	}

	// unique id so subscribers can dedupe redelivered alerts
	alert := &Alert{
		ID:          uuid.NewString(),
		Session:     status.Session,
		Level:       status.Level,
		Used:        status.Used,
		Max:         status.Max,
		Utilization: status.Utilization,
		Timestamp:   time.Now().UTC().Format(memory.TimestampLayout),
	}

	logger.Warn("context window threshold crossed",
		"session", status.Session,
		"level", string(status.Level),
		"used", status.Used,
		"max", status.Max,
	)

	if t.publisher != nil {
		if err := t.publisher.Publish(ctx, *alert); err != nil {
			logger.ErrorErr(err, "failed to publish alert", "session", status.Session)
		}
	}

	return alert, nil
}

func (t *Tracker) buildStatus(session string, used, requests int64) SessionStatus {
	utilization := float64(used) / float64(t.maxContextSize)

	level := LevelOK
	if utilization >= 1.0 {
		level = LevelHandover
	} else if utilization >= t.warningThreshold {
		level = LevelWarning
	}

	remaining := int64(t.maxContextSize) - used
	if remaining < 0 {
		remaining = 0
	}

	return SessionStatus{
		Session:     session,
		Used:        used,
		Max:         t.maxContextSize,
		Remaining:   remaining,
		Utilization: utilization,
		Level:       level,
		Requests:    requests,
		Thresholds:  Thresholds{Warning: t.warningThreshold, Handover: 1.0},
	}
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64) //nolint:errcheck // absent fields parse as zero
	return n
}

// decodes "<key>:input"/"<key>:output" hash fields into per-key counts
func parseCounts(fields map[string]string) map[string]TokenCounts {
	counts := map[string]TokenCounts{}

	for field, raw := range fields {
		sep := strings.LastIndex(field, ":")
		if sep < 0 {
			continue
		}

		key, direction := field[:sep], field[sep+1:]
		entry := counts[key]

		switch direction {
		case "input":
			entry.Input = parseInt64(raw)
		case "output":
			entry.Output = parseInt64(raw)
		default:
			continue
		}

		entry.Total = entry.Input + entry.Output
		counts[key] = entry
	}

	return counts
}
