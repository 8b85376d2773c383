package monitor

// alert severity for a session's context window
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelHandover Level = "handover"
)

// ranks levels so only upward transitions fire alerts
func levelRank(l Level) int {
	switch l {
	case LevelWarning:
		return 1
	case LevelHandover:
		return 2
	default:
		return 0
	}
}

// UsageEvent is one recorded LLM transaction
type UsageEvent struct {
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
	Operation    string
}

// Thresholds are the utilization fractions at which levels change
type Thresholds struct {
	Warning  float64 `json:"warning"`
	Handover float64 `json:"handover"`
}

// SessionStatus is a session's position against its context window budget
type SessionStatus struct {
	Session     string     `json:"session"`
	Used        int64      `json:"used"`
	Max         int        `json:"max"`
	Remaining   int64      `json:"remaining"`
	Utilization float64    `json:"utilization"`
	Level       Level      `json:"level"`
	Requests    int64      `json:"requests"`
	Thresholds  Thresholds `json:"thresholds"`
}

// TokenCounts holds input/output sums for one aggregation key
type TokenCounts struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// Summary is the global usage rollup across all sessions
type Summary struct {
	TotalInput  int64                  `json:"total_input"`
	TotalOutput int64                  `json:"total_output"`
	TotalTokens int64                  `json:"total_tokens"`
	Requests    int64                  `json:"requests"`
	CostUSD     float64                `json:"cost_usd"`
	ByModel     map[string]TokenCounts `json:"by_model"`
	ByProvider  map[string]TokenCounts `json:"by_provider"`
}

// Alert is published when a session crosses a threshold
type Alert struct {
	ID          string  `json:"id"`
	Session     string  `json:"session"`
	Level       Level   `json:"level"`
	Used        int64   `json:"used"`
	Max         int     `json:"max"`
	Utilization float64 `json:"utilization"`
	Timestamp   string  `json:"timestamp"`
}
