package config

type Config struct {
	Environment      string
	RedisURL         string
	SQLitePath       string
	APIKey           string
	MaxContextSize   int
	WarningThreshold float64
	HeliconeURL      string
}
