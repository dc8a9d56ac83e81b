package configs

// Logger configures pkg/logger. Dir enables the daily file sink when set.
type Logger struct {
	Level string `env:"LEVEL" envDefault:"info"`
	Dir   string `env:"DIR" envDefault:""`
}
