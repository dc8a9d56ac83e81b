package configs

// HTTP configures the operator API server.
type HTTP struct {
	Port uint16 `env:"PORT" envDefault:"8080"`
}
