package configs

import "time"

// Ethereum configures the funding ledger. TokenContracts maps a token symbol
// to its ERC-20 contract, e.g. "USDC:0xA0b8...,BONK:0x1151...".
type Ethereum struct {
	RPCURL         string            `env:"RPC_URL,required"`
	NativeSymbol   string            `env:"NATIVE_SYMBOL" envDefault:"ETH"`
	TokenContracts map[string]string `env:"TOKEN_CONTRACTS"`
}

// Social configures the content search and posting service. SpamFilter drops
// tag-stuffed posts before scoring.
type Social struct {
	BaseURL        string        `env:"BASE_URL,required"`
	Token          string        `env:"TOKEN"`
	OperatorHandle string        `env:"OPERATOR_HANDLE,required"`
	PageSize       int           `env:"PAGE_SIZE" envDefault:"20"`
	PageDelay      time.Duration `env:"PAGE_DELAY" envDefault:"0s"`
	DryRun         bool          `env:"DRY_RUN" envDefault:"false"`
	SpamFilter     bool          `env:"SPAM_FILTER" envDefault:"false"`
}

// Quality configures the content quality assessor. An empty URL disables the
// quality signal; Fallback scores a failed batch with zero quality instead of
// retrying the payout on the next tick.
type Quality struct {
	URL      string `env:"URL"`
	APIKey   string `env:"API_KEY"`
	Fallback bool   `env:"FALLBACK" envDefault:"false"`
}

// Execution configures the custodial execution service that signs and
// broadcasts payouts.
type Execution struct {
	URL    string `env:"URL,required"`
	APIKey string `env:"API_KEY"`
}
