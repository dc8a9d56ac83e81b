package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// LedgerService reads escrow balances from the chain.
type LedgerService interface {
	Balance(ctx context.Context, token, address string) (decimal.Decimal, error)
	Close()
}

// EthereumClient is the subset of ethclient.Client the ledger needs.
type EthereumClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}
