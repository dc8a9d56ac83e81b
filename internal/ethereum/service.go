package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ERC20ABI covers the read-only calls used to value an escrow.
const ERC20ABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}]`

// LedgerServiceImpl implements LedgerService for the native coin and a fixed
// set of ERC-20 contracts.
type LedgerServiceImpl struct {
	client       EthereumClient
	abi          abi.ABI
	nativeSymbol string
	contracts    map[string]common.Address

	mu       sync.Mutex
	decimals map[common.Address]uint8
}

func NewLedgerService(client EthereumClient, nativeSymbol string, contracts map[string]string) (*LedgerServiceImpl, error) {
	erc20, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-20 ABI: %w", err)
	}

	byToken := make(map[string]common.Address, len(contracts))
	for symbol, addr := range contracts {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid contract address for %s: %q", symbol, addr)
		}
		byToken[strings.ToUpper(symbol)] = common.HexToAddress(addr)
	}

	return &LedgerServiceImpl{
		client:       client,
		abi:          erc20,
		nativeSymbol: strings.ToUpper(nativeSymbol),
		contracts:    byToken,
		decimals:     make(map[common.Address]uint8),
	}, nil
}

// Balance returns the holdings of token at address in whole tokens.
func (s *LedgerServiceImpl) Balance(ctx context.Context, token, address string) (decimal.Decimal, error) {
	if !common.IsHexAddress(address) {
		return decimal.Zero, &errors.InvalidConfigurationError{Reason: fmt.Sprintf("invalid escrow address %q", address)}
	}
	owner := common.HexToAddress(address)
	symbol := strings.ToUpper(strings.TrimSpace(token))

	if symbol == s.nativeSymbol {
		wei, err := s.client.BalanceAt(ctx, owner, nil)
		if err != nil {
			return decimal.Zero, &errors.EthereumError{Operation: "balance", Err: err}
		}
		return FromBaseUnits(wei, NativeDecimals), nil
	}

	contract, ok := s.contracts[symbol]
	if !ok {
		return decimal.Zero, &errors.InvalidConfigurationError{Reason: fmt.Sprintf("unknown token %q", token)}
	}

	decimals, err := s.tokenDecimals(ctx, contract)
	if err != nil {
		return decimal.Zero, err
	}

	out, err := s.call(ctx, contract, "balanceOf", owner)
	if err != nil {
		return decimal.Zero, err
	}
	amount, ok := out[0].(*big.Int)
	if !ok {
		return decimal.Zero, &errors.EthereumError{Operation: "balanceOf", Err: fmt.Errorf("unexpected result type %T", out[0])}
	}
	return FromBaseUnits(amount, decimals), nil
}

func (s *LedgerServiceImpl) tokenDecimals(ctx context.Context, contract common.Address) (uint8, error) {
	s.mu.Lock()
	d, ok := s.decimals[contract]
	s.mu.Unlock()
	if ok {
		return d, nil
	}

	out, err := s.call(ctx, contract, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok = out[0].(uint8)
	if !ok {
		return 0, &errors.EthereumError{Operation: "decimals", Err: fmt.Errorf("unexpected result type %T", out[0])}
	}

	s.mu.Lock()
	s.decimals[contract] = d
	s.mu.Unlock()
	return d, nil
}

func (s *LedgerServiceImpl) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := s.abi.Pack(method, args...)
	if err != nil {
		return nil, &errors.EthereumError{Operation: method, Err: fmt.Errorf("failed to pack call: %w", err)}
	}

	result, err := s.client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, &errors.EthereumError{Operation: method, Err: err}
	}

	out, err := s.abi.Unpack(method, result)
	if err != nil {
		return nil, &errors.EthereumError{Operation: method, Err: fmt.Errorf("failed to unpack result: %w", err)}
	}
	if len(out) == 0 {
		return nil, &errors.EthereumError{Operation: method, Err: fmt.Errorf("empty result")}
	}
	return out, nil
}

// Close closes the Ethereum client connection
func (s *LedgerServiceImpl) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
