package ethereum

import (
	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/ethereum/go-ethereum/ethclient"
)

type ClientCreator func(url string) (EthereumClient, error)

func defaultClientCreator(url string) (EthereumClient, error) {
	return ethclient.Dial(url)
}

// Dial connects to the configured RPC endpoint and builds a LedgerService.
// A nil creator dials with ethclient.
func Dial(cfg configs.Ethereum, creator ClientCreator) (LedgerService, error) {
	if creator == nil {
		creator = defaultClientCreator
	}
	client, err := creator(cfg.RPCURL)
	if err != nil {
		return nil, &errors.EthereumError{Operation: "dial", Err: err}
	}
	logger.Info("Successfully connected to Ethereum client")

	svc, err := NewLedgerService(client, cfg.NativeSymbol, cfg.TokenContracts)
	if err != nil {
		client.Close()
		return nil, err
	}
	return svc, nil
}
