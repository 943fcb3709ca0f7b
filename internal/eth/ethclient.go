package eth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/realmwatch/salesbot/internal/config"
)

var CreateEthClient = createEthClient

type EthClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

func createEthClient() (EthClient, error) {
	nodeUrl := config.Get().RoninRpcUrl
	if nodeUrl == "" {
		return nil, errors.New("failed to configure RPC client - RoninRpcUrl is not set")
	}
	client, err := ethclient.Dial(nodeUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to configure RPC client - %w", err)
	}
	return client, nil
}
