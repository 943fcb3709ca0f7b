package eth

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// QuantityResolver returns the true transferred quantity for a sale by
// reading the transaction receipt. Resolution is best-effort: any failure
// yields 0 and is never surfaced as an error.
type QuantityResolver interface {
	ResolveQuantity(ctx context.Context, txHash string, contract string, recipient string) int64
}

type DefaultQuantityResolver struct {
	ethClient    EthClient
	mu           sync.Mutex
	receiptCache map[common.Hash]*types.Receipt
}

func NewDefaultQuantityResolver(client EthClient) *DefaultQuantityResolver {
	return &DefaultQuantityResolver{
		ethClient:    client,
		receiptCache: make(map[common.Hash]*types.Receipt),
	}
}

func (r *DefaultQuantityResolver) ResolveQuantity(
	ctx context.Context,
	txHash string,
	contract string,
	recipient string,
) int64 {
	if txHash == "" || contract == "" {
		return 0
	}

	receipt, err := r.getOrFetchReceipt(ctx, common.HexToHash(txHash))
	if err != nil || receipt == nil {
		return 0
	}

	var total int64
	for _, lg := range receipt.Logs {
		if lg == nil || !strings.EqualFold(lg.Address.Hex(), contract) {
			continue
		}
		if qty, ok := DecodeTransferQuantity(*lg, recipient); ok {
			total += qty
		}
	}
	return total
}

func (r *DefaultQuantityResolver) getOrFetchReceipt(
	ctx context.Context,
	txHash common.Hash,
) (*types.Receipt, error) {
	r.mu.Lock()
	if rcp, ok := r.receiptCache[txHash]; ok {
		r.mu.Unlock()
		return rcp, nil
	}
	r.mu.Unlock()

	receipt, err := r.ethClient.TransactionReceipt(ctx, txHash)
	if err != nil {
		zap.L().Warn("Error fetching transaction receipt for quantity resolution",
			zap.Error(err),
			zap.String("txHash", txHash.Hex()))
		return nil, err
	}

	r.mu.Lock()
	r.receiptCache[txHash] = receipt
	r.mu.Unlock()
	return receipt, nil
}
