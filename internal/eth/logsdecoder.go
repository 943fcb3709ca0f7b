package eth

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var erc1155ABI abi.ABI

func init() {
	erc1155Abi, err := abi.JSON(strings.NewReader(`[
    {
        "anonymous": false,
        "inputs": [
            {"indexed": true, "name": "operator", "type": "address"},
            {"indexed": true, "name": "from",     "type": "address"},
            {"indexed": true, "name": "to",       "type": "address"},
            {"indexed": false,"name": "id",       "type": "uint256"},
            {"indexed": false,"name": "value",    "type": "uint256"}
        ],
        "name": "TransferSingle",
        "type": "event"
    },
    {
        "anonymous": false,
        "inputs": [
            {"indexed": true, "name": "operator", "type": "address"},
            {"indexed": true, "name": "from",     "type": "address"},
            {"indexed": true, "name": "to",       "type": "address"},
            {"indexed": false,"name": "ids",      "type": "uint256[]"},
            {"indexed": false,"name": "values",   "type": "uint256[]"}
        ],
        "name": "TransferBatch",
        "type": "event"
    }
	]`))
	if err != nil {
		panic("failed to parse ERC1155 ABI")
	}
	erc1155ABI = erc1155Abi
}

// DecodeTransferQuantity extracts the transferred amount from one ERC1155
// transfer log. For TransferSingle the amount is the second data word, for
// TransferBatch it is the sum of the values array. When recipient is
// non-empty, logs whose "to" topic does not match it are skipped. Returns
// false for logs that are not ERC1155 transfers or cannot be decoded.
func DecodeTransferQuantity(lg types.Log, recipient string) (int64, bool) {
	if len(lg.Topics) < 4 {
		return 0, false
	}
	if recipient != "" {
		to := common.BytesToAddress(lg.Topics[3].Bytes())
		if !strings.EqualFold(to.Hex(), recipient) {
			return 0, false
		}
	}

	switch lg.Topics[0] {
	case erc1155ABI.Events["TransferSingle"].ID:
		qty, err := decodeTransferSingleQuantity(lg)
		if err != nil {
			return 0, false
		}
		return qty, true
	case erc1155ABI.Events["TransferBatch"].ID:
		qty, err := decodeTransferBatchQuantity(lg)
		if err != nil {
			return 0, false
		}
		return qty, true
	}
	return 0, false
}

func decodeTransferSingleQuantity(lg types.Log) (int64, error) {
	var transferData struct {
		ID    *big.Int `abi:"id"`
		Value *big.Int `abi:"value"`
	}
	if err := erc1155ABI.UnpackIntoInterface(&transferData, "TransferSingle", lg.Data); err != nil {
		return 0, err
	}
	if transferData.Value == nil {
		return 0, errors.New("TransferSingle value missing")
	}
	return transferData.Value.Int64(), nil
}

func decodeTransferBatchQuantity(lg types.Log) (int64, error) {
	var batchData struct {
		Ids    []*big.Int `abi:"ids"`
		Values []*big.Int `abi:"values"`
	}
	if err := erc1155ABI.UnpackIntoInterface(&batchData, "TransferBatch", lg.Data); err != nil {
		return 0, err
	}
	var total int64
	for _, v := range batchData.Values {
		total += v.Int64()
	}
	return total, nil
}
