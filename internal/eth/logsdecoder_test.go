package eth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func MakeTransferSingleData(t *testing.T, id *big.Int, value *big.Int) []byte {
	event := erc1155ABI.Events["TransferSingle"]
	data, err := event.Inputs.NonIndexed().Pack(id, value)
	require.NoError(t, err, "failed to pack TransferSingle data")
	return data
}

func MakeTransferBatchData(t *testing.T, ids []*big.Int, values []*big.Int) []byte {
	event := erc1155ABI.Events["TransferBatch"]
	data, err := event.Inputs.NonIndexed().Pack(ids, values)
	require.NoError(t, err, "failed to pack TransferBatch data")
	return data
}

func makeTransferLog(sig common.Hash, to common.Address, data []byte) types.Log {
	operator := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	from := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	return types.Log{
		Address: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Topics: []common.Hash{
			sig,
			common.BytesToHash(operator.Bytes()),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func TestDecodeTransferQuantity(t *testing.T) {
	buyer := common.HexToAddress("0x2222222222222222222222222222222222222222")
	singleSig := erc1155ABI.Events["TransferSingle"].ID
	batchSig := erc1155ABI.Events["TransferBatch"].ID

	t.Run("TransferSingle returns the value word", func(t *testing.T) {
		lg := makeTransferLog(singleSig, buyer, MakeTransferSingleData(t, big.NewInt(1000), big.NewInt(5)))
		qty, ok := DecodeTransferQuantity(lg, "")
		require.True(t, ok)
		require.EqualValues(t, 5, qty)
	})

	t.Run("TransferBatch sums the values array", func(t *testing.T) {
		data := MakeTransferBatchData(t,
			[]*big.Int{big.NewInt(10), big.NewInt(11)},
			[]*big.Int{big.NewInt(2), big.NewInt(3)},
		)
		lg := makeTransferLog(batchSig, buyer, data)
		qty, ok := DecodeTransferQuantity(lg, "")
		require.True(t, ok)
		require.EqualValues(t, 5, qty)
	})

	t.Run("recipient filter matches case-insensitively", func(t *testing.T) {
		lg := makeTransferLog(singleSig, buyer, MakeTransferSingleData(t, big.NewInt(1), big.NewInt(7)))
		qty, ok := DecodeTransferQuantity(lg, "0x2222222222222222222222222222222222222222")
		require.True(t, ok)
		require.EqualValues(t, 7, qty)
	})

	t.Run("recipient filter skips non-matching logs", func(t *testing.T) {
		lg := makeTransferLog(singleSig, buyer, MakeTransferSingleData(t, big.NewInt(1), big.NewInt(7)))
		_, ok := DecodeTransferQuantity(lg, "0x3333333333333333333333333333333333333333")
		require.False(t, ok)
	})

	t.Run("insufficient topics -> skipped", func(t *testing.T) {
		lg := types.Log{Topics: []common.Hash{singleSig}}
		_, ok := DecodeTransferQuantity(lg, "")
		require.False(t, ok)
	})

	t.Run("unknown event signature -> skipped", func(t *testing.T) {
		otherSig := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
		lg := makeTransferLog(otherSig, buyer, nil)
		_, ok := DecodeTransferQuantity(lg, "")
		require.False(t, ok)
	})

	t.Run("garbage data -> decode error skipped", func(t *testing.T) {
		lg := makeTransferLog(singleSig, buyer, []byte("somegarbage"))
		_, ok := DecodeTransferQuantity(lg, "")
		require.False(t, ok)
	})
}
