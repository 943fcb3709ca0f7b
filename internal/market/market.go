package market

import (
	"context"
	"strings"
)

type Kind string

const (
	KindRonin   Kind = "ronin"
	KindOpenSea Kind = "opensea"
)

type TokenStandard string

const (
	ERC721  TokenStandard = "ERC721"
	ERC1155 TokenStandard = "ERC1155"
)

// RawSale is one sale event in a source-independent shape. Quantity is only
// a hint for ERC1155 sales; the real transferred amount has to be resolved
// from the transaction receipt.
type RawSale struct {
	TokenID   string
	TokenName string
	Image     string
	Standard  TokenStandard
	Price     string // base units or decimal, as returned by the source
	Buyer     string
	Seller    string
	TxHash    string
	Timestamp int64
	Quantity  int64
}

type SaleFetcher interface {
	FetchSales(ctx context.Context, contractOrSlug string, after int64, size int) ([]RawSale, error)
}

func Normalize(s *RawSale) *RawSale {
	s.TxHash = strings.ToLower(s.TxHash)
	s.Buyer = strings.ToLower(s.Buyer)
	s.Seller = strings.ToLower(s.Seller)
	return s
}
