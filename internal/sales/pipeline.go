package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/realmwatch/salesbot/internal/eth"
	"github.com/realmwatch/salesbot/internal/market"
	"github.com/realmwatch/salesbot/pkg/pricefmt"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EnrichedSale is a RawSale ready for delivery: quantity resolved, prices
// formatted, links filled in. Built and discarded within one pipeline run.
type EnrichedSale struct {
	market.RawSale

	Collection string
	Market     market.Kind
	UnitPrice  string
	TotalPrice string
	TxURL      string
}

// Notifier is the delivery sink for enriched sales.
type Notifier interface {
	NotifySale(ctx context.Context, sale EnrichedSale) error
}

// Processor turns raw sale records into delivered notifications, advancing
// the tracker's high-water mark as it goes.
type Processor struct {
	resolver eth.QuantityResolver
	notifier Notifier
}

func NewProcessor(resolver eth.QuantityResolver, notifier Notifier) *Processor {
	return &Processor{
		resolver: resolver,
		notifier: notifier,
	}
}

// SelectNew filters rawSales down to the genuinely new records and orders
// them by (timestamp, txHash) ascending. A record is new when its timestamp
// is past the high-water mark, or sits exactly on it with a transaction
// hash not notified before.
func SelectNew(rawSales []market.RawSale, lastTimestamp int64, seen *SeenSet) []market.RawSale {
	var newSales []market.RawSale
	for _, s := range rawSales {
		if s.Timestamp > lastTimestamp ||
			(s.Timestamp == lastTimestamp && s.TxHash != "" && !seen.Contains(s.TxHash)) {
			newSales = append(newSales, s)
		}
	}
	sort.Slice(newSales, func(i, j int) bool {
		if newSales[i].Timestamp != newSales[j].Timestamp {
			return newSales[i].Timestamp < newSales[j].Timestamp
		}
		return newSales[i].TxHash < newSales[j].TxHash
	})
	return newSales
}

// Process notifies every new sale in chronological order and returns how
// many were delivered. The tracker is only mutated for sales that were
// actually handed to the notifier, so a delivery failure never skips ahead
// of the high-water mark.
func (p *Processor) Process(ctx context.Context, tracker *CollectionTracker, rawSales []market.RawSale) (int, error) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	newSales := SelectNew(rawSales, tracker.lastTimestamp, tracker.seen)
	if len(newSales) == 0 {
		return 0, nil
	}

	notified := 0
	for _, s := range newSales {
		enriched := p.enrich(ctx, tracker, s)
		if err := p.notifier.NotifySale(ctx, enriched); err != nil {
			return notified, fmt.Errorf("failed to notify sale %s - %w", s.TxHash, err)
		}
		notified++
		tracker.seen.Add(s.TxHash)
		if s.Timestamp > tracker.lastTimestamp {
			tracker.lastTimestamp = s.Timestamp
		}
	}
	return notified, nil
}

func (p *Processor) enrich(ctx context.Context, tracker *CollectionTracker, s market.RawSale) EnrichedSale {
	quantity := p.resolveQuantity(ctx, tracker, s)
	s.Quantity = quantity

	symbol := currencySymbol(tracker.Market)
	enriched := EnrichedSale{
		RawSale:    s,
		Collection: tracker.Name,
		Market:     tracker.Market,
		TotalPrice: pricefmt.Format(s.Price, symbol),
		UnitPrice:  pricefmt.Format(unitPrice(s.Price, quantity), symbol),
		TxURL:      txURL(tracker.Market, s.TxHash),
	}
	return enriched
}

// resolveQuantity trusts the receipt over the source's quantity hint for
// ERC1155 sales. The hint is the fallback when the receipt is unavailable.
func (p *Processor) resolveQuantity(ctx context.Context, tracker *CollectionTracker, s market.RawSale) int64 {
	if s.Standard != market.ERC1155 {
		return 1
	}
	if qty := p.resolver.ResolveQuantity(ctx, s.TxHash, tracker.Contract, s.Buyer); qty > 0 {
		return qty
	}
	zap.L().Debug("Falling back to source quantity hint",
		zap.String("txHash", s.TxHash),
		zap.String("collection", tracker.Name))
	if s.Quantity > 0 {
		return s.Quantity
	}
	return 1
}

func unitPrice(price string, quantity int64) string {
	if quantity <= 1 {
		return price
	}
	total, err := decimal.NewFromString(price)
	if err != nil {
		return price
	}
	return total.Div(decimal.NewFromInt(quantity)).String()
}

func currencySymbol(kind market.Kind) string {
	if kind == market.KindOpenSea {
		return "ETH"
	}
	return "RON"
}

func txURL(kind market.Kind, txHash string) string {
	if txHash == "" {
		return ""
	}
	if kind == market.KindOpenSea {
		return "https://etherscan.io/tx/" + txHash
	}
	return "https://app.roninchain.com/tx/" + txHash
}
