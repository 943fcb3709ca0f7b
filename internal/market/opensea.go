package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var weiPerEth = decimal.New(1, 18)

// OpenSeaFetcher pulls sale events from the OpenSea REST API.
type OpenSeaFetcher struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewOpenSeaFetcher(apiURL string, apiKey string, httpClient *http.Client) *OpenSeaFetcher {
	return &OpenSeaFetcher{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type openSeaNFT struct {
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url"`
	TokenStandard string `json:"token_standard"`
}

type openSeaAccount struct {
	Address string `json:"address"`
}

type openSeaEvent struct {
	NFT     openSeaNFT `json:"nft"`
	Payment struct {
		Quantity json.Number `json:"quantity"`
	} `json:"payment"`
	FromAccount     openSeaAccount  `json:"from_account"`
	ToAccount       openSeaAccount  `json:"to_account"`
	Seller          string          `json:"seller"`
	Buyer           string          `json:"buyer"`
	Quantity        json.Number     `json:"quantity"`
	EventTimestamp  json.RawMessage `json:"event_timestamp"`
	TransactionHash string          `json:"transaction_hash"`
}

type openSeaEventsResponse struct {
	Events []openSeaEvent `json:"events"`
}

func (f *OpenSeaFetcher) FetchSales(ctx context.Context, slug string, after int64, size int) ([]RawSale, error) {
	params := url.Values{}
	params.Set("event_type", "sale")
	params.Set("occurred_after", strconv.FormatInt(after, 10))
	params.Set("collection_slug", slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensea request failed - %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read opensea response - %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opensea HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed openSeaEventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode opensea response - %w", err)
	}

	sales := make([]RawSale, 0, len(parsed.Events))
	for _, ev := range parsed.Events {
		sales = append(sales, *Normalize(normalizeOpenSeaEvent(ev)))
	}
	return sales, nil
}

func normalizeOpenSeaEvent(ev openSeaEvent) *RawSale {
	sale := &RawSale{
		TokenID:   ev.NFT.Identifier,
		TokenName: ev.NFT.Name,
		Image:     ev.NFT.ImageURL,
		Standard:  ERC721,
		Price:     toDecimalEth(ev.Payment.Quantity),
		Buyer:     ev.ToAccount.Address,
		Seller:    ev.FromAccount.Address,
		TxHash:    ev.TransactionHash,
		Timestamp: parseEventTimestamp(ev.EventTimestamp),
		Quantity:  1,
	}
	if ev.NFT.TokenStandard == "erc1155" {
		sale.Standard = ERC1155
	}
	if qty, err := ev.Quantity.Int64(); err == nil && qty > 0 {
		sale.Quantity = qty
	}
	if sale.Buyer == "" {
		sale.Buyer = ev.Buyer
	}
	if sale.Seller == "" {
		sale.Seller = ev.Seller
	}
	if sale.TokenName == "" && sale.TokenID != "" {
		sale.TokenName = "Token #" + sale.TokenID
	}
	return sale
}

func toDecimalEth(quantity json.Number) string {
	wei, err := decimal.NewFromString(quantity.String())
	if err != nil {
		return quantity.String()
	}
	return wei.Div(weiPerEth).String()
}

// parseEventTimestamp accepts the two shapes OpenSea has used over time:
// epoch seconds (number) and an RFC3339 string.
func parseEventTimestamp(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if ts, err := n.Int64(); err == nil {
			return ts
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Unix()
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t.Unix()
		}
		if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ts
		}
	}
	return 0
}
