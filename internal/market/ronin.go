package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const recentSalesQuery = `
query RecentSales($tokenAddress: String!, $from: Int!, $size: Int!) {
  recentlySolds(from: $from, size: $size, tokenAddress: $tokenAddress) {
    results {
      assets {
        token {
          __typename
          ... on Erc1155 {
            tokenId1155: tokenId
            name
            image
          }
          ... on Erc721 {
            tokenId721: tokenId
            name
            image
          }
        }
        quantity
      }
      maker
      matcher
      realPrice
      timestamp
      txHash
    }
  }
}`

// RoninFetcher pulls recent sales from the Ronin chain indexer GraphQL API.
type RoninFetcher struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewRoninFetcher(apiURL string, apiKey string, httpClient *http.Client) *RoninFetcher {
	return &RoninFetcher{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type roninToken struct {
	TypeName    string `json:"__typename"`
	TokenID721  string `json:"tokenId721"`
	TokenID1155 string `json:"tokenId1155"`
	Name        string `json:"name"`
	Image       string `json:"image"`
}

type roninAsset struct {
	Token    roninToken  `json:"token"`
	Quantity json.Number `json:"quantity"`
}

type roninSale struct {
	Assets    []roninAsset `json:"assets"`
	Maker     string       `json:"maker"`
	Matcher   string       `json:"matcher"`
	RealPrice json.Number  `json:"realPrice"`
	Timestamp int64        `json:"timestamp"`
	TxHash    string       `json:"txHash"`
}

type recentSalesResponse struct {
	Data struct {
		RecentlySolds struct {
			Results []roninSale `json:"results"`
		} `json:"recentlySolds"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (f *RoninFetcher) FetchSales(ctx context.Context, contract string, after int64, size int) ([]RawSale, error) {
	reqBody, err := json.Marshal(graphQLRequest{
		Query: recentSalesQuery,
		Variables: map[string]any{
			"tokenAddress": contract,
			"from":         0,
			"size":         size,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request - %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("x-api-key", f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ronin indexer request failed - %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ronin indexer response - %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ronin indexer HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed recentSalesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ronin indexer response - %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("ronin indexer GraphQL error: %s", parsed.Errors[0].Message)
	}

	sales := make([]RawSale, 0, len(parsed.Data.RecentlySolds.Results))
	for _, r := range parsed.Data.RecentlySolds.Results {
		sales = append(sales, *Normalize(normalizeRoninSale(r)))
	}
	return sales, nil
}

func normalizeRoninSale(r roninSale) *RawSale {
	sale := &RawSale{
		Price:     r.RealPrice.String(),
		Buyer:     r.Matcher,
		Seller:    r.Maker,
		TxHash:    r.TxHash,
		Timestamp: r.Timestamp,
		Quantity:  1,
	}
	if len(r.Assets) == 0 {
		return sale
	}

	asset := r.Assets[0]
	if qty, err := asset.Quantity.Int64(); err == nil && qty > 0 {
		sale.Quantity = qty
	}
	sale.TokenName = asset.Token.Name
	sale.Image = asset.Token.Image
	switch asset.Token.TypeName {
	case "Erc1155":
		sale.Standard = ERC1155
		sale.TokenID = asset.Token.TokenID1155
	default:
		sale.Standard = ERC721
		sale.TokenID = asset.Token.TokenID721
	}
	if sale.TokenName == "" && sale.TokenID != "" {
		sale.TokenName = "Token #" + sale.TokenID
	}
	return sale
}
