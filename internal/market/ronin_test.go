package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roninSalesBody = `{
  "data": {
    "recentlySolds": {
      "results": [
        {
          "assets": [
            {
              "token": {
                "__typename": "Erc721",
                "tokenId721": "42",
                "name": "Kojin #42",
                "image": "https://img.example/42.png"
              },
              "quantity": "1"
            }
          ],
          "maker": "0xSELLER",
          "matcher": "0xBUYER",
          "realPrice": "15340000000000000000",
          "timestamp": 1700000100,
          "txHash": "0xAAA"
        },
        {
          "assets": [
            {
              "token": {
                "__typename": "Erc1155",
                "tokenId1155": "7",
                "name": "Mount",
                "image": ""
              },
              "quantity": "2"
            }
          ],
          "maker": "0xseller2",
          "matcher": "0xbuyer2",
          "realPrice": "10000000000000000000",
          "timestamp": 1700000200,
          "txHash": "0xbbb"
        }
      ]
    }
  }
}`

func TestRoninFetcher_FetchSales(t *testing.T) {
	t.Run("normalizes the token union into raw sales", func(t *testing.T) {
		var gotRequest graphQLRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "secret", r.Header.Get("x-api-key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
			w.Write([]byte(roninSalesBody))
		}))
		defer srv.Close()

		fetcher := NewRoninFetcher(srv.URL, "secret", srv.Client())
		sales, err := fetcher.FetchSales(context.Background(), "0xc0ffee", 0, 10)
		require.NoError(t, err)
		require.Len(t, sales, 2)

		assert.Equal(t, "0xc0ffee", gotRequest.Variables["tokenAddress"])
		assert.EqualValues(t, 10, gotRequest.Variables["size"])

		erc721 := sales[0]
		assert.Equal(t, "42", erc721.TokenID)
		assert.Equal(t, "Kojin #42", erc721.TokenName)
		assert.Equal(t, ERC721, erc721.Standard)
		assert.Equal(t, "15340000000000000000", erc721.Price)
		assert.Equal(t, "0xbuyer", erc721.Buyer, "addresses are lowercased")
		assert.Equal(t, "0xseller", erc721.Seller)
		assert.Equal(t, "0xaaa", erc721.TxHash)
		assert.EqualValues(t, 1700000100, erc721.Timestamp)
		assert.EqualValues(t, 1, erc721.Quantity)

		erc1155 := sales[1]
		assert.Equal(t, "7", erc1155.TokenID)
		assert.Equal(t, ERC1155, erc1155.Standard)
		assert.EqualValues(t, 2, erc1155.Quantity)
	})

	t.Run("no api key -> header omitted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, present := r.Header["X-Api-Key"]
			assert.False(t, present)
			w.Write([]byte(`{"data": {"recentlySolds": {"results": []}}}`))
		}))
		defer srv.Close()

		fetcher := NewRoninFetcher(srv.URL, "", srv.Client())
		sales, err := fetcher.FetchSales(context.Background(), "0xc0ffee", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, sales)
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream broke", http.StatusBadGateway)
		}))
		defer srv.Close()

		fetcher := NewRoninFetcher(srv.URL, "secret", srv.Client())
		_, err := fetcher.FetchSales(context.Background(), "0xc0ffee", 0, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502")
	})

	t.Run("GraphQL errors envelope -> error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors": [{"message": "rate limit exceeded"}]}`))
		}))
		defer srv.Close()

		fetcher := NewRoninFetcher(srv.URL, "secret", srv.Client())
		_, err := fetcher.FetchSales(context.Background(), "0xc0ffee", 0, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit exceeded")
	})

	t.Run("malformed body -> error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{nope`))
		}))
		defer srv.Close()

		fetcher := NewRoninFetcher(srv.URL, "secret", srv.Client())
		_, err := fetcher.FetchSales(context.Background(), "0xc0ffee", 0, 10)
		assert.Error(t, err)
	})
}

func TestNormalizeRoninSale_NoAssets(t *testing.T) {
	sale := normalizeRoninSale(roninSale{
		Maker:     "0xseller",
		Matcher:   "0xbuyer",
		RealPrice: "1",
		Timestamp: 5,
		TxHash:    "0xaaa",
	})
	assert.EqualValues(t, 1, sale.Quantity)
	assert.Empty(t, sale.TokenID)
}
