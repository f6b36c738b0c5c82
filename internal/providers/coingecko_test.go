package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCoingeckoClient(serverURL string) *CoingeckoClient {
	return &CoingeckoClient{
		client: resty.New().SetBaseURL(serverURL),
		logger: zap.NewNop(),
	}
}

func TestCoingeckoFetchPrices_Batched(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":64123.5},"ethereum":{"usd":3100.25}}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	c := newTestCoingeckoClient(server.URL)

	prices, err := c.FetchPrices(context.Background(), []string{"bitcoin", "ethereum"})

	assert.NoError(t, err)
	assert.Equal(t, map[string]float64{"bitcoin": 64123.5, "ethereum": 3100.25}, prices)
}

func TestCoingeckoFetchPrices_EmptyInputSkipsNetwork(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	c := newTestCoingeckoClient(server.URL)

	prices, err := c.FetchPrices(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, prices)
}

func TestCoingeckoFetchPrices_UnknownIDOmitted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":64000}}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	c := newTestCoingeckoClient(server.URL)

	prices, err := c.FetchPrices(context.Background(), []string{"bitcoin", "no-such-coin"})

	assert.NoError(t, err)
	assert.Equal(t, map[string]float64{"bitcoin": 64000}, prices)
}

func TestCoingeckoFetchPrices_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	c := newTestCoingeckoClient(server.URL)

	prices, err := c.FetchPrices(context.Background(), []string{"bitcoin"})

	assert.Error(t, err)
	assert.Nil(t, prices)
}
