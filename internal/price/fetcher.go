// Package price quotes token values: on-chain oracle rates the vault charges
// its daily budget with, and CoinGecko fiat prices for display.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/config"
)

const coinGeckoURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves native coin prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// NewFetcher creates a new price fetcher.
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: config.RPCTimeout},
		baseURL:  coinGeckoURL,
		currency: strings.ToLower(currency),
	}
}

// Currency returns the lowercase fiat code prices are quoted in.
func (f *Fetcher) Currency() string { return f.currency }

// coinGeckoIDs maps chain names to the CoinGecko ID of their native coin.
var coinGeckoIDs = map[string]string{
	"ethereum":  "ethereum",
	"base":      "ethereum",
	"arbitrum":  "ethereum",
	"optimism":  "ethereum",
	"linea":     "ethereum",
	"scroll":    "ethereum",
	"sepolia":   "ethereum",
	"polygon":   "matic-network",
	"bnb":       "binancecoin",
	"avalanche": "avalanche-2",
	"gnosis":    "xdai",
}

// GetPrice returns the fiat price of a chain's native coin.
func (f *Fetcher) GetPrice(ctx context.Context, chainName string) (float64, error) {
	id, ok := coinGeckoIDs[strings.ToLower(chainName)]
	if !ok {
		return 0, fmt.Errorf("unknown chain: %s", chainName)
	}
	prices, err := f.fetchBatch(ctx, []string{id})
	if err != nil {
		return 0, err
	}
	p, ok := prices[id]
	if !ok {
		return 0, fmt.Errorf("price not available for: %s", id)
	}
	return p, nil
}

func (f *Fetcher) fetchBatch(ctx context.Context, ids []string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		f.baseURL, strings.Join(ids, ","), f.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching prices: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price response: %w", err)
	}

	// Response: {"ethereum":{"usd":1234.56}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}

	prices := make(map[string]float64)
	for id, currencies := range raw {
		if p, ok := currencies[f.currency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}

// FiatValue converts a wei amount to fiat at price per whole coin.
func FiatValue(wei *big.Int, price float64) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	f.Mul(f, big.NewFloat(price))
	v, _ := f.Float64()
	return v
}
