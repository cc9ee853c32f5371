package deribit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/evarb/internal/domain"
)

const (
	defaultBase = "https://www.deribit.com"

	// Rate limit público de Deribit: 20 req/s por IP sin autenticar.
	// Operamos al 50% para dejar margen a otros consumidores del mismo host.
	publicRatePerSec = 10

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de la API pública de Deribit con rate limiting
// y retries. Implementa ports.OptionQuoteProvider.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client con el base URL dado.
// Si base está vacío usa el URL de producción.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(publicRatePerSec, 5),
	}
}

// FetchOptionSnapshot devuelve el ticker del call construido a partir de
// asset, strike y expiración.
func (c *Client) FetchOptionSnapshot(ctx context.Context, asset string, strike float64, expiry time.Time) (domain.OptionSnapshot, error) {
	instrument := InstrumentName(asset, strike, expiry)

	var resp tickerResponse
	url := fmt.Sprintf("%s/api/v2/public/ticker?instrument_name=%s", c.base, instrument)
	if err := c.get(ctx, url, &resp); err != nil {
		return domain.OptionSnapshot{}, fmt.Errorf("deribit.FetchOptionSnapshot: %s: %w", instrument, err)
	}
	return resp.Result.toDomain(instrument), nil
}

// FetchIndexPrice devuelve el precio del índice subyacente en USD.
func (c *Client) FetchIndexPrice(ctx context.Context, asset string) (float64, error) {
	index := IndexName(asset)

	var resp indexResponse
	url := fmt.Sprintf("%s/api/v2/public/get_index_price?index_name=%s", c.base, index)
	if err := c.get(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("deribit.FetchIndexPrice: %s: %w", index, err)
	}
	return resp.Result.IndexPrice, nil
}

// get hace un GET con rate limiting y retries con backoff exponencial.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by deribit", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
