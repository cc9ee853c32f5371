package polymarket

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
	defaultCLOBBase = "https://clob.polymarket.com"

	// CLOB /book: 500/10s documentado → operamos al 60%: 30/s.
	booksRatePerSec = 30

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client del CLOB con rate limiting y retries.
// Implementa ports.PredictionQuoteProvider y ports.MarkPriceSource.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client con el base URL dado.
// Si base está vacío usa el URL de producción.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultCLOBBase
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(booksRatePerSec, 5),
	}
}

// FetchOrderBook devuelve el book del token dado, bids y asks ordenados
// del mejor al peor precio.
func (c *Client) FetchOrderBook(ctx context.Context, assetID string) (domain.OrderBook, error) {
	var raw bookResponse
	url := fmt.Sprintf("%s/book?token_id=%s", c.base, assetID)
	if err := c.get(ctx, url, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket.FetchOrderBook: %s: %w", assetID, err)
	}
	return raw.toDomain(assetID), nil
}

// MidPrice devuelve el mid actual de un mercado para valorar posiciones.
func (c *Client) MidPrice(ctx context.Context, marketID string) (float64, error) {
	book, err := c.FetchOrderBook(ctx, marketID)
	if err != nil {
		return 0, err
	}
	mid := book.Midpoint()
	if mid <= 0 {
		return 0, &domain.DataUnavailableError{Event: marketID, Field: "prediction bid/ask"}
	}
	return mid, nil
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
			slog.Warn("rate limited by clob", "attempt", attempt+1)
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
