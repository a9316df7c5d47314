package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PagamentoRequest carries what the payment worker needs to create a
// Stripe PaymentIntent for a confirmed reservation.
type PagamentoRequest struct {
	ReservaID  string
	ClienteRef string
	Valor      decimal.Decimal // em reais
	Descricao  string
}

// PagamentoResponse is the subset of the PaymentIntent we keep.
type PagamentoResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
}

// StripeClient is a thin HTTP wrapper over the Stripe REST API.
// Payment failures never revert reservation state; callers log and retry.
type StripeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewStripeClient(baseURL, apiKey string) *StripeClient {
	return &StripeClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CriarPaymentIntent creates a PaymentIntent in BRL cents.
func (c *StripeClient) CriarPaymentIntent(ctx context.Context, p PagamentoRequest) (*PagamentoResponse, error) {
	centavos := p.Valor.Mul(decimal.NewFromInt(100)).IntPart()

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", centavos))
	form.Set("currency", "brl")
	form.Set("description", p.Descricao)
	form.Set("metadata[reserva_id]", p.ReservaID)
	form.Set("metadata[cliente_ref]", p.ClienteRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("stripe: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe: returned %d", resp.StatusCode)
	}

	var result PagamentoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("stripe: decode response: %w", err)
	}
	return &result, nil
}
