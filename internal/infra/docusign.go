package infra

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// EnvelopeRequest describes the signing envelope created for a contract:
// the generated PDF plus both signing parties.
type EnvelopeRequest struct {
	ReservaID         string
	CaminhoPDF        string
	NomeProdutor      string
	EmailProdutor     string
	NomeProprietario  string
	EmailProprietario string
	Assunto           string
}

// EnvelopeResponse is the subset of the DocuSign reply we persist.
type EnvelopeResponse struct {
	EnvelopeID string `json:"envelopeId"`
	Status     string `json:"status"`
	URI        string `json:"uri"`
}

// DocusignClient is a thin HTTP wrapper over the DocuSign eSignature REST
// API. Signature completion is never a precondition for reservation state.
type DocusignClient struct {
	baseURL    string
	accountID  string
	token      string
	httpClient *http.Client
}

func NewDocusignClient(baseURL, accountID, token string) *DocusignClient {
	return &DocusignClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		accountID:  accountID,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CriarEnvelope uploads the contract PDF and requests signatures from the
// producer and the silo owner.
func (c *DocusignClient) CriarEnvelope(ctx context.Context, req EnvelopeRequest) (*EnvelopeResponse, error) {
	pdf, err := os.ReadFile(req.CaminhoPDF)
	if err != nil {
		return nil, fmt.Errorf("docusign: read pdf: %w", err)
	}

	payload := map[string]interface{}{
		"emailSubject": req.Assunto,
		"status":       "sent",
		"documents": []map[string]interface{}{{
			"documentBase64": base64.StdEncoding.EncodeToString(pdf),
			"name":           "contrato-armazenagem.pdf",
			"fileExtension":  "pdf",
			"documentId":     "1",
		}},
		"recipients": map[string]interface{}{
			"signers": []map[string]interface{}{
				{"email": req.EmailProdutor, "name": req.NomeProdutor, "recipientId": "1", "routingOrder": "1"},
				{"email": req.EmailProprietario, "name": req.NomeProprietario, "recipientId": "2", "routingOrder": "2"},
			},
		},
		"customFields": map[string]interface{}{
			"textCustomFields": []map[string]string{{"name": "reserva_id", "value": req.ReservaID}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("docusign: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2.1/accounts/%s/envelopes", c.baseURL, c.accountID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("docusign: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("docusign: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docusign: returned %d", resp.StatusCode)
	}

	var result EnvelopeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("docusign: decode response: %w", err)
	}
	return &result, nil
}
