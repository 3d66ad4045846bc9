// Package evmgateway talks to the certificate registry contract through its
// HTTP relay. The relay owns the chain account and gas strategy; this client
// only speaks JSON. Hashes come back 0x-prefixed as the contract stores
// bytes32 values.
package evmgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"certledger/internal/domain"
)

type Client struct {
	baseURL string
	httpDo  func(*http.Request) (*http.Response, error)
}

func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("ledger gateway base url is required")
	}
	doer := http.DefaultClient.Do
	if httpClient != nil {
		doer = httpClient.Do
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpDo:  doer,
	}, nil
}

type issueRequest struct {
	CertificateID   string `json:"certificate_id"`
	CertificateHash string `json:"certificate_hash"`
}

type txResponse struct {
	TxHash string `json:"tx_hash"`
}

type verifyResponse struct {
	Hash      string `json:"hash"`
	IsValid   bool   `json:"is_valid"`
	IsRevoked bool   `json:"is_revoked"`
	Timestamp int64  `json:"timestamp"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (c *Client) IssueCertificate(ctx context.Context, certificateID, contentHash string) (string, error) {
	body, err := json.Marshal(issueRequest{
		CertificateID:   certificateID,
		CertificateHash: withHexPrefix(contentHash),
	})
	if err != nil {
		return "", err
	}
	var resp txResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/certificates", body, &resp); err != nil {
		return "", err
	}
	if resp.TxHash == "" {
		return "", fmt.Errorf("%w: gateway returned no tx hash", domain.ErrLedgerUnavailable)
	}
	return resp.TxHash, nil
}

func (c *Client) VerifyCertificate(ctx context.Context, certificateID string) (domain.LedgerRecord, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/certificates/"+certificateID, nil, &resp); err != nil {
		return domain.LedgerRecord{}, err
	}
	return domain.LedgerRecord{
		Hash:      resp.Hash,
		IsValid:   resp.IsValid,
		IsRevoked: resp.IsRevoked,
		Timestamp: resp.Timestamp,
	}, nil
}

func (c *Client) RevokeCertificate(ctx context.Context, certificateID string) (string, error) {
	var resp txResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/certificates/"+certificateID+"/revoke", nil, &resp); err != nil {
		return "", err
	}
	return resp.TxHash, nil
}

func (c *Client) GetCertificateCount(ctx context.Context) (int64, error) {
	var resp countResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/certificates/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpDo(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: gateway status %d", domain.ErrLedgerUnavailable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: bad gateway response: %v", domain.ErrLedgerUnavailable, err)
	}
	return nil
}

func withHexPrefix(hash string) string {
	if strings.HasPrefix(hash, "0x") || strings.HasPrefix(hash, "0X") {
		return hash
	}
	return "0x" + hash
}
