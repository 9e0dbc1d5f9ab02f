package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"codremit/internal"
	"codremit/internal/config"
)

// ErrNotFound marks a reference number the invoicing system does not know.
// ResolveDetails treats it as a miss, not a failure.
var ErrNotFound = errors.New("shipment not found")

// Client talks to the courier invoicing API: login, date-range shipment
// fetch, and per-reference shipment detail. All calls go through the rate
// limiter and retry transient failures with capped exponential backoff.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter

	mu    sync.Mutex
	token string
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type loginPayload struct {
	AccessToken struct {
		ID string `json:"id"`
	} `json:"access_token"`
}

type shipmentPage struct {
	Rows    []map[string]any `json:"rows"`
	HasNext bool             `json:"hasNext"`
}

type detailPayload struct {
	ReferenceNumber    string `json:"referenceNumber"`
	DestinationHubCode string `json:"destinationHubCode"`
	DestinationHubName string `json:"destinationHubName"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.InvoicingTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.InvoicingRateLimitRPS),
	}
}

// Login authenticates and caches the access token for subsequent calls.
func (c *Client) Login(ctx context.Context) error {
	if err := c.cfg.Require("INVOICING_USERNAME", c.cfg.InvoicingUsername); err != nil {
		return err
	}
	if err := c.cfg.Require("INVOICING_PASSWORD", c.cfg.InvoicingPassword); err != nil {
		return err
	}

	body := map[string]string{
		"username": c.cfg.InvoicingUsername,
		"pwd":      c.cfg.InvoicingPassword,
	}
	data, err := c.call(ctx, http.MethodPost, "dashboard/login", nil, body, false)
	if err != nil {
		return fmt.Errorf("invoicing login: %w", err)
	}

	var payload loginPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.AccessToken.ID == "" {
		return errors.New("invoicing login: empty access token")
	}

	c.mu.Lock()
	c.token = payload.AccessToken.ID
	c.mu.Unlock()
	return nil
}

// FetchShipments pulls every shipment row invoiced inside the date range,
// walking pages until the API reports no more.
func (c *Client) FetchShipments(ctx context.Context, from, to time.Time) ([]internal.ShipmentRecord, error) {
	records := make([]internal.ShipmentRecord, 0)
	for page := 1; ; page++ {
		params := map[string]string{
			"fromDate":       from.UTC().Format(time.RFC3339),
			"toDate":         to.UTC().Format(time.RFC3339),
			"pageNo":         fmt.Sprintf("%d", page),
			"resultsPerPage": fmt.Sprintf("%d", c.cfg.InvoicingPageSize),
		}
		data, err := c.call(ctx, http.MethodGet, "invoice/shipments", params, nil, true)
		if err != nil {
			return nil, err
		}

		var payload shipmentPage
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		for _, raw := range payload.Rows {
			records = append(records, toShipmentRecord(raw))
		}
		if !payload.HasNext || len(payload.Rows) == 0 {
			break
		}
	}
	return records, nil
}

// ResolveDetails fetches shipment detail for the given reference numbers in
// bounded concurrent groups, pausing between groups. Unknown references are
// simply absent from the result; the engine treats a miss as "no override
// applies".
func (c *Client) ResolveDetails(ctx context.Context, refs []string) (map[string]internal.ShipmentDetail, error) {
	out := make(map[string]internal.ShipmentDetail, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	groupSize := c.cfg.InvoicingBatchSize
	if groupSize <= 0 {
		groupSize = 10
	}

	var mu sync.Mutex
	for start := 0; start < len(refs); start += groupSize {
		end := start + groupSize
		if end > len(refs) {
			end = len(refs)
		}

		var wg sync.WaitGroup
		errCh := make(chan error, end-start)
		for _, ref := range refs[start:end] {
			wg.Add(1)
			go func(ref string) {
				defer wg.Done()
				detail, err := c.fetchDetail(ctx, ref)
				if errors.Is(err, ErrNotFound) {
					log.Debugf("no detail for reference %s", ref)
					return
				}
				if err != nil {
					errCh <- fmt.Errorf("detail for %s: %w", ref, err)
					return
				}
				mu.Lock()
				out[ref] = detail
				mu.Unlock()
			}(ref)
		}
		wg.Wait()
		close(errCh)
		if err := <-errCh; err != nil {
			return nil, err
		}

		if end < len(refs) && c.cfg.InvoicingBatchDelayMs > 0 {
			time.Sleep(time.Duration(c.cfg.InvoicingBatchDelayMs) * time.Millisecond)
		}
	}

	log.Infof("resolved %d/%d shipment details", len(out), len(refs))
	return out, nil
}

func (c *Client) fetchDetail(ctx context.Context, ref string) (internal.ShipmentDetail, error) {
	data, err := c.call(ctx, http.MethodGet, "shipment/detail", map[string]string{"referenceNumber": ref}, nil, true)
	if err != nil {
		return internal.ShipmentDetail{}, err
	}

	var payload detailPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return internal.ShipmentDetail{}, err
	}
	return internal.ShipmentDetail{
		ReferenceNumber:    ref,
		DestinationHubCode: payload.DestinationHubCode,
		DestinationHubName: payload.DestinationHubName,
	}, nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, params map[string]string, body any, authed bool) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.InvoicingAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var blob []byte
	if body != nil {
		blob, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	maxAttempts := c.cfg.InvoicingMaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.limiter.Wait()

		var reader io.Reader
		if blob != nil {
			reader = bytes.NewReader(blob)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("organisation-id", c.cfg.InvoicingOrgID)
		if blob != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if authed {
			c.mu.Lock()
			token := c.token
			c.mu.Unlock()
			if token == "" {
				return nil, errors.New("invoicing client not logged in")
			}
			req.Header.Set("access-token", token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				time.Sleep(backoff(attempt))
			}
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("invoicing status %d", resp.StatusCode)
				time.Sleep(backoff(attempt))
				continue
			}
			return nil, fmt.Errorf("invoicing api error: status=%d body=%s", resp.StatusCode, string(respBody))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("invoicing api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("invoicing request failed")
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toShipmentRecord(raw map[string]any) internal.ShipmentRecord {
	record := make(internal.ShipmentRecord, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			record[k] = t
		case float64:
			record[k] = trimFloat(t)
		case bool:
			record[k] = fmt.Sprintf("%t", t)
		case nil:
			record[k] = ""
		default:
			blob, _ := json.Marshal(t)
			record[k] = string(blob)
		}
	}
	return record
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
