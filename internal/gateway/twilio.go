package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.twilio.com"

// TwilioClient sends messages through the Twilio Messages REST API. It is
// constructed once at startup from validated configuration and injected into
// the dispatcher.
type TwilioClient struct {
	accountSID string
	authToken  string
	apiBase    string
	httpClient *http.Client
}

func NewTwilioClient(accountSID, authToken string) *TwilioClient {
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithAPIBase overrides the API endpoint. Used by tests.
func (c *TwilioClient) WithAPIBase(base string) *TwilioClient {
	c.apiBase = strings.TrimSuffix(base, "/")
	return c
}

type twilioMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioErrorResponse struct {
	Code    int    `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *TwilioClient) Send(ctx context.Context, msg Message) (*Receipt, error) {
	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", msg.From)
	form.Set("Body", msg.Body)
	if msg.StatusCallback != "" {
		form.Set("StatusCallback", msg.StatusCallback)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.apiBase, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport failures follow the same path as a
		// synchronous provider rejection.
		return nil, &ProviderError{
			Code:    0,
			Status:  http.StatusServiceUnavailable,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr twilioErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return nil, &ProviderError{
			Code:    apiErr.Code,
			Status:  apiErr.Status,
			Message: apiErr.Message,
		}
	}

	var out twilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode send response: %w", err)
	}

	return &Receipt{SID: out.SID, Status: out.Status}, nil
}
