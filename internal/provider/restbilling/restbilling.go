// Package restbilling is the REST client for the external billing provider.
// The core treats the provider as opaque: customers and instruments live
// there; only the customer id comes back.
package restbilling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	"go.uber.org/zap"
)

// Client implements booking.BillingProvider against a REST endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New returns a Client. The timeout bounds every provider call so no core
// operation blocks indefinitely.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type customerPayload struct {
	CustomerID string `json:"customer_id"`
}

type failurePayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// CreateCustomer creates a billing customer for the email.
func (client *Client) CreateCustomer(ctx context.Context, email booking.EmailAddress) (booking.CustomerID, error) {
	var payload customerPayload
	err := client.call(ctx, http.MethodPost, "/customers", map[string]string{"email": email.String()}, &payload)
	if err != nil {
		return booking.CustomerID{}, err
	}
	return booking.NewCustomerID(payload.CustomerID)
}

// DeleteCustomer removes a billing customer. Compensation hook.
func (client *Client) DeleteCustomer(ctx context.Context, customerID booking.CustomerID) error {
	return client.call(ctx, http.MethodDelete, "/customers/"+url.PathEscape(customerID.String()), nil, nil)
}

// AttachInstrument attaches a tokenized instrument to the customer.
func (client *Client) AttachInstrument(ctx context.Context, customerID booking.CustomerID, token string) (booking.Instrument, error) {
	var instrument booking.Instrument
	path := "/customers/" + url.PathEscape(customerID.String()) + "/instruments"
	err := client.call(ctx, http.MethodPost, path, map[string]string{"token": token}, &instrument)
	if err != nil {
		return booking.Instrument{}, err
	}
	return instrument, nil
}

// ListInstruments returns the customer's instruments.
func (client *Client) ListInstruments(ctx context.Context, customerID booking.CustomerID) ([]booking.Instrument, error) {
	var instruments []booking.Instrument
	path := "/customers/" + url.PathEscape(customerID.String()) + "/instruments"
	if err := client.call(ctx, http.MethodGet, path, nil, &instruments); err != nil {
		return nil, err
	}
	return instruments, nil
}

// RemoveInstrument detaches an instrument from the customer.
func (client *Client) RemoveInstrument(ctx context.Context, customerID booking.CustomerID, instrumentID string) error {
	path := "/customers/" + url.PathEscape(customerID.String()) + "/instruments/" + url.PathEscape(instrumentID)
	return client.call(ctx, http.MethodDelete, path, nil, nil)
}

func (client *Client) call(ctx context.Context, method string, path string, requestBody any, responseBody any) error {
	var reader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Warn("billing call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("billing call %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		var failure failurePayload
		_ = json.NewDecoder(response.Body).Decode(&failure)
		client.logger.Warn("billing call rejected",
			zap.String("path", path),
			zap.Int("status", response.StatusCode),
			zap.String("reason", failure.Reason))
		if failure.Reason == "" {
			failure.Reason = response.Status
		}
		return fmt.Errorf("billing call %s %s: %s", method, path, failure.Reason)
	}
	if responseBody == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ booking.BillingProvider = (*Client)(nil)
