// Package restauth is the REST client for the external authenticator. The
// core only sees opaque subject ids; credential verification happens on the
// provider side.
package restauth

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

// Client implements booking.Authenticator against a REST endpoint.
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

type subjectPayload struct {
	SubjectID string `json:"subject_id"`
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type failurePayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Authenticate verifies the credentials with the provider. A 401 from the
// provider is a clean ErrBadCredentials; everything else is a provider fault.
func (client *Client) Authenticate(ctx context.Context, email booking.EmailAddress, password booking.Password) (booking.AuthSubject, error) {
	payload, err := client.postCredentials(ctx, "/sessions", email, password)
	if err != nil {
		return booking.AuthSubject{}, err
	}
	return booking.NewAuthSubject(payload.SubjectID)
}

// CreateSubject registers the credentials and returns the issued subject.
func (client *Client) CreateSubject(ctx context.Context, email booking.EmailAddress, password booking.Password) (booking.AuthSubject, error) {
	payload, err := client.postCredentials(ctx, "/subjects", email, password)
	if err != nil {
		return booking.AuthSubject{}, err
	}
	return booking.NewAuthSubject(payload.SubjectID)
}

// DeleteSubject removes the subject. Compensation hook.
func (client *Client) DeleteSubject(ctx context.Context, subject booking.AuthSubject) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, client.baseURL+"/subjects/"+url.PathEscape(subject.String()), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("auth call delete subject: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("auth call delete subject: %s", response.Status)
	}
	return nil
}

func (client *Client) postCredentials(ctx context.Context, path string, email booking.EmailAddress, password booking.Password) (subjectPayload, error) {
	encoded, err := json.Marshal(credentialsPayload{Email: email.String(), Password: password.String()})
	if err != nil {
		return subjectPayload{}, fmt.Errorf("encode request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return subjectPayload{}, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Warn("auth call failed", zap.String("path", path), zap.Error(err))
		return subjectPayload{}, fmt.Errorf("auth call %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusUnauthorized {
		return subjectPayload{}, booking.ErrBadCredentials
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		var failure failurePayload
		_ = json.NewDecoder(io.LimitReader(response.Body, 4096)).Decode(&failure)
		client.logger.Warn("auth call rejected",
			zap.String("path", path),
			zap.Int("status", response.StatusCode),
			zap.String("reason", failure.Reason))
		if failure.Reason == "" {
			failure.Reason = response.Status
		}
		return subjectPayload{}, fmt.Errorf("auth call %s: %s", path, failure.Reason)
	}
	var payload subjectPayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return subjectPayload{}, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

var _ booking.Authenticator = (*Client)(nil)
