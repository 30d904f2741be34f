package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
)

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	fromAddr   string // e.g. "alerts@eyesentry.example"
	fromName   string // e.g. "EyeSentry"
	baseURL    string // result access URL base, e.g. "https://portal.eyesentry.example"
	httpClient *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(apiKey, fromAddr, fromName, baseURL string) Sender {
	return &resendClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

// SendHighRiskAlert sends the doctor-facing high-tier alert.
func (c *resendClient) SendHighRiskAlert(ctx context.Context, p HighRiskAlertParams) error {
	subject := fmt.Sprintf("High risk assessment — patient %s", p.PatientRef)
	body := fmt.Sprintf(`
		<h2>High risk assessment</h2>
		<p>Patient <strong>%s</strong> scored <strong>%d</strong> and was classified
		as <strong>High</strong> risk.</p>
		<p>Resolved recommendation:</p>
		<blockquote>%s</blockquote>
		<p>Please review the full assessment in the portal.</p>`,
		html.EscapeString(p.PatientRef), p.TotalScore, html.EscapeString(p.Advice))

	return c.send(ctx, p.To, subject, body)
}

// SendScored sends the routine "results are ready" notification.
func (c *resendClient) SendScored(ctx context.Context, p ScoredParams) error {
	subject := fmt.Sprintf("Assessment scored — patient %s", p.PatientRef)
	link := fmt.Sprintf("%s/assessments/%s", c.baseURL, p.AccessToken)
	body := fmt.Sprintf(`
		<h2>Assessment scored</h2>
		<p>Patient <strong>%s</strong> has been classified as
		<strong>%s</strong> risk.</p>
		<p><a href="%s">View the full result</a></p>`,
		html.EscapeString(p.PatientRef), html.EscapeString(p.TierLabel), link)

	return c.send(ctx, p.To, subject, body)
}

// send posts one message to the Resend API and surfaces API-level errors.
func (c *resendClient) send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(resendRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr),
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	var body resendResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("email: decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || body.Error != nil {
		msg := "unknown error"
		if body.Error != nil {
			msg = body.Error.Message
		}
		return fmt.Errorf("email: resend API status %d: %s", resp.StatusCode, msg)
	}
	return nil
}
