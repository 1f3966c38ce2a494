package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	backendWhatsApp       = "whatsapp"
	defaultWhatsAppAPIURL = "https://graph.facebook.com/v21.0"

	// whatsAppMaxBody is the Cloud API limit on a text body, in characters.
	whatsAppMaxBody = 4096
)

// WhatsAppNotifier implements Notifier via the WhatsApp Cloud API.
type WhatsAppNotifier struct {
	apiURL        string
	token         string
	phoneNumberID string
	client        *http.Client
}

// WhatsAppOption configures a WhatsAppNotifier.
type WhatsAppOption func(*WhatsAppNotifier)

// WithWhatsAppAPIURL overrides the Graph API root.
func WithWhatsAppAPIURL(u string) WhatsAppOption {
	return func(w *WhatsAppNotifier) {
		w.apiURL = strings.TrimRight(u, "/")
	}
}

// WithWhatsAppHTTPClient sets a custom HTTP client.
func WithWhatsAppHTTPClient(c *http.Client) WhatsAppOption {
	return func(w *WhatsAppNotifier) {
		w.client = c
	}
}

// NewWhatsAppNotifier creates a notifier sending from the business phone
// number phoneNumberID, authenticated with a bearer token.
func NewWhatsAppNotifier(token, phoneNumberID string, opts ...WhatsAppOption) *WhatsAppNotifier {
	w := &WhatsAppNotifier{
		apiURL:        defaultWhatsAppAPIURL,
		token:         token,
		phoneNumberID: phoneNumberID,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type whatsAppMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

type whatsAppErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send posts a text message to recipient. Reports longer than the Cloud
// API body limit go out as sequential messages split between IDs; a failed
// part aborts the rest.
func (w *WhatsAppNotifier) Send(ctx context.Context, recipient, text string) error {
	defer observe(backendWhatsApp, time.Now())

	to := RecipientDigits(recipient)
	parts := splitMessage(text, whatsAppMaxBody)
	for i, part := range parts {
		if err := w.post(ctx, to, part); err != nil {
			if len(parts) > 1 {
				return fmt.Errorf("sending part %d of %d: %w", i+1, len(parts), err)
			}
			return err
		}
	}
	return nil
}

func (w *WhatsAppNotifier) post(ctx context.Context, to, text string) error {
	body, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppTextBody{Body: text},
	})
	if err != nil {
		return fmt.Errorf("marshaling whatsapp payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", w.apiURL, w.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("whatsapp rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("whatsapp returned %d (body unreadable)", resp.StatusCode)
		}
		var errResp whatsAppErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("whatsapp returned %d: %s (code %d)",
				resp.StatusCode, errResp.Error.Message, errResp.Error.Code)
		}
		return fmt.Errorf("whatsapp returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
