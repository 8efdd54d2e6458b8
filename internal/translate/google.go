package translate

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

const defaultEndpoint = "https://translation.googleapis.com/language/translate/v2"

// GoogleClient talks to the Google Cloud Translation v2 REST API.
type GoogleClient struct {
	endpoint   string
	apiKey     string
	targetLang string
	httpClient *http.Client
}

var _ Provider = (*GoogleClient)(nil)

// NewGoogleClient builds a client translating into targetLang ("ko" for
// this deployment). An endpoint override is accepted for tests.
func NewGoogleClient(apiKey, targetLang, endpoint string) *GoogleClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if targetLang == "" {
		targetLang = "ko"
	}
	return &GoogleClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		targetLang: targetLang,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// TranslateText posts one text and returns the provider's translation.
func (c *GoogleClient) TranslateText(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("translate client misconfigured: no api key")
	}

	body, err := json.Marshal(map[string]any{
		"q":      []string{text},
		"target": c.targetLang,
		"format": "text",
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("translate error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(decoded.Data.Translations) == 0 {
		return "", fmt.Errorf("translate response carried no translations")
	}
	return decoded.Data.Translations[0].TranslatedText, nil
}
