// Package translate implements the Korean translator gate: cheap script
// detection, paragraph-safe provider round trips, and a best-effort
// provider client.
package translate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"newshub/internal/ports"
)

// Markers protecting newlines across providers that collapse whitespace.
const (
	paraMarker = "[[[PB]]]"
	lineMarker = "[[[LB]]]"
)

var (
	paraRestoreExpr = regexp.MustCompile(`\s*\[\[\[PB\]\]\]\s*`)
	lineRestoreExpr = regexp.MustCompile(`\s*\[\[\[LB\]\]\]\s*`)
)

// Provider performs the actual remote translation of marker-encoded text.
type Provider interface {
	TranslateText(ctx context.Context, text string) (string, error)
}

// Gate decides whether a text needs translating at all and shields
// paragraph structure from the provider. Translation is never blocking:
// every failure path returns the input unchanged.
type Gate struct {
	provider Provider
	logger   *slog.Logger
	warnOnce sync.Once
}

var _ ports.Translator = (*Gate)(nil)

// NewGate wires a provider; a nil provider is a valid configuration and
// turns the gate into an identity function.
func NewGate(provider Provider, logger *slog.Logger) *Gate {
	return &Gate{provider: provider, logger: logger}
}

// Translate returns text in Korean. Already-Korean input is returned as-is
// without any external call.
func (g *Gate) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if ContainsHangul(text) {
		return text, nil
	}
	if g.provider == nil {
		g.warnOnce.Do(func() {
			if g.logger != nil {
				g.logger.Warn("translation credentials absent, passing text through")
			}
		})
		return text, nil
	}

	encoded := encodeBreaks(text)
	translated, err := g.provider.TranslateText(ctx, encoded)
	if err != nil || strings.TrimSpace(translated) == "" {
		if g.logger != nil {
			g.logger.Warn("translation failed, keeping original", "error", err)
		}
		return text, nil
	}
	return restoreBreaks(translated), nil
}

// ContainsHangul reports whether the text already carries Korean script.
func ContainsHangul(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// encodeBreaks swaps paragraph and line breaks for literal markers the
// provider cannot collapse. Paragraph breaks go first so single-newline
// replacement cannot eat them.
func encodeBreaks(text string) string {
	text = strings.ReplaceAll(text, "\n\n", paraMarker)
	return strings.ReplaceAll(text, "\n", lineMarker)
}

// restoreBreaks reverses encodeBreaks, tolerating whitespace the provider
// may have introduced around the markers.
func restoreBreaks(text string) string {
	text = paraRestoreExpr.ReplaceAllString(text, "\n\n")
	text = lineRestoreExpr.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
