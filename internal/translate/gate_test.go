package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls  int
	result string
	err    error
	seen   string
}

func (f *fakeProvider) TranslateText(_ context.Context, text string) (string, error) {
	f.calls++
	f.seen = text
	if f.err != nil {
		return "", f.err
	}
	if f.result != "" {
		return f.result, nil
	}
	return text, nil
}

func TestGateSkipsKoreanTextWithoutCalling(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	gate := NewGate(provider, nil)

	out, err := gate.Translate(context.Background(), "이미 한국어 기사입니다")
	require.NoError(t, err)
	assert.Equal(t, "이미 한국어 기사입니다", out)
	assert.Zero(t, provider.calls)
}

func TestGateWithoutProviderIsIdentity(t *testing.T) {
	t.Parallel()

	gate := NewGate(nil, nil)
	out, err := gate.Translate(context.Background(), "plain english text")
	require.NoError(t, err)
	assert.Equal(t, "plain english text", out)
}

func TestGateKeepsOriginalOnProviderError(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: errors.New("quota exceeded")}
	gate := NewGate(provider, nil)

	out, err := gate.Translate(context.Background(), "english headline")
	require.NoError(t, err)
	assert.Equal(t, "english headline", out)
	assert.Equal(t, 1, provider.calls)
}

func TestGateProtectsNewlinesAcrossProvider(t *testing.T) {
	t.Parallel()

	// identity provider: the marker round trip must reproduce the input
	provider := &fakeProvider{}
	gate := NewGate(provider, nil)

	original := "para one\n\npara two\nline two"
	out, err := gate.Translate(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, original, out)

	// the provider itself must never have seen a raw newline
	assert.NotContains(t, provider.seen, "\n")
}

func TestRestoreBreaksTolerantOfProviderWhitespace(t *testing.T) {
	t.Parallel()

	mangled := "하나 " + paraMarker + "  둘 " + lineMarker + " 셋"
	assert.Equal(t, "하나\n\n둘\n셋", restoreBreaks(mangled))
}

func TestEncodeBreaksOrdersParagraphsFirst(t *testing.T) {
	t.Parallel()

	encoded := encodeBreaks("a\n\nb\nc")
	assert.Equal(t, "a"+paraMarker+"b"+lineMarker+"c", encoded)
}

func TestContainsHangul(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsHangul("뉴스"))
	assert.True(t, ContainsHangul("mixed 한글 text"))
	assert.False(t, ContainsHangul("latin only"))
	assert.False(t, ContainsHangul("日本語テキスト"))
}
