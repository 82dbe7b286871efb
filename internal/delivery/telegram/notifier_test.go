package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBotAPI(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"reports","username":"reports_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "-100200", r.FormValue("chat_id"))
			mu.Lock()
			sent = append(sent, r.FormValue("text"))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":10,"date":0,"chat":{"id":-100200,"type":"group"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), sent...)
	}
}

func TestNotifierSends(t *testing.T) {
	srv, sent := fakeBotAPI(t)

	n, err := newNotifierWithEndpoint("123:abc", srv.URL+"/bot%s/%s", srv.Client(), -100200)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), "✅ 3 produits enrichis"))
	assert.Equal(t, []string{"✅ 3 produits enrichis"}, sent())

	require.NoError(t, n.Notify(context.Background(), strings.Repeat("é", 5000)))
	last := sent()[1]
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(last))
	assert.True(t, strings.HasSuffix(last, "…"))
}

func TestNotifierCancelled(t *testing.T) {
	srv, sent := fakeBotAPI(t)
	n, err := newNotifierWithEndpoint("123:abc", srv.URL+"/bot%s/%s", srv.Client(), -100200)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "late"), context.Canceled)
	assert.Empty(t, sent())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
