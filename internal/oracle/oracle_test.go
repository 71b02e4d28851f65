package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
	"github.com/scan-io-git/scanio-ai/pkg/shared/httpclient"

	scanerrors "github.com/scan-io-git/scanio-ai/pkg/shared/errors"
)

func newTestCompletion(t *testing.T, handler http.HandlerFunc) *Completion {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Completion{
		Endpoint:    srv.URL + "/inference/v1/completions",
		Model:       "test-model",
		APIKey:      "secret",
		MaxTokens:   128,
		Temperature: 0.6,
		TopP:        1,
		TopK:        40,
	}
	return NewCompletion(httpclient.InitializeRestyClient(nil, &config.HTTPClient{}), cfg, hclog.NewNullLogger())
}

func TestCompletionInvoke(t *testing.T) {
	var got CompletionRequest
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"text":"  {\"issues\":[]}\n"},{"text":"ignored"}]}`))
	})

	text, err := c.Invoke(context.Background(), "analyse this")
	require.NoError(t, err)
	assert.Equal(t, `{"issues":[]}`, text)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 128, got.MaxTokens)
	assert.Equal(t, 40, got.TopK)
	assert.Equal(t, "analyse this", got.Prompt)
}

func TestCompletionNon2xxIsTransportError(t *testing.T) {
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})

	_, err := c.Invoke(context.Background(), "p")
	var transportErr *scanerrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Contains(t, transportErr.Message, "429")
	assert.Contains(t, transportErr.Message, "slow down")
	assert.False(t, errors.Is(err, scanerrors.ErrTimedOut))
}

func TestCompletionNoChoicesYieldsEmptyText(t *testing.T) {
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	text, err := c.Invoke(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestCompletionDecodesAnyContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "Plain text completion response",
			contentType: "text/plain",
			body:        `{"choices":[{"text":"{\"issues\":[],\"metadata\":{}}"}]}`,
			want:        `{"issues":[],"metadata":{}}`,
		},
		{
			name: "No content type",
			body: `{"choices":[{"text":" ok "}]}`,
			want: "ok",
		},
		{
			name:        "Body that is not JSON is returned verbatim",
			contentType: "text/html",
			body:        "<html>gateway says hi</html>\n",
			want:        "<html>gateway says hi</html>",
		},
		{
			name:        "JSON without choices is returned verbatim",
			contentType: "application/json",
			body:        `{"issues":[],"metadata":{}}`,
			want:        `{"issues":[],"metadata":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				} else {
					w.Header()["Content-Type"] = nil
				}
				_, _ = w.Write([]byte(tt.body))
			})

			text, err := c.Invoke(context.Background(), "p")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestCallMapsDeadlineToTimedOut(t *testing.T) {
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	start := time.Now()
	_, err := Call(context.Background(), c, "p", 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scanerrors.ErrTimedOut), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCallWrapsUnknownErrors(t *testing.T) {
	failing := Func(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("boom")
	})

	_, err := Call(context.Background(), failing, "p", time.Second)
	var transportErr *scanerrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.EqualError(t, transportErr.Err, "boom")
}

func TestCallWithoutBudget(t *testing.T) {
	echo := Func(func(ctx context.Context, prompt string) (string, error) {
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)
		return prompt, nil
	})

	text, err := Call(context.Background(), echo, "hello", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh is not available")
	}
	path := filepath.Join(t.TempDir(), "agent.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestAgentInvoke(t *testing.T) {
	// Echo the arguments, then the prompt read from stdin.
	script := writeScript(t, `echo "$@"
cat
`)
	a := NewAgent(config.Agent{Binary: script, Profile: "test", ExtraArgs: []string{"--quiet"}}, hclog.NewNullLogger())

	text, err := a.Invoke(context.Background(), "<output>{}</output>")
	require.NoError(t, err)
	assert.Equal(t, "exec --profile test --full-auto --quiet\n<output>{}</output>", text)
}

func TestAgentNonZeroExitIsTransportError(t *testing.T) {
	script := writeScript(t, `echo "model quota exceeded" >&2
exit 3
`)
	a := NewAgent(config.Agent{Binary: script, Profile: "test"}, hclog.NewNullLogger())

	_, err := Call(context.Background(), a, "p", 0)
	var transportErr *scanerrors.TransportError
	require.True(t, errors.As(err, &transportErr), "got %v", err)
	assert.Equal(t, "model quota exceeded", transportErr.Message)
}

func TestAgentMissingBinaryIsTransportError(t *testing.T) {
	a := NewAgent(config.Agent{Binary: filepath.Join(t.TempDir(), "missing"), Profile: "test"}, hclog.NewNullLogger())

	_, err := a.Invoke(context.Background(), "p")
	var transportErr *scanerrors.TransportError
	assert.True(t, errors.As(err, &transportErr), "got %v", err)
}

func TestAgentDeadlineIsTimedOut(t *testing.T) {
	script := writeScript(t, `exec sleep 5
`)
	a := NewAgent(config.Agent{Binary: script, Profile: "test"}, hclog.NewNullLogger())

	_, err := Call(context.Background(), a, "p", 100*time.Millisecond)
	assert.True(t, errors.Is(err, scanerrors.ErrTimedOut), "got %v", err)
}
