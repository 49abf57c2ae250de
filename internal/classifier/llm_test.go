package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return b
}

func testExtractor(url string) *LLMExtractor {
	return NewLLMExtractor(LLMOptions{
		GatewayURL: url,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    2 * time.Second,
		MaxRetry:   300 * time.Millisecond,
	})
}

func TestLLMExtractorLabels(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write(chatResponse("```json\n{\"labels\": [\"Delivery\", \"Pricing\"]}\n```"))
	}))
	defer srv.Close()

	labels, err := testExtractor(srv.URL).Labels(context.Background(), "late and pricey")
	require.NoError(t, err)
	assert.Equal(t, []string{"Delivery", "Pricing"}, labels)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody["model"])
}

func TestLLMExtractorBareJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"labels": ["Usability"]}`))
	}))
	defer srv.Close()

	labels, err := testExtractor(srv.URL).Labels(context.Background(), "the app keeps logging me out")
	require.NoError(t, err)
	assert.Equal(t, []string{"Usability"}, labels)
}

func TestLLMExtractorClientErrorIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testExtractor(srv.URL).Labels(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), hits.Load())
}

func TestLLMExtractorServerErrorRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(chatResponse(`{"labels": ["Customer Service"]}`))
	}))
	defer srv.Close()

	e := testExtractor(srv.URL)
	e.opts.MaxRetry = 5 * time.Second
	labels, err := e.Labels(context.Background(), "agent hung up")
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer Service"}, labels)
	assert.GreaterOrEqual(t, hits.Load(), int32(2))
}

func TestLLMExtractorMockAndCheck(t *testing.T) {
	mock := NewLLMExtractor(LLMOptions{UseMock: true})
	require.NoError(t, mock.Check())
	labels, err := mock.Labels(context.Background(), "shipping took forever")
	require.NoError(t, err)
	assert.Equal(t, []string{"Delivery"}, labels)

	require.Error(t, NewLLMExtractor(LLMOptions{}).Check())
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"labels": ["A"]}`, extractJSON("Sure! ```json\n{\"labels\": [\"A\"]}\n``` hope that helps"))
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSON(`prefix {"a": {"b": 1}} suffix`))
	assert.Empty(t, extractJSON("no json here"))
	assert.Empty(t, extractJSON(`{"unterminated": `))
}

func TestBuildLabelPrompt(t *testing.T) {
	p := BuildLabelPrompt("parcel arrived crushed")
	assert.Contains(t, p, "parcel arrived crushed")
	assert.Contains(t, p, `{"labels": []}`)
}
