package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"nps-insights-go/internal/logger"
)

// LLMOptions configures the chat-completions gateway used for label
// extraction.
type LLMOptions struct {
	GatewayURL string
	APIKey     string
	Model      string
	UseMock    bool
	Timeout    time.Duration
	MaxRetry   time.Duration
}

// LLMExtractor asks an OpenAI-style gateway for topical labels.
type LLMExtractor struct {
	opts   LLMOptions
	client *http.Client
	mock   *Gazetteer
	log    *logger.Logger
}

func NewLLMExtractor(opts LLMOptions) *LLMExtractor {
	if opts.Timeout <= 0 {
		opts.Timeout = 25 * time.Second
	}
	if opts.MaxRetry <= 0 {
		opts.MaxRetry = 45 * time.Second
	}
	e := &LLMExtractor{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    logger.New().Component("classifier.llm"),
	}
	if opts.UseMock {
		e.mock = NewGazetteer(DefaultVocabulary)
	}
	return e
}

// Check verifies the gateway is configured. It does not call it.
func (e *LLMExtractor) Check() error {
	if e.opts.UseMock {
		return nil
	}
	if e.opts.GatewayURL == "" || e.opts.APIKey == "" {
		return errors.New("llm gateway not configured")
	}
	return nil
}

// BuildLabelPrompt asks for a strict JSON object with a labels array.
func BuildLabelPrompt(comment string) string {
	prompt := `You label customer survey comments with short topical tags.

Rules:
- Return 1 to 3 labels, each 1 to 3 words, Title Case.
- Labels name the TOPIC of the comment (e.g. "Delivery", "Pricing", "Customer Service"), not its sentiment.
- If no topic can be identified, return an empty list.
- Do not invent details that are not in the comment.

Return ONLY this JSON, with no commentary and no code fences:
{"labels": []}

COMMENT:
%s
`
	return fmt.Sprintf(prompt, comment)
}

func (e *LLMExtractor) Labels(ctx context.Context, text string) ([]string, error) {
	if e.mock != nil {
		return e.mock.Labels(ctx, text)
	}
	if err := e.Check(); err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"model": e.opts.Model,
		"messages": []map[string]string{
			{"role": "user", "content": BuildLabelPrompt(text)},
		},
		"temperature": 0.0,
	}
	data, _ := json.Marshal(reqBody)

	var out struct {
		Labels []string `json:"labels"`
	}
	var lastErr error

	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.opts.GatewayURL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+e.opts.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			e.log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		e.log.WithField("http_status", resp.StatusCode).Debug("llm raw: " + string(body))

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			lastErr = fmt.Errorf("llm client error: %s", resp.Status)
			return backoff.Permanent(lastErr)
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("llm server error: %s", resp.Status)
			return lastErr
		}

		if inner := extractContentFromChoices(body); inner != "" {
			if err := json.Unmarshal([]byte(inner), &out); err == nil {
				lastErr = nil
				return nil
			}
		}
		if fallback := extractJSON(string(body)); fallback != "" {
			if err := json.Unmarshal([]byte(fallback), &out); err == nil {
				lastErr = nil
				return nil
			}
		}
		lastErr = errors.New("no JSON found in LLM output")
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = e.opts.MaxRetry
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("llm label extraction failed: %w", lastErr)
	}
	return out.Labels, nil
}

// extractContentFromChoices reads choices[0].message.content and returns the
// JSON object inside it, if any.
func extractContentFromChoices(body []byte) string {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return ""
	}
	return extractJSON(parsed.Choices[0].Message.Content)
}

// extractJSON finds the first balanced JSON object in s after stripping
// markdown fences.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range []string{"```json", "```", "`"} {
		s = strings.ReplaceAll(s, r, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
