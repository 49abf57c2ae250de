package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v4"

	"nps-insights-go/internal/logger"
)

// Vocabulary maps a label to the phrases that fire it.
type Vocabulary map[string][]string

// DefaultVocabulary is a small service-feedback vocabulary used by the mock
// LLM backend and by tests.
var DefaultVocabulary = Vocabulary{
	"Delivery":         {"delivery", "delivered", "shipping", "courier", "late", "arrived"},
	"Pricing":          {"price", "pricing", "expensive", "cheap", "cost", "fee", "fees", "refund"},
	"Customer Service": {"support", "agent", "staff", "service", "rude", "helpful", "friendly"},
	"Product Quality":  {"quality", "broken", "defective", "damaged", "works", "durable"},
	"Usability":        {"app", "website", "easy to use", "confusing", "interface", "login", "checkout"},
}

// Gazetteer is a keyword extractor: a label fires when any of its phrases
// appears in the text as whole words.
type Gazetteer struct {
	phrases map[string][]string
}

func NewGazetteer(v Vocabulary) *Gazetteer {
	g := &Gazetteer{phrases: map[string][]string{}}
	for label, phrases := range v {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		for _, p := range phrases {
			if n := normalize(p); n != "" {
				g.phrases[label] = append(g.phrases[label], n)
			}
		}
	}
	return g
}

// Size is the number of labels the gazetteer can emit.
func (g *Gazetteer) Size() int {
	return len(g.phrases)
}

func (g *Gazetteer) Labels(_ context.Context, text string) ([]string, error) {
	hay := " " + normalize(text) + " "
	var out []string
	for label, phrases := range g.phrases {
		for _, p := range phrases {
			if strings.Contains(hay, " "+p+" ") {
				out = append(out, label)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// normalize lowercases and collapses every run of non letters/digits into
// one space.
func normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}

// LoadVocabulary reads a JSON object of label -> phrases.
func LoadVocabulary(path string) (Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var v Vocabulary
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary %s: %w", path, err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("vocabulary %s has no labels", path)
	}
	return v, nil
}

var fetchClient = &http.Client{Timeout: 12 * time.Second}

// FetchVocabulary downloads the vocabulary artifact to path, retrying
// transient failures. 4xx responses are not retried.
func FetchVocabulary(ctx context.Context, url, path string) error {
	log := logger.New().Component("classifier.fetch").WithField("url", url)
	if url == "" {
		return fmt.Errorf("no vocabulary url configured")
	}
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := fetchClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("vocabulary download failed")
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("download failed: %s: %s", resp.Status, string(b)))
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("download failed: %s", resp.Status)
		}
		body = b
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create vocabulary dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("install vocabulary: %w", err)
	}
	log.WithField("path", path).WithField("bytes", len(body)).Info("vocabulary downloaded")
	return nil
}
