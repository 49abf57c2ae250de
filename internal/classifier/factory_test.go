package classifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nps-insights-go/internal/config"
	"nps-insights-go/internal/types"
)

func TestInitializerRunsOnce(t *testing.T) {
	loads := 0
	i := &Initializer{Name: "test", Load: func() error { loads++; return nil }}
	require.NoError(t, i.Init(context.Background()))
	require.NoError(t, i.Init(context.Background()))
	assert.Equal(t, 1, loads)
	assert.Equal(t, types.BackendStatus{Name: "test", Ready: true}, i.Status(nil))
}

func TestInitializerFetchFallback(t *testing.T) {
	fetched := false
	i := &Initializer{
		Name: "test",
		Load: func() error {
			if !fetched {
				return os.ErrNotExist
			}
			return nil
		},
		Fetch: func(context.Context) error { fetched = true; return nil },
	}
	require.NoError(t, i.Init(context.Background()))
	assert.True(t, fetched)
}

func TestInitializerFailure(t *testing.T) {
	i := &Initializer{
		Name:  "test",
		Load:  func() error { return os.ErrNotExist },
		Fetch: func(context.Context) error { return errors.New("offline") },
	}
	err := i.Init(context.Background())
	require.ErrorIs(t, err, types.ErrMissingBackend)

	st := i.Status(err)
	assert.False(t, st.Ready)
	assert.True(t, st.Degraded)
	assert.Contains(t, st.Error, "offline")
}

func TestNewSentiment(t *testing.T) {
	cfg := config.Defaults().Classifier
	c, st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, st.Ready)
	assert.Equal(t, "vader", st.Name)

	b, err := c.Classify(context.Background(), "Absolutely amazing, best service ever!")
	require.NoError(t, err)
	assert.Equal(t, types.Positive, b.Polarity)
}

func TestNewLabelsGazetteer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Billing": ["invoice"]}`), 0o644))

	cfg := config.Defaults().Classifier
	cfg.Strategy = config.StrategyLabels
	cfg.LabelModelPath = path

	c, st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "gazetteer", st.Name)
	assert.True(t, st.Ready)

	b, err := c.Classify(context.Background(), "Wrong invoice again")
	require.NoError(t, err)
	assert.Equal(t, []string{"Billing"}, b.Labels)
}

func TestNewLabelsGazetteerFetchesMissingModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Delivery": ["late"]}`))
	}))
	defer srv.Close()

	cfg := config.Defaults().Classifier
	cfg.Strategy = config.StrategyLabels
	cfg.LabelModelPath = filepath.Join(t.TempDir(), "labels.json")
	cfg.LabelModelURL = srv.URL

	c, st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, st.Ready)
	b, _ := c.Classify(context.Background(), "late")
	assert.Equal(t, []string{"Delivery"}, b.Labels)
}

func TestNewLabelsMissingBackendDegrades(t *testing.T) {
	cfg := config.Defaults().Classifier
	cfg.Strategy = config.StrategyLabels
	cfg.LabelModelPath = filepath.Join(t.TempDir(), "absent.json")

	c, st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, st.Degraded)
	assert.False(t, st.Ready)

	b, err := c.Classify(context.Background(), "late")
	require.ErrorIs(t, err, types.ErrMissingBackend)
	assert.Equal(t, []string{types.Uncategorized}, b.Labels)
}

func TestNewLabelsLLMUnconfigured(t *testing.T) {
	cfg := config.Defaults().Classifier
	cfg.Strategy = config.StrategyLabels
	cfg.LabelBackend = config.BackendLLM
	cfg.LLM.GatewayURL = ""
	cfg.LLM.UseMock = false

	_, st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "llm", st.Name)
	assert.True(t, st.Degraded)
}

func TestNewUnknownStrategy(t *testing.T) {
	_, _, err := New(context.Background(), config.ClassifierConfig{Strategy: "astrology"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}
