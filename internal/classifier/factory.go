package classifier

import (
	"context"
	"fmt"

	"nps-insights-go/internal/config"
	"nps-insights-go/internal/types"
)

// New builds the configured strategy and initializes its backend. When the
// backend cannot be brought up the returned Classifier is Unavailable and
// the status is degraded; New itself only fails on unknown configuration.
func New(ctx context.Context, cfg config.ClassifierConfig) (Classifier, types.BackendStatus, error) {
	switch cfg.Strategy {
	case config.StrategySentiment:
		return newSentiment(ctx, cfg)
	case config.StrategyLabels:
		return newLabels(ctx, cfg)
	}
	return nil, types.BackendStatus{}, fmt.Errorf("%w: unknown classifier strategy %q", types.ErrInvalidConfig, cfg.Strategy)
}

func newSentiment(ctx context.Context, cfg config.ClassifierConfig) (Classifier, types.BackendStatus, error) {
	var scorer *VaderScorer
	boot := &Initializer{
		Name: "vader",
		Load: func() error {
			scorer = NewVaderScorer()
			return nil
		},
	}
	err := boot.Init(ctx)
	if err != nil {
		return Unavailable{Default: types.PolarityOf(types.Negative), Err: err}, boot.Status(err), nil
	}
	return NewSentimentClassifier(scorer, cfg.PositiveThreshold), boot.Status(nil), nil
}

func newLabels(ctx context.Context, cfg config.ClassifierConfig) (Classifier, types.BackendStatus, error) {
	var (
		ext  Extractor
		boot *Initializer
	)
	switch cfg.LabelBackend {
	case config.BackendGazetteer:
		boot = &Initializer{
			Name: "gazetteer",
			Load: func() error {
				v, err := LoadVocabulary(cfg.LabelModelPath)
				if err != nil {
					return err
				}
				ext = NewGazetteer(v)
				return nil
			},
		}
		if cfg.LabelModelURL != "" {
			boot.Fetch = func(ctx context.Context) error {
				return FetchVocabulary(ctx, cfg.LabelModelURL, cfg.LabelModelPath)
			}
		}
	case config.BackendLLM:
		llm := NewLLMExtractor(LLMOptions{
			GatewayURL: cfg.LLM.GatewayURL,
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			UseMock:    cfg.LLM.UseMock,
			Timeout:    cfg.LLM.Timeout,
			MaxRetry:   cfg.LLM.MaxRetry,
		})
		boot = &Initializer{
			Name: "llm",
			Load: func() error {
				if err := llm.Check(); err != nil {
					return err
				}
				ext = llm
				return nil
			},
		}
	default:
		return nil, types.BackendStatus{}, fmt.Errorf("%w: unknown label backend %q", types.ErrInvalidConfig, cfg.LabelBackend)
	}

	if err := boot.Init(ctx); err != nil {
		return Unavailable{Default: types.LabelsOf(), Err: err}, boot.Status(err), nil
	}
	return NewLabelClassifier(ext), boot.Status(nil), nil
}
