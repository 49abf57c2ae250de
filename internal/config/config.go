package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"nps-insights-go/internal/types"
)

const (
	StrategySentiment = "sentiment"
	StrategyLabels    = "labels"

	BackendGazetteer = "gazetteer"
	BackendLLM       = "llm"
)

type Config struct {
	Environment string
	Port        int
	Log         LogConfig
	Dataset     DatasetConfig
	NPS         NPSConfig
	Classifier  ClassifierConfig
}

type LogConfig struct {
	Level string
}

type DatasetConfig struct {
	Path string
}

// NPSConfig holds the rating scale and the promoter/detractor cut-offs.
type NPSConfig struct {
	RatingMin          int
	RatingMax          int
	PromoterThreshold  int
	DetractorThreshold int
}

type ClassifierConfig struct {
	Strategy          string
	PositiveThreshold float64
	LabelBackend      string
	LabelModelPath    string
	LabelModelURL     string
	LLM               LLMConfig
}

type LLMConfig struct {
	GatewayURL string
	APIKey     string
	Model      string
	UseMock    bool
	Timeout    time.Duration
	MaxRetry   time.Duration
}

// Load layers .env, process environment and defaults.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith resolves configuration through v, so callers can bind command
// line flags to the same keys before loading.
func LoadWith(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper projects resolved viper keys into a Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetInt("PORT"),
		Log:         LogConfig{Level: v.GetString("LOG_LEVEL")},
		Dataset:     DatasetConfig{Path: v.GetString("DATASET_PATH")},
		NPS: NPSConfig{
			RatingMin:          v.GetInt("RATING_MIN"),
			RatingMax:          v.GetInt("RATING_MAX"),
			PromoterThreshold:  v.GetInt("NPS_PROMOTER_THRESHOLD"),
			DetractorThreshold: v.GetInt("NPS_DETRACTOR_THRESHOLD"),
		},
		Classifier: ClassifierConfig{
			Strategy:          strings.ToLower(v.GetString("CLASSIFIER_STRATEGY")),
			PositiveThreshold: v.GetFloat64("SENTIMENT_POSITIVE_THRESHOLD"),
			LabelBackend:      strings.ToLower(v.GetString("LABEL_BACKEND")),
			LabelModelPath:    v.GetString("LABEL_MODEL_PATH"),
			LabelModelURL:     v.GetString("LABEL_MODEL_URL"),
			LLM: LLMConfig{
				GatewayURL: v.GetString("LLM_GATEWAY_URL"),
				APIKey:     v.GetString("LLM_API_KEY"),
				Model:      v.GetString("LLM_MODEL"),
				UseMock:    v.GetBool("USE_MOCK_LLM"),
				Timeout:    v.GetDuration("LLM_TIMEOUT"),
				MaxRetry:   v.GetDuration("LLM_MAX_RETRY"),
			},
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATASET_PATH", "responses.csv")

	v.SetDefault("RATING_MIN", 1)
	v.SetDefault("RATING_MAX", 5)
	v.SetDefault("NPS_PROMOTER_THRESHOLD", 5)
	v.SetDefault("NPS_DETRACTOR_THRESHOLD", 3)

	v.SetDefault("CLASSIFIER_STRATEGY", StrategySentiment)
	v.SetDefault("SENTIMENT_POSITIVE_THRESHOLD", 0.7)
	v.SetDefault("LABEL_BACKEND", BackendGazetteer)
	v.SetDefault("LABEL_MODEL_PATH", "labels.json")
	v.SetDefault("LABEL_MODEL_URL", "")
	v.SetDefault("LLM_GATEWAY_URL", "")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("USE_MOCK_LLM", false)
	v.SetDefault("LLM_TIMEOUT", 25*time.Second)
	v.SetDefault("LLM_MAX_RETRY", 45*time.Second)
}

// Defaults returns the configuration produced when nothing is set.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	return FromViper(v)
}

func (c *Config) Validate() error {
	n := c.NPS
	if n.RatingMin >= n.RatingMax {
		return fmt.Errorf("%w: rating scale %d..%d is empty", types.ErrInvalidConfig, n.RatingMin, n.RatingMax)
	}
	if n.DetractorThreshold >= n.PromoterThreshold {
		return fmt.Errorf("%w: detractor threshold %d must be below promoter threshold %d",
			types.ErrInvalidConfig, n.DetractorThreshold, n.PromoterThreshold)
	}
	if n.PromoterThreshold > n.RatingMax || n.DetractorThreshold < n.RatingMin {
		return fmt.Errorf("%w: thresholds %d/%d fall outside scale %d..%d",
			types.ErrInvalidConfig, n.PromoterThreshold, n.DetractorThreshold, n.RatingMin, n.RatingMax)
	}
	switch c.Classifier.Strategy {
	case StrategySentiment:
		t := c.Classifier.PositiveThreshold
		if t < -1 || t > 1 {
			return fmt.Errorf("%w: sentiment threshold %.2f outside [-1,1]", types.ErrInvalidConfig, t)
		}
	case StrategyLabels:
		switch c.Classifier.LabelBackend {
		case BackendGazetteer, BackendLLM:
		default:
			return fmt.Errorf("%w: unknown label backend %q", types.ErrInvalidConfig, c.Classifier.LabelBackend)
		}
	default:
		return fmt.Errorf("%w: unknown classifier strategy %q", types.ErrInvalidConfig, c.Classifier.Strategy)
	}
	return nil
}
