// Package config loads application settings from defaults, a YAML file,
// .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/ghodss/yaml"
	"github.com/joho/godotenv"

	"github.com/insightdelivered/statement-analyzer/internal/classify"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultEnvFile is read when Load is not given explicit env files.
const DefaultEnvFile = ".env"

// Classification strategies.
const (
	StrategyRules    = "rules"
	StrategyClusters = "clusters"
)

type Config struct {
	Pipeline       PipelineConfig       `json:"pipeline"`
	Extraction     ExtractionConfig     `json:"extraction"`
	Classification ClassificationConfig `json:"classification"`
	Metrics        MetricsConfig        `json:"metrics"`
	Server         ServerConfig         `json:"server"`
	Log            LogConfig            `json:"log"`
	Batch          BatchConfig          `json:"batch"`
}

type PipelineConfig struct {
	EmptyThreshold            float64 `json:"empty_threshold" env:"STATEMENT_EMPTY_THRESHOLD"`
	FixTransactionDescription bool    `json:"fix_transaction_description" env:"STATEMENT_FIX_DESCRIPTION"`
	SkipCellNormalization     bool    `json:"skip_cell_normalization" env:"STATEMENT_SKIP_CELL_NORMALIZATION"`
	DescriptionColumn         int     `json:"description_column" env:"STATEMENT_DESCRIPTION_COLUMN"`
}

type ExtractionConfig struct {
	Mode                 string  `json:"mode" env:"STATEMENT_EXTRACTION_MODE"`
	YTolerance           float64 `json:"y_tolerance" env:"STATEMENT_Y_TOLERANCE"`
	XGapThreshold        float64 `json:"x_gap_threshold" env:"STATEMENT_X_GAP_THRESHOLD"`
	UsePdftotextFallback bool    `json:"use_pdftotext_fallback" env:"STATEMENT_USE_PDFTOTEXT"`
}

type ClassificationConfig struct {
	Strategy          string              `json:"strategy" env:"STATEMENT_CLASSIFICATION_STRATEGY"`
	CandidateLabels   []string            `json:"candidate_labels" env:"STATEMENT_CANDIDATE_LABELS"`
	Fallback          string              `json:"fallback" env:"STATEMENT_FALLBACK_CATEGORY"`
	Keywords          map[string][]string `json:"keywords"`
	ClusterSimilarity int                 `json:"cluster_similarity" env:"STATEMENT_CLUSTER_SIMILARITY"`
	TopKeywords       int                 `json:"top_keywords" env:"STATEMENT_TOP_KEYWORDS"`
}

type MetricsConfig struct {
	EssentialCategories     []string           `json:"essential_categories" env:"STATEMENT_ESSENTIAL_CATEGORIES"`
	DiscretionaryCategories []string           `json:"discretionary_categories" env:"STATEMENT_DISCRETIONARY_CATEGORIES"`
	Weights                 map[string]float64 `json:"weights"`
}

type ServerConfig struct {
	Host        string `json:"host" env:"STATEMENT_SERVER_HOST"`
	Port        int    `json:"port" env:"STATEMENT_SERVER_PORT"`
	UploadDir   string `json:"upload_dir" env:"STATEMENT_UPLOAD_DIR"`
	MaxUploadMB int    `json:"max_upload_mb" env:"STATEMENT_MAX_UPLOAD_MB"`
}

type LogConfig struct {
	Level  string `json:"level" env:"STATEMENT_LOG_LEVEL"`
	Format string `json:"format" env:"STATEMENT_LOG_FORMAT"`
}

type BatchConfig struct {
	Concurrency int `json:"concurrency" env:"STATEMENT_BATCH_CONCURRENCY"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := parser.DefaultOptions()
	ex := extractor.DefaultOptions()
	cp := classify.DefaultParams()
	cats := metrics.DefaultCategories()
	w := metrics.DefaultWeights()

	return &Config{
		Pipeline: PipelineConfig{
			EmptyThreshold:    p.EmptyThreshold,
			DescriptionColumn: p.DescriptionColumn,
		},
		Extraction: ExtractionConfig{
			Mode:                 ex.Mode,
			YTolerance:           ex.YTolerance,
			XGapThreshold:        ex.XGapThreshold,
			UsePdftotextFallback: ex.UsePdftotext,
		},
		Classification: ClassificationConfig{
			Strategy:          StrategyClusters,
			CandidateLabels:   append([]string(nil), cp.CandidateLabels...),
			Fallback:          cp.Fallback,
			ClusterSimilarity: cp.ClusterSimilarity,
			TopKeywords:       cp.TopKeywords,
		},
		Metrics: MetricsConfig{
			EssentialCategories:     cats.Essential,
			DiscretionaryCategories: cats.Discretionary,
			Weights: map[string]float64{
				"balance_increase": w.BalanceIncrease,
				"balance_decrease": w.BalanceDecrease,
				"min_balance_high": w.MinBalanceHigh,
				"min_balance_mid":  w.MinBalanceMid,
				"min_balance_low":  w.MinBalanceLow,
				"positive_net":     w.PositiveNet,
				"negative_net":     w.NegativeNet,
				"essential_high":   w.EssentialHigh,
				"essential_low":    w.EssentialLow,
				"low_variability":  w.LowVariability,
				"high_variability": w.HighVariability,
			},
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			UploadDir:   os.TempDir(),
			MaxUploadMB: 32,
		},
		Log:   LogConfig{Level: "info", Format: "console"},
		Batch: BatchConfig{Concurrency: 4},
	}
}

// Load builds the configuration. Later sources override earlier ones:
// defaults, the YAML file at path (optional), then environment variables.
// The env files are loaded into the environment first without replacing
// variables that are already set; without any, DefaultEnvFile is used when
// it exists.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshalling onto the defaults keeps every key the file omits.
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{DefaultEnvFile}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// Apply merges the non-zero fields of overrides onto c, as set by command
// line flags, and validates the result.
func (c *Config) Apply(overrides Config) error {
	if err := mergo.Merge(c, overrides, mergo.WithOverride); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	return c.Validate()
}

// Validate reports every invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(c.Pipeline.EmptyThreshold > 0 && c.Pipeline.EmptyThreshold <= 1,
		"pipeline.empty_threshold must be in (0, 1], got %v", c.Pipeline.EmptyThreshold)
	check(c.Pipeline.DescriptionColumn >= 0,
		"pipeline.description_column must not be negative, got %d", c.Pipeline.DescriptionColumn)
	check(c.Extraction.Mode == extractor.ModeTable || c.Extraction.Mode == extractor.ModeWords,
		"extraction.mode must be %q or %q, got %q", extractor.ModeTable, extractor.ModeWords, c.Extraction.Mode)
	check(c.Extraction.YTolerance >= 0, "extraction.y_tolerance must not be negative")
	check(c.Extraction.XGapThreshold > 0, "extraction.x_gap_threshold must be positive")
	check(c.Classification.Strategy == StrategyRules || c.Classification.Strategy == StrategyClusters,
		"classification.strategy must be %q or %q, got %q", StrategyRules, StrategyClusters, c.Classification.Strategy)
	check(c.Classification.ClusterSimilarity >= 0 && c.Classification.ClusterSimilarity <= 100,
		"classification.cluster_similarity must be in [0, 100], got %d", c.Classification.ClusterSimilarity)
	check(c.Classification.TopKeywords > 0, "classification.top_keywords must be positive")
	check(c.Server.Port > 0 && c.Server.Port < 65536, "server.port must be a valid port, got %d", c.Server.Port)
	check(c.Server.MaxUploadMB > 0, "server.max_upload_mb must be positive")
	check(c.Batch.Concurrency > 0, "batch.concurrency must be positive")

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}

// ParserOptions returns the row pipeline settings.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		EmptyThreshold:            c.Pipeline.EmptyThreshold,
		FixTransactionDescription: c.Pipeline.FixTransactionDescription,
		SkipCellNormalization:     c.Pipeline.SkipCellNormalization,
		DescriptionColumn:         c.Pipeline.DescriptionColumn,
	}
}

// ExtractorOptions returns the PDF extraction settings.
func (c *Config) ExtractorOptions() extractor.Options {
	return extractor.Options{
		Mode:          c.Extraction.Mode,
		YTolerance:    c.Extraction.YTolerance,
		XGapThreshold: c.Extraction.XGapThreshold,
		UsePdftotext:  c.Extraction.UsePdftotextFallback,
	}
}

// ClassifyParams returns the per-call classification settings.
func (c *Config) ClassifyParams() classify.Params {
	return classify.Params{
		CandidateLabels:   c.Classification.CandidateLabels,
		Fallback:          c.Classification.Fallback,
		TopKeywords:       c.Classification.TopKeywords,
		ClusterSimilarity: c.Classification.ClusterSimilarity,
	}
}

// Classifier builds the configured classification strategy.
func (c *Config) Classifier() classify.Classifier {
	rules := classify.MergeRules(classify.DefaultRules(), c.Classification.Keywords)
	if c.Classification.Strategy == StrategyRules {
		return classify.NewRuleClassifier(rules)
	}
	return classify.NewClusterClassifier(rules)
}

// Categories returns the essential and discretionary spending groups.
func (c *Config) Categories() metrics.Categories {
	return metrics.Categories{
		Essential:     c.Metrics.EssentialCategories,
		Discretionary: c.Metrics.DiscretionaryCategories,
	}
}

// Weights returns the scoring weights.
func (c *Config) Weights() metrics.Weights {
	return metrics.WeightsFromMap(metrics.DefaultWeights(), c.Metrics.Weights)
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
