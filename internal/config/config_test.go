package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/classify"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func emptyEnvFile(t *testing.T) string {
	return writeFile(t, ".env", "")
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.9, cfg.Pipeline.EmptyThreshold)
	assert.Equal(t, 1, cfg.Pipeline.DescriptionColumn)
	assert.Equal(t, "table", cfg.Extraction.Mode)
	assert.True(t, cfg.Extraction.UsePdftotextFallback)
	assert.Equal(t, StrategyClusters, cfg.Classification.Strategy)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, -10.0, cfg.Metrics.Weights["negative_net"])
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
pipeline:
  empty_threshold: 0.5
  fix_transaction_description: true
extraction:
  use_pdftotext_fallback: false
classification:
  strategy: rules
  keywords:
    Rent: [landlord]
    Insurance: [policy]
metrics:
  weights:
    positive_net: 0
server:
  port: 9000
`)

	cfg, err := Load(path, emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Pipeline.EmptyThreshold)
	assert.True(t, cfg.Pipeline.FixTransactionDescription)
	assert.Equal(t, 1, cfg.Pipeline.DescriptionColumn, "omitted keys keep defaults")
	assert.False(t, cfg.Extraction.UsePdftotextFallback)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	w := cfg.Weights()
	assert.Zero(t, w.PositiveNet)
	assert.Equal(t, 20.0, w.BalanceIncrease)

	assert.IsType(t, &classify.RuleClassifier{}, cfg.Classifier())
	assert.Equal(t, []string{"landlord"}, cfg.Classification.Keywords["Rent"])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "server:\n  port: 9000\nlog:\n  level: debug\n")
	t.Setenv("STATEMENT_SERVER_PORT", "9100")
	t.Setenv("STATEMENT_CANDIDATE_LABELS", "Rent,Other")

	cfg, err := Load(path, emptyEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"Rent", "Other"}, cfg.Classification.CandidateLabels)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "STATEMENT_BATCH_CONCURRENCY=7\nSTATEMENT_LOG_FORMAT=json\n")
	t.Setenv("STATEMENT_LOG_FORMAT", "console")
	// godotenv writes straight to the process environment.
	t.Cleanup(func() { os.Unsetenv("STATEMENT_BATCH_CONCURRENCY") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Batch.Concurrency)
	assert.Equal(t, "console", cfg.Log.Format, "existing variables win over the env file")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), emptyEnvFile(t))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "pipeline: [")
	_, err = Load(bad, emptyEnvFile(t))
	assert.Error(t, err)

	invalid := writeFile(t, "invalid.yaml", "pipeline:\n  empty_threshold: 1.5\n")
	_, err = Load(invalid, emptyEnvFile(t))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Extraction.Mode = "ocr"
	cfg.Classification.Strategy = "llm"
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "extraction.mode")
	assert.Contains(t, err.Error(), "classification.strategy")
	assert.Contains(t, err.Error(), "server.port")
}

func TestApply(t *testing.T) {
	cfg := Default()
	err := cfg.Apply(Config{
		Pipeline: PipelineConfig{EmptyThreshold: 0.6, FixTransactionDescription: true},
		Log:      LogConfig{Level: "debug"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Pipeline.EmptyThreshold)
	assert.True(t, cfg.Pipeline.FixTransactionDescription)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8000, cfg.Server.Port)

	assert.ErrorIs(t, cfg.Apply(Config{Pipeline: PipelineConfig{EmptyThreshold: 2}}), ErrInvalidConfig)
}

func TestDerivedSettings(t *testing.T) {
	cfg := Default()

	opts := cfg.ParserOptions()
	assert.Equal(t, 0.9, opts.EmptyThreshold)

	ex := cfg.ExtractorOptions()
	assert.Equal(t, 3.0, ex.YTolerance)
	assert.Equal(t, 5.0, ex.XGapThreshold)

	p := cfg.ClassifyParams()
	assert.Equal(t, 80, p.ClusterSimilarity)
	assert.Equal(t, "Other", p.Fallback)

	assert.IsType(t, &classify.ClusterClassifier{}, cfg.Classifier())
	assert.Equal(t, []string{"Rent", "Utilities", "Bill Payment"}, cfg.Categories().Essential)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}
