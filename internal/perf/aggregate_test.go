package perf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brayniac/llm-performance/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func record(model, quant, gpu string, speed *float64) models.RunRecord {
	return models.RunRecord{
		ID:              uuid.New(),
		ModelName:       model,
		Quantization:    quant,
		Backend:         "vllm",
		GpuModel:        gpu,
		CpuModel:        "Intel i9",
		CpuArch:         "x86_64",
		Hardware:        gpu + " / Intel i9",
		TokensPerSecond: speed,
		Timestamp:       time.Now(),
	}
}

func TestAggregateResolvesScoreOncePerVariant(t *testing.T) {
	// 同一变体的三条 run 必须拿到同一个分数
	runs := []models.RunRecord{
		record("llama-3-8b", "Q8_0", "RTX 4090", fptr(120)),
		record("llama-3-8b", "Q8_0", "A100", fptr(300)),
		record("llama-3-8b", "Q8_0", "RTX 3090", fptr(80)),
	}
	scores := map[models.VariantKey]float64{
		{ModelName: "llama-3-8b", Quantization: "Q8_0"}: 67.5,
	}

	result := Aggregate(runs, scores)
	require.Len(t, result.Records, 3)
	for _, r := range result.Records {
		require.NotNil(t, r.QualityScore)
		assert.Equal(t, 67.5, *r.QualityScore)
	}
}

func TestAggregateUnknownScore(t *testing.T) {
	runs := []models.RunRecord{record("mistral-7b", "FP16", "RTX 4090", fptr(90))}
	result := Aggregate(runs, nil)
	require.Len(t, result.Records, 1)
	assert.Nil(t, result.Records[0].QualityScore, "没查到分数必须是 nil，不是 0")
}

func TestAggregateSkipsBenchmarkOnlyRows(t *testing.T) {
	noPerf := record("llama-3-8b", "Q8_0", "RTX 4090", nil) // 无任何性能数据
	placeholder := record("llama-3-8b", "Q8_0", "Generic GPU", fptr(50))
	real := record("llama-3-8b", "Q8_0", "A100", fptr(300))

	result := Aggregate([]models.RunRecord{noPerf, placeholder, real}, nil)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "A100", result.Records[0].GpuModel)
}

func TestAggregateTotals(t *testing.T) {
	runs := []models.RunRecord{
		record("llama-3-8b", "Q8_0", "RTX 4090", fptr(120)),
		record("llama-3-8b", "Q4_K_M", "RTX 4090", fptr(150)),
		record("llama-3-8b", "Q8_0", "A100", fptr(300)),
	}
	result := Aggregate(runs, nil)
	totals := result.Totals["llama-3-8b"]
	assert.Equal(t, 2, totals.HardwarePlatforms)
	assert.Equal(t, 2, totals.Quantizations)
}

func TestTokensPerKwh(t *testing.T) {
	got := TokensPerKwh(fptr(100), fptr(300))
	require.NotNil(t, got)
	assert.InDelta(t, 1_200_000.0, *got, 0.001)

	assert.Nil(t, TokensPerKwh(nil, fptr(300)))
	assert.Nil(t, TokensPerKwh(fptr(100), nil))
	assert.Nil(t, TokensPerKwh(fptr(100), fptr(0)), "功率为 0 时能效未知而不是无穷")
}
