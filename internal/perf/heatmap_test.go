package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brayniac/llm-performance/internal/models"
)

func analysisRow(backend, quant string, power, conc *int, speed *float64) models.AnalysisRow {
	return models.AnalysisRow{
		Backend:            backend,
		Quantization:       quant,
		GpuPowerLimitWatts: power,
		ConcurrentRequests: conc,
		TokensPerSecond:    speed,
	}
}

func TestBuildHeatmapLayout(t *testing.T) {
	rows := []models.AnalysisRow{
		analysisRow("vllm", "FP16", iptr(300), iptr(1), fptr(120)),
		analysisRow("vllm", "FP16", iptr(300), iptr(8), fptr(400)),
		analysisRow("vllm", "Q8_0", nil, nil, fptr(90)), // 缺省档：power 0、concurrency 1
	}

	data := BuildHeatmap(rows)
	assert.Equal(t, []string{"vllm||FP16", "vllm||Q8_0"}, data.Quantizations)
	assert.Equal(t, []int{0, 300}, data.PowerLimits)
	assert.Equal(t, []int{1, 8}, data.ConcurrentRequests)

	assert.Equal(t, 120.0, data.SpeedData["vllm||FP16"][300][1])
	assert.Equal(t, 400.0, data.SpeedData["vllm||FP16"][300][8])
	assert.Equal(t, 90.0, data.SpeedData["vllm||Q8_0"][0][1])
}

func TestBuildHeatmapUnifiedScaleAcrossQuants(t *testing.T) {
	// 色阶覆盖所有量化面板的全部格子，不是每面板各算各的
	rows := []models.AnalysisRow{
		analysisRow("vllm", "FP16", iptr(300), iptr(1), fptr(130)),
		analysisRow("vllm", "Q8_0", iptr(300), iptr(1), fptr(40)),
	}
	data := BuildHeatmap(rows)
	scale := data.Scales["speed"]
	assert.Equal(t, 40.0, scale.Min)
	assert.Equal(t, 130.0, scale.Max)
}

func TestBuildHeatmapEfficiencyScaled(t *testing.T) {
	row := analysisRow("vllm", "FP16", iptr(300), iptr(1), fptr(100))
	row.GpuPowerWatts = fptr(200)
	data := BuildHeatmap([]models.AnalysisRow{row})

	// 100 tok/s @ 200W = 1.8M tokens/kWh，展示单位是百万
	assert.InDelta(t, 1.8, data.EfficiencyData["vllm||FP16"][300][1], 1e-9)
	// 单格退化区间：扩成 ±20%
	assert.InDelta(t, 1.44, data.Scales["efficiency"].Min, 1e-9)
	assert.InDelta(t, 2.16, data.Scales["efficiency"].Max, 1e-9)
}

func TestBuildHeatmapSkipsMissingCells(t *testing.T) {
	row := analysisRow("vllm", "FP16", iptr(300), iptr(1), fptr(100))
	data := BuildHeatmap([]models.AnalysisRow{row})
	_, ok := data.TtftData["vllm||FP16"]
	assert.False(t, ok, "缺指标不落格子，不写 0")
	assert.Equal(t, models.ScaleRange{}, data.Scales["ttft"])
}

func TestUnifyScaleNarrowRange(t *testing.T) {
	cells := models.HeatmapCells{
		"a": {0: {1: 98}},
		"b": {0: {1: 100}},
	}
	// 区间 [98,100] 窄于 max 的 10%，围绕中点 99 扩 ±20%
	scale := UnifyScale(cells)
	assert.InDelta(t, 79.2, scale.Min, 1e-9)
	assert.InDelta(t, 118.8, scale.Max, 1e-9)
}

func TestBuildQuantSummaries(t *testing.T) {
	r1 := analysisRow("vllm", "FP16", iptr(300), iptr(1), fptr(100))
	r1.TtftMs = fptr(80)
	r2 := analysisRow("vllm", "FP16", iptr(300), iptr(8), fptr(300))
	r2.TtftMs = fptr(200)
	r3 := analysisRow("llamacpp", "Q8_0", nil, iptr(1), fptr(60))

	scores := map[string]map[string]float64{
		"FP16": {"MMLU - STEM": 60, "MMLU - Humanities": 70},
	}

	summaries := BuildQuantSummaries([]models.AnalysisRow{r1, r2, r3}, scores)
	require.Len(t, summaries, 2)

	// backend 字典序：llamacpp 在 vllm 前
	assert.Equal(t, "llamacpp", summaries[0].Backend)
	assert.Nil(t, summaries[0].QualityScore)

	fp16 := summaries[1]
	assert.Equal(t, "FP16", fp16.Quantization)
	assert.Equal(t, 2, fp16.ConfigurationCount)
	require.NotNil(t, fp16.BestSpeed)
	assert.Equal(t, 300.0, *fp16.BestSpeed)
	require.NotNil(t, fp16.BestTtft)
	assert.Equal(t, 80.0, *fp16.BestTtft, "ttft 取最小值")
	require.NotNil(t, fp16.QualityScore)
	assert.Equal(t, 65.0, *fp16.QualityScore)

	groups := GroupByBackend(summaries)
	require.Len(t, groups, 2)
	assert.Equal(t, "llamacpp", groups[0].Backend)
	assert.Len(t, groups[1].Quantizations, 1)
}
