package perf

import (
	"github.com/brayniac/llm-performance/internal/models"
)

// PreFilterTotals 过滤前的统计口径，响应里用来报告 "2 of 5 platforms qualify"
type PreFilterTotals struct {
	HardwarePlatforms int
	Quantizations     int
}

// ModelTotals 按模型名索引的过滤前统计
type ModelTotals map[string]PreFilterTotals

// AggregateResult 聚合输出：已挂上质量分数的记录 + 过滤前统计
type AggregateResult struct {
	Records []models.RunRecord
	Totals  ModelTotals
}

// Aggregate 把硬件相关的 test run 记录和按变体归属的质量分数连接起来。
// scores 以 (model, quant, lora) 为键，每个变体只解析一次，
// 同一变体下所有 run 拿到的是同一个分数 —— 这是分组视图的核心不变量，
// 不允许每行各查一遍。
func Aggregate(runs []models.RunRecord, scores map[models.VariantKey]float64) AggregateResult {
	platforms := make(map[string]map[string]struct{})
	quants := make(map[string]map[string]struct{})

	records := make([]models.RunRecord, 0, len(runs))
	for _, r := range runs {
		// 没有任何性能数据的行是 benchmark-only 占位，分组视图不展示
		if r.TokensPerSecond == nil && r.MemoryGB == nil {
			continue
		}
		if IsPlaceholderHardware(r.GpuModel, r.CpuModel) {
			continue
		}

		key := models.VariantKey{ModelName: r.ModelName, Quantization: r.Quantization, LoraAdapter: r.LoraAdapter}
		if s, ok := scores[key]; ok {
			v := s
			r.QualityScore = &v
		} else {
			r.QualityScore = nil
		}

		if platforms[r.ModelName] == nil {
			platforms[r.ModelName] = make(map[string]struct{})
			quants[r.ModelName] = make(map[string]struct{})
		}
		platforms[r.ModelName][r.Hardware] = struct{}{}
		quants[r.ModelName][r.Quantization] = struct{}{}

		records = append(records, r)
	}

	totals := make(ModelTotals, len(platforms))
	for model, hw := range platforms {
		totals[model] = PreFilterTotals{
			HardwarePlatforms: len(hw),
			Quantizations:     len(quants[model]),
		}
	}
	return AggregateResult{Records: records, Totals: totals}
}

// TokensPerKwh 能效：tokens/s × 3,600,000 / 瓦。缺功率或功率为 0 时未知
func TokensPerKwh(speed, powerWatts *float64) *float64 {
	if speed == nil || powerWatts == nil || *powerWatts <= 0 {
		return nil
	}
	v := (*speed * 3_600_000.0) / *powerWatts
	return &v
}
