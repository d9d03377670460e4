package perf

import (
	"fmt"
	"math"
	"sort"

	"github.com/brayniac/llm-performance/internal/models"
)

// 热力图里效率的展示单位是百万 tokens/kWh
const efficiencyDisplayScale = 1e-6

// BuildHeatmap 把分析行组装成热力图载荷：
// backend||quant 复合键 → power_limit → concurrency → 指标值，
// 并为每个指标算出所有量化面板共用的色阶范围。
// power_limit 缺省按 0、concurrency 缺省按 1 归档。
func BuildHeatmap(rows []models.AnalysisRow) models.HeatmapData {
	data := models.HeatmapData{
		SpeedData:      models.HeatmapCells{},
		TtftData:       models.HeatmapCells{},
		TpotData:       models.HeatmapCells{},
		ItlData:        models.HeatmapCells{},
		EfficiencyData: models.HeatmapCells{},
	}

	powerSet := make(map[int]struct{})
	concSet := make(map[int]struct{})
	keySet := make(map[string]struct{})

	for _, row := range rows {
		key := fmt.Sprintf("%s||%s", row.Backend, row.Quantization)
		power, conc := 0, 1
		if row.GpuPowerLimitWatts != nil {
			power = *row.GpuPowerLimitWatts
		}
		if row.ConcurrentRequests != nil {
			conc = *row.ConcurrentRequests
		}
		keySet[key] = struct{}{}
		powerSet[power] = struct{}{}
		concSet[conc] = struct{}{}

		setCell(data.SpeedData, key, power, conc, row.TokensPerSecond)
		setCell(data.TtftData, key, power, conc, row.TtftMs)
		setCell(data.TpotData, key, power, conc, row.TpotMs)
		setCell(data.ItlData, key, power, conc, row.ItlMs)

		if eff := TokensPerKwh(row.TokensPerSecond, row.GpuPowerWatts); eff != nil {
			scaled := *eff * efficiencyDisplayScale
			setCell(data.EfficiencyData, key, power, conc, &scaled)
		}
	}

	data.Quantizations = sortedKeys(keySet)
	data.PowerLimits = sortedInts(powerSet)
	data.ConcurrentRequests = sortedInts(concSet)
	data.Scales = map[string]models.ScaleRange{
		"speed":      UnifyScale(data.SpeedData),
		"ttft":       UnifyScale(data.TtftData),
		"tpot":       UnifyScale(data.TpotData),
		"itl":        UnifyScale(data.ItlData),
		"efficiency": UnifyScale(data.EfficiencyData),
	}
	return data
}

func setCell(cells models.HeatmapCells, key string, power, conc int, v *float64) {
	if v == nil {
		return
	}
	if cells[key] == nil {
		cells[key] = make(map[int]map[int]float64)
	}
	if cells[key][power] == nil {
		cells[key][power] = make(map[int]float64)
	}
	cells[key][power][conc] = *v
}

// UnifyScale 在所有量化面板的全部格子上取一个全局 (min, max)，
// 这样不同量化的颜色深浅才可比。退化区间的处理：
//   - min == max：扩成 [v×0.8, v×1.2]
//   - 区间窄于 max 的 10%：围绕中点 ±20% 对称扩张
//
// 避免整块热力图颜色一样平、看不出差异。
func UnifyScale(cells models.HeatmapCells) models.ScaleRange {
	min, max := math.Inf(1), math.Inf(-1)
	found := false
	for _, byPower := range cells {
		for _, byConc := range byPower {
			for _, v := range byConc {
				found = true
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
		}
	}
	if !found {
		return models.ScaleRange{}
	}
	if min == max {
		return models.ScaleRange{Min: min * 0.8, Max: max * 1.2}
	}
	if max-min < 0.1*max {
		mid := (min + max) / 2
		return models.ScaleRange{Min: mid * 0.8, Max: mid * 1.2}
	}
	return models.ScaleRange{Min: min, Max: max}
}

// BuildQuantSummaries 给分析视图做 (backend, quantization) 级别的汇总。
// categoryScores 以量化标签为键，是该变体各类目的质量分数。
func BuildQuantSummaries(rows []models.AnalysisRow, categoryScores map[string]map[string]float64) []models.QuantizationSummary {
	type group struct {
		backend string
		quant   string
		rows    []models.AnalysisRow
	}
	grouped := make(map[[2]string]*group)
	for _, row := range rows {
		k := [2]string{row.Backend, row.Quantization}
		if grouped[k] == nil {
			grouped[k] = &group{backend: row.Backend, quant: row.Quantization}
		}
		grouped[k].rows = append(grouped[k].rows, row)
	}

	summaries := make([]models.QuantizationSummary, 0, len(grouped))
	for _, g := range grouped {
		s := models.QuantizationSummary{
			Quantization:       g.quant,
			Backend:            g.backend,
			ConfigurationCount: len(g.rows),
			CategoryScores:     map[string]float64{},
		}
		for _, row := range g.rows {
			s.BestSpeed = maxOf(s.BestSpeed, row.TokensPerSecond)
			s.BestTtft = minOf(s.BestTtft, row.TtftMs)
			s.BestTokensPerKwh = maxOf(s.BestTokensPerKwh, TokensPerKwh(row.TokensPerSecond, row.GpuPowerWatts))
		}
		if cats, ok := categoryScores[g.quant]; ok && len(cats) > 0 {
			total := 0.0
			for name, score := range cats {
				s.CategoryScores[name] = score
				total += score
			}
			avg := total / float64(len(cats))
			s.QualityScore = &avg
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Backend != summaries[j].Backend {
			return summaries[i].Backend < summaries[j].Backend
		}
		return LessQuant(summaries[i].Quantization, summaries[j].Quantization)
	})
	return summaries
}

// GroupByBackend 把排好序的汇总按 backend 切成组
func GroupByBackend(summaries []models.QuantizationSummary) []models.BackendGroup {
	var groups []models.BackendGroup
	for _, s := range summaries {
		if n := len(groups); n > 0 && groups[n-1].Backend == s.Backend {
			groups[n-1].Quantizations = append(groups[n-1].Quantizations, s)
			continue
		}
		groups = append(groups, models.BackendGroup{Backend: s.Backend, Quantizations: []models.QuantizationSummary{s}})
	}
	return groups
}

func maxOf(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v > *cur {
		val := *v
		return &val
	}
	return cur
}

func minOf(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v < *cur {
		val := *v
		return &val
	}
	return cur
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
