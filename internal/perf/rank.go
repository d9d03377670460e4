package perf

import (
	"sort"
	"strings"

	"github.com/brayniac/llm-performance/internal/models"
)

// 排序维度
const (
	SortModelName  = "model_name"
	SortQuality    = "quality"
	SortSpeed      = "speed"
	SortMemory     = "memory"
	SortEfficiency = "efficiency"
)

const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// SortSpec 两级选优和顶层排序共用的排序参数
type SortSpec struct {
	By  string
	Dir string
}

// ValidSortBy 校验 sort_by 参数
func ValidSortBy(s string) bool {
	switch s {
	case SortModelName, SortQuality, SortSpeed, SortMemory, SortEfficiency:
		return true
	}
	return false
}

// metricOf 取记录在当前排序维度下的数值，nil 表示 unknown。
// model_name 维度没有行级数值，返回 nil 让平局链决定组内胜者。
func metricOf(r models.RunRecord, by string) *float64 {
	switch by {
	case SortQuality:
		return r.QualityScore
	case SortSpeed:
		return r.TokensPerSecond
	case SortMemory:
		return r.MemoryGB
	case SortEfficiency:
		return TokensPerKwh(r.TokensPerSecond, r.GpuPowerWatts)
	}
	return nil
}

// betterRun 判断 a 是否应排在 b 前面。
// unknown 永远输给已知值，与方向无关；双方相等或都未知时走平局链：
// timestamp 新者优先，再按 run ID 字典序升序，保证全序可复现。
func betterRun(a, b models.RunRecord, spec SortSpec) bool {
	va, vb := metricOf(a, spec.By), metricOf(b, spec.By)
	switch {
	case va != nil && vb == nil:
		return true
	case va == nil && vb != nil:
		return false
	case va != nil && vb != nil && *va != *vb:
		if spec.Dir == DirAsc {
			return *va < *vb
		}
		return *va > *vb
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// toConfig 把胜出的记录转成响应里的 best_config
func toConfig(r models.RunRecord) models.ConfigPerformance {
	return models.ConfigPerformance{
		ID:                 r.ID,
		Quantization:       r.Quantization,
		LoraAdapter:        r.LoraAdapter,
		QualityScore:       r.QualityScore,
		TokensPerSecond:    r.TokensPerSecond,
		MemoryGB:           r.MemoryGB,
		TokensPerKwh:       TokensPerKwh(r.TokensPerSecond, r.GpuPowerWatts),
		GpuPowerWatts:      r.GpuPowerWatts,
		Backend:            r.Backend,
		Hardware:           r.Hardware,
		HardwareCategory:   Classify(r.GpuModel, r.CpuArch),
		ConcurrentRequests: r.ConcurrentRequests,
		MaxContextLength:   r.MaxContextLength,
		LoadPattern:        r.LoadPattern,
		DatasetName:        r.DatasetName,
		GpuPowerLimitWatts: r.GpuPowerLimitWatts,
		Timestamp:          r.Timestamp,
	}
}

// configMetric 平台层比较用：从已转换的 best_config 取排序值
func configMetric(c models.ConfigPerformance, by string) *float64 {
	switch by {
	case SortQuality:
		return c.QualityScore
	case SortSpeed:
		return c.TokensPerSecond
	case SortMemory:
		return c.MemoryGB
	case SortEfficiency:
		return c.TokensPerKwh
	}
	return nil
}

// betterConfig 平台间 / 模型间的比较，平局链和 betterRun 一致
func betterConfig(a, b models.ConfigPerformance, spec SortSpec) bool {
	va, vb := configMetric(a, spec.By), configMetric(b, spec.By)
	switch {
	case va != nil && vb == nil:
		return true
	case va == nil && vb != nil:
		return false
	case va != nil && vb != nil && *va != *vb:
		if spec.Dir == DirAsc {
			return *va < *vb
		}
		return *va > *vb
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// Rank 两级选优：
//  1. 每个 (模型, 硬件平台) 组里挑出最优配置
//  2. 每个模型在所有平台的胜者里再挑最优平台
//
// 顶层列表按模型的最优平台值排序；totals 提供过滤前的平台总数。
// 过滤后一条记录都不剩的模型不会出现在结果里。
func Rank(records []models.RunRecord, totals ModelTotals, spec SortSpec) []models.ModelPerformanceGroup {
	// 模型 → 硬件标签 → 记录
	grouped := make(map[string]map[string][]models.RunRecord)
	for _, r := range records {
		if grouped[r.ModelName] == nil {
			grouped[r.ModelName] = make(map[string][]models.RunRecord)
		}
		grouped[r.ModelName][r.Hardware] = append(grouped[r.ModelName][r.Hardware], r)
	}

	groups := make([]models.ModelPerformanceGroup, 0, len(grouped))
	for modelName, byHardware := range grouped {
		platforms := make([]models.HardwarePlatformPerformance, 0, len(byHardware))
		for hardware, runs := range byHardware {
			best := runs[0]
			for _, r := range runs[1:] {
				if betterRun(r, best, spec) {
					best = r
				}
			}
			cfg := toConfig(best)
			platforms = append(platforms, models.HardwarePlatformPerformance{
				Hardware:         hardware,
				HardwareCategory: cfg.HardwareCategory,
				BestConfig:       cfg,
				TotalConfigs:     len(runs),
			})
		}

		sort.SliceStable(platforms, func(i, j int) bool {
			return betterConfig(platforms[i].BestConfig, platforms[j].BestConfig, spec)
		})

		totalPlatforms := totals[modelName].HardwarePlatforms
		if totalPlatforms < len(platforms) {
			totalPlatforms = len(platforms)
		}
		groups = append(groups, models.ModelPerformanceGroup{
			ModelName:              modelName,
			BestHardware:           platforms[0],
			TotalHardwarePlatforms: totalPlatforms,
			QualifyingPlatforms:    len(platforms),
			AllHardwarePlatforms:   platforms,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if spec.By == SortModelName {
			// 按原始标识符的字典序，不用展示用的短名
			if spec.Dir == DirDesc {
				return groups[i].ModelName > groups[j].ModelName
			}
			return groups[i].ModelName < groups[j].ModelName
		}
		return betterConfig(groups[i].BestHardware.BestConfig, groups[j].BestHardware.BestConfig, spec)
	})
	return groups
}
