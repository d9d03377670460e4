package perf

import (
	"github.com/brayniac/llm-performance/internal/models"
)

// Constraints 调用方给的过滤条件，nil 表示不限制
type Constraints struct {
	MinQuality  *float64
	MinSpeed    *float64
	MaxMemoryGB *float64
	Categories  map[models.HardwareCategory]bool // 空 = 全部
}

// Filter 返回满足所有条件的记录。
// unknown 的处理：只要设了下限，质量/速度未知的行就不达标（含下限为 0）；
// 内存未知不会被 max_memory 过滤掉（缺数据不等于超限）。
// 统计口径（total_*）来自过滤前的 Aggregate 结果，这里不动它。
func Filter(records []models.RunRecord, c Constraints) []models.RunRecord {
	out := make([]models.RunRecord, 0, len(records))
	for _, r := range records {
		if len(c.Categories) > 0 && !c.Categories[Classify(r.GpuModel, r.CpuArch)] {
			continue
		}
		if c.MinSpeed != nil {
			if r.TokensPerSecond == nil || *r.TokensPerSecond < *c.MinSpeed {
				continue
			}
		}
		if c.MaxMemoryGB != nil && r.MemoryGB != nil && *r.MemoryGB > *c.MaxMemoryGB {
			continue
		}
		if c.MinQuality != nil {
			if r.QualityScore == nil || *r.QualityScore < *c.MinQuality {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
