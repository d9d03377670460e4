package perf

import (
	"sort"
	"strings"

	"github.com/brayniac/llm-performance/internal/models"
)

// CanonicalQuant 去掉冗余的 -GGUF/-gguf 后缀。
// GGUF 容器格式由 backend（llama.cpp）决定，写在量化名里只会造成
// "Q8_0-GGUF" 和 "Q8_0" 被当成两个变体。幂等：再归一一次结果不变。
func CanonicalQuant(q string) string {
	if s, ok := strings.CutSuffix(q, "-GGUF"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(q, "-gguf"); ok {
		return s
	}
	return q
}

// QuantSortKey 给量化标签一个展示排序权重：全精度在前，再按量化位宽
func QuantSortKey(quant string) (int, string) {
	var priority int
	switch {
	case quant == "FP32":
		priority = 0
	case quant == "BF16":
		priority = 1
	case quant == "FP16":
		priority = 2
	case quant == "FP8_DYNAMIC":
		priority = 3
	case quant == "FP8":
		priority = 4
	case strings.HasPrefix(quant, "W") && strings.Contains(quant, "A16"):
		priority = 10
	case strings.HasPrefix(quant, "W") && strings.Contains(quant, "A8"):
		priority = 11
	case strings.HasPrefix(quant, "W"):
		priority = 20
	case strings.HasPrefix(quant, "Q"):
		priority = 30
	default:
		priority = 99
	}
	return priority, quant
}

// LessQuant 按 QuantSortKey 比较两个量化标签
func LessQuant(a, b string) bool {
	pa, sa := QuantSortKey(a)
	pb, sb := QuantSortKey(b)
	if pa != pb {
		return pa < pb
	}
	return sa < sb
}

// MergeStep 一次变体合并：把 Source 的质量分数改挂到规范变体上。
// TargetID 为空表示库里还没有规范变体，执行时直接改写 Source 的
// quantization 字段即可（不需要搬分数）。
type MergeStep struct {
	Source         models.ModelVariant
	Target         *models.ModelVariant // nil = 规范变体不存在
	CanonicalQuant string
}

// PlanMerge 找出所有"仅量化后缀不同"的重复变体，给出合并计划。
// 纯函数：对合并完成后的变体集合再规划一次会得到空计划，
// 这就是 merge 操作在系统层面的幂等性。
func PlanMerge(variants []models.ModelVariant) []MergeStep {
	byKey := make(map[models.VariantKey]models.ModelVariant, len(variants))
	for _, v := range variants {
		byKey[v.Key()] = v
	}

	var steps []MergeStep
	for _, v := range variants {
		canon := CanonicalQuant(v.Quantization)
		if canon == v.Quantization {
			continue // 已是规范形式
		}
		step := MergeStep{Source: v, CanonicalQuant: canon}
		key := models.VariantKey{ModelName: v.ModelName, Quantization: canon, LoraAdapter: v.LoraAdapter}
		if target, ok := byKey[key]; ok {
			t := target
			step.Target = &t
		} else {
			// 改名后这个键就被占了。"Q8_0-GGUF" 和 "Q8_0-gguf" 同时存在
			// 而规范变体缺失时，只有第一个能改名，其余必须并入它，
			// 否则第二次改名会撞唯一约束
			renamed := v
			renamed.Quantization = canon
			byKey[key] = renamed
		}
		steps = append(steps, step)
	}

	// 固定顺序，保证重复执行产生同样的事务序列
	sort.Slice(steps, func(i, j int) bool {
		a, b := steps[i].Source, steps[j].Source
		if a.ModelName != b.ModelName {
			return a.ModelName < b.ModelName
		}
		if a.Quantization != b.Quantization {
			return a.Quantization < b.Quantization
		}
		return a.LoraAdapter < b.LoraAdapter
	})
	return steps
}
