package perf

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brayniac/llm-performance/internal/models"
)

func TestCanonicalQuant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Q8_0-GGUF", "Q8_0"},
		{"Q4_K_M-GGUF", "Q4_K_M"},
		{"FP16-gguf", "FP16"},
		{"Q8_0", "Q8_0"},
		{"W4A16-AWQ", "W4A16-AWQ"}, // 其他后缀不动
		{"", ""},
	}
	for _, tt := range tests {
		got := CanonicalQuant(tt.in)
		assert.Equal(t, tt.want, got, "CanonicalQuant(%q)", tt.in)
		// 幂等
		assert.Equal(t, got, CanonicalQuant(got))
	}
}

func TestLessQuant(t *testing.T) {
	// 全精度在前，再按位宽，Q 系最后
	ordered := []string{"FP32", "BF16", "FP16", "FP8", "W4A16", "W8A8", "W4A4", "Q4_K_M", "Q8_0"}
	for i := 0; i < len(ordered)-1; i++ {
		assert.True(t, LessQuant(ordered[i], ordered[i+1]),
			"%s 应排在 %s 前", ordered[i], ordered[i+1])
	}
}

func variant(model, quant, lora string) models.ModelVariant {
	return models.ModelVariant{ModelName: model, Quantization: quant, LoraAdapter: lora}
}

func TestPlanMerge(t *testing.T) {
	variants := []models.ModelVariant{
		variant("llama-3-8b", "Q8_0", ""),
		variant("llama-3-8b", "Q8_0-GGUF", ""),
		variant("llama-3-8b", "Q4_K_M-GGUF", ""), // 规范变体不存在
		variant("mistral-7b", "FP16", ""),
	}

	steps := PlanMerge(variants)
	require.Len(t, steps, 2)

	// 固定顺序：按 (model, quant) 排序
	assert.Equal(t, "Q4_K_M-GGUF", steps[0].Source.Quantization)
	assert.Equal(t, "Q4_K_M", steps[0].CanonicalQuant)
	assert.Nil(t, steps[0].Target, "规范变体不存在时直接改名")

	assert.Equal(t, "Q8_0-GGUF", steps[1].Source.Quantization)
	require.NotNil(t, steps[1].Target)
	assert.Equal(t, "Q8_0", steps[1].Target.Quantization)
}

func TestPlanMergeIdempotent(t *testing.T) {
	// 合并完成后的集合再规划一次，计划为空
	after := []models.ModelVariant{
		variant("llama-3-8b", "Q8_0", ""),
		variant("llama-3-8b", "Q4_K_M", ""),
		variant("mistral-7b", "FP16", ""),
	}
	assert.Empty(t, PlanMerge(after))
}

func TestPlanMergeTwoSpellingsNoCanonicalTwin(t *testing.T) {
	// "Q8_0-GGUF" 和 "Q8_0-gguf" 都在库里而 "Q8_0" 不存在：
	// 只允许一次改名，另一个必须并入改名后的变体，
	// 两次改名会撞 (model_name, quantization, lora_adapter) 唯一约束
	id1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	id2 := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	upper := variant("llama-3-8b", "Q8_0-GGUF", "")
	upper.ID = id1
	lower := variant("llama-3-8b", "Q8_0-gguf", "")
	lower.ID = id2

	steps := PlanMerge([]models.ModelVariant{upper, lower})
	require.Len(t, steps, 2)

	var renames, reassigns int
	for _, s := range steps {
		assert.Equal(t, "Q8_0", s.CanonicalQuant)
		if s.Target == nil {
			renames++
		} else {
			reassigns++
			// 并入的目标就是那个被改名的变体
			assert.Contains(t, []uuid.UUID{id1, id2}, s.Target.ID)
			assert.NotEqual(t, s.Source.ID, s.Target.ID)
		}
	}
	assert.Equal(t, 1, renames)
	assert.Equal(t, 1, reassigns)
}

func TestPlanMergeKeepsLoraSeparate(t *testing.T) {
	variants := []models.ModelVariant{
		variant("llama-3-8b", "Q8_0", ""),
		variant("llama-3-8b", "Q8_0-GGUF", "alpaca-lora"),
	}
	steps := PlanMerge(variants)
	require.Len(t, steps, 1)
	// lora 不同，不能合并进无 lora 的规范变体
	assert.Nil(t, steps[0].Target)
}
