package perf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brayniac/llm-performance/internal/models"
)

func TestRankTwoLevelSelection(t *testing.T) {
	// 同一模型两个平台，各平台多条配置，验证两级选优
	slow4090 := record("llama-3-8b", "Q4_K_M", "RTX 4090", fptr(100))
	fast4090 := record("llama-3-8b", "Q8_0", "RTX 4090", fptr(150))
	a100 := record("llama-3-8b", "Q8_0", "A100", fptr(300))

	groups := Rank([]models.RunRecord{slow4090, fast4090, a100}, nil,
		SortSpec{By: SortSpeed, Dir: DirDesc})
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "A100 / Intel i9", g.BestHardware.Hardware)
	require.NotNil(t, g.BestHardware.BestConfig.TokensPerSecond)
	assert.Equal(t, 300.0, *g.BestHardware.BestConfig.TokensPerSecond)
	assert.Equal(t, 2, g.TotalHardwarePlatforms)
	assert.Equal(t, 2, g.QualifyingPlatforms)

	// 4090 平台的胜者是更快的 Q8_0
	require.Len(t, g.AllHardwarePlatforms, 2)
	second := g.AllHardwarePlatforms[1]
	assert.Equal(t, "Q8_0", second.BestConfig.Quantization)
	assert.Equal(t, 2, second.TotalConfigs)
}

func TestRankUnknownAlwaysLoses(t *testing.T) {
	known := record("a", "Q8_0", "RTX 4090", fptr(50))
	unknown := record("a", "Q4_K_M", "RTX 4090", nil)
	unknown.MemoryGB = fptr(8)

	// 即便升序，已知值也胜过未知
	for _, dir := range []string{DirAsc, DirDesc} {
		groups := Rank([]models.RunRecord{known, unknown}, nil, SortSpec{By: SortSpeed, Dir: dir})
		require.Len(t, groups, 1)
		assert.Equal(t, "Q8_0", groups[0].BestHardware.BestConfig.Quantization, "dir=%s", dir)
	}
}

func TestRankTieBreakDeterministic(t *testing.T) {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	older := record("a", "Q8_0", "RTX 4090", fptr(100))
	older.Timestamp = ts.Add(-time.Hour)
	newer := record("a", "Q4_K_M", "RTX 4090", fptr(100))
	newer.Timestamp = ts

	groups := Rank([]models.RunRecord{older, newer}, nil, SortSpec{By: SortSpeed, Dir: DirDesc})
	require.Len(t, groups, 1)
	assert.Equal(t, "Q4_K_M", groups[0].BestHardware.BestConfig.Quantization, "同分时新数据优先")

	// 时间戳也相同：按 run ID 字典序，任何输入顺序都给出同一个胜者
	idA := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	idB := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	a := record("a", "Q8_0", "RTX 4090", fptr(100))
	a.ID, a.Timestamp = idA, ts
	b := record("a", "Q4_K_M", "RTX 4090", fptr(100))
	b.ID, b.Timestamp = idB, ts

	g1 := Rank([]models.RunRecord{a, b}, nil, SortSpec{By: SortSpeed, Dir: DirDesc})
	g2 := Rank([]models.RunRecord{b, a}, nil, SortSpec{By: SortSpeed, Dir: DirDesc})
	assert.Equal(t, idA, g1[0].BestHardware.BestConfig.ID)
	assert.Equal(t, idA, g2[0].BestHardware.BestConfig.ID)
}

func TestRankModelOrdering(t *testing.T) {
	m1 := record("llama-3-8b", "Q8_0", "RTX 4090", fptr(100))
	m1.QualityScore = fptr(60)
	m2 := record("mistral-7b", "FP16", "RTX 4090", fptr(80))
	m2.QualityScore = fptr(75)

	groups := Rank([]models.RunRecord{m1, m2}, nil, SortSpec{By: SortQuality, Dir: DirDesc})
	require.Len(t, groups, 2)
	assert.Equal(t, "mistral-7b", groups[0].ModelName)

	// model_name 维度按标识符字典序
	groups = Rank([]models.RunRecord{m2, m1}, nil, SortSpec{By: SortModelName, Dir: DirAsc})
	assert.Equal(t, "llama-3-8b", groups[0].ModelName)
	groups = Rank([]models.RunRecord{m1, m2}, nil, SortSpec{By: SortModelName, Dir: DirDesc})
	assert.Equal(t, "mistral-7b", groups[0].ModelName)
}

func TestRankTotalsFromPreFilter(t *testing.T) {
	// 过滤后只剩一个平台，但 total 报告过滤前的口径
	r := record("llama-3-8b", "Q8_0", "A100", fptr(300))
	totals := ModelTotals{"llama-3-8b": {HardwarePlatforms: 5, Quantizations: 3}}

	groups := Rank([]models.RunRecord{r}, totals, SortSpec{By: SortSpeed, Dir: DirDesc})
	require.Len(t, groups, 1)
	assert.Equal(t, 5, groups[0].TotalHardwarePlatforms)
	assert.Equal(t, 1, groups[0].QualifyingPlatforms)
}

func TestRankEfficiency(t *testing.T) {
	efficient := record("a", "Q8_0", "RTX 4090", fptr(100))
	efficient.GpuPowerWatts = fptr(200)
	fast := record("a", "FP16", "A100", fptr(300))
	fast.GpuPowerWatts = fptr(700)

	groups := Rank([]models.RunRecord{efficient, fast}, nil, SortSpec{By: SortEfficiency, Dir: DirDesc})
	require.Len(t, groups, 1)
	// 100/200 > 300/700，4090 平台赢
	assert.Equal(t, "RTX 4090 / Intel i9", groups[0].BestHardware.Hardware)
}
