package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brayniac/llm-performance/internal/models"
)

func TestFilterMinQuality(t *testing.T) {
	good := record("a", "Q8_0", "RTX 4090", fptr(100))
	good.QualityScore = fptr(70)
	bad := record("b", "Q8_0", "RTX 4090", fptr(100))
	bad.QualityScore = fptr(50)
	unknown := record("c", "Q8_0", "RTX 4090", fptr(100))

	out := Filter([]models.RunRecord{good, bad, unknown}, Constraints{MinQuality: fptr(60)})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ModelName)
}

func TestFilterUnknownSpeedFailsMinSpeed(t *testing.T) {
	unknown := record("a", "Q8_0", "RTX 4090", nil)
	unknown.MemoryGB = fptr(8)
	out := Filter([]models.RunRecord{unknown}, Constraints{MinSpeed: fptr(10)})
	assert.Empty(t, out, "速度未知无法证明达标")
}

func TestFilterUnknownMemoryPassesMaxMemory(t *testing.T) {
	unknown := record("a", "Q8_0", "RTX 4090", fptr(100))
	big := record("b", "Q8_0", "RTX 4090", fptr(100))
	big.MemoryGB = fptr(48)

	out := Filter([]models.RunRecord{unknown, big}, Constraints{MaxMemoryGB: fptr(24)})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ModelName, "内存未知不等于超限")
}

func TestFilterCategories(t *testing.T) {
	consumer := record("a", "Q8_0", "RTX 4090", fptr(100))
	datacenter := record("a", "Q8_0", "A100", fptr(300))

	out := Filter([]models.RunRecord{consumer, datacenter},
		Constraints{Categories: map[models.HardwareCategory]bool{models.DatacenterGPU: true}})
	require.Len(t, out, 1)
	assert.Equal(t, "A100", out[0].GpuModel)

	// 空集合 = 不过滤
	out = Filter([]models.RunRecord{consumer, datacenter}, Constraints{})
	assert.Len(t, out, 2)
}

func TestFilterZeroThresholdStillExcludesUnknown(t *testing.T) {
	// 下限为 0 也算"设了条件"：未知值照样不达标，已知值 ≥ 0 全部通过
	unknown := record("a", "Q8_0", "RTX 4090", nil)
	unknown.MemoryGB = fptr(8)
	known := record("b", "Q8_0", "RTX 4090", fptr(0))
	known.QualityScore = fptr(0)

	out := Filter([]models.RunRecord{unknown, known},
		Constraints{MinSpeed: fptr(0), MinQuality: fptr(0)})
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ModelName)
}
