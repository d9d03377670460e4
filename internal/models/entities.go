package models

import (
	"time"

	"github.com/google/uuid"
)

// HardwareCategory 硬件分类，由 GPU/CPU 字符串推导
type HardwareCategory string

const (
	ConsumerGPU   HardwareCategory = "consumer_gpu"
	DatacenterGPU HardwareCategory = "datacenter_gpu"
	ConsumerCPU   HardwareCategory = "consumer_cpu"
	DatacenterCPU HardwareCategory = "datacenter_cpu"
)

// ValidHardwareCategory 判断过滤参数里的 category token 是否合法
func ValidHardwareCategory(s string) bool {
	switch HardwareCategory(s) {
	case ConsumerGPU, DatacenterGPU, ConsumerCPU, DatacenterCPU:
		return true
	}
	return false
}

// VariantKey 模型变体的逻辑主键 (model_name, quantization, lora_adapter)
type VariantKey struct {
	ModelName    string
	Quantization string
	LoraAdapter  string
}

type ModelVariant struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ModelName    string    `db:"model_name" json:"model_name"`
	Quantization string    `db:"quantization" json:"quantization"`
	LoraAdapter  string    `db:"lora_adapter" json:"lora_adapter"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Key 返回变体的逻辑主键
func (v ModelVariant) Key() VariantKey {
	return VariantKey{v.ModelName, v.Quantization, v.LoraAdapter}
}

type HardwareProfile struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	GpuModel           string    `db:"gpu_model" json:"gpu_model"`
	GpuMemoryGB        int       `db:"gpu_memory_gb" json:"gpu_memory_gb"`
	CpuModel           string    `db:"cpu_model" json:"cpu_model"`
	CpuArch            string    `db:"cpu_arch" json:"cpu_arch"`
	RamGB              *int      `db:"ram_gb" json:"ram_gb,omitempty"`
	RamType            *string   `db:"ram_type" json:"ram_type,omitempty"`
	VirtualizationType *string   `db:"virtualization_type" json:"virtualization_type,omitempty"`
	Optimizations      []string  `db:"-" json:"optimizations"`
}

type TestRun struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	ModelName          string    `db:"model_name" json:"model_name"`
	Quantization       string    `db:"quantization" json:"quantization"`
	LoraAdapter        string    `db:"lora_adapter" json:"lora_adapter"`
	Backend            string    `db:"backend" json:"backend"`
	BackendVersion     string    `db:"backend_version" json:"backend_version"`
	HardwareProfileID  uuid.UUID `db:"hardware_profile_id" json:"hardware_profile_id"`
	ConcurrentRequests *int      `db:"concurrent_requests" json:"concurrent_requests,omitempty"`
	MaxContextLength   *int      `db:"max_context_length" json:"max_context_length,omitempty"`
	LoadPattern        *string   `db:"load_pattern" json:"load_pattern,omitempty"`
	DatasetName        *string   `db:"dataset_name" json:"dataset_name,omitempty"`
	GpuPowerLimitWatts *int      `db:"gpu_power_limit_watts" json:"gpu_power_limit_watts,omitempty"`
	Status             string    `db:"status" json:"status"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
}

type PerformanceMetric struct {
	TestRunID  uuid.UUID `db:"test_run_id" json:"test_run_id"`
	MetricName string    `db:"metric_name" json:"metric_name"`
	Value      float64   `db:"value" json:"value"`
	Unit       string    `db:"unit" json:"unit"`
}

// RunRecord 是聚合引擎的输入行：一条 test run 连同硬件信息、
// 展开的性能指标和按变体解析好的质量分数。
// 未上传的数值一律用 nil 表示 unknown，不用 0 兜底。
type RunRecord struct {
	ID                 uuid.UUID
	ModelName          string
	Quantization       string
	LoraAdapter        string
	Backend            string
	GpuModel           string
	CpuModel           string
	CpuArch            string
	Hardware           string // "gpu_model / cpu_model" 展示标签
	TokensPerSecond    *float64
	MemoryGB           *float64
	GpuPowerWatts      *float64
	QualityScore       *float64
	ConcurrentRequests *int
	MaxContextLength   *int
	LoadPattern        *string
	DatasetName        *string
	GpuPowerLimitWatts *int
	Timestamp          time.Time
}

// AnalysisRow 模型+硬件分析的输入：每个
// (backend, quantization, power_limit, concurrency) 组合聚合后的一行
type AnalysisRow struct {
	Backend            string
	Quantization       string
	GpuPowerLimitWatts *int
	ConcurrentRequests *int
	TokensPerSecond    *float64
	TtftMs             *float64
	TpotMs             *float64
	ItlMs              *float64
	GpuPowerWatts      *float64
}

