package models

import (
	"time"

	"github.com/google/uuid"
)

// 对外 API 的响应结构
// quality_score / tokens_per_kwh 等可缺失字段用指针，JSON 里渲染成 null，
// 前端据此显示 "Unknown" 而不是 0.0

type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ConfigPerformance 一条 test run 在某硬件下的表现（分组视图里的 best_config）
type ConfigPerformance struct {
	ID                 uuid.UUID        `json:"id"`
	Quantization       string           `json:"quantization"`
	LoraAdapter        string           `json:"lora_adapter"`
	QualityScore       *float64         `json:"quality_score"`
	TokensPerSecond    *float64         `json:"tokens_per_second"`
	MemoryGB           *float64         `json:"memory_gb"`
	TokensPerKwh       *float64         `json:"tokens_per_kwh,omitempty"`
	GpuPowerWatts      *float64         `json:"gpu_power_watts,omitempty"`
	Backend            string           `json:"backend"`
	Hardware           string           `json:"hardware"`
	HardwareCategory   HardwareCategory `json:"hardware_category"`
	ConcurrentRequests *int             `json:"concurrent_requests,omitempty"`
	MaxContextLength   *int             `json:"max_context_length,omitempty"`
	LoadPattern        *string          `json:"load_pattern,omitempty"`
	DatasetName        *string          `json:"dataset_name,omitempty"`
	GpuPowerLimitWatts *int             `json:"gpu_power_limit_watts,omitempty"`
	Timestamp          time.Time        `json:"timestamp"`
}

// HardwarePlatformPerformance 一个模型在单个硬件平台上的最优配置
type HardwarePlatformPerformance struct {
	Hardware         string            `json:"hardware"`
	HardwareCategory HardwareCategory  `json:"hardware_category"`
	BestConfig       ConfigPerformance `json:"best_config"`
	TotalConfigs     int               `json:"total_configs"`
}

// ModelPerformanceGroup 分组视图的顶层条目：模型 → 最优平台
type ModelPerformanceGroup struct {
	ModelName              string                        `json:"model_name"`
	BestHardware           HardwarePlatformPerformance   `json:"best_hardware"`
	TotalHardwarePlatforms int                           `json:"total_hardware_platforms"`
	QualifyingPlatforms    int                           `json:"qualifying_platforms"`
	AllHardwarePlatforms   []HardwarePlatformPerformance `json:"all_hardware_platforms"`
}

type GroupedPerformanceResponse struct {
	Models        []ModelPerformanceGroup `json:"models"`
	TotalCount    int                     `json:"total_count"`
	BenchmarkUsed string                  `json:"benchmark_used"`
}

// ConfigurationSummary 配置列表条目
type ConfigurationSummary struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ModelName       string    `db:"model_name" json:"model_name"`
	Quantization    string    `db:"quantization" json:"quantization"`
	LoraAdapter     string    `db:"lora_adapter" json:"lora_adapter"`
	Backend         string    `db:"backend" json:"backend"`
	HardwareSummary string    `db:"hardware_summary" json:"hardware_summary"`
	OverallScore    *float64  `db:"overall_score" json:"overall_score"`
	Timestamp       time.Time `db:"timestamp" json:"timestamp"`
	Status          string    `db:"status" json:"status"`
}

type ConfigurationListResponse struct {
	Configurations []ConfigurationSummary `json:"configurations"`
	TotalCount     int                    `json:"total_count"`
}

// CategoryScore 质量基准里单个类目的得分
type CategoryScore struct {
	Name           string   `json:"name"`
	Score          float64  `json:"score"`
	TotalQuestions *int     `json:"total_questions,omitempty"`
	CorrectAnswers *int     `json:"correct_answers,omitempty"`
}

// DetailResponse 单个配置的详情
type DetailResponse struct {
	TestRun         TestRun            `json:"test_run"`
	HardwareProfile HardwareProfile    `json:"hardware_profile"`
	Metrics         map[string]float64 `json:"metrics"`
	OverallScore    *float64           `json:"overall_score"`
	Categories      []CategoryScore    `json:"categories"`
}

// ComparisonSide 对比视图的一侧
type ComparisonSide struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	ModelName    string             `json:"model_name"`
	Quantization string             `json:"quantization"`
	Backend      string             `json:"backend"`
	Hardware     string             `json:"hardware"`
	OverallScore *float64           `json:"overall_score"`
	Metrics      map[string]float64 `json:"metrics"`
}

type CategoryComparison struct {
	Name   string   `json:"name"`
	ScoreA *float64 `json:"score_a"`
	ScoreB *float64 `json:"score_b"`
}

type ComparisonResponse struct {
	ConfigA    ComparisonSide       `json:"config_a"`
	ConfigB    ComparisonSide       `json:"config_b"`
	Categories []CategoryComparison `json:"categories"`
}

// QuantizationSummary 模型+硬件分析视图里单个 (backend, quantization) 的汇总
type QuantizationSummary struct {
	Quantization       string             `json:"quantization"`
	Backend            string             `json:"backend"`
	BestSpeed          *float64           `json:"best_speed"`
	BestTtft           *float64           `json:"best_ttft,omitempty"`
	BestTokensPerKwh   *float64           `json:"best_tokens_per_kwh,omitempty"`
	QualityScore       *float64           `json:"quality_score"`
	ConfigurationCount int                `json:"configuration_count"`
	CategoryScores     map[string]float64 `json:"category_scores"`
}

type BackendGroup struct {
	Backend       string                `json:"backend"`
	Quantizations []QuantizationSummary `json:"quantizations"`
}

// HeatmapCells 嵌套结构：backend||quant → power_limit → concurrency → 值
type HeatmapCells map[string]map[int]map[int]float64

// ScaleRange 多个量化面板共用的色阶范围
type ScaleRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type HeatmapData struct {
	Quantizations      []string              `json:"quantizations"`
	PowerLimits        []int                 `json:"power_limits"`
	ConcurrentRequests []int                 `json:"concurrent_requests"`
	SpeedData          HeatmapCells          `json:"speed_data"`
	TtftData           HeatmapCells          `json:"ttft_data"`
	TpotData           HeatmapCells          `json:"tpot_data"`
	ItlData            HeatmapCells          `json:"itl_data"`
	EfficiencyData     HeatmapCells          `json:"efficiency_data"`
	Scales             map[string]ScaleRange `json:"scales"`
}

// AnalysisResponse 模型+硬件的分析载荷
type AnalysisResponse struct {
	ModelName           string                `json:"model_name"`
	GpuModel            string                `json:"gpu_model"`
	TotalConfigurations int                   `json:"total_configurations"`
	Backends            []BackendGroup        `json:"backends"`
	Quantizations       []QuantizationSummary `json:"quantizations"`
	HeatmapData         HeatmapData           `json:"heatmap_data"`
}

// UploadExperimentResponse / UploadBenchmarkResponse 上传接口的返回
type UploadExperimentResponse struct {
	Success   bool       `json:"success"`
	TestRunID *uuid.UUID `json:"test_run_id,omitempty"`
	Error     string     `json:"error,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

type UploadBenchmarkResponse struct {
	Success        bool       `json:"success"`
	ModelVariantID *uuid.UUID `json:"model_variant_id,omitempty"`
	Message        string     `json:"message"`
	ScoresUploaded int        `json:"scores_uploaded"`
}

type DeleteResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	DeletedID string `json:"deleted_id,omitempty"`
	Deleted   int    `json:"deleted,omitempty"`
}

// MergeResponse merge-quantizations 管理操作的返回
type MergeResponse struct {
	Success        bool     `json:"success"`
	MergedVariants int      `json:"merged_variants"`
	Details        []string `json:"details,omitempty"`
}
