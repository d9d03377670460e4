package models

import "time"

// 上传接口的请求体。上传端（CLI）负责把 benchmark 工具的原始报告
// 解析成这里的归一化结构，服务端只做校验和入库。

type HardwareSpec struct {
	GpuModel           string   `json:"gpu_model" binding:"required"`
	GpuMemoryGB        int      `json:"gpu_memory_gb"`
	CpuModel           string   `json:"cpu_model" binding:"required"`
	CpuArch            string   `json:"cpu_arch" binding:"required"`
	RamGB              *int     `json:"ram_gb,omitempty"`
	RamType            *string  `json:"ram_type,omitempty"`
	VirtualizationType *string  `json:"virtualization_type,omitempty"`
	Optimizations      []string `json:"optimizations"`
}

type MetricSpec struct {
	MetricName string  `json:"metric_name" binding:"required"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

type UploadExperimentRequest struct {
	ModelName          string       `json:"model_name" binding:"required"`
	Quantization       string       `json:"quantization" binding:"required"`
	LoraAdapter        string       `json:"lora_adapter"`
	Backend            string       `json:"backend" binding:"required"`
	BackendVersion     string       `json:"backend_version"`
	Hardware           HardwareSpec `json:"hardware" binding:"required"`
	ConcurrentRequests *int         `json:"concurrent_requests,omitempty"`
	MaxContextLength   *int         `json:"max_context_length,omitempty"`
	LoadPattern        *string      `json:"load_pattern,omitempty"`
	DatasetName        *string      `json:"dataset_name,omitempty"`
	GpuPowerLimitWatts *int         `json:"gpu_power_limit_watts,omitempty"`
	Metrics            []MetricSpec `json:"metrics"`
	Timestamp          *time.Time   `json:"timestamp,omitempty"`
}

// ScoreUpload 单条质量分数。benchmark 决定落到哪张表：
// mmlu 需要 category，generic 需要 benchmark 自己的名字，其余忽略 category
type ScoreUpload struct {
	Benchmark      string  `json:"benchmark" binding:"required"`
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	TotalQuestions *int    `json:"total_questions,omitempty"`
	CorrectAnswers *int    `json:"correct_answers,omitempty"`
}

type UploadBenchmarkRequest struct {
	ModelName    string        `json:"model_name" binding:"required"`
	Quantization string        `json:"quantization" binding:"required"`
	LoraAdapter  string        `json:"lora_adapter"`
	Scores       []ScoreUpload `json:"scores" binding:"required"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
}

type DeleteByModelRequest struct {
	ModelName    string `json:"model_name" binding:"required"`
	Quantization string `json:"quantization"`
}
