// Package perf 是纯计算核心：硬件分类、量化归一、聚合、过滤、排序、热力图。
// 不做任何 I/O，所有函数只依赖入参快照。
package perf

import (
	"strings"

	"github.com/brayniac/llm-performance/internal/models"
)

// 分类规则按顺序匹配，第一条命中即返回。
// 规则独立成表方便单测和扩展，避免散落的 if 分支。
var datacenterGpuPatterns = []string{"A100", "H100", "L4", "L40", "V100", "T4"}
var consumerGpuPatterns = []string{"RTX", "GTX"}
var datacenterCpuPatterns = []string{"Xeon", "EPYC"}

// Classify 把原始 (gpu_model, cpu 字符串) 映射到四类硬件之一。
// 对任意输入（含空串）都有确定结果，未识别的 GPU 归为 consumer_gpu。
func Classify(gpuModel, cpuArch string) models.HardwareCategory {
	for _, p := range datacenterGpuPatterns {
		if strings.Contains(gpuModel, p) {
			return models.DatacenterGPU
		}
	}
	for _, p := range consumerGpuPatterns {
		if strings.Contains(gpuModel, p) {
			return models.ConsumerGPU
		}
	}
	if gpuModel == "CPU Only" || gpuModel == "N/A" || strings.HasPrefix(gpuModel, "CPU") {
		for _, p := range datacenterCpuPatterns {
			if strings.Contains(cpuArch, p) {
				return models.DatacenterCPU
			}
		}
		return models.ConsumerCPU
	}
	return models.ConsumerGPU
}

// IsPlaceholderHardware 识别 benchmark-only 的占位硬件行，分组视图里跳过
func IsPlaceholderHardware(gpuModel, cpuModel string) bool {
	for _, s := range []string{gpuModel, cpuModel} {
		if strings.Contains(s, "Generic") || strings.Contains(s, "Benchmark Only") {
			return true
		}
	}
	return false
}
