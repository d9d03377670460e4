package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/perf"
	"github.com/brayniac/llm-performance/internal/repository"
)

// POST /api/upload-experiment
func UploadExperiment(c *gin.Context) {
	var req models.UploadExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.UploadExperimentResponse{
			Success: false,
			Error:   "请求体无效: " + err.Error(),
		})
		return
	}

	var warnings []string
	if len(req.Metrics) == 0 {
		warnings = append(warnings, "未提供任何性能指标")
	}
	if canonical := perf.CanonicalQuant(req.Quantization); canonical != req.Quantization {
		warnings = append(warnings, fmt.Sprintf("量化名 %q 已归一为 %q", req.Quantization, canonical))
	}

	runID, err := repository.InsertExperiment(c.Request.Context(), req)
	if err != nil {
		log.Errorf("❌ 实验入库失败: %v", err)
		c.JSON(http.StatusInternalServerError, models.UploadExperimentResponse{
			Success: false,
			Error:   "实验入库失败: " + err.Error(),
		})
		return
	}

	log.Infof("✅ 实验已入库: %s %s @ %s (run %s)",
		req.ModelName, req.Quantization, req.Hardware.GpuModel, runID)
	c.JSON(http.StatusOK, models.UploadExperimentResponse{
		Success:   true,
		TestRunID: &runID,
		Warnings:  warnings,
	})
}

// POST /api/upload-benchmarks
func UploadBenchmarks(c *gin.Context) {
	var req models.UploadBenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体无效: " + err.Error()})
		return
	}
	if len(req.Scores) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scores 不能为空"})
		return
	}
	for _, s := range req.Scores {
		if s.Benchmark == "mmlu" && s.Category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mmlu 分数必须带 category"})
			return
		}
	}

	variantID, uploaded, err := repository.InsertBenchmarkScores(c.Request.Context(), req)
	if err != nil {
		log.Errorf("❌ 质量分数入库失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "质量分数入库失败: " + err.Error()})
		return
	}

	log.Infof("✅ 质量分数已入库: %s %s，共 %d 条", req.ModelName, req.Quantization, uploaded)
	c.JSON(http.StatusOK, models.UploadBenchmarkResponse{
		Success:        true,
		ModelVariantID: &variantID,
		Message:        fmt.Sprintf("已上传 %d 条分数", uploaded),
		ScoresUploaded: uploaded,
	})
}
