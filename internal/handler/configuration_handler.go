package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/repository"
)

// GET /api/configurations
func GetConfigurations(c *gin.Context) {
	ctx := c.Request.Context()

	configs, err := repository.ListConfigurations(ctx, c.Query("backend"), c.Query("hardware"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	// 总体分按变体解析一次，再分发到各条配置
	scores, err := repository.FetchQualityScores(ctx, "mmlu")
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}
	for i := range configs {
		key := models.VariantKey{
			ModelName:    configs[i].ModelName,
			Quantization: configs[i].Quantization,
			LoraAdapter:  configs[i].LoraAdapter,
		}
		if s, ok := scores[key]; ok {
			v := s
			configs[i].OverallScore = &v
		}
	}

	c.JSON(http.StatusOK, models.ConfigurationListResponse{
		Configurations: configs,
		TotalCount:     len(configs),
	})
}

// GET /api/detail/:id
// 单条配置详情：test run + 硬件档案 + 指标 + 逐类目质量分数
func GetDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "配置 ID 无效"})
		return
	}

	ctx := c.Request.Context()
	run, hw, err := repository.GetTestRun(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "配置不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	metrics, err := repository.GetMetrics(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	key := models.VariantKey{ModelName: run.ModelName, Quantization: run.Quantization, LoraAdapter: run.LoraAdapter}
	categories, err := repository.GetCategoryScores(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}
	overall, err := repository.GetOverallScore(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	c.JSON(http.StatusOK, models.DetailResponse{
		TestRun:         *run,
		HardwareProfile: *hw,
		Metrics:         metrics,
		OverallScore:    overall,
		Categories:      categories,
	})
}
