package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/perf"
	"github.com/brayniac/llm-performance/internal/repository"
)

// GET /api/analysis/:model/:gpu?lora=
// 模型+硬件分析：按 (backend, quantization) 的最优统计 + 热力图载荷。
// 热力图各指标的色阶是所有量化面板共用的全局范围
func GetModelHardwareAnalysis(c *gin.Context) {
	modelName, err := url.PathUnescape(c.Param("model"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "模型名编码无效"})
		return
	}
	gpuModel, err := url.PathUnescape(c.Param("gpu"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "GPU 名编码无效"})
		return
	}
	lora := c.Query("lora")

	ctx := c.Request.Context()
	rows, err := repository.FetchAnalysisRows(ctx, modelName, gpuModel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "该模型+硬件组合没有测试数据"})
		return
	}

	categoryScores, err := repository.GetCategoryScoreMap(ctx, modelName, lora)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	summaries := perf.BuildQuantSummaries(rows, categoryScores)
	c.JSON(http.StatusOK, models.AnalysisResponse{
		ModelName:           modelName,
		GpuModel:            gpuModel,
		TotalConfigurations: len(rows),
		Backends:            perf.GroupByBackend(summaries),
		Quantizations:       summaries,
		HeatmapData:         perf.BuildHeatmap(rows),
	})
}
