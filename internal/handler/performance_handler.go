package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/perf"
	"github.com/brayniac/llm-performance/internal/repository"
)

// GET /api/grouped-performance
// 分组视图：模型 → 最优硬件平台 → 最优配置。
// 参数校验全部在查库之前，不合法直接 400
func GetGroupedPerformance(c *gin.Context) {
	ctx := c.Request.Context()

	benchmark := c.DefaultQuery("benchmark", "none")
	if benchmark != "none" && !repository.KnownBenchmark(benchmark) {
		// 未知基准不报错，回退到无质量分模式
		log.Warnf("⚠️ 未知 benchmark %q，按 none 处理", benchmark)
		benchmark = "none"
	}

	var constraints perf.Constraints
	var err error
	if constraints.MinQuality, err = floatParam(c, "min_quality"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_quality 参数无效"})
		return
	}
	if constraints.MinSpeed, err = floatParam(c, "min_speed"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_speed 参数无效"})
		return
	}
	if constraints.MaxMemoryGB, err = floatParam(c, "max_memory_gb"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_memory_gb 参数无效"})
		return
	}

	if raw := c.Query("hardware_categories"); raw != "" {
		constraints.Categories = make(map[models.HardwareCategory]bool)
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if !models.ValidHardwareCategory(token) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "hardware_categories 含无效分类: " + token})
				return
			}
			constraints.Categories[models.HardwareCategory(token)] = true
		}
	}

	sortBy := c.DefaultQuery("sort_by", perf.SortQuality)
	if !perf.ValidSortBy(sortBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort_by 参数无效"})
		return
	}
	dir := c.Query("sort_direction")
	switch dir {
	case perf.DirAsc, perf.DirDesc:
	case "":
		// 缺省方向：名字和内存升序直观，其余指标大者优
		if sortBy == perf.SortModelName || sortBy == perf.SortMemory {
			dir = perf.DirAsc
		} else {
			dir = perf.DirDesc
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort_direction 只能是 asc 或 desc"})
		return
	}

	runs, err := repository.FetchRunRecords(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}
	scores, err := repository.FetchQualityScores(ctx, benchmark)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	aggregated := perf.Aggregate(runs, scores)
	filtered := perf.Filter(aggregated.Records, constraints)
	groups := perf.Rank(filtered, aggregated.Totals, perf.SortSpec{By: sortBy, Dir: dir})

	c.JSON(http.StatusOK, models.GroupedPerformanceResponse{
		Models:        groups,
		TotalCount:    len(groups),
		BenchmarkUsed: benchmark,
	})
}

// floatParam 解析可选的非负浮点参数，缺省返回 nil
func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}

func storeError(err error) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     "数据库查询失败: " + err.Error(),
		Code:      "store_error",
		Timestamp: time.Now().UTC(),
	}
}
