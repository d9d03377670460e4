package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/repository"
)

// GET /api/comparison?config_a=&config_b=
// 两个配置并排对比：总体分、指标表、逐类目分数对照
func GetComparison(c *gin.Context) {
	idA, errA := uuid.Parse(c.Query("config_a"))
	idB, errB := uuid.Parse(c.Query("config_b"))
	if errA != nil || errB != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "config_a 和 config_b 必须是合法的配置 ID"})
		return
	}

	ctx := c.Request.Context()
	sideA, catsA, err := loadComparisonSide(ctx, idA)
	if err != nil {
		comparisonError(c, "config_a", err)
		return
	}
	sideB, catsB, err := loadComparisonSide(ctx, idB)
	if err != nil {
		comparisonError(c, "config_b", err)
		return
	}

	c.JSON(http.StatusOK, models.ComparisonResponse{
		ConfigA:    *sideA,
		ConfigB:    *sideB,
		Categories: mergeCategories(catsA, catsB),
	})
}

func loadComparisonSide(ctx context.Context, id uuid.UUID) (*models.ComparisonSide, []models.CategoryScore, error) {
	run, hw, err := repository.GetTestRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	metrics, err := repository.GetMetrics(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	key := models.VariantKey{ModelName: run.ModelName, Quantization: run.Quantization, LoraAdapter: run.LoraAdapter}
	overall, err := repository.GetOverallScore(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	categories, err := repository.GetCategoryScores(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	return &models.ComparisonSide{
		ID:           run.ID,
		Name:         run.ModelName + " (" + run.Quantization + ")",
		ModelName:    run.ModelName,
		Quantization: run.Quantization,
		Backend:      run.Backend,
		Hardware:     hw.GpuModel,
		OverallScore: overall,
		Metrics:      metrics,
	}, categories, nil
}

// mergeCategories 取两侧类目的并集，缺失侧为 null
func mergeCategories(a, b []models.CategoryScore) []models.CategoryComparison {
	byName := make(map[string]*models.CategoryComparison)
	for _, cat := range a {
		s := cat.Score
		byName[cat.Name] = &models.CategoryComparison{Name: cat.Name, ScoreA: &s}
	}
	for _, cat := range b {
		s := cat.Score
		if existing, ok := byName[cat.Name]; ok {
			existing.ScoreB = &s
		} else {
			byName[cat.Name] = &models.CategoryComparison{Name: cat.Name, ScoreB: &s}
		}
	}

	merged := make([]models.CategoryComparison, 0, len(byName))
	for _, cmp := range byName {
		merged = append(merged, *cmp)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged
}

func comparisonError(c *gin.Context, side string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": side + " 对应的配置不存在"})
		return
	}
	c.JSON(http.StatusInternalServerError, storeError(err))
}
