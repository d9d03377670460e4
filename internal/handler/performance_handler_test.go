package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/brayniac/llm-performance/internal/models"
)

// 参数校验都发生在查库之前，这些用例不需要数据库
func performGet(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/grouped-performance", GetGroupedPerformance)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGroupedPerformanceRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"min_quality 非数字", "/api/grouped-performance?min_quality=abc"},
		{"min_speed 负数", "/api/grouped-performance?min_speed=-5"},
		{"max_memory_gb 非数字", "/api/grouped-performance?max_memory_gb=x"},
		{"未知硬件分类", "/api/grouped-performance?hardware_categories=consumer_gpu,quantum_gpu"},
		{"未知 sort_by", "/api/grouped-performance?sort_by=price"},
		{"未知排序方向", "/api/grouped-performance?sort_direction=sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performGet(t, tt.target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMergeCategories(t *testing.T) {
	a := []models.CategoryScore{
		{Name: "MMLU - STEM", Score: 60},
		{Name: "GSM8K", Score: 40},
	}
	b := []models.CategoryScore{
		{Name: "MMLU - STEM", Score: 65},
	}

	merged := mergeCategories(a, b)
	assert.Len(t, merged, 2)

	// 字典序：GSM8K 在前，只有 A 侧有分
	assert.Equal(t, "GSM8K", merged[0].Name)
	assert.NotNil(t, merged[0].ScoreA)
	assert.Nil(t, merged[0].ScoreB)

	assert.Equal(t, "MMLU - STEM", merged[1].Name)
	assert.Equal(t, 60.0, *merged[1].ScoreA)
	assert.Equal(t, 65.0, *merged[1].ScoreB)
}
