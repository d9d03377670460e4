package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/repository"
)

// POST /api/admin/merge-quantizations
// 把带 -GGUF 等冗余后缀的量化变体合并进规范变体。
// 没有可合并项时也返回 200，merged_variants 为 0
func MergeQuantizations(c *gin.Context) {
	merged, details, err := repository.MergeDuplicateQuants(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	c.JSON(http.StatusOK, models.MergeResponse{
		Success:        true,
		MergedVariants: merged,
		Details:        details,
	})
}
