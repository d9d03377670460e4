package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/repository"
)

// DELETE /api/delete/:id
func DeleteConfiguration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "配置 ID 无效"})
		return
	}

	err = repository.DeleteTestRun(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "配置不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	log.Infof("🗑️ 已删除配置 %s", id)
	c.JSON(http.StatusOK, models.DeleteResponse{
		Success:   true,
		Message:   "配置已删除",
		DeletedID: id.String(),
	})
}

// POST /api/delete-by-model
// 批量删除一个模型（可限定量化）的全部数据
func DeleteByModel(c *gin.Context) {
	var req models.DeleteByModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体无效: " + err.Error()})
		return
	}

	deleted, err := repository.DeleteByModel(c.Request.Context(), req.ModelName, req.Quantization)
	if err != nil {
		c.JSON(http.StatusInternalServerError, storeError(err))
		return
	}

	scope := req.ModelName
	if req.Quantization != "" {
		scope += " (" + req.Quantization + ")"
	}
	log.Infof("🗑️ 按模型删除 %s，共 %d 条 run", scope, deleted)
	c.JSON(http.StatusOK, models.DeleteResponse{
		Success: true,
		Message: fmt.Sprintf("已删除 %s 的 %d 条测试数据", scope, deleted),
		Deleted: deleted,
	})
}
