package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/brayniac/llm-performance/internal/handler"
	"github.com/brayniac/llm-performance/pkg"
)

func main() {
	// 加载.env 文件
	err := godotenv.Load()
	if err != nil {
		log.Warn("⚠️ .env 文件未找到，尝试使用系统环境变量")
	}

	// 初始化数据库连接池
	pkg.InitDB()

	r := gin.Default()
	// 模型名里带 "/"（如 meta-llama/Llama-3-8B）时必须用原始路径匹配，
	// 参数在 handler 里自行解码
	r.UseRawPath = true

	// 查询
	r.GET("/api/grouped-performance", handler.GetGroupedPerformance)
	r.GET("/api/configurations", handler.GetConfigurations)
	r.GET("/api/detail/:id", handler.GetDetail)
	r.GET("/api/analysis/:model/:gpu", handler.GetModelHardwareAnalysis)
	r.GET("/api/comparison", handler.GetComparison)

	// 上传
	r.POST("/api/upload-experiment", handler.UploadExperiment)
	r.POST("/api/upload-benchmarks", handler.UploadBenchmarks)

	// 删除与管理
	r.DELETE("/api/delete/:id", handler.DeleteConfiguration)
	r.POST("/api/delete-by-model", handler.DeleteByModel)
	r.POST("/api/admin/merge-quantizations", handler.MergeQuantizations)

	r.GET("/health", func(c *gin.Context) {
		if err := pkg.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	viper.SetDefault("LISTEN_ADDR", ":8080")
	addr := viper.GetString("LISTEN_ADDR")
	log.Infof("🚀 服务器启动: %s", addr)
	r.Run(addr)
}
