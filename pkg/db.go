package pkg

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var DB *sqlx.DB

// InitDB 初始化全局连接池，配置来自环境变量（viper 读取）
func InitDB() {
	viper.AutomaticEnv()
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)

	dsn := viper.GetString("DATABASE_URL")
	if dsn == "" {
		log.Fatal("❌ DATABASE_URL 未设置")
	}

	var err error
	DB, err = sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}

	// 连接池上限，聚合查询之外没有长事务，保持小池子即可
	DB.SetMaxOpenConns(viper.GetInt("DB_MAX_OPEN_CONNS"))
	DB.SetMaxIdleConns(viper.GetInt("DB_MAX_IDLE_CONNS"))
	DB.SetConnMaxLifetime(30 * time.Minute)

	log.Println("✅ 数据库连接成功")
}
