package main

import (
	"fmt"

	"github.com/brayniac/llm-performance/pkg"
)

func main() {
	pkg.InitDB()
	defer pkg.DB.Close()

	fmt.Println("✅ 数据库连接成功！")

	// 试着跑一个简单查询
	var runs int
	err := pkg.DB.Get(&runs, "SELECT COUNT(*) FROM test_runs")
	if err != nil {
		panic(err)
	}
	fmt.Println("test run 总数:", runs)
}
