package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brayniac/llm-performance/internal/repository"
	"github.com/brayniac/llm-performance/pkg"
)

// benchctl 数据库维护工具，不经过 HTTP 服务直接操作库
func main() {
	root := &cobra.Command{
		Use:   "benchctl",
		Short: "LLM 性能数据库维护工具",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			pkg.InitDB()
		},
	}

	root.AddCommand(mergeQuantsCmd(), deleteModelCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func mergeQuantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge-quants",
		Short: "合并带 -GGUF 等冗余后缀的量化变体",
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, details, err := repository.MergeDuplicateQuants(context.Background())
			if err != nil {
				return err
			}
			for _, d := range details {
				fmt.Println("  ", d)
			}
			fmt.Printf("✅ 合并了 %d 个变体\n", merged)
			return nil
		},
	}
}

func deleteModelCmd() *cobra.Command {
	var quantization string
	cmd := &cobra.Command{
		Use:   "delete-model <model_name>",
		Short: "删除一个模型（可用 --quantization 限定）的全部测试数据",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := repository.DeleteByModel(context.Background(), args[0], quantization)
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已删除 %d 条 test run\n", deleted)
			return nil
		},
	}
	cmd.Flags().StringVarP(&quantization, "quantization", "q", "", "只删指定量化")
	return cmd
}
