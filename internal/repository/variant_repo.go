package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/perf"
	"github.com/brayniac/llm-performance/pkg"
)

// ListVariants 取全部模型变体
func ListVariants(ctx context.Context) ([]models.ModelVariant, error) {
	var variants []models.ModelVariant
	err := pkg.DB.SelectContext(ctx, &variants, `
		SELECT id, model_name, quantization, lora_adapter, created_at, updated_at
		FROM model_variants
		ORDER BY model_name, quantization, lora_adapter
	`)
	return variants, err
}

// UpsertVariant 按逻辑键找或建变体，返回 ID
func UpsertVariant(ctx context.Context, tx *sqlx.Tx, key models.VariantKey) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `
		INSERT INTO model_variants (model_name, quantization, lora_adapter)
		VALUES ($1, $2, $3)
		ON CONFLICT (model_name, quantization, lora_adapter)
		DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, key.ModelName, key.Quantization, key.LoraAdapter).Scan(&id)
	return id, err
}

// 质量分数表和各自的"同类目冲突"判定条件，合并变体时逐表搬分数
var scoreTables = []struct {
	name     string
	conflict string // target 侧已有同类分数的判定，TRUE = 每变体至多一行
}{
	{"mmlu_scores", "t.category = s.category"},
	{"gsm8k_scores", "TRUE"},
	{"humaneval_scores", "TRUE"},
	{"hellaswag_scores", "TRUE"},
	{"truthfulqa_scores", "TRUE"},
	{"generic_benchmark_scores", "t.benchmark_name = s.benchmark_name"},
}

// MergeDuplicateQuants 管理操作：把 "Q4_K_M-GGUF" 这类带冗余后缀的变体
// 合并进规范变体。整个操作跑在一个事务里，中途失败全部回滚。
// 冲突按 insert-or-ignore 处理：target 已有同类分数时保留 target 的，
// source 的丢弃。执行两遍是 no-op（第二遍的合并计划为空）。
func MergeDuplicateQuants(ctx context.Context) (int, []string, error) {
	variants, err := ListVariants(ctx)
	if err != nil {
		return 0, nil, err
	}
	steps := perf.PlanMerge(variants)
	if len(steps) == 0 {
		return 0, nil, nil
	}

	tx, err := pkg.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	var details []string
	for _, step := range steps {
		src := step.Source
		if step.Target == nil {
			// 规范变体不存在：直接把 source 改名，分数跟着走
			if _, err := tx.ExecContext(ctx, `
				UPDATE model_variants SET quantization = $1, updated_at = NOW() WHERE id = $2
			`, step.CanonicalQuant, src.ID); err != nil {
				return 0, nil, err
			}
		} else {
			// 逐表把分数改挂到 target，target 已有的类目不动
			for _, tbl := range scoreTables {
				reassign := fmt.Sprintf(`
					UPDATE %s s SET model_variant_id = $1
					WHERE s.model_variant_id = $2
					  AND NOT EXISTS (
						SELECT 1 FROM %s t WHERE t.model_variant_id = $1 AND %s
					  )`, tbl.name, tbl.name, tbl.conflict)
				if _, err := tx.ExecContext(ctx, reassign, step.Target.ID, src.ID); err != nil {
					return 0, nil, err
				}
				// 留在 source 上的都是冲突行，按约定丢弃
				drop := fmt.Sprintf(`DELETE FROM %s WHERE model_variant_id = $1`, tbl.name)
				if _, err := tx.ExecContext(ctx, drop, src.ID); err != nil {
					return 0, nil, err
				}
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM model_variants WHERE id = $1`, src.ID); err != nil {
				return 0, nil, err
			}
		}

		// test run 上的量化字段同步归一，分组视图才会收敛到一个量化
		if _, err := tx.ExecContext(ctx, `
			UPDATE test_runs SET quantization = $1
			WHERE model_name = $2 AND quantization = $3 AND lora_adapter = $4
		`, step.CanonicalQuant, src.ModelName, src.Quantization, src.LoraAdapter); err != nil {
			return 0, nil, err
		}

		details = append(details, fmt.Sprintf("%s: %s -> %s",
			src.ModelName, src.Quantization, step.CanonicalQuant))
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}
	log.Infof("🔧 合并了 %d 个重复量化变体", len(steps))
	return len(steps), details, nil
}
