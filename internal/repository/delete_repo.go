package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/brayniac/llm-performance/pkg"
)

// DeleteTestRun 删除单条 run 及其指标，单事务
func DeleteTestRun(ctx context.Context, id uuid.UUID) error {
	tx, err := pkg.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM test_runs WHERE id = $1`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// 外键有 CASCADE，显式删一遍指标是为了行为不依赖建表细节
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM performance_metrics WHERE test_run_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM test_runs WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteByModel 删除一个模型（可限定量化）的全部 run、变体和质量分数。
// 返回删掉的 test run 条数
func DeleteByModel(ctx context.Context, modelName, quantization string) (int, error) {
	tx, err := pkg.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	cond := ` WHERE model_name = $1`
	args := []interface{}{modelName}
	if quantization != "" {
		cond += ` AND quantization = $2`
		args = append(args, quantization)
	}
	runQuery := `DELETE FROM test_runs` + cond
	variantQuery := `DELETE FROM model_variants` + cond

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM performance_metrics WHERE test_run_id IN (
			SELECT id FROM test_runs`+cond+`
		)`, args...); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, runQuery, args...)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()

	// 变体删掉后，各分数表靠 ON DELETE CASCADE 跟着清
	if _, err := tx.ExecContext(ctx, variantQuery, args...); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(deleted), nil
}
