package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/internal/perf"
	"github.com/brayniac/llm-performance/pkg"
)

// InsertExperiment 入库一次性能实验：硬件档案复用或新建、变体 upsert、
// test run + 指标写入，全部在一个事务里
func InsertExperiment(ctx context.Context, req models.UploadExperimentRequest) (uuid.UUID, error) {
	quant := perf.CanonicalQuant(req.Quantization)

	tx, err := pkg.DB.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	// 硬件档案不可变，完全相同的配置直接复用
	hw := req.Hardware
	var hwID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM hardware_profiles
		WHERE gpu_model = $1 AND gpu_memory_gb = $2 AND cpu_model = $3 AND cpu_arch = $4
		  AND ram_gb IS NOT DISTINCT FROM $5
		  AND ram_type IS NOT DISTINCT FROM $6
		  AND virtualization_type IS NOT DISTINCT FROM $7
		  AND optimizations = $8
		LIMIT 1
	`, hw.GpuModel, hw.GpuMemoryGB, hw.CpuModel, hw.CpuArch,
		hw.RamGB, hw.RamType, hw.VirtualizationType, pq.Array(hw.Optimizations)).Scan(&hwID)
	if err == sql.ErrNoRows {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO hardware_profiles
				(gpu_model, gpu_memory_gb, cpu_model, cpu_arch, ram_gb, ram_type, virtualization_type, optimizations)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, hw.GpuModel, hw.GpuMemoryGB, hw.CpuModel, hw.CpuArch,
			hw.RamGB, hw.RamType, hw.VirtualizationType, pq.Array(hw.Optimizations)).Scan(&hwID)
	}
	if err != nil {
		return uuid.Nil, err
	}

	key := models.VariantKey{ModelName: req.ModelName, Quantization: quant, LoraAdapter: req.LoraAdapter}
	if _, err := UpsertVariant(ctx, tx, key); err != nil {
		return uuid.Nil, err
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	var runID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO test_runs
			(model_name, quantization, lora_adapter, backend, backend_version,
			 hardware_profile_id, concurrent_requests, max_context_length,
			 load_pattern, dataset_name, gpu_power_limit_watts, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'completed', $12)
		RETURNING id
	`, req.ModelName, quant, req.LoraAdapter, req.Backend, req.BackendVersion,
		hwID, req.ConcurrentRequests, req.MaxContextLength,
		req.LoadPattern, req.DatasetName, req.GpuPowerLimitWatts, ts).Scan(&runID)
	if err != nil {
		return uuid.Nil, err
	}

	for _, m := range req.Metrics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO performance_metrics (test_run_id, metric_name, value, unit)
			VALUES ($1, $2, $3, $4)
		`, runID, m.MetricName, m.Value, m.Unit); err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return runID, nil
}

// InsertBenchmarkScores 入库质量分数。同一变体同一基准重传时整体替换：
// 先删旧行再插新行，单事务保证不会出现新旧混杂
func InsertBenchmarkScores(ctx context.Context, req models.UploadBenchmarkRequest) (uuid.UUID, int, error) {
	quant := perf.CanonicalQuant(req.Quantization)

	tx, err := pkg.DB.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, 0, err
	}
	defer tx.Rollback()

	key := models.VariantKey{ModelName: req.ModelName, Quantization: quant, LoraAdapter: req.LoraAdapter}
	variantID, err := UpsertVariant(ctx, tx, key)
	if err != nil {
		return uuid.Nil, 0, err
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	// 本次上传涉及到的基准先清空旧分数
	cleared := make(map[string]bool)
	clearQueries := map[string]string{
		"mmlu":       `DELETE FROM mmlu_scores WHERE model_variant_id = $1`,
		"gsm8k":      `DELETE FROM gsm8k_scores WHERE model_variant_id = $1`,
		"humaneval":  `DELETE FROM humaneval_scores WHERE model_variant_id = $1`,
		"hellaswag":  `DELETE FROM hellaswag_scores WHERE model_variant_id = $1`,
		"truthfulqa": `DELETE FROM truthfulqa_scores WHERE model_variant_id = $1`,
	}

	uploaded := 0
	for _, score := range req.Scores {
		if q, ok := clearQueries[score.Benchmark]; ok && !cleared[score.Benchmark] {
			if _, err := tx.ExecContext(ctx, q, variantID); err != nil {
				return uuid.Nil, 0, err
			}
			cleared[score.Benchmark] = true
		}

		switch score.Benchmark {
		case "mmlu":
			_, err = tx.ExecContext(ctx, `
				INSERT INTO mmlu_scores (model_variant_id, category, score, total_questions, correct_answers, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, variantID, score.Category, score.Score, score.TotalQuestions, score.CorrectAnswers, ts)
		case "gsm8k":
			_, err = tx.ExecContext(ctx, `
				INSERT INTO gsm8k_scores (model_variant_id, accuracy, total_problems, timestamp)
				VALUES ($1, $2, $3, $4)
			`, variantID, score.Score, score.TotalQuestions, ts)
		case "humaneval":
			_, err = tx.ExecContext(ctx, `
				INSERT INTO humaneval_scores (model_variant_id, pass_at_1, total_problems, timestamp)
				VALUES ($1, $2, $3, $4)
			`, variantID, score.Score, score.TotalQuestions, ts)
		case "hellaswag":
			_, err = tx.ExecContext(ctx, `
				INSERT INTO hellaswag_scores (model_variant_id, accuracy, total_questions, correct_answers, timestamp)
				VALUES ($1, $2, $3, $4, $5)
			`, variantID, score.Score, score.TotalQuestions, score.CorrectAnswers, ts)
		case "truthfulqa":
			_, err = tx.ExecContext(ctx, `
				INSERT INTO truthfulqa_scores (model_variant_id, truthful_score, total_questions, timestamp)
				VALUES ($1, $2, $3, $4)
			`, variantID, score.Score, score.TotalQuestions, ts)
		default:
			// 未知基准落 generic 表，同名覆盖
			_, err = tx.ExecContext(ctx, `
				INSERT INTO generic_benchmark_scores
					(model_variant_id, benchmark_name, score, total_questions, correct_answers, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (model_variant_id, benchmark_name)
				DO UPDATE SET score = EXCLUDED.score, timestamp = EXCLUDED.timestamp
			`, variantID, score.Benchmark, score.Score, score.TotalQuestions, score.CorrectAnswers, ts)
		}
		if err != nil {
			return uuid.Nil, 0, err
		}
		uploaded++
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, 0, err
	}
	return variantID, uploaded, nil
}
