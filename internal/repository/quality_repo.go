package repository

import (
	"context"
	"database/sql"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/pkg"
)

// 各基准测试的"代表分"查询：每个变体恰好解析出一个数。
// mmlu 取类目平均，gsm8k 的 accuracy 换算成百分制，其余直接取表里的主指标
var qualityQueries = map[string]string{
	"mmlu": `
		SELECT mv.model_name, mv.quantization, mv.lora_adapter, AVG(ms.score)
		FROM mmlu_scores ms
		JOIN model_variants mv ON ms.model_variant_id = mv.id
		GROUP BY mv.model_name, mv.quantization, mv.lora_adapter`,
	"gsm8k": `
		SELECT mv.model_name, mv.quantization, mv.lora_adapter, gs.accuracy * 100
		FROM gsm8k_scores gs
		JOIN model_variants mv ON gs.model_variant_id = mv.id`,
	"humaneval": `
		SELECT mv.model_name, mv.quantization, mv.lora_adapter, hs.pass_at_1
		FROM humaneval_scores hs
		JOIN model_variants mv ON hs.model_variant_id = mv.id`,
	"hellaswag": `
		SELECT mv.model_name, mv.quantization, mv.lora_adapter, hs.accuracy
		FROM hellaswag_scores hs
		JOIN model_variants mv ON hs.model_variant_id = mv.id`,
	"truthfulqa": `
		SELECT mv.model_name, mv.quantization, mv.lora_adapter, ts.truthful_score
		FROM truthfulqa_scores ts
		JOIN model_variants mv ON ts.model_variant_id = mv.id`,
}

// KnownBenchmark 判断 benchmark 选择器是否是已知基准
func KnownBenchmark(name string) bool {
	_, ok := qualityQueries[name]
	return ok
}

// FetchQualityScores 一次查出所选基准下所有变体的质量分数。
// 聚合引擎拿这张 map 按变体键连接，绝不会对单条 run 重复查询，
// 同一变体在响应里的分数天然一致。benchmark 为 "none" 时返回空 map。
func FetchQualityScores(ctx context.Context, benchmark string) (map[models.VariantKey]float64, error) {
	scores := make(map[models.VariantKey]float64)
	query, ok := qualityQueries[benchmark]
	if !ok {
		return scores, nil
	}

	rows, err := pkg.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key models.VariantKey
		var score sql.NullFloat64
		if err := rows.Scan(&key.ModelName, &key.Quantization, &key.LoraAdapter, &score); err != nil {
			return nil, err
		}
		if score.Valid {
			scores[key] = score.Float64
		}
	}
	return scores, rows.Err()
}

// GetCategoryScores 单个变体的逐类目质量分数（详情页和对比页用）。
// MMLU 按类目展开，其余基准各贡献一条汇总行，generic 用自己的名字。
func GetCategoryScores(ctx context.Context, key models.VariantKey) ([]models.CategoryScore, error) {
	var categories []models.CategoryScore

	rows, err := pkg.DB.QueryContext(ctx, `
		SELECT ms.category, ms.score, ms.total_questions, ms.correct_answers
		FROM mmlu_scores ms
		JOIN model_variants mv ON ms.model_variant_id = mv.id
		WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3
		ORDER BY ms.category
	`, key.ModelName, key.Quantization, key.LoraAdapter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.CategoryScore
		var total, correct sql.NullInt64
		if err := rows.Scan(&c.Name, &c.Score, &total, &correct); err != nil {
			return nil, err
		}
		c.Name = "MMLU - " + c.Name
		c.TotalQuestions = nullInt(total)
		c.CorrectAnswers = nullInt(correct)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 其它基准每个变体至多一行
	singles := []struct {
		name  string
		query string
	}{
		{"GSM8K", `SELECT gs.accuracy * 100 FROM gsm8k_scores gs
			JOIN model_variants mv ON gs.model_variant_id = mv.id
			WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3`},
		{"HumanEval", `SELECT hs.pass_at_1 FROM humaneval_scores hs
			JOIN model_variants mv ON hs.model_variant_id = mv.id
			WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3`},
		{"HellaSwag", `SELECT hs.accuracy FROM hellaswag_scores hs
			JOIN model_variants mv ON hs.model_variant_id = mv.id
			WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3`},
		{"TruthfulQA", `SELECT ts.truthful_score FROM truthfulqa_scores ts
			JOIN model_variants mv ON ts.model_variant_id = mv.id
			WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3`},
	}
	for _, s := range singles {
		var score float64
		err := pkg.DB.QueryRowContext(ctx, s.query,
			key.ModelName, key.Quantization, key.LoraAdapter).Scan(&score)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		categories = append(categories, models.CategoryScore{Name: s.name, Score: score})
	}

	rows, err = pkg.DB.QueryContext(ctx, `
		SELECT gb.benchmark_name, gb.score, gb.total_questions, gb.correct_answers
		FROM generic_benchmark_scores gb
		JOIN model_variants mv ON gb.model_variant_id = mv.id
		WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3
		ORDER BY gb.benchmark_name
	`, key.ModelName, key.Quantization, key.LoraAdapter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.CategoryScore
		var total, correct sql.NullInt64
		if err := rows.Scan(&c.Name, &c.Score, &total, &correct); err != nil {
			return nil, err
		}
		c.TotalQuestions = nullInt(total)
		c.CorrectAnswers = nullInt(correct)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryScoreMap 某模型（可选 LoRA）在指定量化集合下的
// MMLU 类目分数，按量化标签索引，分析视图用
func GetCategoryScoreMap(ctx context.Context, modelName, loraAdapter string) (map[string]map[string]float64, error) {
	rows, err := pkg.DB.QueryContext(ctx, `
		SELECT mv.quantization, ms.category, AVG(ms.score)
		FROM mmlu_scores ms
		JOIN model_variants mv ON ms.model_variant_id = mv.id
		WHERE mv.model_name = $1 AND mv.lora_adapter = $2
		GROUP BY mv.quantization, ms.category
	`, modelName, loraAdapter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]map[string]float64)
	for rows.Next() {
		var quant, category string
		var score float64
		if err := rows.Scan(&quant, &category, &score); err != nil {
			return nil, err
		}
		if result[quant] == nil {
			result[quant] = make(map[string]float64)
		}
		result[quant][category] = score
	}
	return result, rows.Err()
}

// GetOverallScore 变体的总体分（MMLU 类目平均），没有分数时返回 nil
func GetOverallScore(ctx context.Context, key models.VariantKey) (*float64, error) {
	var score sql.NullFloat64
	err := pkg.DB.QueryRowContext(ctx, `
		SELECT AVG(ms.score)
		FROM mmlu_scores ms
		JOIN model_variants mv ON ms.model_variant_id = mv.id
		WHERE mv.model_name = $1 AND mv.quantization = $2 AND mv.lora_adapter = $3
	`, key.ModelName, key.Quantization, key.LoraAdapter).Scan(&score)
	if err != nil {
		return nil, err
	}
	return nullFloat(score), nil
}
