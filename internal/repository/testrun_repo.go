package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/brayniac/llm-performance/internal/models"
	"github.com/brayniac/llm-performance/pkg"
)

// ErrNotFound 查询对象不存在
var ErrNotFound = errors.New("not found")

// FetchRunRecords 取所有 completed 的 test run，连同硬件信息和
// 透视出来的三个核心指标。质量分数不在这里查（见 quality_repo），
// 两个域在内存里按变体键连接。
func FetchRunRecords(ctx context.Context) ([]models.RunRecord, error) {
	query := `
		SELECT
			tr.id,
			tr.model_name,
			tr.quantization,
			tr.lora_adapter,
			tr.backend,
			tr.concurrent_requests,
			tr.max_context_length,
			tr.load_pattern,
			tr.dataset_name,
			tr.gpu_power_limit_watts,
			tr.timestamp,
			hp.gpu_model,
			hp.cpu_model,
			hp.cpu_arch,
			CONCAT(hp.gpu_model, ' / ', hp.cpu_model) AS hardware,
			pm_speed.value  AS tokens_per_second,
			pm_memory.value AS memory_gb,
			pm_power.value  AS gpu_power_watts
		FROM test_runs tr
		JOIN hardware_profiles hp ON tr.hardware_profile_id = hp.id
		LEFT JOIN performance_metrics pm_speed ON pm_speed.test_run_id = tr.id
			AND pm_speed.metric_name = 'tokens_per_second'
		LEFT JOIN performance_metrics pm_memory ON pm_memory.test_run_id = tr.id
			AND pm_memory.metric_name = 'memory_usage_gb'
		LEFT JOIN performance_metrics pm_power ON pm_power.test_run_id = tr.id
			AND pm_power.metric_name = 'gpu_power_watts'
		WHERE tr.status = 'completed'
		ORDER BY tr.model_name, tr.timestamp DESC
	`

	rows, err := pkg.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		var speed, memory, power sql.NullFloat64
		var conc, maxCtx, powerLimit sql.NullInt64
		var loadPattern, datasetName sql.NullString

		if err := rows.Scan(
			&r.ID,
			&r.ModelName,
			&r.Quantization,
			&r.LoraAdapter,
			&r.Backend,
			&conc,
			&maxCtx,
			&loadPattern,
			&datasetName,
			&powerLimit,
			&r.Timestamp,
			&r.GpuModel,
			&r.CpuModel,
			&r.CpuArch,
			&r.Hardware,
			&speed,
			&memory,
			&power,
		); err != nil {
			return nil, err
		}

		r.TokensPerSecond = nullFloat(speed)
		r.MemoryGB = nullFloat(memory)
		r.GpuPowerWatts = nullFloat(power)
		r.ConcurrentRequests = nullInt(conc)
		r.MaxContextLength = nullInt(maxCtx)
		r.LoadPattern = nullString(loadPattern)
		r.DatasetName = nullString(datasetName)

		records = append(records, r)
	}
	return records, rows.Err()
}

// GetTestRun 按 ID 取单条 run 及其硬件档案
func GetTestRun(ctx context.Context, id uuid.UUID) (*models.TestRun, *models.HardwareProfile, error) {
	var tr models.TestRun
	err := pkg.DB.GetContext(ctx, &tr, `
		SELECT id, model_name, quantization, lora_adapter, backend, backend_version,
		       hardware_profile_id, concurrent_requests, max_context_length,
		       load_pattern, dataset_name, gpu_power_limit_watts, status, timestamp
		FROM test_runs
		WHERE id = $1 AND status = 'completed'
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var hp models.HardwareProfile
	row := pkg.DB.QueryRowContext(ctx, `
		SELECT id, gpu_model, gpu_memory_gb, cpu_model, cpu_arch,
		       ram_gb, ram_type, virtualization_type, optimizations
		FROM hardware_profiles
		WHERE id = $1
	`, tr.HardwareProfileID)
	err = row.Scan(&hp.ID, &hp.GpuModel, &hp.GpuMemoryGB, &hp.CpuModel, &hp.CpuArch,
		&hp.RamGB, &hp.RamType, &hp.VirtualizationType, pq.Array(&hp.Optimizations))
	if err != nil {
		return nil, nil, err
	}
	return &tr, &hp, nil
}

// GetMetrics 取一条 run 的全部性能指标
func GetMetrics(ctx context.Context, id uuid.UUID) (map[string]float64, error) {
	rows, err := pkg.DB.QueryContext(ctx,
		`SELECT metric_name, value FROM performance_metrics WHERE test_run_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metrics[name] = value
	}
	return metrics, rows.Err()
}

// FetchAnalysisRows 取某个模型+GPU 组合下每个
// (backend, quantization, power_limit, concurrency) 的聚合指标。
// 同一配置多次跑的 run 会被合并：速度取 MAX，延迟类取 MIN，功率取 AVG。
func FetchAnalysisRows(ctx context.Context, modelName, gpuModel string) ([]models.AnalysisRow, error) {
	query := `
		SELECT
			tr.backend,
			tr.quantization,
			tr.gpu_power_limit_watts,
			tr.concurrent_requests,
			MAX(pm_speed.value) AS tokens_per_second,
			MIN(pm_ttft.value)  AS ttft,
			MIN(pm_tpot.value)  AS tpot,
			MIN(pm_itl.value)   AS itl,
			AVG(pm_power.value) AS gpu_power_watts
		FROM test_runs tr
		JOIN hardware_profiles hp ON tr.hardware_profile_id = hp.id
		LEFT JOIN performance_metrics pm_speed ON pm_speed.test_run_id = tr.id
			AND pm_speed.metric_name = 'tokens_per_second'
		LEFT JOIN performance_metrics pm_ttft ON pm_ttft.test_run_id = tr.id
			AND pm_ttft.metric_name = 'ttft_p95_ms'
		LEFT JOIN performance_metrics pm_tpot ON pm_tpot.test_run_id = tr.id
			AND pm_tpot.metric_name = 'tpot_p95_ms'
		LEFT JOIN performance_metrics pm_itl ON pm_itl.test_run_id = tr.id
			AND pm_itl.metric_name = 'itl_p95_ms'
		LEFT JOIN performance_metrics pm_power ON pm_power.test_run_id = tr.id
			AND pm_power.metric_name = 'gpu_power_watts'
		WHERE tr.model_name = $1
			AND hp.gpu_model = $2
			AND tr.status = 'completed'
		GROUP BY tr.backend, tr.quantization, tr.gpu_power_limit_watts, tr.concurrent_requests
	`

	rows, err := pkg.DB.QueryContext(ctx, query, modelName, gpuModel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.AnalysisRow
	for rows.Next() {
		var a models.AnalysisRow
		var powerLimit, conc sql.NullInt64
		var speed, ttft, tpot, itl, power sql.NullFloat64

		if err := rows.Scan(&a.Backend, &a.Quantization, &powerLimit, &conc,
			&speed, &ttft, &tpot, &itl, &power); err != nil {
			return nil, err
		}
		a.GpuPowerLimitWatts = nullInt(powerLimit)
		a.ConcurrentRequests = nullInt(conc)
		a.TokensPerSecond = nullFloat(speed)
		a.TtftMs = nullFloat(ttft)
		a.TpotMs = nullFloat(tpot)
		a.ItlMs = nullFloat(itl)
		a.GpuPowerWatts = nullFloat(power)
		result = append(result, a)
	}
	return result, rows.Err()
}

// ListConfigurations 配置列表，backend / 硬件关键字为可选过滤。
// 动态条件用 squirrel 拼，占位符不用手数
func ListConfigurations(ctx context.Context, backend, hardware string) ([]models.ConfigurationSummary, error) {
	builder := sq.Select(
		"tr.id",
		"tr.model_name",
		"tr.quantization",
		"tr.lora_adapter",
		"tr.backend",
		"CONCAT(hp.gpu_model, ' / ', hp.cpu_arch) AS hardware_summary",
		"tr.timestamp",
		"tr.status",
	).
		From("test_runs tr").
		Join("hardware_profiles hp ON tr.hardware_profile_id = hp.id").
		Where(sq.Eq{"tr.status": "completed"}).
		OrderBy("tr.timestamp DESC").
		PlaceholderFormat(sq.Dollar)

	if backend != "" {
		builder = builder.Where(sq.Eq{"tr.backend": backend})
	}
	if hardware != "" {
		pattern := fmt.Sprint("%", hardware, "%")
		builder = builder.Where(sq.Or{
			sq.Like{"hp.gpu_model": pattern},
			sq.Like{"hp.cpu_arch": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := pkg.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.ConfigurationSummary
	for rows.Next() {
		var c models.ConfigurationSummary
		if err := rows.Scan(&c.ID, &c.ModelName, &c.Quantization, &c.LoraAdapter,
			&c.Backend, &c.HardwareSummary, &c.Timestamp, &c.Status); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
