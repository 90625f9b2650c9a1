// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/scheduler"
)

// PlanRecord 月度计划的持久化形态
// 计划本体、约束报告与统计以 JSONB 存储，查询按组织与周期
type PlanRecord struct {
	ID        uuid.UUID             `json:"id"`
	OrgID     uuid.UUID             `json:"org_id"`
	Year      int                   `json:"year"`
	Month     time.Month            `json:"month"`
	Score     float64               `json:"score"`
	Coverage  float64               `json:"coverage"`
	Success   bool                  `json:"success"`
	Result    *scheduler.PlanResult `json:"result"`
	CreatedAt time.Time             `json:"created_at"`
}

// PlanRepository 月度计划仓储
type PlanRepository struct {
	db DB
}

// NewPlanRepository 创建计划仓储
func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save 保存一次排班运行的结果
// 同一组织同一周期重复排班时覆盖旧记录
func (r *PlanRepository) Save(ctx context.Context, orgID uuid.UUID, result *scheduler.PlanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "序列化排班结果失败")
	}

	query := `
		INSERT INTO month_plans (id, org_id, year, month, score, coverage, success, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (org_id, year, month)
		DO UPDATE SET id = $1, score = $5, coverage = $6, success = $7, result = $8, created_at = $9
	`

	_, err = r.db.ExecContext(ctx, query,
		result.Plan.ID, orgID, result.Plan.Year, int(result.Plan.Month),
		result.Report.Score, result.Statistics.CoveragePercent, result.Success,
		payload, time.Now(),
	)
	if err != nil {
		return errors.Database("保存月度计划", err)
	}
	return nil
}

// GetByPeriod 获取组织某周期的计划
func (r *PlanRepository) GetByPeriod(ctx context.Context, orgID uuid.UUID, year int, month time.Month) (*PlanRecord, error) {
	query := `
		SELECT id, org_id, year, month, score, coverage, success, result, created_at
		FROM month_plans
		WHERE org_id = $1 AND year = $2 AND month = $3
	`
	return r.scanPlan(r.db.QueryRowContext(ctx, query, orgID, year, int(month)))
}

// GetByID 根据计划ID获取
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*PlanRecord, error) {
	query := `
		SELECT id, org_id, year, month, score, coverage, success, result, created_at
		FROM month_plans
		WHERE id = $1
	`
	return r.scanPlan(r.db.QueryRowContext(ctx, query, id))
}

// ListByOrg 按组织列出最近的计划
func (r *PlanRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*PlanRecord, error) {
	if limit <= 0 {
		limit = 12
	}
	query := `
		SELECT id, org_id, year, month, score, coverage, success, result, created_at
		FROM month_plans
		WHERE org_id = $1
		ORDER BY year DESC, month DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, errors.Database("查询计划列表", err)
	}
	defer rows.Close()

	var records []*PlanRecord
	for rows.Next() {
		record, err := scanPlanFields(rows)
		if err != nil {
			return nil, errors.Database("扫描计划数据", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete 删除计划
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM month_plans WHERE id = $1`, id)
	if err != nil {
		return errors.Database("删除计划", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// scanPlan 扫描单行计划数据
func (r *PlanRepository) scanPlan(row *sql.Row) (*PlanRecord, error) {
	record, err := scanPlanFields(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Database("扫描计划数据", err)
	}
	return record, nil
}

// scanPlanFields 按固定列序扫描
func scanPlanFields(s Scanner) (*PlanRecord, error) {
	record := &PlanRecord{}
	var month int
	var payload []byte

	err := s.Scan(
		&record.ID, &record.OrgID, &record.Year, &month,
		&record.Score, &record.Coverage, &record.Success,
		&payload, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Month = time.Month(month)
	if len(payload) > 0 {
		record.Result = &scheduler.PlanResult{}
		if err := json.Unmarshal(payload, record.Result); err != nil {
			return nil, err
		}
	}
	return record, nil
}
