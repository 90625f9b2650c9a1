// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/model"
)

// Organization 组织（护理站点的运营主体）
// 规则参数以 JSONB 随组织存储，排班运行按组织取策略
type Organization struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Policy    *model.RulePolicy `json:"policy,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OrganizationRepository 组织仓储
type OrganizationRepository struct {
	db DB
}

// NewOrganizationRepository 创建组织仓储
func NewOrganizationRepository(db DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create 创建组织
func (r *OrganizationRepository) Create(ctx context.Context, org *Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	if org.Status == "" {
		org.Status = "active"
	}

	policyJSON, err := json.Marshal(org.Policy)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "序列化规则参数失败")
	}

	query := `
		INSERT INTO organizations (id, name, status, policy, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		org.ID, org.Name, org.Status, policyJSON, org.CreatedAt, org.UpdatedAt,
	); err != nil {
		return errors.Database("创建组织", err)
	}
	return nil
}

// GetByID 根据ID获取组织
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	query := `
		SELECT id, name, status, policy, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND deleted_at IS NULL
	`

	org := &Organization{}
	var policyJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Status, &policyJSON, &org.CreatedAt, &org.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Database("查询组织", err)
	}

	if len(policyJSON) > 0 {
		org.Policy = &model.RulePolicy{}
		if err := json.Unmarshal(policyJSON, org.Policy); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "规则参数数据损坏")
		}
	}
	return org, nil
}

// UpdatePolicy 更新组织的规则参数
func (r *OrganizationRepository) UpdatePolicy(ctx context.Context, id uuid.UUID, policy *model.RulePolicy) error {
	policyJSON, err := json.Marshal(policy)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "序列化规则参数失败")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET policy = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`,
		id, policyJSON, time.Now(),
	)
	if err != nil {
		return errors.Database("更新规则参数", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// PolicyOf 获取组织的规则参数，未配置时返回默认值
func (r *OrganizationRepository) PolicyOf(ctx context.Context, id uuid.UUID) (*model.RulePolicy, error) {
	org, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil || org.Policy == nil {
		return model.DefaultRulePolicy(), nil
	}
	org.Policy.Normalize()
	return org.Policy, nil
}
