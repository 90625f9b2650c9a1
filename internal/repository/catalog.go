// Package repository 提供数据访问层
package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/model"
)

// CatalogRepository 班次目录仓储
// 每个组织一份目录，班次与角色配额整体以 JSONB 存储；
// 没有自定义目录的组织回落到内置默认目录
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository 创建目录仓储
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// catalogPayload 目录的持久化形态
type catalogPayload struct {
	Shifts       []model.ShiftType       `json:"shifts"`
	Requirements []model.RoleRequirement `json:"requirements"`
}

// Save 保存组织的班次目录
func (r *CatalogRepository) Save(ctx context.Context, orgID uuid.UUID, catalog *model.Catalog) error {
	payload, err := json.Marshal(catalogPayload{
		Shifts:       catalog.Shifts,
		Requirements: catalog.Requirements,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "序列化班次目录失败")
	}

	query := `
		INSERT INTO shift_catalogs (org_id, catalog, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (org_id) DO UPDATE SET catalog = $2, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, orgID, payload); err != nil {
		return errors.Database("保存班次目录", err)
	}
	return nil
}

// GetByOrg 获取组织的班次目录，未配置时返回默认目录
func (r *CatalogRepository) GetByOrg(ctx context.Context, orgID uuid.UUID) (*model.Catalog, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT catalog FROM shift_catalogs WHERE org_id = $1`, orgID,
	).Scan(&payload)
	if err != nil {
		if isNoRows(err) {
			return model.DefaultCatalog(), nil
		}
		return nil, errors.Database("查询班次目录", err)
	}

	var stored catalogPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidCatalog, "班次目录数据损坏")
	}
	return &model.Catalog{
		Shifts:       stored.Shifts,
		Requirements: stored.Requirements,
	}, nil
}

// Delete 删除组织的自定义目录（回落到默认目录）
func (r *CatalogRepository) Delete(ctx context.Context, orgID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shift_catalogs WHERE org_id = $1`, orgID); err != nil {
		return errors.Database("删除班次目录", err)
	}
	return nil
}
