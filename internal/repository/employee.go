// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/model"
)

// employeeColumns 员工表的查询列
const employeeColumns = `id, org_id, name, code, role, site_id, status,
	monthly_target_hours, overtime_tolerance, max_consecutive_days, min_rest_hours,
	weekend_eligible, holiday_eligible, max_weekends_per_month, created_at, updated_at`

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	query := `
		INSERT INTO employees (
			id, org_id, name, code, role, site_id, status,
			monthly_target_hours, overtime_tolerance, max_consecutive_days, min_rest_hours,
			weekend_eligible, holiday_eligible, max_weekends_per_month, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.OrgID, emp.Name, emp.Code, emp.Role, emp.SiteID, emp.Status,
		emp.MonthlyTargetHours, emp.OvertimeTolerance, emp.MaxConsecutiveDays, emp.MinRestHours,
		emp.WeekendEligible, emp.HolidayEligible, emp.MaxWeekendsPerMonth, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return errors.Database("创建员工", err)
	}
	return nil
}

// GetByID 根据ID获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1 AND deleted_at IS NULL`, employeeColumns)
	return r.scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode 根据组织和工号获取员工
func (r *EmployeeRepository) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*model.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE org_id = $1 AND code = $2 AND deleted_at IS NULL`, employeeColumns)
	return r.scanEmployee(r.db.QueryRowContext(ctx, query, orgID, code))
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	query := `
		UPDATE employees SET
			name = $2, code = $3, role = $4, site_id = $5, status = $6,
			monthly_target_hours = $7, overtime_tolerance = $8,
			max_consecutive_days = $9, min_rest_hours = $10,
			weekend_eligible = $11, holiday_eligible = $12, max_weekends_per_month = $13,
			updated_at = $14
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Code, emp.Role, emp.SiteID, emp.Status,
		emp.MonthlyTargetHours, emp.OvertimeTolerance,
		emp.MaxConsecutiveDays, emp.MinRestHours,
		emp.WeekendEligible, emp.HolidayEligible, emp.MaxWeekendsPerMonth,
		emp.UpdatedAt,
	)
	if err != nil {
		return errors.Database("更新员工", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return errors.Database("删除员工", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.OrgID != nil {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", argIndex))
		args = append(args, *filter.OrgID)
		argIndex++
	}
	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", argIndex))
		args = append(args, filter.SiteID)
		argIndex++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, filter.Role)
		argIndex++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Database("查询员工总数", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		employeeColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Database("查询员工列表", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}
	return employees, total, nil
}

// ListActive 获取组织下所有在职员工（排班运行的花名册来源）
func (r *EmployeeRepository) ListActive(ctx context.Context, orgID uuid.UUID) ([]*model.Employee, error) {
	filter := DefaultListFilter().WithOrgID(orgID).WithStatus("active").WithLimit(10000)
	employees, _, err := r.List(ctx, filter)
	return employees, err
}

// scanEmployee 扫描单行员工数据
func (r *EmployeeRepository) scanEmployee(row *sql.Row) (*model.Employee, error) {
	emp, err := scanEmployeeFields(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Database("扫描员工数据", err)
	}
	return emp, nil
}

// scanRow 扫描Rows中的员工数据
func (r *EmployeeRepository) scanRow(rows *sql.Rows) (*model.Employee, error) {
	emp, err := scanEmployeeFields(rows)
	if err != nil {
		return nil, errors.Database("扫描员工数据", err)
	}
	return emp, nil
}

// scanEmployeeFields 按 employeeColumns 的列序扫描
func scanEmployeeFields(s Scanner) (*model.Employee, error) {
	emp := &model.Employee{}
	err := s.Scan(
		&emp.ID, &emp.OrgID, &emp.Name, &emp.Code, &emp.Role, &emp.SiteID, &emp.Status,
		&emp.MonthlyTargetHours, &emp.OvertimeTolerance, &emp.MaxConsecutiveDays, &emp.MinRestHours,
		&emp.WeekendEligible, &emp.HolidayEligible, &emp.MaxWeekendsPerMonth, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return emp, nil
}
