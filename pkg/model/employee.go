// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Employee 员工
// 排班运行期间视为只读，由外部花名册（roster）协作方提供
type Employee struct {
	BaseModel
	OrgID  uuid.UUID `json:"org_id" db:"org_id"`
	Name   string    `json:"name" db:"name"`
	Code   string    `json:"code" db:"code"` // 工号，用于确定性排序
	Role   Role      `json:"role" db:"role"`
	SiteID string    `json:"site_id" db:"site_id"` // 所属站点
	Status string    `json:"status" db:"status"`   // active/inactive/leave

	// 工时约束
	MonthlyTargetHours  float64 `json:"monthly_target_hours" db:"monthly_target_hours"`
	OvertimeTolerance   float64 `json:"overtime_tolerance" db:"overtime_tolerance"` // 月工时上浮系数，0 时取默认 1.2
	MaxConsecutiveDays  int     `json:"max_consecutive_days" db:"max_consecutive_days"`
	MinRestHours        int     `json:"min_rest_hours" db:"min_rest_hours"`
	WeekendEligible     bool    `json:"weekend_eligible" db:"weekend_eligible"`
	HolidayEligible     bool    `json:"holiday_eligible" db:"holiday_eligible"`
	MaxWeekendsPerMonth int     `json:"max_weekends_per_month" db:"max_weekends_per_month"` // 0 时取策略默认值
}

// DefaultOvertimeTolerance 默认月工时上浮系数
const DefaultOvertimeTolerance = 1.2

// IsActive 检查员工是否在职
func (e *Employee) IsActive() bool {
	return e.Status == "active"
}

// OvertimeCeiling 返回月工时硬上限
func (e *Employee) OvertimeCeiling() float64 {
	tolerance := e.OvertimeTolerance
	if tolerance <= 0 {
		tolerance = DefaultOvertimeTolerance
	}
	return e.MonthlyTargetHours * tolerance
}

// WeeklyTargetHours 返回折算后的周目标工时
func (e *Employee) WeeklyTargetHours() float64 {
	// 一个月按 4.33 周折算
	return e.MonthlyTargetHours / 4.33
}

// SortKey 返回确定性排序键（工号优先，UUID 兜底）
func (e *Employee) SortKey() string {
	if e.Code != "" {
		return e.Code
	}
	return e.ID.String()
}
