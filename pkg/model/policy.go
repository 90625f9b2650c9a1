// Package model 定义排班引擎的核心数据模型
package model

// RulePolicy 规则参数
// 由外部规则协作方提供，排班运行期间只读
type RulePolicy struct {
	OvertimeTolerance   float64       `json:"overtime_tolerance"`    // 月工时上浮系数，默认 1.2
	WeeklyFlexibility   float64       `json:"weekly_flexibility"`    // 周工时上浮系数，默认 1.3
	MaxConsecutiveDays  int           `json:"max_consecutive_days"`  // 员工未指定时的兜底值
	WeekendCapPerMonth  int           `json:"weekend_cap_per_month"` // 每月周末班上限，默认 2
	WeekendMode         WeekendMode   `json:"weekend_mode"`
	WorkloadWarnPercent float64       `json:"workload_warn_percent"` // 工作量预警阈值，默认 120
	MaxPlanningAttempts int           `json:"max_planning_attempts"` // 单日最大尝试次数（含宽松重试）
	SaturdayQuota       SaturdayQuota `json:"saturday_quota"`
}

// DefaultRulePolicy 返回默认规则参数
func DefaultRulePolicy() *RulePolicy {
	return &RulePolicy{
		OvertimeTolerance:   DefaultOvertimeTolerance,
		WeeklyFlexibility:   1.3,
		MaxConsecutiveDays:  6,
		WeekendCapPerMonth:  2,
		WeekendMode:         WeekendFair,
		WorkloadWarnPercent: 120,
		MaxPlanningAttempts: 2,
		SaturdayQuota:       DefaultSaturdayQuota(),
	}
}

// Normalize 将零值字段填充为默认值
func (p *RulePolicy) Normalize() {
	def := DefaultRulePolicy()
	if p.OvertimeTolerance <= 0 {
		p.OvertimeTolerance = def.OvertimeTolerance
	}
	if p.WeeklyFlexibility <= 0 {
		p.WeeklyFlexibility = def.WeeklyFlexibility
	}
	if p.MaxConsecutiveDays <= 0 {
		p.MaxConsecutiveDays = def.MaxConsecutiveDays
	}
	if p.WeekendCapPerMonth <= 0 {
		p.WeekendCapPerMonth = def.WeekendCapPerMonth
	}
	if p.WeekendMode == "" {
		p.WeekendMode = def.WeekendMode
	}
	if p.WorkloadWarnPercent <= 0 {
		p.WorkloadWarnPercent = def.WorkloadWarnPercent
	}
	if p.MaxPlanningAttempts <= 0 {
		p.MaxPlanningAttempts = def.MaxPlanningAttempts
	}
	if p.SaturdayQuota == (SaturdayQuota{}) {
		p.SaturdayQuota = def.SaturdayQuota
	}
}
