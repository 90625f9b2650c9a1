// Package rules 提供规则目录与规则参数预设
// 供API层向规则协作方暴露引擎支持的规则清单
package rules

import (
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
)

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Code        constraint.Code     `json:"code"`
	DisplayName string              `json:"display_name"`
	Category    constraint.Category `json:"category"`
	Severity    int                 `json:"severity"`
	Group       string              `json:"group"` // 分组
	Description string              `json:"description"`
	Params      []RuleParam         `json:"params"`
}

// LibraryResponse 规则目录响应
type LibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// GetLibrary 获取引擎支持的完整规则目录
func GetLibrary() []RuleDefinition {
	return []RuleDefinition{
		// =====================================================
		// 硬约束
		// =====================================================
		{
			Code:        constraint.CodeRoleCompat,
			DisplayName: "角色与班次匹配",
			Category:    constraint.CategoryHard,
			Severity:    constraint.SeverityOf(constraint.CodeRoleCompat),
			Group:       "资质要求",
			Description: "员工只能被分配到其角色允许的班次岗位上。",
			Params:      []RuleParam{},
		},
		{
			Code:        constraint.CodeDoubleBooking,
			DisplayName: "同日单班",
			Category:    constraint.CategoryHard,
			Severity:    constraint.SeverityOf(constraint.CodeDoubleBooking),
			Group:       "时间限制",
			Description: "同一员工同一天最多分配一个班次。",
			Params:      []RuleParam{},
		},
		{
			Code:        constraint.CodeConsecutiveDays,
			DisplayName: "最大连班天数",
			Category:    constraint.CategoryHard,
			Severity:    constraint.SeverityOf(constraint.CodeConsecutiveDays),
			Group:       "休息保障",
			Description: "限制员工连续工作的最大天数，员工档案可覆盖组织兜底值。",
			Params: []RuleParam{
				{Name: "max_consecutive_days", Type: "int", Description: "最大连续天数", Default: "6", Min: "3", Max: "7"},
			},
		},
		{
			Code:        constraint.CodeMonthlyHours,
			DisplayName: "月工时上限",
			Category:    constraint.CategoryHard,
			Severity:    constraint.SeverityOf(constraint.CodeMonthlyHours),
			Group:       "工时限制",
			Description: "员工月累计工时不得超过月目标工时乘以上浮系数。",
			Params: []RuleParam{
				{Name: "overtime_tolerance", Type: "float", Description: "月工时上浮系数", Default: "1.2", Min: "1.0", Max: "1.5"},
			},
		},
		{
			Code:        constraint.CodeWeekendEligible,
			DisplayName: "周末可排资格",
			Category:    constraint.CategoryHard,
			Severity:    constraint.SeverityOf(constraint.CodeWeekendEligible),
			Group:       "资质要求",
			Description: "仅允许周末可排的员工被分配周六班次。",
			Params:      []RuleParam{},
		},
		{
			Code:        constraint.CodeRoleRequirement,
			DisplayName: "角色配额",
			Category:    constraint.CategoryHard,
			Severity:    constraint.SeverityOf(constraint.CodeRoleRequirement),
			Group:       "服务保障",
			Description: "每个班次必须满足各角色的最低人数配额。",
			Params:      []RuleParam{},
		},

		// =====================================================
		// 软约束
		// =====================================================
		{
			Code:        constraint.CodeWeeklyHours,
			DisplayName: "周工时弹性",
			Category:    constraint.CategorySoft,
			Severity:    constraint.SeverityOf(constraint.CodeWeeklyHours),
			Group:       "工时限制",
			Description: "员工周累计工时尽量不超过周目标工时乘以弹性系数。",
			Params: []RuleParam{
				{Name: "weekly_flexibility", Type: "float", Description: "周工时弹性系数", Default: "1.3", Min: "1.0", Max: "2.0"},
			},
		},
		{
			Code:        constraint.CodeShiftRepetition,
			DisplayName: "班次多样性",
			Category:    constraint.CategorySoft,
			Severity:    constraint.SeverityOf(constraint.CodeShiftRepetition),
			Group:       "公平性",
			Description: "避免员工连续多天上相同班次，提高排班多样性。",
			Params:      []RuleParam{},
		},
		{
			Code:        constraint.CodeWeekendCap,
			DisplayName: "周末频次上限",
			Category:    constraint.CategorySoft,
			Severity:    constraint.SeverityOf(constraint.CodeWeekendCap),
			Group:       "公平性",
			Description: "限制员工每月周末班次数，公平模式下升级为硬约束。",
			Params: []RuleParam{
				{Name: "weekend_cap_per_month", Type: "int", Description: "每月周末班上限", Default: "2", Min: "1", Max: "5"},
			},
		},
		{
			Code:        constraint.CodeWorkload,
			DisplayName: "工作量预警",
			Category:    constraint.CategorySoft,
			Severity:    constraint.SeverityOf(constraint.CodeWorkload),
			Group:       "工时限制",
			Description: "员工月工时达到预警线时记罚，提示工作量偏高。",
			Params: []RuleParam{
				{Name: "workload_warn_percent", Type: "float", Description: "预警阈值(百分比)", Default: "120", Min: "100", Max: "150"},
			},
		},

		// =====================================================
		// 提示
		// =====================================================
		{
			Code:        constraint.CodeUnderstaffedWeekend,
			DisplayName: "周六人手不足",
			Category:    constraint.CategoryWarn,
			Severity:    constraint.SeverityOf(constraint.CodeUnderstaffedWeekend),
			Group:       "服务保障",
			Description: "周六班次人数低于固定配额时在评估报告中提示。",
			Params:      []RuleParam{},
		},
		{
			Code:        constraint.CodeUnplannedDay,
			DisplayName: "当日无解",
			Category:    constraint.CategoryWarn,
			Severity:    constraint.SeverityOf(constraint.CodeUnplannedDay),
			Group:       "服务保障",
			Description: "严格与宽松两轮尝试均失败的日期在评估报告中提示。",
			Params:      []RuleParam{},
		},
	}
}

// Preset 规则参数预设
type Preset struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Description string            `json:"description"`
	Policy      *model.RulePolicy `json:"policy"`
}

// GetPresets 获取内置的规则参数预设
func GetPresets() []Preset {
	standard := model.DefaultRulePolicy()

	tight := model.DefaultRulePolicy()
	tight.OvertimeTolerance = 1.1
	tight.WeeklyFlexibility = 1.1
	tight.MaxConsecutiveDays = 5
	tight.WorkloadWarnPercent = 110

	flexible := model.DefaultRulePolicy()
	flexible.OvertimeTolerance = 1.4
	flexible.WeeklyFlexibility = 1.5
	flexible.WeekendCapPerMonth = 3
	flexible.WeekendMode = model.WeekendFlexible
	flexible.WorkloadWarnPercent = 135

	return []Preset{
		{
			Name:        "standard",
			DisplayName: "标准",
			Description: "默认规则参数，适合人员充足的站点。",
			Policy:      standard,
		},
		{
			Name:        "tight",
			DisplayName: "严格",
			Description: "收紧工时与连班限制，优先保障员工休息。",
			Policy:      tight,
		},
		{
			Name:        "flexible",
			DisplayName: "宽松",
			Description: "放宽工时弹性与周末频次，适合人手紧张的站点。",
			Policy:      flexible,
		},
	}
}

// PresetByName 根据名称查找预设，未找到时返回nil
func PresetByName(name string) *Preset {
	for _, p := range GetPresets() {
		if p.Name == name {
			preset := p
			return &preset
		}
	}
	return nil
}
