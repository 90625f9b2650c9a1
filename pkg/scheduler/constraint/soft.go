// Package constraint 提供排班规则的定义、校验与评分
package constraint

import (
	"fmt"

	"github.com/yuepai/yuepai/pkg/model"
)

// WeeklyHoursRule 周工时软约束
// 投影周工时不宜超过周目标 × 弹性系数（默认 1.3）
type WeeklyHoursRule struct {
	*BaseRule
}

// NewWeeklyHoursRule 创建周工时约束
func NewWeeklyHoursRule() *WeeklyHoursRule {
	return &WeeklyHoursRule{NewBaseRule(CodeWeeklyHours, "周工时弹性上限", CategorySoft)}
}

// Check 校验候选分配
func (r *WeeklyHoursRule) Check(ctx *Context, c *Candidate) (bool, string) {
	if c.Employee.MonthlyTargetHours <= 0 {
		return true, ""
	}
	record := ctx.Tracker.Record(c.Employee.ID)
	if record == nil {
		return true, ""
	}
	limit := c.Employee.WeeklyTargetHours() * ctx.Policy.WeeklyFlexibility
	if projected := record.WeekHours + c.Shift.DurationHours; projected > limit {
		return false, fmt.Sprintf("员工 %s 投影周工时 %.1f 小时，超过弹性上限 %.1f 小时",
			c.Employee.Name, projected, limit)
	}
	return true, ""
}

// ShiftRepetitionRule 班次多样性软约束
// 不鼓励连续分配相同班次
type ShiftRepetitionRule struct {
	*BaseRule
}

// NewShiftRepetitionRule 创建班次多样性约束
func NewShiftRepetitionRule() *ShiftRepetitionRule {
	return &ShiftRepetitionRule{NewBaseRule(CodeShiftRepetition, "班次多样性", CategorySoft)}
}

// Check 校验候选分配
func (r *ShiftRepetitionRule) Check(ctx *Context, c *Candidate) (bool, string) {
	record := ctx.Tracker.Record(c.Employee.ID)
	if record == nil {
		return true, ""
	}
	if last := record.LastShift(); last != "" && last == c.Shift.Code {
		return false, fmt.Sprintf("员工 %s 上一班次同为 %s", c.Employee.Name, c.Shift.Code)
	}
	return true, ""
}

// WeekendCapRule 周末频次约束
// 类别由周末分配模式决定：strict 为硬约束，fair 为软约束，flexible 仅提示
type WeekendCapRule struct {
	*BaseRule
}

// NewWeekendCapRule 按周末模式创建周末频次约束
func NewWeekendCapRule(mode model.WeekendMode) *WeekendCapRule {
	category := CategorySoft
	switch mode {
	case model.WeekendStrict:
		category = CategoryHard
	case model.WeekendFlexible:
		category = CategoryWarn
	}
	return &WeekendCapRule{NewBaseRule(CodeWeekendCap, "周末频次上限", category)}
}

// cap 返回员工的周末月上限
func (r *WeekendCapRule) cap(ctx *Context, emp *model.Employee) int {
	if emp.MaxWeekendsPerMonth > 0 {
		return emp.MaxWeekendsPerMonth
	}
	return ctx.Policy.WeekendCapPerMonth
}

// Check 校验候选分配
func (r *WeekendCapRule) Check(ctx *Context, c *Candidate) (bool, string) {
	if !c.Weekend || r.Category() == CategoryWarn {
		return true, ""
	}
	record := ctx.Tracker.Record(c.Employee.ID)
	if record == nil {
		return true, ""
	}
	if cap := r.cap(ctx, c.Employee); record.WeekendDays+1 > cap {
		return false, fmt.Sprintf("员工 %s 本月周末班将达 %d 次，超过上限 %d 次",
			c.Employee.Name, record.WeekendDays+1, cap)
	}
	return true, ""
}

// Inspect 评估完成的计划
func (r *WeekendCapRule) Inspect(ctx *Context, plan *model.MonthPlan) []Violation {
	var violations []Violation
	for _, emp := range ctx.Employees {
		record := ctx.Tracker.Record(emp.ID)
		if record == nil {
			continue
		}
		if cap := r.cap(ctx, emp); record.WeekendDays > cap {
			violations = append(violations, r.violation(emp.ID, "", "",
				fmt.Sprintf("员工 %s 本月周末班 %d 次，超过上限 %d 次", emp.Name, record.WeekendDays, cap)))
		}
	}
	return violations
}

// WorkloadRule 工作量软约束
// 工作量已超过预警线的员工不宜继续加班
type WorkloadRule struct {
	*BaseRule
}

// NewWorkloadRule 创建工作量约束
func NewWorkloadRule() *WorkloadRule {
	return &WorkloadRule{NewBaseRule(CodeWorkload, "工作量均衡", CategorySoft)}
}

// Check 校验候选分配
func (r *WorkloadRule) Check(ctx *Context, c *Candidate) (bool, string) {
	if workload := ctx.Tracker.WorkloadPercent(c.Employee.ID); workload > ctx.Policy.WorkloadWarnPercent {
		return false, fmt.Sprintf("员工 %s 工作量已达 %.0f%%，超过预警线 %.0f%%",
			c.Employee.Name, workload, ctx.Policy.WorkloadWarnPercent)
	}
	return true, ""
}

// DefaultRules 按策略组装全部内置规则
// 硬约束在前，与管理器的门控顺序一致
func DefaultRules(policy *model.RulePolicy) []Rule {
	return []Rule{
		NewRoleCompatRule(),
		NewDoubleBookingRule(),
		NewConsecutiveDaysRule(),
		NewMonthlyHoursRule(),
		NewWeekendEligibleRule(),
		NewRoleRequirementRule(),
		NewWeeklyHoursRule(),
		NewShiftRepetitionRule(),
		NewWeekendCapRule(policy.WeekendMode),
		NewWorkloadRule(),
	}
}
