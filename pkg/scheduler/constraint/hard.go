// Package constraint 提供排班规则的定义、校验与评分
package constraint

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
)

// RoleCompatRule 角色与班次匹配约束
// 员工的角色必须在班次的配额表中出现
type RoleCompatRule struct {
	*BaseRule
}

// NewRoleCompatRule 创建角色匹配约束
func NewRoleCompatRule() *RoleCompatRule {
	return &RoleCompatRule{NewBaseRule(CodeRoleCompat, "角色班次匹配", CategoryHard)}
}

// Check 校验候选分配
func (r *RoleCompatRule) Check(ctx *Context, c *Candidate) (bool, string) {
	if c.Shift.Code == model.SaturdayShiftCode {
		// 周六配额填班对全部角色开放，额度由求解器控制
		return true, ""
	}
	for _, req := range ctx.Catalog.RequirementsFor(c.Shift.Code) {
		if req.Role == c.Employee.Role {
			return true, ""
		}
	}
	return false, fmt.Sprintf("角色 %s 不适用于班次 %s", c.Employee.Role, c.Shift.Code)
}

// DoubleBookingRule 同日重复分配约束
type DoubleBookingRule struct {
	*BaseRule
}

// NewDoubleBookingRule 创建重复分配约束
func NewDoubleBookingRule() *DoubleBookingRule {
	return &DoubleBookingRule{NewBaseRule(CodeDoubleBooking, "同日单班", CategoryHard)}
}

// Check 校验候选分配
func (r *DoubleBookingRule) Check(ctx *Context, c *Candidate) (bool, string) {
	record := ctx.Tracker.Record(c.Employee.ID)
	if record != nil && record.HasDay(c.DayKey) {
		return false, fmt.Sprintf("员工 %s 在 %s 已有班次", c.Employee.Name, c.DayKey)
	}
	return true, ""
}

// Inspect 评估完成的计划
func (r *DoubleBookingRule) Inspect(ctx *Context, plan *model.MonthPlan) []Violation {
	var violations []Violation
	for _, key := range plan.DayKeys() {
		day := plan.Days[key]
		if day == nil || day.Status != model.DayPlanned {
			continue
		}
		seen := make(map[uuid.UUID]bool)
		for shiftCode, assigned := range day.Shifts {
			for _, empID := range assigned {
				if seen[empID] {
					violations = append(violations, r.violation(empID, key, shiftCode,
						fmt.Sprintf("员工在 %s 被重复分配", key)))
				}
				seen[empID] = true
			}
		}
	}
	return violations
}

// ConsecutiveDaysRule 最大连班天数约束
type ConsecutiveDaysRule struct {
	*BaseRule
}

// NewConsecutiveDaysRule 创建连班约束
func NewConsecutiveDaysRule() *ConsecutiveDaysRule {
	return &ConsecutiveDaysRule{NewBaseRule(CodeConsecutiveDays, "最大连班天数", CategoryHard)}
}

// Check 校验候选分配
func (r *ConsecutiveDaysRule) Check(ctx *Context, c *Candidate) (bool, string) {
	limit := c.Employee.MaxConsecutiveDays
	if limit <= 0 {
		limit = ctx.Policy.MaxConsecutiveDays
	}
	record := ctx.Tracker.Record(c.Employee.ID)
	if record == nil {
		return true, ""
	}
	if projected := record.ConsecutiveAround(c.DayKey); projected > limit {
		return false, fmt.Sprintf("员工 %s 将连班 %d 天，超过限制 %d 天", c.Employee.Name, projected, limit)
	}
	return true, ""
}

// MonthlyHoursRule 月工时硬上限约束
// 投影月工时不得超过月目标 × 上浮系数（默认 1.2）
type MonthlyHoursRule struct {
	*BaseRule
}

// NewMonthlyHoursRule 创建月工时约束
func NewMonthlyHoursRule() *MonthlyHoursRule {
	return &MonthlyHoursRule{NewBaseRule(CodeMonthlyHours, "月工时上限", CategoryHard)}
}

// ceiling 计算员工月工时上限（员工自带系数优先）
func (r *MonthlyHoursRule) ceiling(ctx *Context, emp *model.Employee) float64 {
	tolerance := emp.OvertimeTolerance
	if tolerance <= 0 {
		tolerance = ctx.Policy.OvertimeTolerance
	}
	return emp.MonthlyTargetHours * tolerance
}

// Check 校验候选分配
func (r *MonthlyHoursRule) Check(ctx *Context, c *Candidate) (bool, string) {
	record := ctx.Tracker.Record(c.Employee.ID)
	if record == nil || c.Employee.MonthlyTargetHours <= 0 {
		return true, ""
	}
	projected := record.MonthHours + c.Shift.DurationHours
	if limit := r.ceiling(ctx, c.Employee); projected > limit {
		return false, fmt.Sprintf("员工 %s 投影月工时 %.1f 小时，超过上限 %.1f 小时",
			c.Employee.Name, projected, limit)
	}
	return true, ""
}

// Inspect 评估完成的计划
func (r *MonthlyHoursRule) Inspect(ctx *Context, plan *model.MonthPlan) []Violation {
	var violations []Violation
	for _, emp := range ctx.Employees {
		if emp.MonthlyTargetHours <= 0 {
			continue
		}
		record := ctx.Tracker.Record(emp.ID)
		if record == nil {
			continue
		}
		if limit := r.ceiling(ctx, emp); record.MonthHours > limit {
			violations = append(violations, r.violation(emp.ID, "", "",
				fmt.Sprintf("员工 %s 月工时 %.1f 小时，超过上限 %.1f 小时", emp.Name, record.MonthHours, limit)))
		}
	}
	return violations
}

// WeekendEligibleRule 周末可排性约束
type WeekendEligibleRule struct {
	*BaseRule
}

// NewWeekendEligibleRule 创建周末可排性约束
func NewWeekendEligibleRule() *WeekendEligibleRule {
	return &WeekendEligibleRule{NewBaseRule(CodeWeekendEligible, "周末可排性", CategoryHard)}
}

// Check 校验候选分配
func (r *WeekendEligibleRule) Check(ctx *Context, c *Candidate) (bool, string) {
	if c.Weekend && !c.Employee.WeekendEligible {
		return false, fmt.Sprintf("员工 %s 不可排周末班", c.Employee.Name)
	}
	return true, ""
}

// RoleRequirementRule 角色配额约束（仅计划级评估）
// 配额缺口不会被其他角色顶替，只会如实上报
type RoleRequirementRule struct {
	*BaseRule
}

// NewRoleRequirementRule 创建角色配额约束
func NewRoleRequirementRule() *RoleRequirementRule {
	return &RoleRequirementRule{NewBaseRule(CodeRoleRequirement, "角色配额", CategoryHard)}
}

// Inspect 评估完成的计划
// 角色配额按站点独立生效：多站点的工作日并入同一天后，各
// 站点仍须分别满足自己的最少/最多人数，不能互相顶替
func (r *RoleRequirementRule) Inspect(ctx *Context, plan *model.MonthPlan) []Violation {
	sites := rosterSites(ctx.Employees)

	var violations []Violation
	for _, key := range plan.DayKeys() {
		day := plan.Days[key]
		if day == nil || day.Status != model.DayPlanned || model.IsSaturday(key) {
			continue
		}
		for _, shift := range ctx.Catalog.WeekdayShifts() {
			counts := make(map[string]map[model.Role]int)
			for _, empID := range day.Shifts[shift.Code] {
				if emp := ctx.Tracker.Employee(empID); emp != nil {
					if counts[emp.SiteID] == nil {
						counts[emp.SiteID] = make(map[model.Role]int)
					}
					counts[emp.SiteID][emp.Role]++
				}
			}
			for _, site := range sites {
				scope := shift.Code
				if site != "" {
					scope = site + "/" + shift.Code
				}
				for _, req := range ctx.Catalog.RequirementsFor(shift.Code) {
					count := counts[site][req.Role]
					if count < req.Min {
						violations = append(violations, r.violation(uuid.Nil, key, shift.Code,
							fmt.Sprintf("%s 班次 %s 角色 %s 仅 %d 人，低于最少 %d 人",
								key, scope, req.Role, count, req.Min)))
					}
					if req.Max > 0 && count > req.Max {
						violations = append(violations, r.violation(uuid.Nil, key, shift.Code,
							fmt.Sprintf("%s 班次 %s 角色 %s 有 %d 人，超过最多 %d 人",
								key, scope, req.Role, count, req.Max)))
					}
				}
			}
		}
	}
	return violations
}

// rosterSites 返回花名册涉及的站点（确定性顺序）
// 空花名册退化为单一匿名站点，保证配额检查不被跳过
func rosterSites(employees []*model.Employee) []string {
	seen := make(map[string]bool)
	var sites []string
	for _, emp := range employees {
		if !seen[emp.SiteID] {
			seen[emp.SiteID] = true
			sites = append(sites, emp.SiteID)
		}
	}
	if len(sites) == 0 {
		return []string{""}
	}
	sort.Strings(sites)
	return sites
}
