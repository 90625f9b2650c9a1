// Package constraint 提供排班规则的定义、校验与评分
package constraint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/logger"
	"github.com/yuepai/yuepai/pkg/model"
)

// Manager 规则管理器
type Manager struct {
	rules  []Rule
	mu     sync.RWMutex
	logger *logger.PlannerLogger
}

// NewManager 创建规则管理器
func NewManager() *Manager {
	return &Manager{
		rules:  make([]Rule, 0),
		logger: logger.NewPlannerLogger(),
	}
}

// NewManagerWithDefaults 创建并注册全部内置规则
func NewManagerWithDefaults(policy *model.RulePolicy) *Manager {
	m := NewManager()
	for _, r := range DefaultRules(policy) {
		m.Register(r)
	}
	return m
}

// Register 注册规则（同代码规则替换）
func (m *Manager) Register(r Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.rules {
		if existing.Code() == r.Code() {
			m.rules[i] = r
			return
		}
	}
	m.rules = append(m.rules, r)

	// 硬约束在前，严重度高的在前
	sort.SliceStable(m.rules, func(i, j int) bool {
		ri, rj := m.rules[i], m.rules[j]
		if ri.Category() != rj.Category() {
			return ri.Category() == CategoryHard
		}
		return ri.Severity() > rj.Severity()
	})
}

// Unregister 注销规则
func (m *Manager) Unregister(code Code) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rules {
		if r.Code() == code {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return
		}
	}
}

// GetAll 返回全部规则
func (m *Manager) GetAll() []Rule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Count 返回规则数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// CanAssign 检查候选分配是否可行
// 严格模式下硬软约束同时门控；宽松模式下仅硬约束门控，软约束违反只收集不拦截
func (m *Manager) CanAssign(ctx *Context, c *Candidate, mode Mode) (bool, []Violation) {
	var violations []Violation

	for _, r := range m.GetAll() {
		if r.Category() == CategoryWarn {
			continue
		}
		ok, msg := r.Check(ctx, c)
		if ok {
			continue
		}
		v := Violation{
			Code:       r.Code(),
			RuleName:   r.Name(),
			Category:   r.Category(),
			Severity:   r.Severity(),
			EmployeeID: c.Employee.ID,
			Day:        c.DayKey,
			Shift:      c.Shift.Code,
			Message:    msg,
		}
		violations = append(violations, v)
		m.logger.ConstraintViolation(r.Name(), msg)

		if r.Category() == CategoryHard || mode == ModeStrict {
			return false, violations
		}
	}
	return true, violations
}

// Report 计划评估报告
type Report struct {
	HardViolations []Violation `json:"hard_violations"`
	SoftViolations []Violation `json:"soft_violations"`
	Warnings       []Violation `json:"warnings"`
	Score          float64     `json:"score"` // 0-100
}

// Valid 检查计划是否无硬约束违反
func (r *Report) Valid() bool {
	return len(r.HardViolations) == 0
}

// calculateScore 按严重度加权扣分
// 硬约束 ×10，软约束 ×3，提示 ×1，下限 0
func (r *Report) calculateScore() {
	score := 100.0
	for _, v := range r.HardViolations {
		score -= float64(v.Severity) * 10
	}
	for _, v := range r.SoftViolations {
		score -= float64(v.Severity) * 3
	}
	for _, v := range r.Warnings {
		score -= float64(v.Severity) * 1
	}
	if score < 0 {
		score = 0
	}
	r.Score = score
}

// Score 评估完成的计划
// 对相同输入重复调用返回相同结果
func (m *Manager) Score(ctx *Context, plan *model.MonthPlan) *Report {
	report := &Report{
		HardViolations: make([]Violation, 0),
		SoftViolations: make([]Violation, 0),
		Warnings:       make([]Violation, 0),
	}

	for _, r := range m.GetAll() {
		for _, v := range r.Inspect(ctx, plan) {
			switch v.Category {
			case CategoryHard:
				report.HardViolations = append(report.HardViolations, v)
			case CategorySoft:
				report.SoftViolations = append(report.SoftViolations, v)
			default:
				report.Warnings = append(report.Warnings, v)
			}
		}
	}

	report.Warnings = append(report.Warnings, m.inspectUnplanned(plan)...)
	report.Warnings = append(report.Warnings, m.inspectSaturdays(ctx, plan)...)

	report.calculateScore()
	return report
}

// inspectUnplanned 为每个无解日生成提示
func (m *Manager) inspectUnplanned(plan *model.MonthPlan) []Violation {
	var warnings []Violation
	for _, key := range plan.DayKeys() {
		day := plan.Days[key]
		if day == nil || day.Status != model.DayUnplanned {
			continue
		}
		msg := fmt.Sprintf("%s 无可行排班", key)
		if len(day.FailureReasons) > 0 {
			msg = fmt.Sprintf("%s 无可行排班: %s", key, day.FailureReasons[0])
		}
		warnings = append(warnings, Violation{
			Code:     CodeUnplannedDay,
			RuleName: "当日无解",
			Category: CategoryWarn,
			Severity: SeverityOf(CodeUnplannedDay),
			Day:      key,
			Message:  msg,
		})
	}
	return warnings
}

// inspectSaturdays 检查周六配额缺口
func (m *Manager) inspectSaturdays(ctx *Context, plan *model.MonthPlan) []Violation {
	var warnings []Violation
	quota := ctx.Policy.SaturdayQuota

	for _, key := range plan.DayKeys() {
		if !model.IsSaturday(key) {
			continue
		}
		day := plan.Days[key]
		if day == nil || day.Status != model.DayPlanned {
			continue
		}
		counts := make(map[model.Role]int)
		for _, empID := range day.Shifts[model.SaturdayShiftCode] {
			if emp := ctx.Tracker.Employee(empID); emp != nil {
				counts[emp.Role]++
			}
		}
		for _, role := range model.AllRoles() {
			if need := quota.Count(role); counts[role] < need {
				warnings = append(warnings, Violation{
					Code:     CodeUnderstaffedWeekend,
					RuleName: "周六人手不足",
					Category: CategoryWarn,
					Severity: SeverityOf(CodeUnderstaffedWeekend),
					Day:      key,
					Shift:    model.SaturdayShiftCode,
					Message: fmt.Sprintf("%s 周六角色 %s 仅 %d 人，配额 %d 人",
						key, role, counts[role], need),
				})
			}
		}
	}
	return warnings
}

// ReasonsOf 提取违反消息列表（用于失败原因上报）
func ReasonsOf(violations []Violation) []string {
	reasons := make([]string, 0, len(violations))
	for _, v := range violations {
		reasons = append(reasons, v.Message)
	}
	return reasons
}

// ForEmployee 过滤某员工的违反记录
func ForEmployee(violations []Violation, empID uuid.UUID) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.EmployeeID == empID {
			out = append(out, v)
		}
	}
	return out
}
