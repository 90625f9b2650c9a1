// Package constraint 提供排班规则的定义、校验与评分
package constraint

import (
	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
)

// Code 规则代码
type Code string

const (
	// 硬约束
	CodeRoleCompat      Code = "ROLE_COMPAT"        // 角色与班次不匹配
	CodeDoubleBooking   Code = "DOUBLE_BOOKING"     // 同日重复分配
	CodeConsecutiveDays Code = "CONSECUTIVE_DAYS"   // 连班超限
	CodeMonthlyHours    Code = "MONTHLY_HOURS"      // 月工时超过目标×上浮系数
	CodeWeekendEligible Code = "WEEKEND_ELIGIBILITY" // 不可排周末
	CodeRoleRequirement Code = "ROLE_REQUIREMENT"   // 角色配额未满足

	// 软约束
	CodeWeeklyHours     Code = "WEEKLY_HOURS"     // 周工时超过目标×弹性系数
	CodeShiftRepetition Code = "SHIFT_REPETITION" // 连续相同班次
	CodeWeekendCap      Code = "WEEKEND_CAP"      // 周末班超过月上限
	CodeWorkload        Code = "WORKLOAD"         // 工作量超过预警线

	// 提示
	CodeUnderstaffedWeekend Code = "UNDERSTAFFED_WEEKEND" // 周六人手不足
	CodeUnplannedDay        Code = "UNPLANNED_DAY"        // 当日无解
)

// Category 规则类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（违反即拒绝候选人）
	CategorySoft Category = "soft" // 软约束（严格模式下拒绝，宽松模式下记罚）
	CategoryWarn Category = "warn" // 提示（仅出现在计划评估报告中）
)

// Mode 排班模式
// 设计上作为显式枚举传入约束门控，而非在各处散落布尔开关
type Mode string

const (
	ModeStrict  Mode = "strict"  // 硬约束与软约束同时门控
	ModeRelaxed Mode = "relaxed" // 仅硬约束门控
)

// severityTable 各规则代码的固定严重度（1-5）
var severityTable = map[Code]int{
	CodeRoleCompat:          5,
	CodeDoubleBooking:       5,
	CodeRoleRequirement:     5,
	CodeConsecutiveDays:     4,
	CodeMonthlyHours:        4,
	CodeWeekendEligible:     3,
	CodeWeeklyHours:         3,
	CodeWeekendCap:          3,
	CodeShiftRepetition:     2,
	CodeWorkload:            2,
	CodeUnderstaffedWeekend: 2,
	CodeUnplannedDay:        3,
}

// SeverityOf 返回规则代码的固定严重度
func SeverityOf(code Code) int {
	if s, ok := severityTable[code]; ok {
		return s
	}
	return 1
}

// Violation 规则违反详情
type Violation struct {
	Code       Code      `json:"code"`
	RuleName   string    `json:"rule_name"`
	Category   Category  `json:"category"`
	Severity   int       `json:"severity"`
	EmployeeID uuid.UUID `json:"employee_id,omitempty"`
	Day        string    `json:"day,omitempty"`
	Shift      string    `json:"shift,omitempty"`
	Message    string    `json:"message"`
}

// Candidate 待校验的候选分配
type Candidate struct {
	Employee *model.Employee
	Shift    *model.ShiftType
	DayKey   string
	Weekend  bool
}

// Context 规则评估上下文
// 持有一次排班运行的只读输入与可用性记录
type Context struct {
	Policy    *model.RulePolicy
	Catalog   *model.Catalog
	Tracker   *state.Tracker
	Employees []*model.Employee
}

// NewContext 创建规则评估上下文
func NewContext(policy *model.RulePolicy, catalog *model.Catalog, tracker *state.Tracker, employees []*model.Employee) *Context {
	if policy == nil {
		policy = model.DefaultRulePolicy()
	}
	policy.Normalize()
	return &Context{
		Policy:    policy,
		Catalog:   catalog,
		Tracker:   tracker,
		Employees: employees,
	}
}

// Rule 排班规则
type Rule interface {
	// Code 返回规则代码
	Code() Code

	// Name 返回规则名称
	Name() string

	// Category 返回规则类别
	Category() Category

	// Severity 返回严重度（1-5）
	Severity() int

	// Check 校验单个候选分配，违反时返回 false 和原因
	Check(ctx *Context, c *Candidate) (ok bool, msg string)

	// Inspect 评估完成的计划，返回违反列表
	Inspect(ctx *Context, plan *model.MonthPlan) []Violation
}

// BaseRule 规则基类
type BaseRule struct {
	code     Code
	name     string
	category Category
}

// NewBaseRule 创建基础规则
func NewBaseRule(code Code, name string, category Category) *BaseRule {
	return &BaseRule{code: code, name: name, category: category}
}

// Code 返回规则代码
func (r *BaseRule) Code() Code { return r.code }

// Name 返回规则名称
func (r *BaseRule) Name() string { return r.name }

// Category 返回规则类别
func (r *BaseRule) Category() Category { return r.category }

// Severity 返回严重度
func (r *BaseRule) Severity() int { return SeverityOf(r.code) }

// Check 默认实现（子类覆盖）
func (r *BaseRule) Check(ctx *Context, c *Candidate) (bool, string) {
	return true, ""
}

// Inspect 默认实现（子类覆盖）
func (r *BaseRule) Inspect(ctx *Context, plan *model.MonthPlan) []Violation {
	return nil
}

// violation 构造违反详情
func (r *BaseRule) violation(empID uuid.UUID, day, shift, msg string) Violation {
	return Violation{
		Code:       r.code,
		RuleName:   r.name,
		Category:   r.category,
		Severity:   r.Severity(),
		EmployeeID: empID,
		Day:        day,
		Shift:      shift,
		Message:    msg,
	}
}
