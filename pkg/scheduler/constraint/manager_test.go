package constraint

import (
	"reflect"
	"testing"
	"time"

	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
)

// MockRule 用于测试的模拟规则
type MockRule struct {
	*BaseRule
	pass bool
	msg  string
}

func (m *MockRule) Check(ctx *Context, c *Candidate) (bool, string) {
	if m.pass {
		return true, ""
	}
	return false, m.msg
}

func newTestContext(employees ...*model.Employee) *Context {
	return NewContext(model.DefaultRulePolicy(), model.DefaultCatalog(), state.NewTracker(employees), employees)
}

func newEmployee(code string, role model.Role) *model.Employee {
	return &model.Employee{
		BaseModel:          model.NewBaseModel(),
		Name:               "员工" + code,
		Code:               code,
		Role:               role,
		Status:             "active",
		MonthlyTargetHours: 160,
		WeekendEligible:    true,
	}
}

func TestManager_Register(t *testing.T) {
	m := NewManager()
	m.Register(&MockRule{BaseRule: NewBaseRule(Code("t1"), "t1", CategoryHard), pass: true})

	if m.Count() != 1 {
		t.Errorf("Expected 1 rule, got %d", m.Count())
	}

	// 同代码注册应替换而非追加
	m.Register(&MockRule{BaseRule: NewBaseRule(Code("t1"), "t1v2", CategoryHard), pass: true})
	if m.Count() != 1 {
		t.Errorf("同代码替换后应仍为 1 条规则，实际 %d", m.Count())
	}
}

func TestManager_RegisterOrder(t *testing.T) {
	m := NewManager()
	m.Register(&MockRule{BaseRule: NewBaseRule(CodeWorkload, "soft", CategorySoft), pass: true})
	m.Register(&MockRule{BaseRule: NewBaseRule(CodeDoubleBooking, "hard", CategoryHard), pass: true})

	rules := m.GetAll()
	if rules[0].Category() != CategoryHard {
		t.Error("硬约束应排在软约束之前")
	}
}

func TestManager_CanAssignHardGate(t *testing.T) {
	emp := newEmployee("E001", model.RoleSpecialist)
	ctx := newTestContext(emp)

	m := NewManager()
	m.Register(&MockRule{BaseRule: NewBaseRule(Code("h"), "硬规则", CategoryHard), pass: false, msg: "硬违反"})

	cand := &Candidate{Employee: emp, Shift: &model.ShiftType{Code: "early", DurationHours: 8}, DayKey: "2026-08-03"}

	// 硬约束在两种模式下都门控
	for _, mode := range []Mode{ModeStrict, ModeRelaxed} {
		ok, violations := m.CanAssign(ctx, cand, mode)
		if ok {
			t.Errorf("模式 %s 下硬违反应拒绝分配", mode)
		}
		if len(violations) != 1 || violations[0].Message != "硬违反" {
			t.Errorf("应返回硬违反详情，实际 %+v", violations)
		}
	}
}

func TestManager_CanAssignSoftGate(t *testing.T) {
	emp := newEmployee("E001", model.RoleSpecialist)
	ctx := newTestContext(emp)

	m := NewManager()
	m.Register(&MockRule{BaseRule: NewBaseRule(Code("s"), "软规则", CategorySoft), pass: false, msg: "软违反"})

	cand := &Candidate{Employee: emp, Shift: &model.ShiftType{Code: "early", DurationHours: 8}, DayKey: "2026-08-03"}

	if ok, _ := m.CanAssign(ctx, cand, ModeStrict); ok {
		t.Error("严格模式下软违反应拒绝分配")
	}

	ok, violations := m.CanAssign(ctx, cand, ModeRelaxed)
	if !ok {
		t.Error("宽松模式下软违反不应拦截分配")
	}
	if len(violations) != 1 {
		t.Errorf("宽松模式下应收集软违反，实际 %d 条", len(violations))
	}
}

func TestReport_Score(t *testing.T) {
	report := &Report{
		HardViolations: []Violation{{Severity: 5}},           // -50
		SoftViolations: []Violation{{Severity: 2}, {Severity: 3}}, // -15
		Warnings:       []Violation{{Severity: 3}},           // -3
	}
	report.calculateScore()

	if report.Score != 32 {
		t.Errorf("Expected score 32, got %.1f", report.Score)
	}

	// 扣满后下限为 0
	report.HardViolations = make([]Violation, 5)
	for i := range report.HardViolations {
		report.HardViolations[i] = Violation{Severity: 5}
	}
	report.calculateScore()
	if report.Score != 0 {
		t.Errorf("Expected score 0, got %.1f", report.Score)
	}
}

func TestManager_ScoreIdempotent(t *testing.T) {
	lead := newEmployee("L001", model.RoleLead)
	spec := newEmployee("S001", model.RoleSpecialist)
	ctx := newTestContext(lead, spec)
	m := NewManagerWithDefaults(ctx.Policy)

	plan := model.NewMonthPlan(2026, time.August)
	for _, key := range plan.DayKeys() {
		if model.IsSunday(key) {
			plan.Days[key] = model.NoShiftsDay(key)
		} else {
			day := model.NewDayPlan(key)
			day.Assign("early", lead.ID)
			plan.Days[key] = day
		}
	}

	first := m.Score(ctx, plan)
	second := m.Score(ctx, plan)

	if first.Score != second.Score {
		t.Errorf("重复评估得分应一致: %.1f vs %.1f", first.Score, second.Score)
	}
	if !reflect.DeepEqual(first.HardViolations, second.HardViolations) {
		t.Error("重复评估违反列表应一致")
	}
}

func TestManager_ScoreUnplannedWarning(t *testing.T) {
	emp := newEmployee("E001", model.RoleSpecialist)
	ctx := newTestContext(emp)
	m := NewManager()

	plan := model.NewMonthPlan(2026, time.August)
	for _, key := range plan.DayKeys() {
		if model.IsSunday(key) {
			plan.Days[key] = model.NoShiftsDay(key)
		} else {
			plan.Days[key] = model.UnplannedDay(key, []string{"无可用员工"})
		}
	}

	report := m.Score(ctx, plan)
	unplanned := 0
	for _, w := range report.Warnings {
		if w.Code == CodeUnplannedDay {
			unplanned++
		}
	}
	// 2026 年 8 月有 5 个周日
	if unplanned != 26 {
		t.Errorf("应为 26 个无解日生成提示，实际 %d", unplanned)
	}
}
