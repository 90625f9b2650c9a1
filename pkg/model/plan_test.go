package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDayKeyHelpers(t *testing.T) {
	// 2026-08-30 是周日，2026-08-29 是周六
	if !IsSunday("2026-08-30") {
		t.Error("2026-08-30 应该是周日")
	}
	if !IsSaturday("2026-08-29") {
		t.Error("2026-08-29 应该是周六")
	}
	if IsWeekend("2026-08-28") {
		t.Error("2026-08-28 不应该是周末")
	}
	if IsSunday("bad-date") {
		t.Error("非法日期不应判定为周日")
	}
}

func TestISOWeek(t *testing.T) {
	// 2026-01-01 属于 2026 年第 1 周
	if got := ISOWeek("2026-01-01"); got != "2026-W01" {
		t.Errorf("Expected 2026-W01, got %s", got)
	}
	// 周日与其前的周一同周
	if ISOWeek("2026-08-24") != ISOWeek("2026-08-30") {
		t.Error("同一 ISO 周的日期应返回相同周标识")
	}
}

func TestMonthDays(t *testing.T) {
	days := MonthDays(2026, time.February)
	if len(days) != 28 {
		t.Errorf("2026 年 2 月应有 28 天，实际 %d", len(days))
	}
	if days[0] != "2026-02-01" || days[27] != "2026-02-28" {
		t.Errorf("日期键顺序错误: %s .. %s", days[0], days[27])
	}

	days = MonthDays(2024, time.February)
	if len(days) != 29 {
		t.Errorf("闰年 2 月应有 29 天，实际 %d", len(days))
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range AllRoles() {
		if !r.Valid() {
			t.Errorf("角色 %s 应该合法", r)
		}
	}
	if Role("nurse").Valid() {
		t.Error("未知角色不应合法")
	}
}

func TestEmployeeOvertimeCeiling(t *testing.T) {
	emp := &Employee{MonthlyTargetHours: 160}
	if got := emp.OvertimeCeiling(); got != 192 {
		t.Errorf("默认上浮系数下月上限应为 192，实际 %.1f", got)
	}

	emp.OvertimeTolerance = 1.1
	if got := emp.OvertimeCeiling(); got != 176 {
		t.Errorf("自定义系数下月上限应为 176，实际 %.1f", got)
	}
}

func TestDayPlanAssignUnassign(t *testing.T) {
	plan := NewDayPlan("2026-08-03")
	empA := uuid.New()
	empB := uuid.New()

	plan.Assign("early", empA)
	plan.Assign("early", empB)

	if !plan.Contains(empA) || !plan.Contains(empB) {
		t.Error("分配后应能查到员工")
	}
	if plan.AssignmentCount() != 2 {
		t.Errorf("Expected 2 assignments, got %d", plan.AssignmentCount())
	}

	plan.Unassign("early", empA)
	if plan.Contains(empA) {
		t.Error("撤销后不应再查到员工")
	}
	if len(plan.Shifts["early"]) != 1 || plan.Shifts["early"][0] != empB {
		t.Error("撤销不应影响其他员工的分配")
	}
}

func TestDayPlanAbsorb(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()

	day := NewDayPlan("2026-08-03")
	day.Assign("early", empA)

	other := NewDayPlan("2026-08-03")
	other.Assign("early", empB)
	other.Assign("late", empB)
	other.Relaxed = true
	other.FailureReasons = []string{"split 无可用候选人"}

	day.Absorb(other)

	if got := len(day.Shifts["early"]); got != 2 {
		t.Errorf("并入后早班应有 2 人，实际 %d 人", got)
	}
	if !day.Contains(empA) || !day.Contains(empB) {
		t.Error("并入不应丢失任何一方的分配")
	}
	if !day.Relaxed {
		t.Error("任一子计划经过宽松重试，并入后应保留标记")
	}
	if len(day.FailureReasons) != 1 {
		t.Errorf("并入应保留失败原因，实际 %v", day.FailureReasons)
	}

	// 无解日并入成功日后整体记为已排班
	failed := UnplannedDay("2026-08-03", []string{"无可用候选人"})
	failed.Absorb(day)
	if failed.Status != DayPlanned {
		t.Errorf("并入成功子计划后状态应为已排班，实际 %s", failed.Status)
	}
	if failed.AssignmentCount() != 3 {
		t.Errorf("并入后应有 3 人，实际 %d 人", failed.AssignmentCount())
	}
	if len(failed.FailureReasons) != 2 {
		t.Errorf("两方的失败原因都应保留，实际 %v", failed.FailureReasons)
	}
}

func TestMonthPlanCounts(t *testing.T) {
	plan := NewMonthPlan(2026, time.August)
	plan.Days["2026-08-02"] = NoShiftsDay("2026-08-02")
	plan.Days["2026-08-03"] = NewDayPlan("2026-08-03")
	plan.Days["2026-08-03"].Assign("early", uuid.New())
	plan.Days["2026-08-04"] = UnplannedDay("2026-08-04", []string{"无可用主管"})

	if plan.PlannedDays() != 1 {
		t.Errorf("Expected 1 planned day, got %d", plan.PlannedDays())
	}
	if plan.UnplannedDays() != 1 {
		t.Errorf("Expected 1 unplanned day, got %d", plan.UnplannedDays())
	}
	if plan.TotalAssignments() != 1 {
		t.Errorf("Expected 1 assignment, got %d", plan.TotalAssignments())
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	if catalog.ShiftByCode("early") == nil {
		t.Error("默认目录应包含早班")
	}
	if catalog.ShiftByCode("night") != nil {
		t.Error("默认目录不应包含夜班")
	}

	reqs := catalog.RequirementsFor("early")
	if len(reqs) != 3 {
		t.Errorf("早班应有 3 条角色配额，实际 %d", len(reqs))
	}
}

func TestRulePolicyNormalize(t *testing.T) {
	p := &RulePolicy{}
	p.Normalize()

	if p.OvertimeTolerance != 1.2 {
		t.Errorf("默认上浮系数应为 1.2，实际 %.2f", p.OvertimeTolerance)
	}
	if p.WeekendCapPerMonth != 2 {
		t.Errorf("默认周末上限应为 2，实际 %d", p.WeekendCapPerMonth)
	}
	if p.WeekendMode != WeekendFair {
		t.Errorf("默认周末模式应为 fair，实际 %s", p.WeekendMode)
	}
	if p.SaturdayQuota.Specialists != 4 {
		t.Errorf("默认周六配额应含 4 名专业护理师，实际 %d", p.SaturdayQuota.Specialists)
	}
}
