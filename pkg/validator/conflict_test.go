package validator

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
)

func newAuditEmployee(name string, role model.Role) *model.Employee {
	return &model.Employee{
		BaseModel:          model.NewBaseModel(),
		Name:               name,
		Code:               name,
		Role:               role,
		Status:             "active",
		MonthlyTargetHours: 160,
		WeekendEligible:    true,
	}
}

func hasConflict(conflicts []Conflict, conflictType ConflictType, empID uuid.UUID) bool {
	for _, c := range conflicts {
		if c.Type == conflictType && (empID == uuid.Nil || c.EmployeeID == empID) {
			return true
		}
	}
	return false
}

func TestDetectAll_CleanPlan(t *testing.T) {
	lead := newAuditEmployee("L001", model.RoleLead)
	spec := newAuditEmployee("S001", model.RoleSpecialist)

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-03")
	day.Assign("early", lead.ID)
	day.Assign("early", spec.ID)
	plan.Days["2026-08-03"] = day

	detector := NewConflictDetector(nil, nil)
	conflicts := detector.DetectAll(plan, []*model.Employee{lead, spec})
	if len(conflicts) != 0 {
		t.Errorf("合规计划不应有冲突，实际 %d 条: %v", len(conflicts), conflicts)
	}
}

func TestDetectAll_DoubleBooking(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-03")
	day.Assign("early", spec.ID)
	day.Assign("late", spec.ID)
	plan.Days["2026-08-03"] = day

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictDoubleBooking, spec.ID) {
		t.Error("应检出同日重复分配 (double booking should be detected)")
	}
}

func TestDetectAll_SundayWork(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-02") // 周日
	day.Assign("early", spec.ID)
	plan.Days["2026-08-02"] = day

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictSundayWork, uuid.Nil) {
		t.Error("周日排班应被检出")
	}
}

func TestDetectAll_RoleMismatch(t *testing.T) {
	lead := newAuditEmployee("L001", model.RoleLead)

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-03")
	day.Assign("late", lead.ID) // 晚班只有专员配额
	plan.Days["2026-08-03"] = day

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{lead})
	if !hasConflict(conflicts, ConflictRoleMismatch, lead.ID) {
		t.Error("主管被排进晚班应被检出角色不匹配")
	}
}

func TestDetectAll_UnknownReferences(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-03")
	day.Assign("night", spec.ID)    // 目录中不存在的班次
	day.Assign("early", uuid.New()) // 花名册外的员工
	plan.Days["2026-08-03"] = day

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictUnknownShift, uuid.Nil) {
		t.Error("未知班次代码应被检出")
	}
	if !hasConflict(conflicts, ConflictUnknownEmployee, uuid.Nil) {
		t.Error("未知员工引用应被检出")
	}
}

func TestDetectAll_InactiveEmployee(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)
	spec.Status = "leave"

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-03")
	day.Assign("early", spec.ID)
	plan.Days["2026-08-03"] = day

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictInactive, spec.ID) {
		t.Error("非在职员工被排班应被检出")
	}
}

func TestDetectAll_WeekendIneligible(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)
	spec.WeekendEligible = false

	plan := model.NewMonthPlan(2026, time.August)
	day := model.NewDayPlan("2026-08-01") // 周六
	day.Assign(model.SaturdayShiftCode, spec.ID)
	plan.Days["2026-08-01"] = day

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictWeekend, spec.ID) {
		t.Error("不可排周末的员工出现在周六应被检出")
	}
}

func TestDetectAll_ConsecutiveDays(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)
	spec.MaxConsecutiveDays = 3

	plan := model.NewMonthPlan(2026, time.August)
	// 08-03 至 08-07 连续 5 个工作日
	for d := 3; d <= 7; d++ {
		key := fmt.Sprintf("2026-08-%02d", d)
		day := model.NewDayPlan(key)
		day.Assign("early", spec.ID)
		plan.Days[key] = day
	}

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictConsecutive, spec.ID) {
		t.Error("连续 5 天超过个人上限 3 天应被检出")
	}
}

func TestDetectAll_RestTime(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)
	spec.MinRestHours = 18 // 8 小时班后最多剩 16 小时休息

	plan := model.NewMonthPlan(2026, time.August)
	for _, d := range []int{3, 4} {
		key := fmt.Sprintf("2026-08-%02d", d)
		day := model.NewDayPlan(key)
		day.Assign("early", spec.ID)
		plan.Days[key] = day
	}

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictRestTime, spec.ID) {
		t.Error("连续两个工作日休息不足 18 小时应被检出 (insufficient rest should be detected)")
	}

	// 隔天排班休息充足
	plan = model.NewMonthPlan(2026, time.August)
	for _, d := range []int{3, 5} {
		key := fmt.Sprintf("2026-08-%02d", d)
		day := model.NewDayPlan(key)
		day.Assign("early", spec.ID)
		plan.Days[key] = day
	}
	conflicts = NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if hasConflict(conflicts, ConflictRestTime, spec.ID) {
		t.Error("隔天排班不应触发休息不足")
	}

	// 未设置最小休息时长的员工不检查
	spec.MinRestHours = 0
	plan = model.NewMonthPlan(2026, time.August)
	for _, d := range []int{3, 4} {
		key := fmt.Sprintf("2026-08-%02d", d)
		day := model.NewDayPlan(key)
		day.Assign("early", spec.ID)
		plan.Days[key] = day
	}
	conflicts = NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if hasConflict(conflicts, ConflictRestTime, spec.ID) {
		t.Error("未设置最小休息时长不应触发检查")
	}
}

func TestDetectAll_MonthlyHoursCeiling(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)
	spec.MonthlyTargetHours = 40 // 上限 48 小时

	plan := model.NewMonthPlan(2026, time.August)
	// 7 个 8 小时班 = 56 小时，隔天排避免连班冲突
	for _, d := range []int{3, 5, 7, 10, 12, 14, 17} {
		key := fmt.Sprintf("2026-08-%02d", d)
		day := model.NewDayPlan(key)
		day.Assign("early", spec.ID)
		plan.Days[key] = day
	}

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if !hasConflict(conflicts, ConflictMonthlyHours, spec.ID) {
		t.Error("月工时 56 小时超过上限 48 小时应被检出")
	}
	if hasConflict(conflicts, ConflictConsecutive, spec.ID) {
		t.Error("隔天排班不应触发连班冲突")
	}
}

func TestDetectAll_SkipsNonPlannedDays(t *testing.T) {
	spec := newAuditEmployee("S001", model.RoleSpecialist)

	plan := model.NewMonthPlan(2026, time.August)
	plan.Days["2026-08-02"] = model.NoShiftsDay("2026-08-02")
	plan.Days["2026-08-03"] = model.UnplannedDay("2026-08-03", []string{"无可用候选人"})

	conflicts := NewConflictDetector(nil, nil).DetectAll(plan, []*model.Employee{spec})
	if len(conflicts) != 0 {
		t.Errorf("无班次日与无解日不应产生冲突，实际 %v", conflicts)
	}
}
