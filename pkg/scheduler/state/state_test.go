package state

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
)

func testEmployee(target float64) *model.Employee {
	return &model.Employee{
		BaseModel:          model.NewBaseModel(),
		Name:               "测试员工",
		Code:               "E001",
		Role:               model.RoleSpecialist,
		Status:             "active",
		MonthlyTargetHours: target,
	}
}

func earlyShift() *model.ShiftType {
	return &model.ShiftType{Code: "early", DurationHours: 8, DayType: model.DayTypeWeekday}
}

func TestApplyRevertRoundTrip(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})
	shift := earlyShift()

	before := tracker.Record(emp.ID).Clone()

	tracker.Apply(emp.ID, shift, "2026-08-03", false)
	tracker.Revert(emp.ID, shift, "2026-08-03", false)

	after := tracker.Record(emp.ID)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Apply/Revert 往返后记录应恢复原状\nbefore: %+v\nafter:  %+v", before, after)
	}
}

func TestApplyRevertRoundTripWithHistory(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})
	shift := earlyShift()
	late := &model.ShiftType{Code: "late", DurationHours: 8}

	// 先积累一些状态，再验证往返
	tracker.Apply(emp.ID, shift, "2026-08-03", false)
	tracker.Apply(emp.ID, late, "2026-08-04", false)
	before := tracker.Record(emp.ID).Clone()

	tracker.Apply(emp.ID, shift, "2026-08-05", false)
	tracker.Revert(emp.ID, shift, "2026-08-05", false)

	if !reflect.DeepEqual(before, tracker.Record(emp.ID)) {
		t.Error("带历史状态的 Apply/Revert 往返应恢复原状")
	}
	if tracker.Record(emp.ID).LastShift() != "late" {
		t.Errorf("回退后 LastShift 应为 late，实际 %s", tracker.Record(emp.ID).LastShift())
	}
}

func TestApplyCounters(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})

	tracker.Apply(emp.ID, earlyShift(), "2026-08-03", false)
	tracker.Apply(emp.ID, earlyShift(), "2026-08-04", false)
	tracker.Apply(emp.ID, &model.ShiftType{Code: "saturday", DurationHours: 6}, "2026-08-08", true)

	r := tracker.Record(emp.ID)
	if r.MonthHours != 22 {
		t.Errorf("月工时应为 22，实际 %.1f", r.MonthHours)
	}
	if r.WeekHours != 22 {
		t.Errorf("周工时应为 22，实际 %.1f", r.WeekHours)
	}
	if r.WeekendDays != 1 {
		t.Errorf("周末天数应为 1，实际 %d", r.WeekendDays)
	}
	if r.ShiftCount() != 3 {
		t.Errorf("班次数应为 3，实际 %d", r.ShiftCount())
	}
	if !r.HasDay("2026-08-04") {
		t.Error("应记录 2026-08-04 已分配")
	}
}

func TestConsecutiveDays(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})
	shift := earlyShift()

	for _, day := range []string{"2026-08-03", "2026-08-04", "2026-08-05"} {
		tracker.Apply(emp.ID, shift, day, false)
	}

	r := tracker.Record(emp.ID)
	if r.ConsecutiveDays != 3 {
		t.Errorf("连班天数应为 3，实际 %d", r.ConsecutiveDays)
	}

	// 中断后重新计算
	tracker.Apply(emp.ID, shift, "2026-08-07", false)
	if r.ConsecutiveDays != 1 {
		t.Errorf("中断后连班天数应为 1，实际 %d", r.ConsecutiveDays)
	}
}

func TestConsecutiveAround(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})
	shift := earlyShift()

	tracker.Apply(emp.ID, shift, "2026-08-03", false)
	tracker.Apply(emp.ID, shift, "2026-08-05", false)

	r := tracker.Record(emp.ID)
	// 在 08-04 分配将连接前后两天，形成 3 连班
	if got := r.ConsecutiveAround("2026-08-04"); got != 3 {
		t.Errorf("填补空档后连班应为 3，实际 %d", got)
	}
	// 孤立的一天
	if got := r.ConsecutiveAround("2026-08-10"); got != 1 {
		t.Errorf("孤立日期连班应为 1，实际 %d", got)
	}
}

func TestResetWeekly(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})

	tracker.Apply(emp.ID, earlyShift(), "2026-08-03", false)
	tracker.ResetWeekly()

	r := tracker.Record(emp.ID)
	if r.WeekHours != 0 {
		t.Errorf("周重置后周工时应为 0，实际 %.1f", r.WeekHours)
	}
	if r.MonthHours != 8 {
		t.Errorf("周重置不应影响月工时，实际 %.1f", r.MonthHours)
	}
}

func TestWorkloadPercent(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})

	for i := 0; i < 10; i++ {
		tracker.Apply(emp.ID, earlyShift(), "2026-08-03", false)
	}
	if got := tracker.WorkloadPercent(emp.ID); got != 50 {
		t.Errorf("80/160 工作量应为 50%%，实际 %.1f%%", got)
	}
	if got := tracker.WorkloadPercent(uuid.New()); got != 0 {
		t.Errorf("未知员工工作量应为 0，实际 %.1f", got)
	}
}

func TestTxnRollback(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})
	before := tracker.Record(emp.ID).Clone()

	tx := tracker.Begin(emp.ID, earlyShift(), "2026-08-03", false)
	if tracker.Record(emp.ID).MonthHours != 8 {
		t.Error("Begin 后分配应立即生效")
	}
	tx.Rollback()

	if !reflect.DeepEqual(before, tracker.Record(emp.ID)) {
		t.Error("Rollback 后记录应恢复原状")
	}

	// 重复 Rollback 是空操作
	tx.Rollback()
	if !reflect.DeepEqual(before, tracker.Record(emp.ID)) {
		t.Error("重复 Rollback 不应改变记录")
	}
}

func TestTxnCommit(t *testing.T) {
	emp := testEmployee(160)
	tracker := NewTracker([]*model.Employee{emp})

	tx := tracker.Begin(emp.ID, earlyShift(), "2026-08-03", false)
	tx.Commit()
	tx.Rollback() // Commit 后 Rollback 应为空操作

	if tracker.Record(emp.ID).MonthHours != 8 {
		t.Errorf("Commit 后分配应保留，月工时实际 %.1f", tracker.Record(emp.ID).MonthHours)
	}
}
