package stats

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
)

func newStatsEmployee(name string, role model.Role) *model.Employee {
	return &model.Employee{
		BaseModel:          model.NewBaseModel(),
		Name:               name,
		Code:               name,
		Role:               role,
		Status:             "active",
		MonthlyTargetHours: 160,
	}
}

// buildPlan 构造一个部分排班的 2026-08 计划
// 08-03 满员，08-04 缺助理，08-05 无解，08-01（周六）满员
func buildPlan(lead, asst *model.Employee, specs []*model.Employee) *model.MonthPlan {
	plan := model.NewMonthPlan(2026, time.August)

	full := model.NewDayPlan("2026-08-03")
	full.Assign("early", lead.ID)
	full.Assign("early", specs[0].ID)
	full.Assign("early", specs[1].ID)
	full.Assign("early", asst.ID)
	full.Assign("late", specs[2].ID)
	full.Assign("late", specs[3].ID)
	full.Assign("split", specs[4].ID)
	plan.Days["2026-08-03"] = full

	partial := model.NewDayPlan("2026-08-04")
	partial.Assign("early", lead.ID)
	partial.Assign("early", specs[0].ID)
	partial.Assign("early", specs[1].ID)
	partial.Assign("late", specs[2].ID)
	partial.Assign("late", specs[3].ID)
	partial.Assign("split", specs[4].ID)
	partial.Relaxed = true
	plan.Days["2026-08-04"] = partial

	plan.Days["2026-08-05"] = model.UnplannedDay("2026-08-05", []string{"无可用候选人"})

	saturday := model.NewDayPlan("2026-08-01")
	saturday.Assign(model.SaturdayShiftCode, lead.ID)
	for i := 0; i < 4; i++ {
		saturday.Assign(model.SaturdayShiftCode, specs[i].ID)
	}
	saturday.Assign(model.SaturdayShiftCode, asst.ID)
	plan.Days["2026-08-01"] = saturday

	return plan
}

func TestCoverageAnalyzer_Analyze(t *testing.T) {
	lead := newStatsEmployee("L001", model.RoleLead)
	asst := newStatsEmployee("A001", model.RoleAssistant)
	var specs []*model.Employee
	for _, name := range []string{"S001", "S002", "S003", "S004", "S005"} {
		specs = append(specs, newStatsEmployee(name, model.RoleSpecialist))
	}
	employees := append([]*model.Employee{lead, asst}, specs...)

	analyzer := NewCoverageAnalyzer(nil, model.SaturdayQuota{})
	metrics := analyzer.Analyze(buildPlan(lead, asst, specs), employees)

	// 3 个工作日 × 7 岗 + 1 个周六 × 6 岗
	if metrics.TotalSlots != 27 {
		t.Errorf("需求岗位总数应为 27，实际 %d", metrics.TotalSlots)
	}
	if metrics.AssignedSlots != 19 {
		t.Errorf("已分配岗位数应为 19，实际 %d", metrics.AssignedSlots)
	}
	if want := float64(19) / 27 * 100; math.Abs(metrics.OverallCoverage-want) > 0.01 {
		t.Errorf("整体覆盖率应约 %.1f%%，实际 %.1f%%", want, metrics.OverallCoverage)
	}

	if day := metrics.DailyCoverage["2026-08-03"]; day.CoverageRate != 100 {
		t.Errorf("满员日覆盖率应为 100%%，实际 %.1f%%", day.CoverageRate)
	}
	if day := metrics.DailyCoverage["2026-08-04"]; day.Assigned != 6 || day.RequiredSlots != 7 {
		t.Errorf("缺员日应为 6/7，实际 %d/%d", day.Assigned, day.RequiredSlots)
	}

	if len(metrics.Understaffed) != 1 || metrics.Understaffed[0] != "2026-08-05" {
		t.Errorf("仅无解日应计入人手不足，实际 %v", metrics.Understaffed)
	}

	// 缺员日 1 条 + 无解日每角色需求各 1 条（早班 3 + 晚班 1 + 两头班 1）
	if len(metrics.UncoveredSlots) != 6 {
		t.Errorf("未覆盖岗位应为 6 条，实际 %d 条", len(metrics.UncoveredSlots))
	}
	found := false
	for _, slot := range metrics.UncoveredSlots {
		if slot.Date == "2026-08-04" && slot.Role == model.RoleAssistant {
			found = true
		}
	}
	if !found {
		t.Error("应报告 2026-08-04 助理岗位未覆盖")
	}

	if got := metrics.ShiftCoverage[model.SaturdayShiftCode]; got != 100 {
		t.Errorf("周六班覆盖率应为 100%%，实际 %.1f%%", got)
	}
	// 助理需求：3 个工作日 + 1 个周六共 4 岗，覆盖 2 岗
	if got := metrics.RoleCoverage[model.RoleAssistant]; got != 50 {
		t.Errorf("助理覆盖率应为 50%%，实际 %.1f%%", got)
	}
}

func TestCoverageAnalyzer_EmptyPlan(t *testing.T) {
	analyzer := NewCoverageAnalyzer(nil, model.SaturdayQuota{})
	metrics := analyzer.Analyze(nil, nil)
	if metrics.OverallCoverage != 100 {
		t.Errorf("空计划的覆盖率应为 100%%，实际 %.1f%%", metrics.OverallCoverage)
	}
}

func TestFairnessAnalyzer_Analyze(t *testing.T) {
	heavy := newStatsEmployee("S001", model.RoleSpecialist)
	light := newStatsEmployee("S002", model.RoleSpecialist)
	records := map[uuid.UUID]*state.Record{
		heavy.ID: {
			EmployeeID:   heavy.ID,
			MonthHours:   170,
			AssignedDays: []string{"2026-08-03", "2026-08-04", "2026-08-08"},
			ShiftHistory: []string{"early", "early", "saturday"},
			WeekendDays:  1,
		},
		light.ID: {
			EmployeeID:   light.ID,
			MonthHours:   80,
			AssignedDays: []string{"2026-08-05"},
			ShiftHistory: []string{"late"},
		},
	}

	analyzer := NewFairnessAnalyzer()
	metrics := analyzer.Analyze(records, []*model.Employee{heavy, light})

	if metrics.AvgHoursPerEmployee != 125 {
		t.Errorf("人均工时应为 125，实际 %.1f", metrics.AvgHoursPerEmployee)
	}
	if metrics.MaxHours != 170 || metrics.MinHours != 80 {
		t.Errorf("工时极值应为 170/80，实际 %.1f/%.1f", metrics.MaxHours, metrics.MinHours)
	}
	if metrics.HoursRange != 90 {
		t.Errorf("工时极差应为 90，实际 %.1f", metrics.HoursRange)
	}

	// [80, 170] 的基尼系数 = 90 / (2 × 250) = 0.18
	if math.Abs(metrics.WorkloadGini-0.18) > 0.001 {
		t.Errorf("工时基尼系数应约 0.18，实际 %.4f", metrics.WorkloadGini)
	}
	// 周末班仅 heavy 1 次 → 完全不均
	if math.Abs(metrics.WeekendGini-0.5) > 0.001 {
		t.Errorf("周末基尼系数应为 0.5，实际 %.4f", metrics.WeekendGini)
	}

	if len(metrics.EmployeeStats) != 2 {
		t.Fatalf("应有 2 条员工统计，实际 %d 条", len(metrics.EmployeeStats))
	}
	top := metrics.EmployeeStats[0]
	if top.EmployeeName != "S001" {
		t.Errorf("负荷排行首位应为 S001，实际 %s", top.EmployeeName)
	}
	if top.OvertimeHours != 10 {
		t.Errorf("S001 超额工时应为 10，实际 %.1f", top.OvertimeHours)
	}
	if math.Abs(top.Deviation-36) > 0.01 {
		t.Errorf("S001 偏差应约 +36%%，实际 %.1f%%", top.Deviation)
	}

	if got := metrics.ShiftDistribution["early"]; got != 50 {
		t.Errorf("早班占比应为 50%%，实际 %.1f%%", got)
	}
}

func TestFairnessAnalyzer_UniformIsPerfect(t *testing.T) {
	a := newStatsEmployee("S001", model.RoleSpecialist)
	b := newStatsEmployee("S002", model.RoleSpecialist)
	records := map[uuid.UUID]*state.Record{
		a.ID: {EmployeeID: a.ID, MonthHours: 120, WeekendDays: 1, AssignedDays: []string{"2026-08-03"}},
		b.ID: {EmployeeID: b.ID, MonthHours: 120, WeekendDays: 1, AssignedDays: []string{"2026-08-04"}},
	}

	metrics := NewFairnessAnalyzer().Analyze(records, []*model.Employee{a, b})
	if metrics.WorkloadGini != 0 {
		t.Errorf("等工时的基尼系数应为 0，实际 %.4f", metrics.WorkloadGini)
	}
	if metrics.OverallFairnessScore != 100 {
		t.Errorf("完全均衡的评分应为 100，实际 %.1f", metrics.OverallFairnessScore)
	}
}

func TestFairnessAnalyzer_Empty(t *testing.T) {
	metrics := NewFairnessAnalyzer().Analyze(nil, nil)
	if metrics.OverallFairnessScore != 100 {
		t.Errorf("空输入评分应为 100，实际 %.1f", metrics.OverallFairnessScore)
	}
}
