// Package stats 提供排班结果的统计分析功能
package stats

import (
	"github.com/yuepai/yuepai/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots      int     `json:"total_slots"`      // 需求岗位总数
	AssignedSlots   int     `json:"assigned_slots"`   // 已分配岗位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 按班次类型统计
	ShiftCoverage map[string]float64 `json:"shift_coverage"` // 班次代码 → 覆盖率

	// 按角色统计
	RoleCoverage map[model.Role]float64 `json:"role_coverage"`

	// 问题识别
	UncoveredSlots []UncoveredSlot `json:"uncovered_slots"` // 未覆盖岗位
	Understaffed   []string        `json:"understaffed"`    // 覆盖率低于阈值的日期
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	RequiredSlots int     `json:"required_slots"`
	Assigned      int     `json:"assigned"`
	CoverageRate  float64 `json:"coverage_rate"`
	TotalHours    float64 `json:"total_hours"`
}

// UncoveredSlot 未覆盖岗位
type UncoveredSlot struct {
	Date      string     `json:"date"`
	ShiftCode string     `json:"shift_code"`
	Role      model.Role `json:"role"`
	Required  int        `json:"required"`
	Assigned  int        `json:"assigned"`
}

// understaffedThreshold 单日覆盖率低于该值计入人手不足
const understaffedThreshold = 50.0

// CoverageAnalyzer 覆盖率分析器
// 以目录的最小配额为需求基线，逐日对照月度计划的实际分配
type CoverageAnalyzer struct {
	catalog *model.Catalog
	quota   model.SaturdayQuota
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(catalog *model.Catalog, quota model.SaturdayQuota) *CoverageAnalyzer {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	if quota == (model.SaturdayQuota{}) {
		quota = model.DefaultSaturdayQuota()
	}
	return &CoverageAnalyzer{catalog: catalog, quota: quota}
}

// Analyze 分析月度计划的覆盖率
// 周日不产生需求，不计入覆盖率分母
func (c *CoverageAnalyzer) Analyze(plan *model.MonthPlan, employees []*model.Employee) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage: make(map[string]DayCoverage),
		ShiftCoverage: make(map[string]float64),
		RoleCoverage:  make(map[model.Role]float64),
	}
	if plan == nil {
		metrics.OverallCoverage = 100
		return metrics
	}

	roleOf := make(map[string]model.Role, len(employees))
	for _, emp := range employees {
		roleOf[emp.ID.String()] = emp.Role
	}

	shiftRequired := make(map[string]int)
	shiftAssigned := make(map[string]int)
	roleRequired := make(map[model.Role]int)
	roleAssigned := make(map[model.Role]int)

	for _, key := range plan.DayKeys() {
		day := plan.Days[key]
		if day == nil || model.IsSunday(key) {
			continue
		}

		dayCov := DayCoverage{Date: key, Status: string(day.Status)}

		if model.IsSaturday(key) {
			c.analyzeSaturday(key, day, roleOf, &dayCov, metrics, roleRequired, roleAssigned)
			shiftRequired[model.SaturdayShiftCode] += dayCov.RequiredSlots
			shiftAssigned[model.SaturdayShiftCode] += dayCov.Assigned
		} else {
			c.analyzeWeekday(key, day, roleOf, &dayCov, metrics, shiftRequired, shiftAssigned, roleRequired, roleAssigned)
		}

		if dayCov.RequiredSlots > 0 {
			dayCov.CoverageRate = float64(dayCov.Assigned) / float64(dayCov.RequiredSlots) * 100
		}
		if dayCov.CoverageRate < understaffedThreshold {
			metrics.Understaffed = append(metrics.Understaffed, key)
		}

		metrics.TotalSlots += dayCov.RequiredSlots
		metrics.AssignedSlots += dayCov.Assigned
		metrics.DailyCoverage[key] = dayCov
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.AssignedSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}
	for code, required := range shiftRequired {
		if required > 0 {
			metrics.ShiftCoverage[code] = float64(shiftAssigned[code]) / float64(required) * 100
		}
	}
	for role, required := range roleRequired {
		if required > 0 {
			metrics.RoleCoverage[role] = float64(roleAssigned[role]) / float64(required) * 100
		}
	}
	return metrics
}

// analyzeWeekday 对照目录配额统计一个工作日
func (c *CoverageAnalyzer) analyzeWeekday(key string, day *model.DayPlan, roleOf map[string]model.Role,
	dayCov *DayCoverage, metrics *CoverageMetrics,
	shiftRequired, shiftAssigned map[string]int, roleRequired, roleAssigned map[model.Role]int) {

	for _, shift := range c.catalog.WeekdayShifts() {
		assignedByRole := make(map[model.Role]int)
		for _, empID := range day.Shifts[shift.Code] {
			assignedByRole[roleOf[empID.String()]]++
		}

		for _, req := range c.catalog.RequirementsFor(shift.Code) {
			assigned := assignedByRole[req.Role]
			if assigned > req.Min {
				assigned = req.Min // 超出最小配额的部分不提高覆盖率
			}

			dayCov.RequiredSlots += req.Min
			dayCov.Assigned += assigned
			shiftRequired[shift.Code] += req.Min
			shiftAssigned[shift.Code] += assigned
			roleRequired[req.Role] += req.Min
			roleAssigned[req.Role] += assigned

			if assigned < req.Min {
				metrics.UncoveredSlots = append(metrics.UncoveredSlots, UncoveredSlot{
					Date:      key,
					ShiftCode: shift.Code,
					Role:      req.Role,
					Required:  req.Min,
					Assigned:  assigned,
				})
			}
		}
		dayCov.TotalHours += float64(len(day.Shifts[shift.Code])) * shift.DurationHours
	}
}

// analyzeSaturday 对照周六配额统计一个周六
func (c *CoverageAnalyzer) analyzeSaturday(key string, day *model.DayPlan, roleOf map[string]model.Role,
	dayCov *DayCoverage, metrics *CoverageMetrics, roleRequired, roleAssigned map[model.Role]int) {

	saturday := model.SaturdayShift()
	assignedByRole := make(map[model.Role]int)
	for _, empID := range day.Shifts[model.SaturdayShiftCode] {
		assignedByRole[roleOf[empID.String()]]++
		dayCov.TotalHours += saturday.DurationHours
	}

	for _, role := range model.AllRoles() {
		required := c.quota.Count(role)
		assigned := assignedByRole[role]
		if assigned > required {
			assigned = required
		}

		dayCov.RequiredSlots += required
		dayCov.Assigned += assigned
		roleRequired[role] += required
		roleAssigned[role] += assigned

		if assigned < required {
			metrics.UncoveredSlots = append(metrics.UncoveredSlots, UncoveredSlot{
				Date:      key,
				ShiftCode: model.SaturdayShiftCode,
				Role:      role,
				Required:  required,
				Assigned:  assigned,
			})
		}
	}
}
