// Package stats 提供排班结果的统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 工时公平性
	WorkloadGini        float64 `json:"workload_gini"`     // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance    float64 `json:"workload_variance"` // 工时方差
	WorkloadStdDev      float64 `json:"workload_std_dev"`  // 工时标准差
	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"`
	MaxHours            float64 `json:"max_hours"`
	MinHours            float64 `json:"min_hours"`
	HoursRange          float64 `json:"hours_range"` // 工时极差

	// 班次与周末公平性
	ShiftDistribution map[string]float64 `json:"shift_distribution"` // 各班次代码占比 (%)
	WeekendGini       float64            `json:"weekend_gini"`       // 周末班分配基尼系数

	// 员工级别统计
	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeID    uuid.UUID  `json:"employee_id"`
	EmployeeName  string     `json:"employee_name"`
	Role          model.Role `json:"role"`
	TotalHours    float64    `json:"total_hours"`
	ShiftCount    int        `json:"shift_count"`
	WeekendShifts int        `json:"weekend_shifts"`
	OvertimeHours float64    `json:"overtime_hours"` // 超出月目标的部分
	Deviation     float64    `json:"deviation"`      // 与平均工时的偏差百分比
}

// FairnessAnalyzer 公平性分析器
// 直接消费排班运行产出的可用性记录，无须回放计划
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性
func (f *FairnessAnalyzer) Analyze(records map[uuid.UUID]*state.Record, employees []*model.Employee) *FairnessMetrics {
	if len(records) == 0 || len(employees) == 0 {
		return &FairnessMetrics{
			ShiftDistribution:    make(map[string]float64),
			OverallFairnessScore: 100,
		}
	}

	employeeStats := f.collectEmployeeStats(records, employees)

	hours := make([]float64, len(employeeStats))
	weekends := make([]float64, len(employeeStats))
	for i, stat := range employeeStats {
		hours[i] = stat.TotalHours
		weekends[i] = float64(stat.WeekendShifts)
	}

	avgHours := mean(hours)
	variance := varianceOf(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := rangeOf(hours)

	for i := range employeeStats {
		if avgHours > 0 {
			employeeStats[i].Deviation = (employeeStats[i].TotalHours - avgHours) / avgHours * 100
		}
	}

	workloadGini := gini(hours)
	weekendGini := gini(weekends)

	return &FairnessMetrics{
		WorkloadGini:         workloadGini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgHoursPerEmployee:  avgHours,
		MaxHours:             maxHours,
		MinHours:             minHours,
		HoursRange:           maxHours - minHours,
		ShiftDistribution:    f.shiftDistribution(records),
		WeekendGini:          weekendGini,
		EmployeeStats:        employeeStats,
		OverallFairnessScore: f.overallScore(workloadGini, weekendGini, stdDev, avgHours),
	}
}

// collectEmployeeStats 从可用性记录汇总每个员工的数据
func (f *FairnessAnalyzer) collectEmployeeStats(records map[uuid.UUID]*state.Record, employees []*model.Employee) []EmployeeStat {
	result := make([]EmployeeStat, 0, len(employees))
	for _, emp := range employees {
		record := records[emp.ID]
		if record == nil {
			continue
		}
		stat := EmployeeStat{
			EmployeeID:    emp.ID,
			EmployeeName:  emp.Name,
			Role:          emp.Role,
			TotalHours:    record.MonthHours,
			ShiftCount:    len(record.AssignedDays),
			WeekendShifts: record.WeekendDays,
		}
		if emp.MonthlyTargetHours > 0 && record.MonthHours > emp.MonthlyTargetHours {
			stat.OvertimeHours = record.MonthHours - emp.MonthlyTargetHours
		}
		result = append(result, stat)
	}

	// 工时降序，便于直接展示负荷排行
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalHours != result[j].TotalHours {
			return result[i].TotalHours > result[j].TotalHours
		}
		return result[i].EmployeeName < result[j].EmployeeName
	})
	return result
}

// shiftDistribution 计算各班次代码的分配占比
func (f *FairnessAnalyzer) shiftDistribution(records map[uuid.UUID]*state.Record) map[string]float64 {
	counts := make(map[string]int)
	total := 0
	for _, record := range records {
		for _, code := range record.ShiftHistory {
			counts[code]++
			total++
		}
	}

	distribution := make(map[string]float64)
	if total == 0 {
		return distribution
	}
	for code, count := range counts {
		distribution[code] = float64(count) / float64(total) * 100
	}
	return distribution
}

// overallScore 计算综合公平性评分
func (f *FairnessAnalyzer) overallScore(workloadGini, weekendGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.5
		weekendWeight  = 0.35
		stdDevWeight   = 0.15
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	workloadScore := (1 - workloadGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore + weekendWeight*weekendScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// rangeOf 计算极值
func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
