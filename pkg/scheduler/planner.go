// Package scheduler 驱动整月、多站点的排班运行
//
// 编排器初始化可用性记录，按站点分拆花名册，按 ISO 周遍历
// 当月日期并在周界重置周计数器；工作日对每个站点分别求解
// 后并入同一天，周末从跨站点共享池全局求解一次，最后产出
// 约束报告与运行统计。单次运行是严格串行的同步计算；并发
// 运行各自持有独立的记录实例即可安全并行。
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/logger"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
	"github.com/yuepai/yuepai/pkg/scheduler/solver"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
)

// PlanRequest 排班请求
type PlanRequest struct {
	Year      int                `json:"year"`
	Month     time.Month         `json:"month"`
	Employees []*model.Employee  `json:"employees"`
	Catalog   *model.Catalog     `json:"catalog,omitempty"` // 空时使用默认目录
	Policy    *model.RulePolicy  `json:"policy,omitempty"`  // 空时使用默认策略
	Sites     []string           `json:"sites,omitempty"`   // 可选站点过滤
}

// Statistics 运行统计
type Statistics struct {
	TotalShifts     int             `json:"total_shifts"`
	TotalHours      float64         `json:"total_hours"`
	CoveragePercent float64         `json:"coverage_percent"`
	PlannedDays     int             `json:"planned_days"`
	UnplannedDays   int             `json:"unplanned_days"`
	NoShiftDays     int             `json:"no_shift_days"`
	RelaxedRetries  int             `json:"relaxed_retries"`
	DayResults      map[string]bool `json:"day_results"` // 日期键 → 是否排班成功
	Duration        time.Duration   `json:"duration"`
}

// PlanResult 排班结果
type PlanResult struct {
	Plan            *model.MonthPlan             `json:"plan"`
	Report          *constraint.Report           `json:"report"`
	Records         map[uuid.UUID]*state.Record  `json:"records"`
	Statistics      *Statistics                  `json:"statistics"`
	Success         bool                         `json:"success"`
	Recommendations []string                     `json:"recommendations,omitempty"`
}

// Planner 月度排班编排器
type Planner struct {
	logger *logger.PlannerLogger
}

// NewPlanner 创建编排器
func NewPlanner() *Planner {
	return &Planner{logger: logger.NewPlannerLogger()}
}

// Plan 执行一次完整的月度排班运行
// 约束失败在引擎内部通过回溯与宽松重试消化，仅输入级错误
// 通过 error 返回；"某天排不出来"是正常的可报告结果
func (p *Planner) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	started := time.Now()

	if req.Year < 1 || req.Month < time.January || req.Month > time.December {
		return nil, errors.InvalidPeriod(req.Year, int(req.Month))
	}

	roster := p.filterRoster(req)
	if len(roster) == 0 {
		return nil, errors.ErrEmptyRoster
	}

	policy := req.Policy
	if policy == nil {
		policy = model.DefaultRulePolicy()
	}
	policy.Normalize()

	catalog := req.Catalog
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}

	tracker := state.NewTracker(roster)
	rules := constraint.NewManagerWithDefaults(policy)
	cctx := constraint.NewContext(policy, catalog, tracker, roster)
	daySolver := solver.NewDaySolver(rules)

	plan := model.NewMonthPlan(req.Year, req.Month)
	days := plan.DayKeys()
	p.logger.StartPlan(plan.ID.String(), len(roster), len(days))

	// 周六从全站点周末池取人，集中保证周末公平
	weekendPool := p.weekendPool(roster)

	sites := p.sitesOf(roster)
	siteRosters := make(map[string][]*model.Employee, len(sites))
	for _, site := range sites {
		siteRosters[site] = p.siteRoster(roster, site)
	}

	// 按天推进，周界只重置一次周计数器；工作日逐站点求解后
	// 并入同一天，周末全局求解一次
	currentWeek := ""
	for _, dayKey := range days {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeTimeout, "排班运行被取消")
		}

		if week := model.ISOWeek(dayKey); week != currentWeek {
			tracker.ResetWeekly()
			currentWeek = week
		}

		if model.IsWeekend(dayKey) {
			plan.Days[dayKey] = daySolver.Solve(cctx, weekendPool, dayKey)
			continue
		}

		day := daySolver.Solve(cctx, siteRosters[sites[0]], dayKey)
		for _, site := range sites[1:] {
			day.Absorb(daySolver.Solve(cctx, siteRosters[site], dayKey))
		}
		plan.Days[dayKey] = day
	}

	report := rules.Score(cctx, plan)
	stats := p.collectStats(plan, tracker, started)

	result := &PlanResult{
		Plan:       plan,
		Report:     report,
		Records:    tracker.Snapshot(),
		Statistics: stats,
		Success:    stats.PlannedDays > 0,
	}
	if !result.Success {
		result.Recommendations = p.recommend(plan, roster)
	}

	p.logger.PlanComplete(plan.ID.String(), stats.Duration, report.Score, stats.CoveragePercent)
	return result, nil
}

// filterRoster 过滤在职员工并应用站点子集
func (p *Planner) filterRoster(req *PlanRequest) []*model.Employee {
	allowed := make(map[string]bool, len(req.Sites))
	for _, s := range req.Sites {
		allowed[s] = true
	}

	var roster []*model.Employee
	for _, emp := range req.Employees {
		if !emp.IsActive() {
			continue
		}
		if len(allowed) > 0 && !allowed[emp.SiteID] {
			continue
		}
		roster = append(roster, emp)
	}
	return roster
}

// sitesOf 返回花名册涉及的站点（确定性顺序）
func (p *Planner) sitesOf(roster []*model.Employee) []string {
	seen := make(map[string]bool)
	var sites []string
	for _, emp := range roster {
		if !seen[emp.SiteID] {
			seen[emp.SiteID] = true
			sites = append(sites, emp.SiteID)
		}
	}
	sort.Strings(sites)
	return sites
}

// siteRoster 返回某站点的花名册
func (p *Planner) siteRoster(roster []*model.Employee, site string) []*model.Employee {
	var out []*model.Employee
	for _, emp := range roster {
		if emp.SiteID == site {
			out = append(out, emp)
		}
	}
	return out
}

// weekendPool 返回可排周末的全站点合并池
func (p *Planner) weekendPool(roster []*model.Employee) []*model.Employee {
	var pool []*model.Employee
	for _, emp := range roster {
		if emp.WeekendEligible {
			pool = append(pool, emp)
		}
	}
	return pool
}

// collectStats 汇总运行统计
func (p *Planner) collectStats(plan *model.MonthPlan, tracker *state.Tracker, started time.Time) *Statistics {
	stats := &Statistics{
		DayResults: make(map[string]bool),
	}

	for _, key := range plan.DayKeys() {
		day := plan.Days[key]
		if day == nil {
			continue
		}
		switch day.Status {
		case model.DayPlanned:
			stats.PlannedDays++
			stats.DayResults[key] = true
		case model.DayUnplanned:
			stats.UnplannedDays++
			stats.DayResults[key] = false
		case model.DayNoShifts:
			stats.NoShiftDays++
		}
		if day.Relaxed {
			stats.RelaxedRetries++
		}
	}

	stats.TotalShifts = plan.TotalAssignments()
	for _, record := range tracker.Records() {
		stats.TotalHours += record.MonthHours
	}
	if required := stats.PlannedDays + stats.UnplannedDays; required > 0 {
		stats.CoveragePercent = float64(stats.PlannedDays) / float64(required) * 100
	}
	stats.Duration = time.Since(started)
	return stats
}

// recommend 为全月无解的运行生成改进建议
func (p *Planner) recommend(plan *model.MonthPlan, roster []*model.Employee) []string {
	recommendations := []string{
		"增加各角色在职人数，特别是每日配额涉及的角色",
		"放宽规则参数（上浮系数、连班上限、周末频次）后重试",
	}

	// 找出最常见的失败角色提示
	counts := make(map[model.Role]int)
	for _, emp := range roster {
		counts[emp.Role]++
	}
	for _, role := range model.AllRoles() {
		if counts[role] == 0 {
			recommendations = append(recommendations, "花名册缺少角色: "+string(role))
		}
	}
	return recommendations
}
