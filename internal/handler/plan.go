// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/internal/metrics"
	"github.com/yuepai/yuepai/internal/repository"
	"github.com/yuepai/yuepai/internal/rules"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
	"github.com/yuepai/yuepai/pkg/stats"
)

// PlanHandler 月度排班处理器
type PlanHandler struct {
	planner   *scheduler.Planner
	timeout   time.Duration
	plans     *repository.PlanRepository
	catalogs  *repository.CatalogRepository
	orgs      *repository.OrganizationRepository
	employees *repository.EmployeeRepository
}

// NewPlanHandler 创建排班处理器
// 仓储依赖可为nil，此时处理器以无状态模式工作，花名册与
// 规则参数必须随请求提供，结果不落库
func NewPlanHandler(timeout time.Duration, plans *repository.PlanRepository,
	catalogs *repository.CatalogRepository, orgs *repository.OrganizationRepository,
	employees *repository.EmployeeRepository) *PlanHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PlanHandler{
		planner:   scheduler.NewPlanner(),
		timeout:   timeout,
		plans:     plans,
		catalogs:  catalogs,
		orgs:      orgs,
		employees: employees,
	}
}

// PlanCreateRequest 排班生成请求
type PlanCreateRequest struct {
	OrgID     string            `json:"org_id"`
	Year      int               `json:"year"`
	Month     int               `json:"month"`
	Sites     []string          `json:"sites,omitempty"`
	Preset    string            `json:"preset,omitempty"`    // 规则参数预设名，policy为空时生效
	Employees []EmployeeInput   `json:"employees,omitempty"` // 空时从花名册仓储加载
	Policy    *model.RulePolicy `json:"policy,omitempty"`
	Catalog   *model.Catalog    `json:"catalog,omitempty"`
	Timeout   int               `json:"timeout_seconds,omitempty"`
}

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID                  string  `json:"id,omitempty"`
	Name                string  `json:"name"`
	Code                string  `json:"code"`
	Role                string  `json:"role"`
	SiteID              string  `json:"site_id,omitempty"`
	Status              string  `json:"status,omitempty"`
	MonthlyTargetHours  float64 `json:"monthly_target_hours,omitempty"`
	OvertimeTolerance   float64 `json:"overtime_tolerance,omitempty"`
	MaxConsecutiveDays  int     `json:"max_consecutive_days,omitempty"`
	MinRestHours        int     `json:"min_rest_hours,omitempty"`
	WeekendEligible     bool    `json:"weekend_eligible"`
	HolidayEligible     bool    `json:"holiday_eligible"`
	MaxWeekendsPerMonth int     `json:"max_weekends_per_month,omitempty"`
}

// PlanCreateResponse 排班生成响应
type PlanCreateResponse struct {
	Success         bool                   `json:"success"`
	PlanID          string                 `json:"plan_id"`
	Plan            *model.MonthPlan       `json:"plan"`
	Report          *constraint.Report     `json:"report"`
	Statistics      *scheduler.Statistics  `json:"statistics"`
	Fairness        *stats.FairnessMetrics `json:"fairness,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Duration        string                 `json:"duration"`
}

// Create 生成月度排班
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req PlanCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	orgID, appErr := h.validateCreateRequest(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	timeout := h.timeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	roster, appErr := h.resolveRoster(ctx, orgID, req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	policy, appErr := h.resolvePolicy(ctx, orgID, &req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	catalog, appErr := h.resolveCatalog(ctx, orgID, req.Catalog)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result, err := h.planner.Plan(ctx, &scheduler.PlanRequest{
		Year:      req.Year,
		Month:     time.Month(req.Month),
		Employees: roster,
		Catalog:   catalog,
		Policy:    policy,
		Sites:     req.Sites,
	})
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	fairness := stats.NewFairnessAnalyzer().Analyze(result.Records, roster)
	h.recordMetrics(orgID.String(), result, fairness)

	if h.plans != nil {
		if err := h.plans.Save(ctx, orgID, result); err != nil {
			respondError(w, toAppError(err))
			return
		}
	}

	respondJSON(w, http.StatusOK, PlanCreateResponse{
		Success:         result.Success,
		PlanID:          result.Plan.ID.String(),
		Plan:            result.Plan,
		Report:          result.Report,
		Statistics:      result.Statistics,
		Fairness:        fairness,
		Recommendations: result.Recommendations,
		Duration:        result.Statistics.Duration.String(),
	})
}

// Get 查询已保存的月度排班
// 查询参数: org_id, year, month
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.plans == nil {
		respondError(w, errors.New(errors.CodeNotFound, "未配置计划存储"))
		return
	}

	orgID, year, month, appErr := parsePeriodQuery(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	record, err := h.plans.GetByPeriod(r.Context(), orgID, year, month)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// validateCreateRequest 验证排班生成请求
func (h *PlanHandler) validateCreateRequest(req *PlanCreateRequest) (uuid.UUID, *errors.AppError) {
	if req.OrgID == "" {
		return uuid.Nil, errors.InvalidInput("org_id", "组织ID不能为空")
	}
	orgID, err := uuid.Parse(req.OrgID)
	if err != nil {
		return uuid.Nil, errors.InvalidInput("org_id", "无效的组织ID格式")
	}
	if req.Year < 2000 || req.Year > 2100 {
		return uuid.Nil, errors.InvalidPeriod(req.Year, req.Month)
	}
	if req.Month < 1 || req.Month > 12 {
		return uuid.Nil, errors.InvalidPeriod(req.Year, req.Month)
	}
	if len(req.Employees) == 0 && h.employees == nil {
		return uuid.Nil, errors.InvalidInput("employees", "员工列表不能为空")
	}
	return orgID, nil
}

// resolveRoster 解析花名册：请求内联优先，否则从仓储加载
func (h *PlanHandler) resolveRoster(ctx context.Context, orgID uuid.UUID, inputs []EmployeeInput) ([]*model.Employee, *errors.AppError) {
	if len(inputs) == 0 {
		roster, err := h.employees.ListActive(ctx, orgID)
		if err != nil {
			return nil, toAppError(err)
		}
		return roster, nil
	}

	roster := make([]*model.Employee, 0, len(inputs))
	for _, in := range inputs {
		emp, appErr := employeeFromInput(in)
		if appErr != nil {
			return nil, appErr
		}
		emp.OrgID = orgID
		roster = append(roster, emp)
	}
	return roster, nil
}

// resolvePolicy 解析规则参数：请求内联 > 预设 > 组织配置 > 默认
func (h *PlanHandler) resolvePolicy(ctx context.Context, orgID uuid.UUID, req *PlanCreateRequest) (*model.RulePolicy, *errors.AppError) {
	if req.Policy != nil {
		return req.Policy, nil
	}
	if req.Preset != "" {
		preset := rules.PresetByName(req.Preset)
		if preset == nil {
			return nil, errors.InvalidInput("preset", "未知的规则预设: "+req.Preset)
		}
		return preset.Policy, nil
	}
	if h.orgs != nil {
		policy, err := h.orgs.PolicyOf(ctx, orgID)
		if err != nil {
			return nil, toAppError(err)
		}
		return policy, nil
	}
	return model.DefaultRulePolicy(), nil
}

// resolveCatalog 解析班次目录：请求内联 > 组织配置 > 默认
func (h *PlanHandler) resolveCatalog(ctx context.Context, orgID uuid.UUID, inline *model.Catalog) (*model.Catalog, *errors.AppError) {
	if inline != nil {
		return inline, nil
	}
	if h.catalogs != nil {
		catalog, err := h.catalogs.GetByOrg(ctx, orgID)
		if err != nil {
			return nil, toAppError(err)
		}
		return catalog, nil
	}
	return model.DefaultCatalog(), nil
}

// recordMetrics 上报本次运行的监控指标
func (h *PlanHandler) recordMetrics(orgID string, result *scheduler.PlanResult, fairness *stats.FairnessMetrics) {
	metrics.RecordPlanRun(result.Success, result.Statistics.Duration)
	metrics.SetSolutionScore(orgID, result.Report.Score)
	metrics.SetCoverageRate(orgID, result.Statistics.CoveragePercent)
	metrics.SetFairnessGini(orgID, "workload", fairness.WorkloadGini)
	metrics.SetFairnessGini(orgID, "weekend", fairness.WeekendGini)

	violated := make(map[constraint.Code]bool)
	for _, v := range result.Report.HardViolations {
		violated[v.Code] = true
	}
	for _, v := range result.Report.SoftViolations {
		violated[v.Code] = true
	}
	for _, def := range rules.GetLibrary() {
		metrics.RecordConstraintEvaluation(string(def.Code), !violated[def.Code])
	}

	for _, day := range result.Plan.Days {
		switch {
		case day.Status == model.DayPlanned && day.Relaxed:
			metrics.RecordDayOutcome("relaxed")
		case day.Status == model.DayPlanned:
			metrics.RecordDayOutcome("planned")
		case day.Status == model.DayUnplanned:
			metrics.RecordDayOutcome("unplanned")
		default:
			metrics.RecordDayOutcome("no_shifts")
		}
	}
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// toAppError 将任意错误规整为AppError
func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	if err == context.DeadlineExceeded {
		return errors.New(errors.CodeTimeout, "排班计算超时，请尝试减少员工数量或拆分站点")
	}
	if err == context.Canceled {
		return errors.New(errors.CodeInternal, "请求已取消")
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

// parsePeriodQuery 解析 org_id/year/month 查询参数
func parsePeriodQuery(r *http.Request) (uuid.UUID, int, time.Month, *errors.AppError) {
	orgID, err := uuid.Parse(r.URL.Query().Get("org_id"))
	if err != nil {
		return uuid.Nil, 0, 0, errors.InvalidInput("org_id", "无效的组织ID格式")
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return uuid.Nil, 0, 0, errors.InvalidInput("year", "年份必须为整数")
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return uuid.Nil, 0, 0, errors.InvalidInput("month", "月份必须为整数")
	}
	if month < 1 || month > 12 {
		return uuid.Nil, 0, 0, errors.InvalidPeriod(year, month)
	}
	return orgID, year, time.Month(month), nil
}
