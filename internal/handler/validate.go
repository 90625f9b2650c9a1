package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
	"github.com/yuepai/yuepai/pkg/validator"
)

// ValidateHandler 计划审核处理器
// 对可能被人工修改过的计划做独立复核：冲突检测走validator，
// 质量评分走约束引擎
type ValidateHandler struct{}

// NewValidateHandler 创建审核处理器
func NewValidateHandler() *ValidateHandler {
	return &ValidateHandler{}
}

// ValidateRequest 计划审核请求
type ValidateRequest struct {
	Plan      *model.MonthPlan  `json:"plan"`
	Employees []EmployeeInput   `json:"employees"`
	Policy    *model.RulePolicy `json:"policy,omitempty"`
	Catalog   *model.Catalog    `json:"catalog,omitempty"`
}

// ValidateResponse 计划审核响应
type ValidateResponse struct {
	Valid     bool                 `json:"valid"`
	Score     float64              `json:"score"`
	Conflicts []validator.Conflict `json:"conflicts"`
	Report    *constraint.Report   `json:"report"`
}

// Validate 审核计划
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Plan == nil {
		respondError(w, errors.InvalidInput("plan", "计划不能为空"))
		return
	}
	if len(req.Employees) == 0 {
		respondError(w, errors.InvalidInput("employees", "员工列表不能为空"))
		return
	}

	roster := make([]*model.Employee, 0, len(req.Employees))
	for _, in := range req.Employees {
		emp, appErr := employeeFromInput(in)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		roster = append(roster, emp)
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

	conflicts := validator.NewConflictDetector(policy, catalog).DetectAll(req.Plan, roster)

	// 评分用的可用性记录按计划重放，而非信任提交方
	tracker := state.NewTracker(roster)
	replayPlan(tracker, req.Plan, catalog)

	rules := constraint.NewManagerWithDefaults(policy)
	cctx := constraint.NewContext(policy, catalog, tracker, roster)
	report := rules.Score(cctx, req.Plan)

	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:     len(conflicts) == 0 && report.Valid(),
		Score:     report.Score,
		Conflicts: conflicts,
		Report:    report,
	})
}

// replayPlan 按日期顺序将计划中的分配重放进可用性记录
func replayPlan(tracker *state.Tracker, plan *model.MonthPlan, catalog *model.Catalog) {
	currentWeek := ""
	saturday := model.SaturdayShift()
	for _, key := range plan.DayKeys() {
		if week := model.ISOWeek(key); week != currentWeek {
			tracker.ResetWeekly()
			currentWeek = week
		}
		day := plan.Days[key]
		if day == nil || day.Status != model.DayPlanned {
			continue
		}
		for code, assigned := range day.Shifts {
			shift := catalog.ShiftByCode(code)
			if shift == nil && code == model.SaturdayShiftCode {
				shift = &saturday
			}
			if shift == nil {
				continue
			}
			for _, empID := range assigned {
				tracker.Apply(empID, shift, key, model.IsWeekend(key))
			}
		}
	}
}

// employeeFromInput 将员工输入转换为领域模型
func employeeFromInput(in EmployeeInput) (*model.Employee, *errors.AppError) {
	id := uuid.New()
	if in.ID != "" {
		parsed, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.InvalidInput("employees", "无效的员工ID格式: "+in.ID)
		}
		id = parsed
	}
	role := model.Role(in.Role)
	if !role.Valid() {
		return nil, errors.InvalidInput("employees", "无效的员工角色: "+in.Role)
	}
	status := in.Status
	if status == "" {
		status = "active"
	}
	return &model.Employee{
		BaseModel:           model.BaseModel{ID: id},
		Name:                in.Name,
		Code:                in.Code,
		Role:                role,
		SiteID:              in.SiteID,
		Status:              status,
		MonthlyTargetHours:  in.MonthlyTargetHours,
		OvertimeTolerance:   in.OvertimeTolerance,
		MaxConsecutiveDays:  in.MaxConsecutiveDays,
		MinRestHours:        in.MinRestHours,
		WeekendEligible:     in.WeekendEligible,
		HolidayEligible:     in.HolidayEligible,
		MaxWeekendsPerMonth: in.MaxWeekendsPerMonth,
	}, nil
}
