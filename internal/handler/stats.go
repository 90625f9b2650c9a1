package handler

import (
	"fmt"
	"net/http"

	"github.com/yuepai/yuepai/internal/repository"
	"github.com/yuepai/yuepai/pkg/errors"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/stats"
)

// StatsHandler 统计分析处理器
// 基于已保存的排班运行结果产出覆盖率与公平性分析
type StatsHandler struct {
	plans     *repository.PlanRepository
	employees *repository.EmployeeRepository
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(plans *repository.PlanRepository, employees *repository.EmployeeRepository) *StatsHandler {
	return &StatsHandler{plans: plans, employees: employees}
}

// StatsResponse 统计分析响应
type StatsResponse struct {
	PlanID   string                 `json:"plan_id"`
	Period   string                 `json:"period"`
	Score    float64                `json:"score"`
	Coverage *stats.CoverageMetrics `json:"coverage"`
	Fairness *stats.FairnessMetrics `json:"fairness"`
}

// Get 查询某组织某周期的统计分析
// 查询参数: org_id, year, month
// 花名册按当前在职员工取，运行后档案有变动时角色口径可能有偏差
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.plans == nil || h.employees == nil {
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
	result := record.Result
	if result == nil || result.Plan == nil {
		respondError(w, errors.New(errors.CodeInternal, "计划记录缺少结果数据"))
		return
	}

	roster, err := h.employees.ListActive(r.Context(), orgID)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	coverage := stats.NewCoverageAnalyzer(nil, model.DefaultSaturdayQuota()).Analyze(result.Plan, roster)
	fairness := stats.NewFairnessAnalyzer().Analyze(result.Records, roster)

	respondJSON(w, http.StatusOK, StatsResponse{
		PlanID:   result.Plan.ID.String(),
		Period:   fmt.Sprintf("%d-%02d", record.Year, int(record.Month)),
		Score:    record.Score,
		Coverage: coverage,
		Fairness: fairness,
	})
}
