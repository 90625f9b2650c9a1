package handler

import (
	"net/http"

	"github.com/yuepai/yuepai/internal/rules"
	"github.com/yuepai/yuepai/pkg/errors"
)

// RulesHandler 规则目录处理器
type RulesHandler struct{}

// NewRulesHandler 创建规则目录处理器
func NewRulesHandler() *RulesHandler {
	return &RulesHandler{}
}

// Library 返回引擎支持的规则目录
func (h *RulesHandler) Library(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, rules.LibraryResponse{Library: rules.GetLibrary()})
}

// Presets 返回内置的规则参数预设
func (h *RulesHandler) Presets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": rules.GetPresets(),
	})
}
