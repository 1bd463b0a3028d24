package systool

import (
	"context"
	"encoding/json"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/obs/log"
	"github.com/nextlevelbuilder/vtgo/internal/planmode"
)

// EnterPlanModeTool switches the session into the read-only Plan state.
type EnterPlanModeTool struct {
	Controller *planmode.Controller
}

func (t *EnterPlanModeTool) Name() string        { return "enter_plan_mode" }
func (t *EnterPlanModeTool) Risk() api.RiskLevel { return api.RiskNone }

func (t *EnterPlanModeTool) Schema() api.ToolSchema {
	return api.ToolSchema{
		Name:        "enter_plan_mode",
		Description: "Enter Plan mode: investigate and draft a plan without making any edits. Mutating tools are blocked until exit_plan_mode is called and confirmed.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (t *EnterPlanModeTool) Execute(ctx context.Context, args api.Args) (api.ToolResult, error) {
	t.Controller.EnterPlan()
	logger.Info("PlanMode", "entered plan mode", nil)
	return api.ToolResult{Status: "success", Content: "plan mode active"}, nil
}

// ExitPlanModeArgs carries the plan text shown in the confirmation modal.
type ExitPlanModeArgs struct {
	Plan string `json:"plan"`
}

// ExitPlanModeTool requests a transition back to Edit mode. The request is
// held pending until the session TUI's modal confirms it (see ConfirmExit).
type ExitPlanModeTool struct {
	Controller *planmode.Controller
}

func (t *ExitPlanModeTool) Name() string        { return "exit_plan_mode" }
func (t *ExitPlanModeTool) Risk() api.RiskLevel { return api.RiskNone }

func (t *ExitPlanModeTool) Schema() api.ToolSchema {
	return api.ToolSchema{
		Name:        "exit_plan_mode",
		Description: "Present the drafted plan and request to leave Plan mode so mutating tools become available. Requires user confirmation via modal.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"plan": map[string]any{
					"type":        "string",
					"description": "The plan to present for confirmation",
				},
			},
			"required": []string{"plan"},
		},
	}
}

func (t *ExitPlanModeTool) Execute(ctx context.Context, args api.Args) (api.ToolResult, error) {
	var parsed ExitPlanModeArgs
	argsJSON, _ := json.Marshal(args)
	_ = json.Unmarshal(argsJSON, &parsed)

	t.Controller.RequestExit()
	logger.Info("PlanMode", "exit requested, awaiting confirmation", map[string]interface{}{
		"plan_length": len(parsed.Plan),
	})
	return api.ToolResult{
		Status:  "success",
		Content: "exit requested, awaiting user confirmation",
	}, nil
}
