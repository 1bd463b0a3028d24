package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nextlevelbuilder/vtgo/cmd/ui"
	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/planmode"
	"github.com/nextlevelbuilder/vtgo/internal/tui"
	"github.com/nextlevelbuilder/vtgo/internal/tui/markdown"
	"github.com/nextlevelbuilder/vtgo/internal/tui/reflow"
)

type approvalState struct {
	autoApproveAll bool
}

func runTurnWithApprovals(ctx context.Context, eng api.Engine, sessionID, message string, approver *ui.CLIApprover, a *approvalState, planController *planmode.Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := eng.Send(ctx, sessionID, message)
	if err != nil {
		return err
	}

	for {
		pending, err := consumeEventStream(ctx, stream, cancel, planController)
		if err != nil {
			stream.Close()
			return err
		}
		if pending == nil {
			stream.Close()
			return nil
		}

		var decision api.Decision
		if a != nil && a.autoApproveAll {
			decision = api.Decision{Kind: api.DecisionApprove, RequestID: pending.RequestID, ToolCallID: pending.ToolCallID}
		} else {
			d, autoAll, err := approver.RequestApproval(ctx, *pending)
			if err != nil {
				stream.Close()
				return err
			}
			decision = d
			if a != nil && autoAll {
				a.autoApproveAll = true
			}
		}

		// Close the current stream and resume.
		_ = stream.Close()
		stream, err = eng.Resume(ctx, sessionID, decision)
		if err != nil {
			errStr := err.Error()
			// In auto-approve mode, if no pending approval exists or turn completed,
			// the turn may have already finished processing. This is OK.
			if strings.Contains(errStr, "no_pending_approval") {
				return nil
			}
			// If turn_in_progress but pending approval exists, try clearing and retrying
			// This handles the case where the session state is inconsistent
			if strings.Contains(errStr, "turn_in_progress") && strings.Contains(errStr, "pending") {
				// The approval flow got confused - just return nil to let user continue
				return nil
			}
			return err
		}
	}
}

func consumeEventStream(ctx context.Context, stream api.EventStream, cancel context.CancelFunc, planController *planmode.Controller) (*api.ApprovalPayload, error) {
	// Start input monitor for cancellation (switch to raw mode)
	cleanup := monitorCancellation(ctx, cancel)
	defer func() { cleanup() }()

	stopSpinner, spinnerDone := ui.StartLoading("Thinking...")
	defer func() {
		select {
		case <-stopSpinner:
		default:
			close(stopSpinner)
		}
		<-spinnerDone
	}()

	prefixPrinted := false
	firstEvent := true
	toolArgBuffer := "" // Buffer for scrolling tool argument display
	pendingPlan := ""   // raw plan text from the most recent exit_plan_mode call

	for {
		e, err := stream.Recv(ctx)
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}

		if firstEvent {
			close(stopSpinner)
			<-spinnerDone
			firstEvent = false
		}

		switch e.Type {
		case api.EventThinking:
			// Keep thinking output lightweight to avoid UI spam.
			if e.Thinking != nil && strings.TrimSpace(e.Thinking.Message) != "" {
				ui.Printf("\nü§î %s\n", e.Thinking.Message)
			}

		case api.EventDelta:
			if e.Delta == nil || e.Delta.Text == "" {
				continue
			}
			// Style based on delta source
			switch e.Delta.Source {
			case api.DeltaToolArg:
				// Scrolling gray display: only the trailing window is ever shown,
				// so keep the buffer itself bounded instead of accumulating the
				// full (possibly multi-MB) argument stream.
				toolArgBuffer += e.Delta.Text
				if len(toolArgBuffer) > 160 {
					toolArgBuffer = toolArgBuffer[len(toolArgBuffer)-160:]
				}
				display := toolArgBuffer
				if len(display) > 80 {
					display = "..." + display[len(display)-77:]
				}
				// Use carriage return to overwrite the same line
				ui.Printf("\r\033[90m   %s\033[0m\033[K", display)
			default:
				// Clear tool arg display line if any
				if toolArgBuffer != "" {
					ui.Print("\r\033[K") // Clear the gray line
					toolArgBuffer = ""
				}
				// Normal text
				if !prefixPrinted {
					ui.Print("\nü§ñ Agent: ")
					prefixPrinted = true
				}
				ui.Print(e.Delta.Text)
			}

		case api.EventToolCall:
			if e.ToolCall == nil {
				continue
			}
			// Clear tool arg display line
			if toolArgBuffer != "" {
				ui.Print("\r\033[K") // Clear the gray line
				toolArgBuffer = ""
			}
			// Show tool call with simple visual indicator
			ui.Printf("\n\nüîß tool_call %s\n", e.ToolCall.ToolName)

			// exit_plan_mode carries the drafted plan as raw markdown;
			// render it as styled blocks instead of dumping the source.
			if e.ToolCall.ToolName == "exit_plan_mode" {
				if plan, ok := e.ToolCall.Args["plan"].(string); ok && plan != "" {
					pendingPlan = plan
					ui.Println(markdown.RenderPlan(plan))
				}
			}

		case api.EventToolResult:
			if e.ToolResult == nil {
				continue
			}
			ui.Printf("\nüîß tool_result %s (%s)\n", e.ToolResult.ToolName, e.ToolResult.Result.Status)
			if e.ToolResult.Result.Status == "error" && e.ToolResult.Result.Error != "" {
				ui.Printf("Error: %s\n", e.ToolResult.Result.Error)
			} else if e.ToolResult.Result.Content != "" {
				wrapped := reflow.Wrap(e.ToolResult.Result.Content, reflow.TerminalWidth())
				ui.Print(wrapped)
				if !strings.HasSuffix(wrapped, "\n") {
					ui.Print("\n")
				}
			}

			// exit_plan_mode only records a pending exit (RequestExit); the
			// modal confirmation that actually flips the controller back to
			// Edit happens here, synchronously, before the next model turn.
			if e.ToolResult.ToolName == "exit_plan_mode" && e.ToolResult.Result.Status == "success" && planController != nil {
				// The ESC-cancellation monitor and the modal's own bubbletea
				// program would otherwise race over the same stdin fd; stop
				// it for the duration of the modal and restart it after.
				cleanup()
				modal, err := tui.RunModal(tui.NewPlanConfirmationModal(pendingPlan))
				cleanup = monitorCancellation(ctx, cancel)
				outcome := tui.PlanCancel
				if err == nil {
					outcome = modal.(*tui.PlanConfirmationModal).Outcome()
				}
				if outcome.ExitsPlanMode() {
					planController.ConfirmExit()
					ui.Println("Plan mode exited.")
				} else {
					planController.CancelExit()
					ui.Println("Staying in Plan mode.")
				}
				pendingPlan = ""
			}

		case api.EventPlan:
			if e.Plan == nil {
				continue
			}
			renderPlan(*e.Plan)

		case api.EventApproval:
			if e.Approval == nil {
				return nil, fmt.Errorf("approval event missing payload")
			}
			// UI uses approval payload for prompt; engine waits for Resume().
			return e.Approval, nil

		case api.EventError:
			if e.Error != nil {
				return nil, fmt.Errorf("%s: %s", e.Error.Code, e.Error.Message)
			}
			return nil, fmt.Errorf("unknown error")

		case api.EventDone:
			if prefixPrinted {
				ui.Print("\n")
			}
			return nil, nil
		}
	}
}

func renderPlan(plan api.PlanPayload) {
	if len(plan.Items) == 0 {
		return
	}
	total := len(plan.Items)
	done := 0
	for _, it := range plan.Items {
		if it.Status == api.PlanDone {
			done++
		}
	}

	ui.Printf("\n\nüóÇÔ∏è  plan %s (%d/%d done)\n", plan.PlanID, done, total)
	for _, it := range plan.Items {
		ui.Printf("  - [%s] %d. %s\n", it.Status, it.ID, it.Text)
	}
	ui.Print("\n")
}
