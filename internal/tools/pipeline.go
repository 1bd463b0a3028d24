package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/policy"
	"github.com/nextlevelbuilder/vtgo/internal/tools/schema"
)

// schemaValidator is process-wide: compiled schemas are immutable per tool
// name and safe to share across tasks/registries.
var schemaValidator = schema.NewValidator()

// ExecuteOptions carries the per-call knobs the pipeline needs beyond the
// tool name and arguments.
type ExecuteOptions struct {
	SessionID     string
	Prevalidated  bool
	Policy        policy.Policy
	PolicyContext api.PolicyContext
}

// ExecuteTool is the sole execution entrypoint (§4.1). It always returns a
// JSON value; ordinary tool errors are encoded into it. Policy denials and
// reentrancy/stack violations are returned as a Go error instead, since
// those must abort the turn rather than be observed by the model.
func (r *Registry) ExecuteTool(ctx context.Context, task *Task, name string, args api.Args, opts ExecuteOptions) (json.RawMessage, error) {
	canonical, nameErr := r.resolveName(name)
	if nameErr != nil {
		return encodeError(api.ErrToolNotFound, nameErr.Error()), nil
	}

	tool, ok := r.Get(canonical)
	if !ok {
		return encodeError(api.ErrToolNotFound, fmt.Sprintf("tool not found: %q", canonical)), nil
	}

	// Step 1: reentrancy guard.
	leave, err := task.reentrancy.enter(canonical)
	if err != nil {
		return nil, &PolicyViolationError{Message: err.Error()}
	}
	defer leave()

	cls := classify(canonical)

	// Step 2: preflight validation.
	if !opts.Prevalidated {
		if err := r.preflightValidate(canonical, tool, args, opts.PolicyContext); err != nil {
			return encodeError(api.ErrToolArgsInvalid, err.Error()), nil
		}
	}

	// Step 3: plan-mode gate.
	if r.planModeFn != nil {
		active, extra := r.planModeFn()
		if active && cls.mutating && !isPlanModeAllowed(canonical, extra) {
			return nil, &PolicyViolationError{
				Message: fmt.Sprintf("tool %q is mutating and not allowed while plan mode is active", canonical),
			}
		}
	}

	// Step 4: circuit breaker gate.
	allowed, preCallBackoff := r.breakers.Allow(cls.category)
	if !allowed {
		r.breakers.RecordFailure(canonical, api.ErrExecutionError, cls.category, ceilingFor(cls.category))
		return encodeError(api.ErrExecutionError, fmt.Sprintf("circuit breaker open for category %q", cls.category)), nil
	}
	if preCallBackoff > 0 {
		select {
		case <-time.After(preCallBackoff):
		case <-ctx.Done():
			return encodeError(api.ErrExecutionError, ctx.Err().Error()), nil
		}
	}

	// Step 5: timeout resolution.
	effective := effectiveTimeout(r.breakers, cls.category)

	// Step 6: loop detection.
	repeatCount := task.loops.observe(canonical, args)
	if repeatCount > loopDetectLimit {
		if cls.readOnly {
			if cached, ok := task.loops.lastResult(canonical, args); ok {
				return annotateJSON(cached, map[string]any{
					"loop_detected":        true,
					"reused_recent_result": true,
					"repeat_count":         repeatCount,
					"limit":                loopDetectLimit,
				}), nil
			}
		}
		return nil, &PolicyViolationError{
			Message: fmt.Sprintf(
				"tool %q called %d times with identical arguments; stop retrying and try a different approach",
				canonical, repeatCount,
			),
			LoopDetected: true,
			RepeatCount:  repeatCount,
		}
	}

	// Step 7: full-auto allow-list.
	if r.fullAuto && len(opts.PolicyContext.FullAutoAllowlist) > 0 {
		listed := false
		for _, n := range opts.PolicyContext.FullAutoAllowlist {
			if n == canonical {
				listed = true
				break
			}
		}
		if !listed {
			return nil, &PolicyViolationError{Message: fmt.Sprintf("tool %q is not in the full-auto allow-list", canonical)}
		}
	}

	// Step 8: policy decision.
	if opts.Policy != nil {
		if err := opts.Policy.Validate(ctx, opts.PolicyContext, tool, args); err != nil {
			if perr, ok := err.(*policy.PolicyError); ok {
				return nil, &PolicyViolationError{Message: perr.Message, Code: perr.Code}
			}
			return nil, &PolicyViolationError{Message: err.Error()}
		}
	}

	// Step 9: argument rewriting happens inside Policy.Validate in this
	// implementation (the gateway mutates a copy of args before Validate
	// returns); nothing further to do here beyond surfacing failures,
	// already handled above.

	// Step 10/11: routing + execution with timeout.
	cacheK := ""
	targetPath, _ := args["path"].(string)
	if cls.cacheable {
		argsKey := callKey(canonical, args)
		cacheK = cacheKey(canonical, argsKey, targetPath, opts.PolicyContext.WorkspaceRoot)
		if cached, ok := r.cache.get(cacheK); ok {
			return annotateJSON(cached, map[string]any{"cache_hit": true}), nil
		}
	}

	result, execErr := r.invokeWithRetry(ctx, tool, args, cls, effective)

	// Step 12: outcome classification. invokeWithRetry already records a
	// breaker success on its own success path; only failures need
	// recording here.
	if execErr != nil {
		code := classifyError(execErr)
		r.breakers.RecordFailure(canonical, code, cls.category, ceilingFor(cls.category))
		return encodeError(code, execErr.Error()), nil
	}
	if result.Status == "error" {
		code := classifyToolResultError(result)
		r.breakers.RecordFailure(canonical, code, cls.category, ceilingFor(cls.category))
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return encodeError(api.ErrExecutionError, err.Error()), nil
	}

	// Step 13: spooling for large outputs.
	if r.spool != nil && len(raw) > largeOutputThreshold {
		if spoolPath, err := r.spool.Spool(opts.SessionID, canonical, raw); err == nil {
			raw = annotateJSON(raw, map[string]any{"spooled_to": spoolPath})
		}
	}

	// loop detector remembers the last successful result for read-only reuse.
	if result.Status != "error" {
		task.loops.recordResult(canonical, args, string(raw))
	}

	// Step 7 (cache insert) and Step 8 (invalidate by modified paths) of §4.6
	// are driven from the caller's modified-file bookkeeping via
	// InvalidateCache; here we only populate the cache for cacheable tools.
	if cls.cacheable && result.Status != "error" && cacheK != "" {
		r.cache.put(cacheK, targetPath, string(raw))
	}

	// Step 15: history append is the caller's responsibility (the turn loop
	// appends a ToolExecutionRecord); ExecuteTool returns the normalized
	// JSON it needs to do so.
	return raw, nil
}

// InvalidateCache drops cached entries whose target path intersects any of
// the given modified files (§4.6 step 8).
func (r *Registry) InvalidateCache(modifiedPaths []string) {
	r.cache.invalidateByModifiedPaths(modifiedPaths)
}

const largeOutputThreshold = 32 * 1024

func (r *Registry) preflightValidate(name string, tool Tool, args api.Args, pctx api.PolicyContext) error {
	sch := tool.Schema()
	if err := schemaValidator.Validate(name, sch.Parameters, args); err != nil {
		return err
	}
	return nil
}

// invokeWithRetry applies §4.1's retry policy: only for read-only tools,
// only on Timeout/NetworkError, with the exact exponential+jitter backoff
// and a shared budget equal to the effective timeout ceiling.
func (r *Registry) invokeWithRetry(ctx context.Context, tool Tool, args api.Args, cls classification, effective time.Duration) (api.ToolResult, error) {
	deadline := time.Now().Add(effective)
	var lastResult api.ToolResult
	var lastErr error

	for attempt := 0; attempt <= MaxRetryAttempts; attempt++ {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return api.ToolResult{Status: "error", Error: "timeout"}, nil
		}

		callCtx, cancel := context.WithTimeout(ctx, remaining)
		start := time.Now()
		result, err := tool.Execute(callCtx, args)
		latency := time.Since(start)
		cancel()

		if err == nil && result.Status != "error" {
			r.breakers.RecordSuccess(tool.Name(), cls.category, latency)
			return result, nil
		}

		lastResult, lastErr = result, err
		if !cls.readOnly || attempt == MaxRetryAttempts {
			break
		}

		code := classifyToolResultError(result)
		if err != nil {
			code = classifyError(err)
		}
		if !isRetryableCode(code) {
			break
		}

		backoff := backoffForAttempt(attempt)
		if backoff > time.Until(deadline) {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return api.ToolResult{Status: "error", Error: ctx.Err().Error()}, nil
		}
	}
	return lastResult, lastErr
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if err == context.DeadlineExceeded {
		return api.ErrTimeout
	}
	return api.ErrExecutionError
}

// networkErrorKeywords are substrings that indicate a tool's failure came
// from a transport/MCP-connection problem rather than the tool's own logic
// (e.g. a read-only tool reporting "permission denied" or "file not found"),
// matching spec.md §7's "NetworkError — provider or MCP transport failure".
var networkErrorKeywords = []string{
	"connection refused", "connection reset", "broken pipe", "no such host",
	"eof", "dial tcp", "network is unreachable", "transport",
}

func classifyToolResultError(result api.ToolResult) string {
	switch result.Error {
	case "timeout":
		return api.ErrTimeout
	case "":
		return api.ErrExecutionError
	}
	lower := strings.ToLower(result.Error)
	for _, kw := range networkErrorKeywords {
		if strings.Contains(lower, kw) {
			return api.ErrNetworkError
		}
	}
	return api.ErrExecutionError
}

func encodeError(code, message string) json.RawMessage {
	result := api.ToolResult{Status: "error", Error: message}
	raw, _ := json.Marshal(result)
	return annotateJSON(raw, map[string]any{"error_code": code})
}

func annotateJSON(raw any, extra map[string]any) json.RawMessage {
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case json.RawMessage:
		data = v
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		decoded = map[string]any{"content": string(data)}
	}
	for k, val := range extra {
		decoded[k] = val
	}
	out, err := json.Marshal(decoded)
	if err != nil {
		return json.RawMessage(data)
	}
	return json.RawMessage(out)
}

// PolicyViolationError is raised (not encoded) to abort the turn, per the
// execution lifecycle's treatment of reentrancy, plan-mode, full-auto, and
// policy-gateway denials.
type PolicyViolationError struct {
	Message      string
	Code         string
	LoopDetected bool
	RepeatCount  int
}

func (e *PolicyViolationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}
