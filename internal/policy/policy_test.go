package policy

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name string
	risk api.RiskLevel
}

func (t fakeTool) Name() string        { return t.name }
func (t fakeTool) Risk() api.RiskLevel { return t.risk }

func TestValidateRejectsWorkspaceEscape(t *testing.T) {
	p := NewDefaultPolicy()
	pctx := api.PolicyContext{WorkspaceRoot: "/workspace"}
	err := p.Validate(context.Background(), pctx, fakeTool{name: "read_file"}, api.Args{"path": "../../etc/passwd"})
	require.Error(t, err)
	var polErr *PolicyError
	require.ErrorAs(t, err, &polErr)
	assert.Equal(t, api.ErrWorkspaceEscape, polErr.Code)
}

func TestValidateAllowsPathWithinWorkspace(t *testing.T) {
	p := NewDefaultPolicy()
	pctx := api.PolicyContext{WorkspaceRoot: "/workspace"}
	err := p.Validate(context.Background(), pctx, fakeTool{name: "read_file"}, api.Args{"path": "/workspace/src/main.go"})
	assert.NoError(t, err)
}

func TestValidateRejectsShellMetacharacterInGrepPattern(t *testing.T) {
	p := NewDefaultPolicy()
	err := p.Validate(context.Background(), api.PolicyContext{}, fakeTool{name: "grep"}, api.Args{"pattern": "foo; rm -rf /"})
	require.Error(t, err)
	var polErr *PolicyError
	require.ErrorAs(t, err, &polErr)
	assert.Equal(t, api.ErrToolArgsInvalid, polErr.Code)
}

func TestValidateAllowsPlainGrepPattern(t *testing.T) {
	p := NewDefaultPolicy()
	err := p.Validate(context.Background(), api.PolicyContext{}, fakeTool{name: "grep"}, api.Args{"pattern": "func.*Execute"})
	assert.NoError(t, err)
}

func TestNeedApprovalAutoFlagsDangerousShellCommand(t *testing.T) {
	p := NewDefaultPolicy()
	needs := p.NeedApproval(context.Background(), api.PolicyContext{ApprovalMode: api.ModeAuto}, fakeTool{name: "shell"}, api.Args{"command": "rm -rf /tmp/x"})
	assert.True(t, needs)
}

func TestNeedApprovalFullAutoSkipsApproval(t *testing.T) {
	p := NewDefaultPolicy()
	needs := p.NeedApproval(context.Background(), api.PolicyContext{ApprovalMode: api.ModeFullAuto}, fakeTool{name: "shell"}, api.Args{"command": "rm -rf /tmp/x"})
	assert.False(t, needs)
}
