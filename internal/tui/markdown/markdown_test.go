package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPlanHeadingAndList(t *testing.T) {
	out := RenderPlan("# Plan\n\n- step one\n- step two\n")
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "step one")
	assert.Contains(t, out, "step two")
	assert.True(t, strings.Contains(out, "•"))
}

func TestRenderPlanEmpty(t *testing.T) {
	assert.Equal(t, "", RenderPlan(""))
	assert.Equal(t, "", RenderPlan("   \n\t"))
}

func TestRenderPlanOrderedList(t *testing.T) {
	out := RenderPlan("1. first\n2. second\n")
	assert.Contains(t, out, "1.")
	assert.Contains(t, out, "first")
}
