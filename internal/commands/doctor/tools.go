package doctor

import (
	"context"
	"strings"

	"github.com/hay-kot/hookbot/pkg/executil"
)

// Tool is an external program the bot depends on.
type Tool struct {
	Name string
	Path string
	Args []string // arguments that print the version
}

// ToolsCheck verifies that external tools can be executed.
type ToolsCheck struct {
	exec  executil.Executor
	tools []Tool
}

// NewToolsCheck creates a new tools check.
func NewToolsCheck(exec executil.Executor, tools ...Tool) *ToolsCheck {
	return &ToolsCheck{exec: exec, tools: tools}
}

func (c *ToolsCheck) Name() string {
	return "Media Tools"
}

func (c *ToolsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	for _, tool := range c.tools {
		out, err := c.exec.Run(ctx, tool.Path, tool.Args...)
		if err != nil {
			result.Items = append(result.Items, fail(tool.Name, tool.Path+": "+err.Error()))
			continue
		}

		result.Items = append(result.Items, pass(tool.Name, firstLine(string(out))))
	}

	return result
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
