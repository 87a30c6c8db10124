// Package tool registers and executes schema-described tools for agents.
//
// Invariants:
// - Tool names are unique within a Registry; duplicate registration is rejected.
// - Tools are immutable once registered; only call counters and timestamps change.
// - Arguments are schema-validated before execution.
// - Execution failures are reported through Result, never as panics or errors
//   escaping the Executor.
//
// Usage:
//
//	reg := tool.NewRegistry()
//	_ = reg.Register(tool.Definition{
//		Name:        "echo",
//		Description: "Echo input",
//		Schema: map[string]any{
//			"type":       "object",
//			"properties": map[string]any{"text": map[string]any{"type": "string"}},
//			"required":   []any{"text"},
//		},
//		Handler: func(ctx context.Context, args map[string]any) (any, error) { return args["text"], nil },
//	})
//	exec := tool.NewExecutor(reg)
//	res := exec.Execute(ctx, "echo", map[string]any{"text": "hi"})
package tool
