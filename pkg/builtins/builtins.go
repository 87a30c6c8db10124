// Package builtins registers baseline tools through the public registry API.
package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harun/armory/pkg/tool"
)

// maxFileBytes caps read_file output.
const maxFileBytes = 1 << 20

// Options configures builtin tool registration.
type Options struct {
	WorkspaceRoot string
}

// Register registers the baseline tools.
func Register(registry *tool.Registry, opts Options) error {
	if registry == nil {
		return errors.New("tool registry is required")
	}

	tools := []tool.Definition{
		echoTool(),
		timeNowTool(),
		calcTool(),
		jsonParseTool(),
		readFileTool(opts),
	}

	for _, def := range tools {
		if err := registry.Register(def); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", def.Name, err)
		}
	}
	return nil
}

func echoTool() tool.Definition {
	return tool.Definition{
		Name:        "echo",
		Description: "Return the provided text unchanged.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "Text to echo"},
			},
			"required": []any{"text"},
		},
		ReturnType: "string",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		},
	}
}

func timeNowTool() tool.Definition {
	return tool.Definition{
		Name:        "time_now",
		Description: "Return the current time, optionally in a named IANA timezone.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{"type": "string", "description": "IANA timezone name, defaults to UTC"},
			},
		},
		ReturnType: "string",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			loc := time.UTC
			if name, ok := args["timezone"].(string); ok && name != "" {
				parsed, err := time.LoadLocation(name)
				if err != nil {
					return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
				}
				loc = parsed
			}
			return time.Now().In(loc).Format(time.RFC3339), nil
		},
	}
}

func calcTool() tool.Definition {
	return tool.Definition{
		Name:        "calc",
		Description: "Apply a basic arithmetic operation to two numbers.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"op": map[string]any{"type": "string", "enum": []any{"add", "sub", "mul", "div"}, "description": "Operation"},
				"a":  map[string]any{"type": "number", "description": "Left operand"},
				"b":  map[string]any{"type": "number", "description": "Right operand"},
			},
			"required": []any{"op", "a", "b"},
		},
		ReturnType: "number",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := toFloat(args["a"])
			if err != nil {
				return nil, err
			}
			b, err := toFloat(args["b"])
			if err != nil {
				return nil, err
			}

			op, _ := args["op"].(string)
			switch op {
			case "add":
				return a + b, nil
			case "sub":
				return a - b, nil
			case "mul":
				return a * b, nil
			case "div":
				if b == 0 {
					return nil, errors.New("division by zero")
				}
				return a / b, nil
			default:
				return nil, fmt.Errorf("unknown operation %q", op)
			}
		},
	}
}

func jsonParseTool() tool.Definition {
	return tool.Definition{
		Name:        "json_parse",
		Description: "Parse a JSON document and return the decoded value.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"document": map[string]any{"type": "string", "description": "JSON document"},
			},
			"required": []any{"document"},
		},
		ReturnType: "object",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			doc, _ := args["document"].(string)
			var out any
			if err := json.Unmarshal([]byte(doc), &out); err != nil {
				return nil, fmt.Errorf("invalid JSON document: %w", err)
			}
			return out, nil
		},
	}
}

func readFileTool(opts Options) tool.Definition {
	return tool.Definition{
		Name:        "read_file",
		Description: "Read a text file from the workspace.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Path relative to the workspace root"},
			},
			"required": []any{"path"},
		},
		ReturnType: "object",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			rel, _ := args["path"].(string)
			rel = strings.TrimSpace(rel)
			if rel == "" {
				return nil, errors.New("path is required")
			}

			root := opts.WorkspaceRoot
			if root == "" {
				root = "."
			}

			path := filepath.Join(root, filepath.Clean("/"+rel))
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read file: %w", err)
			}

			truncated := false
			if len(data) > maxFileBytes {
				data = data[:maxFileBytes]
				truncated = true
			}

			return map[string]any{
				"content":   string(data),
				"size":      len(data),
				"truncated": truncated,
			}, nil
		},
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
