package common

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult renders v as indented JSON text.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult reports a failed action as "Failed to <action>: <err>" and
// remembers err for the instrumented wrapper, which derives the audit error
// kind from it.
func ErrorResult(ctx context.Context, action string, err error) *mcp.CallToolResult {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.set(err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}

type outcomeKey struct{}

// outcome carries the handler's failure back to the instrumented wrapper.
type outcome struct {
	mu  sync.Mutex
	err error
}

func (o *outcome) set(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *outcome) get() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}
