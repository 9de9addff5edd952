package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TaskVerification is one entry of a taskVerifications argument: a task ID
// together with the names the caller expects it to have.
type TaskVerification struct {
	TaskID             string `json:"taskId"`
	TaskName           string `json:"taskName"`
	CurrentProjectName string `json:"currentProjectName"`
}

const taskVerificationsSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["taskId", "taskName", "currentProjectName"],
    "properties": {
      "taskId": { "type": "string", "minLength": 1 },
      "taskName": { "type": "string" },
      "currentProjectName": { "type": "string" }
    }
  }
}`

var taskVerificationsSchema = gojsonschema.NewStringLoader(taskVerificationsSchemaJSON)

// The embedded schema is decoded at init so a broken constant fails at startup.
var _ = mustDecodeSchema(taskVerificationsSchemaJSON)

func mustDecodeSchema(raw string) map[string]any {
	var schema map[string]any
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		panic(fmt.Sprintf("batch: invalid embedded schema: %v", err))
	}
	return schema
}

// TaskVerificationsSchema returns the JSON schema of a taskVerifications
// argument, for use in tool definitions. Each call returns a fresh copy.
func TaskVerificationsSchema() map[string]any {
	return mustDecodeSchema(taskVerificationsSchemaJSON)
}

// ParseTaskVerifications validates param against the taskVerifications schema
// and decodes it. param is either the decoded array or a JSON string holding it.
func ParseTaskVerifications(param any, paramName string) ([]TaskVerification, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var doc gojsonschema.JSONLoader
	switch v := param.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		doc = gojsonschema.NewStringLoader(v)
	default:
		doc = gojsonschema.NewGoLoader(v)
	}

	result, err := gojsonschema.Validate(taskVerificationsSchema, doc)
	if err != nil {
		return nil, fmt.Errorf("%s must be an array of task verifications: %w", paramName, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("invalid %s: %s", paramName, strings.Join(issues, "; "))
	}

	var raw []byte
	if s, ok := param.(string); ok {
		raw = []byte(s)
	} else if raw, err = json.Marshal(param); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", paramName, err)
	}

	var items []TaskVerification
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", paramName, err)
	}
	return items, nil
}

// ProcessBatch runs fn on every item in order and collects one result per
// item. A failing item never stops the batch.
func ProcessBatch[T any](items []T, id func(T) string, fn func(T) (string, error)) []Result {
	results := make([]Result, 0, len(items))

	for _, item := range items {
		res, err := fn(item)
		if err != nil {
			results = append(results, NewErrorResult(id(item), err))
			continue
		}
		results = append(results, NewSuccessResult(id(item), res))
	}

	return results
}

// Count returns how many results succeeded and failed.
func Count(results []Result) (successful, failed int) {
	for _, r := range results {
		if r.Status == StatusSuccess {
			successful++
		} else {
			failed++
		}
	}
	return successful, failed
}

// FormatSummary renders results as a plain text report. Successes are listed
// under the headline, failures under an Errors block as
// "✗ <failureLabel> <id>: <error>".
func FormatSummary(headline, failureLabel string, results []Result) string {
	lines := []string{headline, ""}
	var failures []string

	for _, r := range results {
		if r.Status == StatusSuccess {
			lines = append(lines, "✓ "+r.Result)
			continue
		}
		failures = append(failures, fmt.Sprintf("✗ %s %s: %s", failureLabel, r.ID, r.Error))
	}

	if len(failures) > 0 {
		lines = append(lines, "", "Errors:")
		lines = append(lines, failures...)
	}
	return strings.Join(lines, "\n")
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
