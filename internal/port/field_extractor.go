package port

import (
	"context"
	"encoding/json"
)

// ExtractInput carries one request to the generative extraction capability.
type ExtractInput struct {
	Instructions string
	Slice        string
	Context      map[string]string
}

// ExtractOutput is the schema-validated response from a field extractor.
type ExtractOutput struct {
	Fields      map[string]string
	Confidences map[string]float64
	Reasoning   string
	ModelUsed   string
	Raw         json.RawMessage
}

// FieldExtractor abstracts the LLM-backed extraction capability. Responses
// are schema-validated by the provider before being returned; callers may
// treat any error as retryable unless it unwraps to a fatal type.
type FieldExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
