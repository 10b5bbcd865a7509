package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"fleetdesk/internal/port"
)

// wireResponse is the contract every provider prompt asks for.
type wireResponse struct {
	Fields     map[string]json.RawMessage `json:"fields"`
	Confidence json.RawMessage            `json:"confidence"`
	Reasoning  string                     `json:"reasoning"`
}

// DecodeResponse schema-validates the text a provider returned. Markdown
// fences are stripped and invalid JSON gets one repair pass before the
// response is rejected as malformed. The result is a tagged success; any
// failure wraps ErrMalformedResponse and is retryable.
func DecodeResponse(text, model string) (*port.ExtractOutput, error) {
	cleaned := stripFences(text)

	var wire wireResponse
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(cleaned)
		if repErr != nil {
			return nil, fmt.Errorf("%w: %v (repair: %v)", ErrMalformedResponse, err, repErr)
		}
		if err := json.Unmarshal([]byte(repaired), &wire); err != nil {
			return nil, fmt.Errorf("%w after repair: %v", ErrMalformedResponse, err)
		}
	}
	if len(wire.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields object", ErrMalformedResponse)
	}

	out := &port.ExtractOutput{
		Fields:      make(map[string]string, len(wire.Fields)),
		Confidences: make(map[string]float64, len(wire.Fields)),
		Reasoning:   wire.Reasoning,
		ModelUsed:   model,
		Raw:         json.RawMessage(cleaned),
	}
	for name, raw := range wire.Fields {
		out.Fields[name] = scalarString(raw)
	}
	decodeConfidence(wire.Confidence, out)
	return out, nil
}

// decodeConfidence accepts either a per-field map or a single number and
// fans a single number out to every field. Missing confidence defaults low
// rather than trusting the provider.
func decodeConfidence(raw json.RawMessage, out *port.ExtractOutput) {
	const defaultConfidence = 0.5

	var perField map[string]float64
	if err := json.Unmarshal(raw, &perField); err == nil && len(perField) > 0 {
		for name := range out.Fields {
			if c, ok := perField[name]; ok {
				out.Confidences[name] = clamp01(c)
			} else {
				out.Confidences[name] = defaultConfidence
			}
		}
		return
	}

	overall := defaultConfidence
	var single float64
	if err := json.Unmarshal(raw, &single); err == nil && single > 0 {
		overall = clamp01(single)
	}
	for name := range out.Fields {
		out.Confidences[name] = overall
	}
}

// scalarString renders a JSON scalar as its plain string form. Objects and
// arrays are kept as compact JSON so no extracted content is lost.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
