package extractor

import (
	"fmt"
	"sort"
	"strings"

	"fleetdesk/internal/port"
)

// BuildPrompt composes the provider-agnostic prompt for one extraction call:
// the stage's instructions, the record slice, and the context accumulated by
// earlier stages, followed by the response contract DecodeResponse expects.
func BuildPrompt(input port.ExtractInput) string {
	var b strings.Builder

	b.WriteString(input.Instructions)
	b.WriteString("\n\nBOOKING CONTENT:\n")
	b.WriteString(input.Slice)

	if len(input.Context) > 0 {
		b.WriteString("\n\nALREADY EXTRACTED (by earlier stages, do not re-extract):\n")
		keys := make([]string, 0, len(input.Context))
		for k := range input.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, input.Context[k])
		}
	}

	b.WriteString(`
Respond with ONLY a JSON object of this exact shape:
{
  "fields": {"<field_name>": "<value or null>"},
  "confidence": {"<field_name>": <0.0-1.0>},
  "reasoning": "<one short sentence>"
}
Use null for any field the content does not answer. Never invent values.`)

	return b.String()
}
