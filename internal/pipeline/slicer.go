package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"fleetdesk/internal/agents"
	"fleetdesk/internal/domain"
)

// Slices partitions a submission into per-record slices. Horizontal layouts
// pair the label column with one record column each; vertical layouts pair
// the header row with one record row each. Narrative input is not split:
// every slice carries the full text plus its record index, and the agents
// are told which booking they are extracting.
func Slices(input *domain.RawInput, layout *domain.LayoutDescriptor, cls domain.Classification) []agents.Slice {
	count := cls.EstimatedCount
	if count < 1 {
		count = 1
	}

	if layout != nil && input.Tabular() {
		switch layout.Type {
		case domain.LayoutHorizontal:
			return horizontalSlices(input, layout)
		case domain.LayoutVertical:
			return verticalSlices(input, layout)
		}
	}

	out := make([]agents.Slice, count)
	for i := range out {
		out[i] = agents.Slice{
			Text:   input.Content,
			Pairs:  formPairs(input.KeyValues),
			Index:  i,
			Total:  count,
			Sender: input.SenderEmail,
		}
	}
	return out
}

func horizontalSlices(input *domain.RawInput, layout *domain.LayoutDescriptor) []agents.Slice {
	grid := input.Grid
	count := layout.RecordCount
	out := make([]agents.Slice, 0, count)
	for rec := 0; rec < count; rec++ {
		col := rec + 1
		var pairs []agents.Pair
		for _, row := range grid {
			if len(row) <= col {
				continue
			}
			label, value := strings.TrimSpace(row[0]), strings.TrimSpace(row[col])
			if label == "" || value == "" {
				continue
			}
			pairs = append(pairs, agents.Pair{Label: label, Value: value})
		}
		pairs = append(pairs, formPairs(input.KeyValues)...)
		out = append(out, agents.Slice{
			Text:   input.Content,
			Pairs:  pairs,
			Index:  rec,
			Total:  count,
			Sender: input.SenderEmail,
		})
	}
	return out
}

func verticalSlices(input *domain.RawInput, layout *domain.LayoutDescriptor) []agents.Slice {
	grid := input.Grid
	start := 0
	var header []string
	if layout.HeaderRow && len(grid) > 0 {
		header = grid[0]
		start = 1
	}
	count := layout.RecordCount
	out := make([]agents.Slice, 0, count)
	for rec := 0; rec < count && start+rec < len(grid); rec++ {
		row := grid[start+rec]
		var pairs []agents.Pair
		for c, cell := range row {
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			label := ""
			if c < len(header) {
				label = strings.TrimSpace(header[c])
			}
			if label == "" {
				label = fmt.Sprintf("column %d", c+1)
			}
			pairs = append(pairs, agents.Pair{Label: label, Value: value})
		}
		pairs = append(pairs, formPairs(input.KeyValues)...)
		out = append(out, agents.Slice{
			Text:   input.Content,
			Pairs:  pairs,
			Index:  rec,
			Total:  count,
			Sender: input.SenderEmail,
		})
	}
	return out
}

// formPairs flattens OCR key-value pairs in a stable order so slices are
// deterministic for the same input.
func formPairs(kv map[string]string) []agents.Pair {
	if len(kv) == 0 {
		return nil
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]agents.Pair, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(kv[k]) == "" {
			continue
		}
		pairs = append(pairs, agents.Pair{Label: k, Value: kv[k]})
	}
	return pairs
}
