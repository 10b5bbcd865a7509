// Package layout infers record boundaries from a 2-D cell grid produced by
// the OCR/table service. It scores the two layout hypotheses independently
// and never guesses on an empty grid.
package layout

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"fleetdesk/internal/domain"
)

// fieldLabelTerms are the label strings a horizontal form puts in its first
// column, one per field row.
var fieldLabelTerms = []string{
	"name", "contact", "phone", "mobile", "email", "city", "date", "time",
	"pickup", "drop", "cab", "vehicle", "car", "flight", "train", "company",
	"duty", "address", "field",
}

// headerTerms are the column headers a vertical table puts in its first row.
var headerTerms = []string{
	"s.no", "sno", "serial", "sr", "name", "date", "time", "phone", "mobile",
	"email", "address", "pickup", "drop", "location", "from", "to",
	"passenger", "customer", "vehicle", "cab", "duty", "flight", "remarks",
}

// unitHeaderRe matches repeating-unit column headers like "Cab 1", "Unit 2",
// "Car 3", "Booking 4".
var unitHeaderRe = regexp.MustCompile(`(?i)^(cab|car|unit|booking|vehicle)\s*#?\s*(\d+)$`)

// Analyze infers the layout of a grid. The grid is consumed as-is; empty
// grids are an explicit failure with zero records, never defaulted to one.
func Analyze(grid [][]string) (*domain.LayoutDescriptor, error) {
	rows, cols := dimensions(grid)
	if rows == 0 || cols == 0 {
		return nil, domain.ErrEmptyGrid
	}
	if rows == 1 || cols == 1 {
		return &domain.LayoutDescriptor{
			Type:        domain.LayoutUnknown,
			RecordCount: 1,
			Indicators:  []string{fmt.Sprintf("degenerate grid %dx%d", rows, cols)},
		}, nil
	}

	h := scoreHorizontal(grid)
	v := scoreVertical(grid)
	log.Printf("layout.Analyze: horizontal=%d vertical=%d (%dx%d grid)", h.score, v.score, rows, cols)

	// Tie or both near zero defaults to vertical, the common shape.
	if h.score > v.score {
		return &domain.LayoutDescriptor{
			Type:            domain.LayoutHorizontal,
			RecordCount:     cols - 1,
			HeaderRow:       false,
			HorizontalScore: h.score,
			VerticalScore:   v.score,
			Indicators:      h.indicators,
		}, nil
	}

	count := rows
	if v.headerRow {
		count = rows - 1
	}
	if count < 1 {
		count = 1
	}
	indicators := v.indicators
	if h.score == v.score {
		indicators = append(indicators, "tied scores, defaulted to vertical")
	}
	return &domain.LayoutDescriptor{
		Type:            domain.LayoutVertical,
		RecordCount:     count,
		HeaderRow:       v.headerRow,
		HorizontalScore: h.score,
		VerticalScore:   v.score,
		Indicators:      indicators,
	}, nil
}

func dimensions(grid [][]string) (rows, cols int) {
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return len(grid), cols
}

type hypothesis struct {
	score      int
	headerRow  bool
	indicators []string
}

// scoreHorizontal is high when the first column is a set of short field
// labels and subsequent column headers follow a repeating-unit pattern.
func scoreHorizontal(grid [][]string) hypothesis {
	var h hypothesis

	labelMatches := 0
	for _, row := range grid {
		if len(row) == 0 {
			continue
		}
		if matchesAny(row[0], fieldLabelTerms) {
			labelMatches++
		}
	}
	if labelMatches >= 2 {
		h.score += labelMatches
		h.indicators = append(h.indicators, fmt.Sprintf("%d field labels in first column", labelMatches))
	}

	header := grid[0]
	unit, sequential := 0, 0
	for i, cell := range header[1:] {
		if unitHeaderRe.MatchString(strings.TrimSpace(cell)) {
			unit++
		}
		if n, err := strconv.Atoi(strings.TrimSpace(cell)); err == nil && n == i+1 {
			sequential++
		}
	}
	if unit >= 2 {
		h.score += unit * 2
		h.indicators = append(h.indicators, fmt.Sprintf("%d repeating-unit column headers", unit))
	}
	if sequential >= 2 {
		h.score += sequential
		h.indicators = append(h.indicators, fmt.Sprintf("%d sequential column headers", sequential))
	}
	return h
}

// scoreVertical is high when the first row reads as a header vocabulary, the
// first column counts records from 1, or rows look like heterogeneous data.
func scoreVertical(grid [][]string) hypothesis {
	var v hypothesis

	header := grid[0]
	headerMatches := 0
	nonEmpty := 0
	for _, cell := range header {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		nonEmpty++
		if matchesAny(cell, headerTerms) {
			headerMatches++
		}
	}
	if nonEmpty > 0 && float64(headerMatches)/float64(nonEmpty) >= 0.6 {
		v.score += headerMatches * 2
		v.headerRow = true
		v.indicators = append(v.indicators, fmt.Sprintf("%d/%d header terms in first row", headerMatches, nonEmpty))
	}

	if n := leadingSequence(grid, v.headerRow); n >= 2 {
		v.score += n
		v.indicators = append(v.indicators, fmt.Sprintf("first column counts 1..%d", n))
	}

	if n := dataLikeCells(grid); n >= 2 {
		v.score += n
		v.indicators = append(v.indicators, fmt.Sprintf("%d data-like cells in sample row", n))
	}
	return v
}

// leadingSequence counts how far the first column forms a strictly increasing
// integer run starting at 1 (skipping a header row when present).
func leadingSequence(grid [][]string, headerRow bool) int {
	start := 0
	if headerRow {
		start = 1
	}
	n := 0
	for i, row := range grid[start:] {
		if len(row) == 0 {
			break
		}
		val, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || val != i+1 {
			break
		}
		n++
	}
	return n
}

// dataLikeCells samples the second row for value-shaped cells (long digit
// runs, emails) as opposed to label text.
func dataLikeCells(grid [][]string) int {
	if len(grid) < 2 {
		return 0
	}
	n := 0
	for _, cell := range grid[1] {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		digits := 0
		for _, r := range cell {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if strings.Contains(cell, "@") || digits >= 6 {
			n++
		}
	}
	return n
}

func matchesAny(cell string, vocab []string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	if c == "" {
		return false
	}
	for _, term := range vocab {
		if strings.Contains(c, term) {
			return true
		}
	}
	return false
}
