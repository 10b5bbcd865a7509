package port

import "context"

// DocumentInput carries raw document bytes for OCR/table extraction.
type DocumentInput struct {
	Bytes       []byte
	ContentType string
}

// TableOutput is the structural result of document analysis: the largest
// detected cell grid plus any form key-value pairs.
type TableOutput struct {
	Grid      [][]string
	KeyValues map[string]string
}

// TableExtractor abstracts the OCR/table-extraction service.
type TableExtractor interface {
	AnalyzeDocument(ctx context.Context, input DocumentInput) (*TableOutput, error)
}
