package textract

import (
	"context"
	"fmt"
	"log"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"fleetdesk/internal/config"
	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
)

// analyzeAPI is the slice of the Textract client this adapter uses.
type analyzeAPI interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

type textractClient struct {
	api      analyzeAPI
	minBytes int
}

// NewClient creates a Textract-backed TableExtractor.
func NewClient(cfg *config.OCRConfig) (port.TableExtractor, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &textractClient{
		api:      textract.NewFromConfig(awsCfg),
		minBytes: cfg.MinBytes,
	}, nil
}

// NewClientWithAPI wires a pre-built API (for testing).
func NewClientWithAPI(api analyzeAPI, minBytes int) port.TableExtractor {
	return &textractClient{api: api, minBytes: minBytes}
}

func (c *textractClient) AnalyzeDocument(ctx context.Context, input port.DocumentInput) (*port.TableOutput, error) {
	// Undersized payloads are corrupted uploads; reject before spending a
	// Textract call.
	if len(input.Bytes) < c.minBytes {
		return nil, fmt.Errorf("%w: %d bytes (minimum %d)", domain.ErrInputTooSmall, len(input.Bytes), c.minBytes)
	}

	out, err := c.api.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document: &types.Document{Bytes: input.Bytes},
		FeatureTypes: []types.FeatureType{
			types.FeatureTypeTables,
			types.FeatureTypeForms,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRDown, err)
	}

	result := &port.TableOutput{
		Grid:      largestTable(out.Blocks),
		KeyValues: keyValuePairs(out.Blocks),
	}
	log.Printf("textract.Client: extracted %dx%d grid, %d key-value pairs",
		len(result.Grid), gridCols(result.Grid), len(result.KeyValues))
	return result, nil
}

func gridCols(grid [][]string) int {
	if len(grid) == 0 {
		return 0
	}
	return len(grid[0])
}

// largestTable reassembles the biggest TABLE block into a dense row-major
// grid of cell text.
func largestTable(blocks []types.Block) [][]string {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	var best [][]string
	bestCells := 0

	for _, b := range blocks {
		if b.BlockType != types.BlockTypeTable {
			continue
		}
		grid := buildGrid(b, byID)
		cells := len(grid) * gridCols(grid)
		if cells > bestCells {
			best, bestCells = grid, cells
		}
	}
	return best
}

func buildGrid(table types.Block, byID map[string]types.Block) [][]string {
	maxRow, maxCol := 0, 0
	type cell struct {
		row, col int
		text     string
	}
	var cells []cell

	for _, rel := range table.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			child, ok := byID[id]
			if !ok || child.BlockType != types.BlockTypeCell {
				continue
			}
			row := int(derefInt32(child.RowIndex))
			col := int(derefInt32(child.ColumnIndex))
			// Textract omits indexes on merged or degenerate cells; a zero
			// index has no grid slot.
			if row < 1 || col < 1 {
				continue
			}
			if row > maxRow {
				maxRow = row
			}
			if col > maxCol {
				maxCol = col
			}
			cells = append(cells, cell{row: row, col: col, text: blockText(child, byID)})
		}
	}
	if maxRow == 0 || maxCol == 0 {
		return nil
	}

	grid := make([][]string, maxRow)
	for i := range grid {
		grid[i] = make([]string, maxCol)
	}
	for _, c := range cells {
		grid[c.row-1][c.col-1] = c.text
	}
	return grid
}

// keyValuePairs extracts the detected form fields.
func keyValuePairs(blocks []types.Block) map[string]string {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	pairs := make(map[string]string)
	for _, b := range blocks {
		if b.BlockType != types.BlockTypeKeyValueSet || !hasEntityType(b, types.EntityTypeKey) {
			continue
		}
		key := blockText(b, byID)
		if key == "" {
			continue
		}
		for _, rel := range b.Relationships {
			if rel.Type != types.RelationshipTypeValue {
				continue
			}
			for _, id := range rel.Ids {
				if valueBlock, ok := byID[id]; ok {
					pairs[key] = blockText(valueBlock, byID)
				}
			}
		}
	}
	return pairs
}

func hasEntityType(b types.Block, want types.EntityType) bool {
	for _, et := range b.EntityTypes {
		if et == want {
			return true
		}
	}
	return false
}

// blockText concatenates the WORD children (and selection marks) of a block.
func blockText(b types.Block, byID map[string]types.Block) string {
	var words []string
	for _, rel := range b.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			child, ok := byID[id]
			if !ok {
				continue
			}
			switch child.BlockType {
			case types.BlockTypeWord:
				if child.Text != nil {
					words = append(words, *child.Text)
				}
			case types.BlockTypeSelectionElement:
				if child.SelectionStatus == types.SelectionStatusSelected {
					words = append(words, "X")
				}
			}
		}
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

func derefInt32(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}
