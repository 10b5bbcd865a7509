package textract

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
)

type fakeAPI struct {
	out *awstextract.AnalyzeDocumentOutput
	err error
}

func (f *fakeAPI) AnalyzeDocument(context.Context, *awstextract.AnalyzeDocumentInput, ...func(*awstextract.Options)) (*awstextract.AnalyzeDocumentOutput, error) {
	return f.out, f.err
}

func word(id, text string) types.Block {
	return types.Block{Id: aws.String(id), BlockType: types.BlockTypeWord, Text: aws.String(text)}
}

func childRel(ids ...string) types.Relationship {
	return types.Relationship{Type: types.RelationshipTypeChild, Ids: ids}
}

func TestAnalyzeDocument_RejectsUndersizedPayload(t *testing.T) {
	client := NewClientWithAPI(&fakeAPI{}, 100)

	_, err := client.AnalyzeDocument(context.Background(), port.DocumentInput{Bytes: []byte("tiny")})
	assert.ErrorIs(t, err, domain.ErrInputTooSmall)
}

func TestAnalyzeDocument_WrapsAPIError(t *testing.T) {
	client := NewClientWithAPI(&fakeAPI{err: errors.New("throttled")}, 1)

	_, err := client.AnalyzeDocument(context.Background(), port.DocumentInput{Bytes: []byte("payload")})
	assert.ErrorIs(t, err, domain.ErrOCRDown)
}

func TestAnalyzeDocument_BuildsGridAndKeyValues(t *testing.T) {
	blocks := []types.Block{
		// 1x2 table: | Passenger | Rajesh Kumar |
		{
			Id: aws.String("table"), BlockType: types.BlockTypeTable,
			Relationships: []types.Relationship{childRel("c1", "c2")},
		},
		{
			Id: aws.String("c1"), BlockType: types.BlockTypeCell,
			RowIndex: aws.Int32(1), ColumnIndex: aws.Int32(1),
			Relationships: []types.Relationship{childRel("w1")},
		},
		{
			Id: aws.String("c2"), BlockType: types.BlockTypeCell,
			RowIndex: aws.Int32(1), ColumnIndex: aws.Int32(2),
			Relationships: []types.Relationship{childRel("w2", "w3")},
		},
		word("w1", "Passenger"),
		word("w2", "Rajesh"),
		word("w3", "Kumar"),

		// One form field: Vehicle -> Innova.
		{
			Id: aws.String("k1"), BlockType: types.BlockTypeKeyValueSet,
			EntityTypes: []types.EntityType{types.EntityTypeKey},
			Relationships: []types.Relationship{
				childRel("kw1"),
				{Type: types.RelationshipTypeValue, Ids: []string{"v1"}},
			},
		},
		{
			Id: aws.String("v1"), BlockType: types.BlockTypeKeyValueSet,
			EntityTypes:   []types.EntityType{types.EntityTypeValue},
			Relationships: []types.Relationship{childRel("vw1")},
		},
		word("kw1", "Vehicle"),
		word("vw1", "Innova"),
	}

	client := NewClientWithAPI(&fakeAPI{out: &awstextract.AnalyzeDocumentOutput{Blocks: blocks}}, 1)
	out, err := client.AnalyzeDocument(context.Background(), port.DocumentInput{Bytes: []byte("payload")})
	require.NoError(t, err)

	require.Len(t, out.Grid, 1)
	assert.Equal(t, []string{"Passenger", "Rajesh Kumar"}, out.Grid[0])
	assert.Equal(t, map[string]string{"Vehicle": "Innova"}, out.KeyValues)
}

func TestAnalyzeDocument_SkipsCellsWithoutIndexes(t *testing.T) {
	blocks := []types.Block{
		{
			Id: aws.String("table"), BlockType: types.BlockTypeTable,
			Relationships: []types.Relationship{childRel("good", "merged")},
		},
		{
			Id: aws.String("good"), BlockType: types.BlockTypeCell,
			RowIndex: aws.Int32(1), ColumnIndex: aws.Int32(1),
			Relationships: []types.Relationship{childRel("w1")},
		},
		// Merged cell with no indexes; must not claim a grid slot.
		{
			Id: aws.String("merged"), BlockType: types.BlockTypeCell,
			Relationships: []types.Relationship{childRel("w2")},
		},
		word("w1", "Passenger"),
		word("w2", "orphan"),
	}

	client := NewClientWithAPI(&fakeAPI{out: &awstextract.AnalyzeDocumentOutput{Blocks: blocks}}, 1)
	out, err := client.AnalyzeDocument(context.Background(), port.DocumentInput{Bytes: []byte("payload")})
	require.NoError(t, err)

	require.Len(t, out.Grid, 1)
	assert.Equal(t, []string{"Passenger"}, out.Grid[0])
}

func TestAnalyzeDocument_NoTableYieldsNilGrid(t *testing.T) {
	client := NewClientWithAPI(&fakeAPI{out: &awstextract.AnalyzeDocumentOutput{}}, 1)
	out, err := client.AnalyzeDocument(context.Background(), port.DocumentInput{Bytes: []byte("payload")})
	require.NoError(t, err)
	assert.Nil(t, out.Grid)
	assert.Empty(t, out.KeyValues)
}
