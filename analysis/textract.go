package analysis

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAnalyzer implements Analyzer on top of AWS Textract's
// AnalyzeDocument API with the FORMS feature.
type TextractAnalyzer struct {
	client *textract.Client
}

// NewTextractAnalyzer creates a Textract-backed analyzer.
func NewTextractAnalyzer(cfg aws.Config) *TextractAnalyzer {
	return &TextractAnalyzer{
		client: textract.NewFromConfig(cfg),
	}
}

// Analyze runs form analysis over the document bytes and translates the
// Textract response into DocumentBlocks. API failures come back wrapped
// in *ExtractionError.
func (a *TextractAnalyzer) Analyze(ctx context.Context, document []byte) ([]DocumentBlock, error) {
	out, err := a.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document: &types.Document{
			Bytes: document,
		},
		FeatureTypes: []types.FeatureType{types.FeatureTypeForms},
	})
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	blocks := make([]DocumentBlock, 0, len(out.Blocks))
	for _, b := range out.Blocks {
		blocks = append(blocks, fromTextractBlock(b))
	}
	return blocks, nil
}

func fromTextractBlock(b types.Block) DocumentBlock {
	block := DocumentBlock{
		ID:        aws.ToString(b.Id),
		BlockType: BlockType(b.BlockType),
		Text:      aws.ToString(b.Text),
	}

	for _, et := range b.EntityTypes {
		block.EntityTypes = append(block.EntityTypes, string(et))
	}

	for _, rel := range b.Relationships {
		block.Relationships = append(block.Relationships, Relationship{
			Type: RelationshipType(rel.Type),
			IDs:  rel.Ids,
		})
	}

	return block
}
