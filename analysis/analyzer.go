package analysis

import "context"

// Analyzer extracts form blocks from a document. Implementations wrap
// API-level failures in *ExtractionError so callers can distinguish
// "service failed" from "service returned sparse data" — an empty block
// list is a valid result, not an error.
type Analyzer interface {
	Analyze(ctx context.Context, document []byte) ([]DocumentBlock, error)
}

// ExtractionError marks an API-level failure of the document-analysis
// service, as opposed to a successful call that simply found nothing.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "document analysis failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractContractData runs the full in-memory pipeline over an analysis
// response: index, link, map.
func ExtractContractData(blocks []DocumentBlock) ExtractedContractData {
	idx := IndexBlocks(blocks)
	return MapContractFields(LinkFields(idx))
}
