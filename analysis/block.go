package analysis

import "strings"

// BlockType identifies the kind of element a DocumentBlock describes.
type BlockType string

const (
	BlockTypeKeyValueSet BlockType = "KEY_VALUE_SET"
	BlockTypeWord        BlockType = "WORD"
	BlockTypeLine        BlockType = "LINE"
)

// RelationshipType identifies how a block points at other blocks.
type RelationshipType string

const (
	// RelationshipChild points to the constituent word blocks of a block.
	RelationshipChild RelationshipType = "CHILD"
	// RelationshipValue points from a key block to its paired value block.
	RelationshipValue RelationshipType = "VALUE"
)

// EntityTypeKey marks a KEY_VALUE_SET block as the key half of a form field.
const EntityTypeKey = "KEY"

// Relationship is an ordered pointer list from one block to others.
type Relationship struct {
	Type RelationshipType
	IDs  []string
}

// DocumentBlock is one element detected by the document-analysis service.
// Text is only populated on WORD blocks; EntityTypes only matters on
// KEY_VALUE_SET blocks, where the presence of KEY distinguishes the key
// half of a form field from the value half.
type DocumentBlock struct {
	ID            string
	BlockType     BlockType
	EntityTypes   []string
	Relationships []Relationship
	Text          string
}

// IsKey reports whether the block is the key half of a form field.
func (b DocumentBlock) IsKey() bool {
	if b.BlockType != BlockTypeKeyValueSet {
		return false
	}
	for _, et := range b.EntityTypes {
		if et == EntityTypeKey {
			return true
		}
	}
	return false
}

// BlockIndex partitions an analysis response for key/value linking.
// Every KEY_VALUE_SET block lands in exactly one of Keys/Values; Blocks
// holds every block by id for child lookups during text resolution.
type BlockIndex struct {
	// Keys holds key blocks in discovery order. Order matters: when two
	// keys resolve to the same label the later one wins, and discovery
	// order preserves the ordering of the analysis response.
	Keys   []DocumentBlock
	Values map[string]DocumentBlock
	Blocks map[string]DocumentBlock
}

// IndexBlocks builds a BlockIndex from a flat analysis response. No block
// is skipped and malformed blocks never error; blocks with missing fields
// simply contribute no text downstream.
func IndexBlocks(blocks []DocumentBlock) BlockIndex {
	idx := BlockIndex{
		Values: make(map[string]DocumentBlock),
		Blocks: make(map[string]DocumentBlock),
	}

	for _, b := range blocks {
		idx.Blocks[b.ID] = b
		if b.BlockType != BlockTypeKeyValueSet {
			continue
		}
		if b.IsKey() {
			idx.Keys = append(idx.Keys, b)
		} else {
			idx.Values[b.ID] = b
		}
	}

	return idx
}

// ResolveText reconstructs the text of a block by concatenating the words
// of every WORD block reachable through its CHILD relationships, in
// relationship order. Missing child ids and non-word children are
// silently skipped; the result is trimmed and may be empty. It never fails.
func ResolveText(block DocumentBlock, idx BlockIndex) string {
	var sb strings.Builder
	for _, rel := range block.Relationships {
		if rel.Type != RelationshipChild {
			continue
		}
		for _, id := range rel.IDs {
			child, ok := idx.Blocks[id]
			if !ok || child.BlockType != BlockTypeWord {
				continue
			}
			sb.WriteString(child.Text)
			sb.WriteString(" ")
		}
	}
	return strings.TrimSpace(sb.String())
}
