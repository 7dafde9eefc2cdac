package records

import (
	"fmt"
	"strings"

	"enrich/internal/services"
)

// Split derives the order-aligned text and metadata streams from a chunk. For
// each record the text is the newline-join of the content fields' values in
// configured order; the metadata entry is a fresh copy of the record with
// those fields removed. The input chunk is left untouched.
//
// A content field missing from a record is fatal for the containing job:
// there is no skip-and-continue here, unlike the reader's handling of
// malformed lines.
func Split(chunk Chunk, contentFields []string) ([]string, []Record, error) {
	texts := make([]string, 0, len(chunk))
	metadata := make([]Record, 0, len(chunk))

	for i, record := range chunk {
		parts := make([]string, 0, len(contentFields))
		for _, field := range contentFields {
			value, ok := record[field]
			if !ok {
				return nil, nil, services.Wrap(services.ErrNotFound, "split", "content field",
					fmt.Sprintf("record %d has no field %q", i, field), nil)
			}
			text, ok := value.(string)
			if !ok {
				return nil, nil, services.Wrap(services.ErrValidation, "split", "content field",
					fmt.Sprintf("record %d field %q is not a string", i, field), nil)
			}
			parts = append(parts, text)
		}

		meta := make(Record, len(record))
		for key, value := range record {
			meta[key] = value
		}
		for _, field := range contentFields {
			delete(meta, field)
		}

		texts = append(texts, strings.Join(parts, "\n"))
		metadata = append(metadata, meta)
	}

	return texts, metadata, nil
}
