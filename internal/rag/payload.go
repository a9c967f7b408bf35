package rag

import "fmt"

// Stored point payload shape: the chunk text under "pageContent" and
// the chunk metadata under "metadata".
const (
	payloadContentKey  = "pageContent"
	payloadMetadataKey = "metadata"
)

func payloadFromDocument(d ChunkDocument) map[string]any {
	return map[string]any{
		payloadContentKey: d.Content,
		payloadMetadataKey: map[string]any{
			"source":      d.Metadata.Source,
			"chunk_index": d.Metadata.ChunkIndex,
			"chunk_id":    d.Metadata.ChunkID,
			"timestamp":   d.Metadata.Timestamp,
			"type":        d.Metadata.Type,
			"pages":       d.Metadata.Pages,
			"title":       d.Metadata.Title,
		},
	}
}

// documentFromPayload reconstructs a chunk document from a raw payload.
// In strict mode a missing or mistyped pageContent is an error; lenient
// mode falls back to common alternate content keys and tolerates
// malformed metadata, dropping only what cannot be read.
func documentFromPayload(payload map[string]any, score float64, strict bool) (ChunkDocument, error) {
	content, ok := payload[payloadContentKey].(string)
	if !ok || content == "" {
		if strict {
			return ChunkDocument{}, fmt.Errorf("payload missing %q", payloadContentKey)
		}
		for _, key := range []string{"content", "text", "chunk"} {
			if alt, altOK := payload[key].(string); altOK && alt != "" {
				content = alt
				break
			}
		}
		if content == "" {
			return ChunkDocument{}, fmt.Errorf("payload has no readable content")
		}
	}

	doc := ChunkDocument{Content: content, Score: score}

	rawMeta, ok := payload[payloadMetadataKey].(map[string]any)
	if !ok {
		if strict {
			return ChunkDocument{}, fmt.Errorf("payload missing %q", payloadMetadataKey)
		}
		return doc, nil
	}

	doc.Metadata = Metadata{
		Source:     asString(rawMeta["source"]),
		ChunkIndex: asInt(rawMeta["chunk_index"]),
		ChunkID:    asString(rawMeta["chunk_id"]),
		Timestamp:  asString(rawMeta["timestamp"]),
		Type:       asString(rawMeta["type"]),
		Pages:      asInt(rawMeta["pages"]),
		Title:      asString(rawMeta["title"]),
	}
	return doc, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
