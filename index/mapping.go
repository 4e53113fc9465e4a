package index

// Mapping is the body used when the index is created.
var Mapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"user_id":          map[string]any{"type": "keyword", "index": true},
			"title":            map[string]any{"type": "text"},
			"content":          map[string]any{"type": "text"},
			"slide_id":         map[string]any{"type": "keyword", "index": false},
			"slide_index":      map[string]any{"type": "integer"},
			"ppt":              map[string]any{"type": "keyword", "index": false},
			"virtualFileName":  map[string]any{"type": "keyword", "index": false},
			"originalFileName": map[string]any{"type": "keyword", "index": false},
			"root":             map[string]any{"type": "keyword", "index": false},
		},
	},
}
