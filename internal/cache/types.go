package cache

import "time"

// cached answer, stored as JSON
type Entry struct {
	Text      string    `json:"text"`
	Sections  []string  `json:"sections,omitempty"`
	Distances []float32 `json:"distances,omitempty"`
}

const (
	DefaultKeyPrefix = "askdocs:answer:"
	DefaultTTL       = time.Hour
)

type Options struct {
	// prefix for every key
	KeyPrefix string
	TTL       time.Duration
	// mixed into the key so answers from different corpora never collide
	Namespace string
}
