package metadata

import "context"

// Volume is the normalized result of one external lookup. All providers map
// their own response format into this structure before anything is persisted.
type Volume struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	PublishedDate string `json:"published_date"`
	ISBN13        string `json:"isbn13,omitempty"`
	CoverURL      string `json:"cover_url,omitempty"`
}

// Provider is implemented by each external metadata source. Search returns
// (nil, nil) when the provider has no usable match; errors are reserved for
// transport/decoding failures.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*Volume, error)
}
