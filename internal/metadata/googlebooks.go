package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleBooksBase = "https://www.googleapis.com/books/v1"

// GoogleBooks looks up volumes via the public Google Books API.
type GoogleBooks struct {
	Client  *http.Client
	BaseURL string
	APIKey  string // optional; raises quota when set
}

func NewGoogleBooks(baseURL, apiKey string, timeout time.Duration) *GoogleBooks {
	if baseURL == "" {
		baseURL = googleBooksBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleBooks{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

func (g *GoogleBooks) Name() string { return "google_books" }

type gbResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (g *GoogleBooks) Search(ctx context.Context, query string) (*Volume, error) {
	u, err := url.Parse(g.BaseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("google books: base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("maxResults", "1")
	if g.APIKey != "" {
		q.Set("key", g.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("google books: build request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books: status %d: %s", resp.StatusCode, string(body))
	}

	var gb gbResponse
	if err := json.Unmarshal(body, &gb); err != nil {
		return nil, fmt.Errorf("google books: decode: %w", err)
	}

	if gb.TotalItems == 0 || len(gb.Items) == 0 {
		return nil, nil
	}

	info := gb.Items[0].VolumeInfo
	if strings.TrimSpace(info.Title) == "" {
		return nil, nil
	}

	v := &Volume{
		Title:         info.Title,
		Description:   info.Description,
		PublishedDate: info.PublishedDate,
		CoverURL:      info.ImageLinks.Thumbnail,
	}
	if v.CoverURL == "" {
		v.CoverURL = info.ImageLinks.SmallThumbnail
	}
	if len(info.Authors) > 0 {
		v.Author = info.Authors[0]
	}
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" && id.Identifier != "" {
			v.ISBN13 = id.Identifier
			break
		}
	}
	return v, nil
}
