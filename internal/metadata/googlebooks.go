package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

const (
	DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"
	DefaultMaxResults     = 12
	MinQueryLength        = 2

	maxDescriptionLength = 300

	defaultTitle       = "Titre non disponible"
	defaultPublisher   = "Éditeur inconnu"
	defaultPublished   = "Date inconnue"
	defaultDescription = "Description non disponible"
	defaultLanguage    = "fr"
)

// ErrQueryTooShort is returned for searches shorter than MinQueryLength characters.
var ErrQueryTooShort = fmt.Errorf("%w: search query must be at least %d characters", library.ErrValidation, MinQueryLength)

// StatusError is an unexpected HTTP status from the lookup service.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return "book lookup rate limited (429)"
	case http.StatusForbidden:
		return "book lookup refused the API key (403)"
	}
	return fmt.Sprintf("book lookup returned status %d", e.StatusCode)
}

// SearchOptions narrows a catalogue search.
type SearchOptions struct {
	Language   string `json:"lang,omitempty"`
	StartIndex int    `json:"start,omitempty"`
	MaxResults int    `json:"max,omitempty"`
}

func (o SearchOptions) key() string {
	return o.Language + "|" + strconv.Itoa(o.StartIndex) + "|" + strconv.Itoa(o.MaxResults)
}

// Lookup is the external book-search capability.
type Lookup interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]entities.Book, error)
	FetchBookDetails(ctx context.Context, externalID string) (*entities.Book, error)
}

type GoogleBooksConfig struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
	// MinInterval spaces consecutive requests; zero disables rate limiting.
	MinInterval time.Duration
}

// GoogleBooksClient searches the Google Books volumes API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	maxResults  int
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastCall = time.Now()
	return nil
}

func NewGoogleBooksClient(cfg GoogleBooksConfig) *GoogleBooksClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGoogleBooksURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxResults:  cfg.MaxResults,
		rateLimiter: newRateLimiter(cfg.MinInterval),
	}
}

// Search returns the catalogue matches for query, formatted as library
// records ready to be promoted.
func (c *GoogleBooksClient) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.Book, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	var result volumesResponse
	if err := c.get(ctx, c.searchURL(query, opts), &result); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	books := make([]entities.Book, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID == "" {
			continue
		}
		books = append(books, formatVolume(item, false))
	}
	return books, nil
}

// FetchBookDetails returns the full record for one volume. An unknown id is
// reported as library.ErrNotFound.
func (c *GoogleBooksClient) FetchBookDetails(ctx context.Context, externalID string) (*entities.Book, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: book id is required", library.ErrValidation)
	}

	detailsURL := c.baseURL + "/" + url.PathEscape(externalID)
	if c.apiKey != "" {
		detailsURL += "?key=" + url.QueryEscape(c.apiKey)
	}

	var item volume
	if err := c.get(ctx, detailsURL, &item); err != nil {
		return nil, fmt.Errorf("fetch book %s: %w", externalID, err)
	}
	if item.ID == "" {
		item.ID = externalID
	}
	book := formatVolume(item, true)
	return &book, nil
}

func (c *GoogleBooksClient) searchURL(query string, opts SearchOptions) string {
	maxResults := c.maxResults
	if opts.MaxResults > 0 && opts.MaxResults <= 40 {
		maxResults = opts.MaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	params.Set("orderBy", "relevance")
	if opts.Language != "" {
		params.Set("langRestrict", opts.Language)
	}
	if opts.StartIndex > 0 {
		params.Set("startIndex", strconv.Itoa(opts.StartIndex))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return c.baseURL + "?" + params.Encode()
}

func (c *GoogleBooksClient) get(ctx context.Context, target string, dest any) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Bibliotheque/1.0 (https://github.com/ysh4me/bibliotheque-interactif)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return library.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsRateLimited reports whether err came from a 429 response.
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	Language            string               `json:"language"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	PreviewLink         string               `json:"previewLink"`
	InfoLink            string               `json:"infoLink"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
}

// formatVolume maps an API volume onto a library record, filling the display
// defaults for missing fields. Links are only kept for detail lookups.
func formatVolume(item volume, details bool) entities.Book {
	info := item.VolumeInfo

	book := entities.Book{
		ID:            item.ID,
		Title:         firstNonEmpty(info.Title, defaultTitle),
		Authors:       nonEmptyList(info.Authors, entities.UnknownAuthor),
		Publisher:     firstNonEmpty(info.Publisher, defaultPublisher),
		PublishedDate: firstNonEmpty(info.PublishedDate, defaultPublished),
		Description:   cleanDescription(info.Description),
		Thumbnail:     secureURL(firstNonEmpty(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail)),
		Cover:         secureURL(firstNonEmpty(info.ImageLinks.Large, info.ImageLinks.Medium, info.ImageLinks.Thumbnail)),
		PageCount:     info.PageCount,
		Categories:    nonEmptyList(info.Categories, entities.UncategorizedLabel),
		Language:      firstNonEmpty(info.Language, defaultLanguage),
		ISBN:          extractISBN(info.IndustryIdentifiers),
		Status:        entities.ColumnToRead,
		Source:        entities.BookSourceGoogleBooks,
	}
	if details {
		book.Subtitle = info.Subtitle
		book.PreviewLink = info.PreviewLink
		book.InfoLink = info.InfoLink
	}
	return book
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func cleanDescription(description string) string {
	text := strings.TrimSpace(htmlTag.ReplaceAllString(description, ""))
	if text == "" {
		return defaultDescription
	}
	if utf8.RuneCountInString(text) > maxDescriptionLength {
		runes := []rune(text)
		return string(runes[:maxDescriptionLength]) + "..."
	}
	return text
}

// extractISBN prefers ISBN-13 over ISBN-10.
func extractISBN(identifiers []industryIdentifier) string {
	for _, kind := range []string{"ISBN_13", "ISBN_10"} {
		for _, id := range identifiers {
			if id.Type == kind && id.Identifier != "" {
				return id.Identifier
			}
		}
	}
	return ""
}

func secureURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmptyList(values []string, fallback string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}
