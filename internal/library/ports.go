package library

import (
	"context"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// Repository stores the serialized library snapshot.
//
// Load returns (nil, nil) when nothing has been saved yet. Save should return
// an error wrapping ErrQuotaExceeded when the payload does not fit.
type Repository interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// BookFetcher looks up full book details in an external catalogue.
// A missing book is reported with an error wrapping ErrNotFound.
type BookFetcher interface {
	FetchBookDetails(ctx context.Context, externalID string) (*entities.Book, error)
}
