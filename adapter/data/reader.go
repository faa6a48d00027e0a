package data

import (
	"context"
	"io"

	"github.com/dolmen-go/contextio"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// ReadDocuments reads r until EOF and parses its content with
// [ParseDocuments]. Reading stops early if ctx is done.
func ReadDocuments(ctx context.Context, r io.Reader) ([]domain.Document, error) {
	b, err := io.ReadAll(contextio.NewReader(ctx, r))
	if err != nil {
		return nil, err
	}
	return ParseDocuments(b)
}
