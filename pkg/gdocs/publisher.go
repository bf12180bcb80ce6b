package gdocs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/matsoncook/GoogleDocsApi/pkg/assemble"
)

// Publisher creates Google Docs and appends text to them.
type Publisher struct {
	svc    *docs.Service
	logger *zap.Logger
}

// NewPublisher builds a Docs API client from the token source. Extra options
// are applied after the token source; tests pass a nil source together with
// option.WithEndpoint and option.WithoutAuthentication to target a fake
// server.
func NewPublisher(ctx context.Context, ts oauth2.TokenSource, logger *zap.Logger, opts ...option.ClientOption) (*Publisher, error) {
	var all []option.ClientOption
	if ts != nil {
		all = append(all, option.WithTokenSource(ts))
	}
	all = append(all, opts...)

	svc, err := docs.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs client: %w", err)
	}
	return &Publisher{svc: svc, logger: logger}, nil
}

// Create makes an empty document with the given title and returns its ID.
func (p *Publisher) Create(ctx context.Context, title string) (string, error) {
	doc, err := p.svc.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	p.logger.Info("Created document",
		zap.String("documentId", doc.DocumentId),
		zap.String("title", title))
	return doc.DocumentId, nil
}

// Append slices text into chunks and issues one update per chunk, each
// inserting at the current end of the document. Chunk order is mandatory:
// every insert is positioned relative to the document's current end, not an
// absolute offset. The first failure aborts the remaining chunks.
func (p *Publisher) Append(ctx context.Context, docID, text string, chunkSize int) error {
	chunks := assemble.Chunk(text, chunkSize)
	for i, piece := range chunks {
		req := &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{{
				InsertText: &docs.InsertTextRequest{
					EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
					Text:                 piece,
				},
			}},
		}
		if _, err := p.svc.Documents.BatchUpdate(docID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to append chunk %d of %d: %w", i+1, len(chunks), err)
		}
		p.logger.Debug("Appended chunk",
			zap.String("documentId", docID),
			zap.Int("chunk", i+1),
			zap.Int("totalChunks", len(chunks)))
	}
	return nil
}

// DocumentURL returns the editing URL for a created document.
func DocumentURL(docID string) string {
	return "https://docs.google.com/document/d/" + docID + "/edit"
}
