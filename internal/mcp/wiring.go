package mcp

import (
	"context"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
)

// RebroadcastWriter adapts the rundown service as the guard's write-back
// path: a kept local value is rewritten through the normal field pipeline
// so it lands on the change feed for every other session.
func RebroadcastWriter(rundowns RundownService) func(tenantID, documentID, sessionID string) guard.FieldWriter {
	return func(tenantID, documentID, sessionID string) guard.FieldWriter {
		return guard.FieldWriterFunc(func(ctx context.Context, key rundown.FieldKey, value string) error {
			_, err := rundowns.UpdateField(ctx, tenantID, rundown.UpdateFieldRequest{
				DocumentID: documentID,
				ItemID:     key.ItemID,
				Field:      key.Field,
				Value:      value,
				AuthorID:   sessionID,
			})
			return err
		})
	}
}

// DocumentOpener adapts the rundown service as the showcaller's live view
// of a rundown.
func DocumentOpener(rundowns RundownService, tenantID string) func(documentID string) showcaller.DocumentSource {
	return func(documentID string) showcaller.DocumentSource {
		return showcaller.DocumentSourceFunc(func(ctx context.Context) (*rundown.Document, error) {
			return rundowns.Get(ctx, tenantID, documentID)
		})
	}
}
