package slides

import "context"

// RemoteSource is the narrow interface the pipeline consumes for all
// remote access. Credential acquisition, token refresh, and transport
// details are entirely the implementation's concern.
//
// Implementations map remote failures onto the pipeline's error taxonomy:
// NOT_FOUND and PERMISSION_DENIED are terminal for the single item,
// TRANSIENT (network failures, 5xx, rate limits, timeouts) is retried by
// the caller with bounded backoff.
type RemoteSource interface {
	// ListFolder returns the direct children of a folder. folderID may be
	// [RootFolderID] to list the top of the hierarchy.
	ListFolder(ctx context.Context, folderID string) (*Listing, error)

	// GetPresentation resolves a presentation's display name and declared
	// slide order.
	GetPresentation(ctx context.Context, presentationID string) (*Presentation, error)

	// FetchSlideVector downloads one slide's vector document, normalized
	// into the fixed schema (including Raw SVG bytes when available).
	FetchSlideVector(ctx context.Context, presentationID, slideID string) (*VectorDocument, error)
}
