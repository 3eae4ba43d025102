package ports

import "context"

// BlobStore is a content-addressed blob store. Blobs are immutable: Put
// derives the CID from the content, so storing the same bytes twice yields
// the same CID.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (cid string, err error)
	Get(ctx context.Context, cid string) ([]byte, error)
	Has(ctx context.Context, cid string) (bool, error)
}

// Pinner requests long-term availability for a blob. Pinning is an
// availability optimization: failures are logged by callers, never fatal.
type Pinner interface {
	Pin(ctx context.Context, cid, name string) error
}
