package sync

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/blob"
)

// BlobDestination writes each backup to object storage under
// "{prefix}/sgc-{timestamp}.jsonl" and refreshes "{prefix}/latest.jsonl".
type BlobDestination struct {
	store  blob.Store
	prefix string
	now    func() time.Time
}

// NewBlobDestination creates a destination writing under prefix.
func NewBlobDestination(store blob.Store, prefix string) *BlobDestination {
	return &BlobDestination{store: store, prefix: prefix, now: time.Now}
}

// Write uploads data as a timestamped backup and as the latest one.
func (d *BlobDestination) Write(ctx context.Context, data []byte) error {
	obj := blob.Object{Data: data, ContentType: "application/x-ndjson"}
	stamped := d.prefix + "/sgc-" + d.now().UTC().Format("20060102T150405Z") + ".jsonl"
	if err := d.store.Put(ctx, stamped, obj); err != nil {
		return err
	}
	return d.store.Put(ctx, d.prefix+"/latest.jsonl", obj)
}
