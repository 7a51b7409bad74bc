package mtproto

import (
	"context"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// maxBatch is the most entries one history, search or dialogs request
// returns.
const maxBatch = 100

// cursor positions a request below the last entry already read.
type cursor struct {
	offsetID   int
	offsetDate int
	offsetPeer *domain.PeerRef
}

// batch is one remote page.
type batch[T any] struct {
	items []T
	// raw counts entries before conversion dropped any.
	raw  int
	next cursor
	// done is set when the response was the complete list.
	done bool
}

type fetchFunc[T any] func(ctx context.Context, at cursor, n int) (batch[T], error)

// collect requests batches of at most maxBatch until limit items are read
// or the remote runs out. An error on any batch fails the whole read, so a
// flood wait is reported rather than a short page.
func collect[T any](ctx context.Context, limit int, start cursor, fetch fetchFunc[T]) ([]T, error) {
	var out []T
	at := start
	for len(out) < limit {
		n := min(limit-len(out), maxBatch)
		b, err := fetch(ctx, at, n)
		if err != nil {
			return nil, err
		}
		out = append(out, b.items...)
		if b.done || b.raw < n {
			break
		}
		at = b.next
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
