package mqtt5

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentReadWriteSafety exercises spec.md §5's claim that Read
// and Write hold no shared mutable state: many goroutines encoding and
// decoding distinct packets concurrently must never race or corrupt
// each other's results.
func TestConcurrentReadWriteSafety(t *testing.T) {
	const workers = 64
	const iterations = 200

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				packetID := uint16((w*iterations+i)%65535 + 1)
				p, err := NewPublishPacket("bench/topic", AtLeastOnce, packetID, []byte("payload"))
				if err != nil {
					return err
				}

				encoded, err := Write(p)
				if err != nil {
					return err
				}

				decoded, n, err := Read(encoded)
				if err != nil {
					return err
				}
				if n != len(encoded) {
					return fmt.Errorf("worker %d: consumed %d of %d bytes", w, n, len(encoded))
				}
				got := decoded.(*PublishPacket)
				if got.PacketID != packetID {
					return fmt.Errorf("worker %d: packet ID %d, want %d", w, got.PacketID, packetID)
				}
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
}
