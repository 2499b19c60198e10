package zerog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/evstack/zerog-da/da/zerog/disperser"
)

// isConfirmed reports whether s means the blob is durable. A finalized blob
// has passed through confirmation, possibly between two polls.
func isConfirmed(s disperser.BlobStatus) bool {
	return s == disperser.BlobStatusConfirmed || s == disperser.BlobStatusFinalized
}

// poller waits for a dispersal request to be confirmed.
type poller struct {
	pool    *connPool
	logger  zerolog.Logger
	metrics *Metrics

	retryDelay   time.Duration
	queryTimeout time.Duration
}

// awaitConfirmation queries the status of requestID until the disperser
// reports it confirmed and returns that reply. Unlike a CONFIRMED-only wait,
// FINALIZED also ends the loop, so a blob that moves past CONFIRMED between
// two polls does not keep it spinning. Every other status, and every failed
// query, is retried after the poll delay. Only ctx ends the wait early.
func (p *poller) awaitConfirmation(ctx context.Context, requestID []byte) (*disperser.BlobStatusReply, error) {
	req := &disperser.BlobStatusRequest{RequestID: requestID}

	for polls := 1; ; polls++ {
		h, err := p.pool.acquire(ctx)
		if err != nil {
			return nil, err
		}
		reply, err := queryStatus(ctx, h, req, p.queryTimeout)
		p.pool.release(h)
		p.metrics.StatusPolls.Add(1)

		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.logger.Warn().Err(err).Int("poll", polls).Hex("request_id", requestID).Msg("failed to query blob status, retrying")
		case isConfirmed(reply.Status):
			p.logger.Debug().Int("polls", polls).Str("status", reply.Status.String()).Hex("request_id", requestID).Msg("blob confirmed")
			return reply, nil
		default:
			p.logger.Debug().Int("poll", polls).Str("status", reply.Status.String()).Hex("request_id", requestID).Msg("blob not confirmed yet")
		}

		if err := waitForBackoffOrContext(ctx, p.retryDelay); err != nil {
			return nil, err
		}
	}
}

// queryStatus issues one GetBlobStatus RPC on h.
func queryStatus(ctx context.Context, h disperser.DisperserClient, req *disperser.BlobStatusRequest, timeout time.Duration) (*disperser.BlobStatusReply, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	reply, err := h.GetBlobStatus(ctx, req)
	if err == nil && reply == nil {
		err = errors.New("empty status reply")
	}
	return reply, err
}
