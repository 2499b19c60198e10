package zerog

import (
	"context"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog/disperser"
)

// classify maps a disperser status to a verification outcome. Anything not
// known to lead to durability is rejected.
func classify(s disperser.BlobStatus) da.VerificationStatus {
	switch s {
	case disperser.BlobStatusConfirmed, disperser.BlobStatusFinalized:
		return da.StatusVerified
	case disperser.BlobStatusProcessing:
		return da.StatusPending
	default:
		return da.StatusRejected
	}
}

// Verify decodes key and classifies the blob's current status with a single
// status query. A failed query is reported as da.StatusRejected, not as an
// error; errors are returned only for a malformed key, a cancelled ctx or a
// closed client.
func (c *Client) Verify(ctx context.Context, key string) (da.VerificationStatus, error) {
	ref, err := DecodeReferenceKey(key)
	if err != nil {
		return da.StatusRejected, err
	}

	h, err := c.pool.acquire(ctx)
	if err != nil {
		return da.StatusRejected, err
	}
	reply, err := queryStatus(ctx, h, &disperser.BlobStatusRequest{RequestID: ref.RequestID}, c.cfg.StatusQueryTimeout)
	c.pool.release(h)

	outcome := da.StatusRejected
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return da.StatusRejected, ctxErr
		}
		c.logger.Debug().Err(err).Hex("request_id", ref.RequestID).Msg("status query failed")
	} else {
		outcome = classify(reply.Status)
		c.logger.Debug().
			Hex("request_id", ref.RequestID).
			Str("status", reply.Status.String()).
			Str("outcome", outcome.String()).
			Msg("verified blob")
	}
	c.metrics.VerifyOutcomes[outcome].Add(1)
	return outcome, nil
}
