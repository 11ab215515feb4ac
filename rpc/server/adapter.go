package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/locksmith-go/locksmith/lib/lease"
	"github.com/locksmith-go/locksmith/lib/locksmith"
	"github.com/locksmith-go/locksmith/rpc/common"
)

func NewLocksmithServerAdapter() IRPCServerAdapter {
	return &locksmithServerAdapter{}
}

type locksmithServerAdapter struct{}

func (adapter *locksmithServerAdapter) Handle(ctx context.Context, req *common.Message, smith locksmith.ILocksmith) (resp *common.Message) {

	// Check for nil lock service
	if smith == nil {
		return common.NewErrorResponse("handler: lock service is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTAcquire:
		if req.Name == "" {
			return common.NewErrorResponse("acquire: lock name must not be empty")
		}
		if req.Validity == 0 {
			return common.NewErrorResponse("acquire: validity must be greater than zero")
		}

		// A request with a timeout waits for the lock, one without
		// returns immediately on contention
		var l lease.Lease
		var ok bool
		if req.Timeout > 0 {
			l, ok = smith.AcquireWait(ctx, req.Name, req.Validity, req.Timeout)
		} else {
			l, ok = smith.Acquire(req.Name, req.Validity)
		}
		return common.NewAcquireResponse(ok, req.Name, l.Token)

	case common.MsgTUpdate:
		if req.Token == "" {
			return common.NewErrorResponse("update: token must not be empty")
		}
		if req.Validity == 0 {
			return common.NewErrorResponse("update: validity must be greater than zero")
		}
		return common.NewUpdateResponse(smith.Update(req.Token, req.Validity))

	case common.MsgTRelease:
		if req.Token == "" {
			return common.NewErrorResponse("release: token must not be empty")
		}
		return common.NewReleaseResponse(smith.Release(req.Token))

	case common.MsgTStatistics:
		meta, err := json.Marshal(smith.Statistics())
		return common.NewStatisticsResponse(meta, err)

	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC LocksmithAdapter - Unsupported message type: %s", req.MsgType))
	}
}
