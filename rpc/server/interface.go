package server

import (
	"context"

	"github.com/locksmith-go/locksmith/lib/locksmith"
	"github.com/locksmith-go/locksmith/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response
	// It takes a Message and a lock service as parameters.
	// It returns a Message as a response
	// If an error occurs, it should be set in the response
	// The context bounds blocking operations like a waiting acquire
	Handle(ctx context.Context, req *common.Message, smith locksmith.ILocksmith) (resp *common.Message)
}
