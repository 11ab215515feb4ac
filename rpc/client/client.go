package client

import (
	"encoding/json"

	"github.com/locksmith-go/locksmith/lib/locksmith"
	"github.com/locksmith-go/locksmith/rpc/common"
	"github.com/locksmith-go/locksmith/rpc/serializer"
	"github.com/locksmith-go/locksmith/rpc/transport"
)

// NewRPCLocksmith creates a new RPC lock client
// The function takes a config, a transport and a serializer as parameters
// It connects the transport and returns the client and an error
func NewRPCLocksmith(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*Locksmith, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Return the RPC client
	return &Locksmith{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// Locksmith is the client side of the lock service. All operations are
// forwarded to the server via the configured transport.
type Locksmith struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// --------------------------------------------------------------------------
// Lock Operations
// --------------------------------------------------------------------------

// Acquire tries to acquire the named lock with a lease valid for the
// given number of seconds. It returns a Lock handle on success, or nil
// (with a nil error) if the lock is held by someone else.
func (c *Locksmith) Acquire(name string, validity uint64) (*Lock, error) {
	return c.AcquireWait(name, validity, 0)
}

// AcquireWait behaves like Acquire but the server keeps retrying until
// the lock frees or timeout seconds have elapsed. A timeout of 0 returns
// immediately on contention.
//
// The transport TimeoutSecond must exceed the acquire timeout, otherwise
// the request times out while the server is still waiting.
func (c *Locksmith) AcquireWait(name string, validity, timeout uint64) (*Lock, error) {
	req := common.NewAcquireRequest(name, validity, timeout)
	resp, err := invokeRPCRequest(req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	if !resp.Ok {
		return nil, nil
	}
	return &Lock{
		client: c,
		Name:   resp.Name,
		Token:  resp.Token,
	}, nil
}

// Update extends the lease owned by the token to now + validity seconds.
// It returns false if the lease is absent, expired, or owned by another
// token.
func (c *Locksmith) Update(token string, validity uint64) (bool, error) {
	req := common.NewUpdateRequest(token, validity)
	resp, err := invokeRPCRequest(req, c.transport, c.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Release deletes the lease owned by the token. It returns false if the
// lease is absent, expired, or owned by another token.
func (c *Locksmith) Release(token string) (bool, error) {
	req := common.NewReleaseRequest(token)
	resp, err := invokeRPCRequest(req, c.transport, c.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Statistics fetches a point-in-time snapshot of the server's operation
// counters and gauges.
func (c *Locksmith) Statistics() (locksmith.StatisticsSnapshot, error) {
	var snap locksmith.StatisticsSnapshot

	req := common.NewStatisticsRequest()
	resp, err := invokeRPCRequest(req, c.transport, c.serializer)
	if err != nil {
		return snap, err
	}

	if err := json.Unmarshal(resp.Meta, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// Close closes the underlying transport connection
func (c *Locksmith) Close() error {
	return c.transport.Close()
}
