package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/locksmith-go/locksmith/lib/locksmith"
	"github.com/locksmith-go/locksmith/rpc/common"
	"github.com/locksmith-go/locksmith/rpc/serializer"
	"github.com/locksmith-go/locksmith/rpc/server"
)

// loopbackTransport routes requests directly into a server adapter,
// exercising the full request path minus the network.
type loopbackTransport struct {
	smith      *locksmith.Smith
	adapter    server.IRPCServerAdapter
	serializer serializer.IRPCSerializer
}

func (t *loopbackTransport) Connect(config common.ClientConfig) error { return nil }

func (t *loopbackTransport) Send(req []byte) ([]byte, error) {
	var msg common.Message
	if err := t.serializer.Deserialize(req, &msg); err != nil {
		return nil, err
	}
	resp := t.adapter.Handle(context.Background(), &msg, t.smith)
	return t.serializer.Serialize(*resp)
}

func (t *loopbackTransport) Close() error { return nil }

func newTestClient(t *testing.T) (*Locksmith, *locksmith.Smith) {
	t.Helper()

	smith := locksmith.New(&locksmith.Options{PollInterval: 10 * time.Millisecond})
	s := serializer.NewBinarySerializer()
	transport := &loopbackTransport{
		smith:      smith,
		adapter:    server.NewLocksmithServerAdapter(),
		serializer: s,
	}

	c, err := NewRPCLocksmith(common.ClientConfig{}, transport, s)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c, smith
}

func TestClientAcquireUpdateRelease(t *testing.T) {
	c, _ := newTestClient(t)

	l, err := c.Acquire("job-42", 60)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if l == nil || l.Name != "job-42" || l.Token == "" {
		t.Fatalf("unexpected lock handle: %v", l)
	}

	// Contended acquire yields no handle and no error
	if other, err := c.Acquire("job-42", 60); err != nil || other != nil {
		t.Fatalf("expected contended acquire to yield nil, got %v (err %v)", other, err)
	}

	if ok, err := l.Update(120); err != nil || !ok {
		t.Fatalf("expected update with the owner token to succeed, got ok=%v err=%v", ok, err)
	}

	if ok, err := l.Release(); err != nil || !ok {
		t.Fatalf("expected release to succeed, got ok=%v err=%v", ok, err)
	}
	if ok, err := l.Release(); err != nil || ok {
		t.Fatalf("expected a second release to fail, got ok=%v err=%v", ok, err)
	}
}

func TestClientAcquireWait(t *testing.T) {
	c, _ := newTestClient(t)

	holder, err := c.Acquire("shared", 60)
	if err != nil || holder == nil {
		t.Fatalf("setup acquire failed: %v (err %v)", holder, err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		holder.Release()
	}()

	l, err := c.AcquireWait("shared", 60, 3)
	if err != nil {
		t.Fatalf("waiting acquire failed: %v", err)
	}
	if l == nil {
		t.Fatalf("expected the waiting acquire to win after release")
	}
	if l.Token == holder.Token {
		t.Errorf("expected a fresh owner token")
	}
}

func TestClientStatistics(t *testing.T) {
	c, _ := newTestClient(t)

	l, _ := c.Acquire("stat-lock", 60)
	c.Acquire("stat-lock", 60)
	l.Release()

	snap, err := c.Statistics()
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if snap.Calls.Acquire != 2 || snap.Calls.AcquireSuccess != 1 {
		t.Errorf("unexpected acquire counters: %+v", snap.Calls)
	}
	if snap.Calls.Release != 1 || snap.Calls.ReleaseSuccess != 1 {
		t.Errorf("unexpected release counters: %+v", snap.Calls)
	}
	if snap.Locks.Count != 0 {
		t.Errorf("expected no live leases, got %d", snap.Locks.Count)
	}
}

func TestClientServerSideValidation(t *testing.T) {
	c, _ := newTestClient(t)

	if _, err := c.Acquire("", 60); err == nil || !strings.Contains(err.Error(), "name") {
		t.Errorf("expected an error for an empty lock name, got %v", err)
	}
	if _, err := c.Acquire("lock", 0); err == nil || !strings.Contains(err.Error(), "validity") {
		t.Errorf("expected an error for zero validity, got %v", err)
	}
	if _, err := c.Update("", 60); err == nil {
		t.Errorf("expected an error for an empty token")
	}
}
