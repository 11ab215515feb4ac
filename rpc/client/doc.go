// Package client implements the RPC client for the lock service.
// It provides a Locksmith client that forwards lock operations to a
// remote server via the configured transport, and a Lock handle that
// bundles a lock name with its owner token.
//
// The package focuses on:
//   - Transparent RPC access to the lock operations
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCLocksmith: Factory function that creates a client speaking to
//     remote servers via the configured transport layer.
//
//   - Lock: Handle for an acquired lock, offering Update and Release
//     without tracking the owner token separately.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:5000"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	// Create the client
//	c, _ := client.NewRPCLocksmith(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//
//	// Acquire, renew and release a lock
//	lock, _ := c.Acquire("mylock", 30)
//	if lock != nil {
//	  lock.Update(60)
//	  lock.Release()
//	}
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from multiple
//	goroutines without additional synchronization.
package client
