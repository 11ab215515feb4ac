// Package server implements the RPC server for the lock service.
// It provides an adapter for handling RPC requests against the lock
// operations, along with the core server implementation that wires the
// lock service, its watchdog and the transport layer together.
//
// The package focuses on:
//   - Server-side RPC request handling for lock operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Lifecycle management for the watchdog and the optional metrics endpoint
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that processes incoming requests against a
//     locksmith.ILocksmith.
//
//   - NewLocksmithServerAdapter: Factory function creating an adapter for
//     lock operations, translating RPC requests to acquire, update, release
//     and statistics calls.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Transport: common.ServerTransportConfig{
//	    Endpoint: "0.0.0.0:8080",
//	  },
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(context.Background()); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is processed
//	independently. The Serve method is not thread-safe and should be
//	called only once.
package server
