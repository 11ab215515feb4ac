// Package common provides core data structures and utilities shared across
// the lock service. It defines fundamental types, configuration structures,
// and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - Shared logging setup for all application modules
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication, with a
//     flexible structure that adapts to different operation types.
//     Includes factory methods for creating various request and response
//     messages.
//
//   - MessageType: Enumeration defining all supported operation types:
//     acquire, update, release and statistics, plus control messages.
//
//   - ServerConfig: Configuration for the lock server, including transport
//     settings, the watchdog sweep interval, the optional metrics endpoint
//     and logging.
//
//   - ClientConfig: Configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
package common
