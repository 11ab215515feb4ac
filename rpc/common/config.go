package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared transport tuning options
// --------------------------------------------------------------------------

// SocketConf holds socket buffer tuning options shared by all
// stream transports.
type SocketConf struct {
	WriteBufferSize int // Socket write buffer size in bytes (0 = OS default)
	ReadBufferSize  int // Socket read buffer size in bytes (0 = OS default)
}

// TCPConf holds TCP specific tuning options.
type TCPConf struct {
	TCPNoDelay      bool // Disable Nagle's algorithm
	TCPKeepAliveSec int  // Keep-alive period in seconds (0 = disabled)
	TCPLingerSec    int  // Linger timeout in seconds (negative = OS default)
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the transport specific part of the
// server configuration.
type ServerTransportConfig struct {
	// Endpoint is the address the transport listens on. Its format depends
	// on the transport: "host:port" for tcp and http, a socket path for unix.
	Endpoint string

	// MaxWorkersPerConn limits the number of concurrently processed
	// requests per connection
	MaxWorkersPerConn int

	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters for the lock server.
type ServerConfig struct {
	// Transport settings
	Transport ServerTransportConfig

	// Read/write timeout for a single request
	TimeoutSecond int64

	// Watchdog sweep interval in milliseconds
	WatchdogIntervalMS int

	// Optional HTTP endpoint exposing prometheus metrics (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.MaxWorkersPerConn))

	// Lock service settings
	addSection("Lock Service")
	addField("Watchdog Interval", fmt.Sprintf("%d ms", c.WatchdogIntervalMS))
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	} else {
		addField("Metrics Endpoint", "disabled")
	}

	// Socket tuning
	addSection("Socket Tuning")
	addField("TCP No Delay", fmt.Sprintf("%t", c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	addField("Write Buffer Size", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer Size", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the transport specific part of the
// client configuration.
type ClientTransportConfig struct {
	// Endpoints lists the server addresses; requests are distributed
	// round-robin over all connections
	Endpoints []string

	// RetryCount is the number of send attempts before giving up
	RetryCount int

	// ConnectionsPerEndpoint is the number of parallel connections
	// opened to each endpoint (0 = 1)
	ConnectionsPerEndpoint int

	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters for the lock client.
type ClientConfig struct {
	// Timeout for a single request
	TimeoutSecond int

	// Transport settings
	Transport ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	connectionsPerEP := c.Transport.ConnectionsPerEndpoint
	if connectionsPerEP < 1 {
		connectionsPerEP = 1
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(connectionsPerEP))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
