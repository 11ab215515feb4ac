package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	logging "github.com/op/go-logging"
	"golang.org/x/sync/errgroup"

	"github.com/locksmith-go/locksmith/lib/locksmith"
	"github.com/locksmith-go/locksmith/rpc/common"
	"github.com/locksmith-go/locksmith/rpc/serializer"
	"github.com/locksmith-go/locksmith/rpc/transport"
)

var Logger = logging.MustGetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(context.Background()); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		adapter:    NewLocksmithServerAdapter(),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	adapter    IRPCServerAdapter
	smith      *locksmith.Smith
}

// registerTransportHandler wires deserialization, the adapter and
// serialization into the transport layer
func (s *rpcServer) registerTransportHandler(ctx context.Context) {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Decode the request
		if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			// Let the adapter handle the request
			respMsg = *s.adapter.Handle(ctx, &msg, s.smith)
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("Failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(*common.NewErrorResponse("failed to serialize response"))
		}
		return val
	})
}

// init prepares the lock service and the transport handler
func (s *rpcServer) init(ctx context.Context) error {

	// Init loggers
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	// Create the lock service
	opts := locksmith.DefaultOptions()
	if s.config.WatchdogIntervalMS > 0 {
		opts.SweepInterval = time.Duration(s.config.WatchdogIntervalMS) * time.Millisecond
	}
	s.smith = locksmith.New(opts)

	Logger.Infof("locksmith setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler(ctx)

	return nil
}

// Serve starts the RPC server
// This function initializes the lock service, starts the watchdog, the
// optional metrics endpoint and the transport layer. It blocks until the
// context is cancelled or a component fails.
func (s *rpcServer) Serve(ctx context.Context) error {
	if err := s.init(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	// Watchdog: evicts expired leases
	g.Go(func() error {
		return s.smith.Run(ctx)
	})

	// Optional metrics endpoint
	if s.config.MetricsEndpoint != "" {
		g.Go(func() error {
			return s.serveMetrics(ctx)
		})
	}

	// Transport layer
	g.Go(func() error {
		return s.transport.Listen(ctx, s.config)
	})

	return g.Wait()
}

// serveMetrics exposes all counters and gauges in Prometheus text format
func (s *rpcServer) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		s.smith.WritePrometheus(w)
	})

	srv := &http.Server{
		Addr:    s.config.MetricsEndpoint,
		Handler: mux,
	}

	// Shut the metrics server down when the context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	Logger.Infof("Starting metrics endpoint on %s", s.config.MetricsEndpoint)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
