package lock

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locksmith-go/locksmith/cmd/util"
	"github.com/locksmith-go/locksmith/rpc/client"
)

var (
	rpcLocksmith    *client.Locksmith
	acquireValidity uint64
	acquireTimeout  uint64
	updateValidity  uint64

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:               "lock",
		Short:             "Perform lock operations",
		PersistentPreRunE: setupLockClient,
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [name]",
		Short: "Acquire a named lock",
		Long:  "Acquire a named lock with a time-bounded lease. On success the owner token is printed; it is required to update or release the lease.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAcquire,
	}

	// updateCmd represents the update command
	updateCmd = &cobra.Command{
		Use:   "update [token]",
		Short: "Renew a previously acquired lease",
		Long:  "Renew a lease using the owner token returned by the acquire command. The lease is extended to now plus the given validity.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}

	// releaseCmd represents the release command
	releaseCmd = &cobra.Command{
		Use:   "release [token]",
		Short: "Release a previously acquired lock",
		Long:  "Release a lock using the owner token returned by the acquire command.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelease,
	}

	// statsCmd represents the stats command
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print server statistics",
		Long:  "Print a snapshot of the server's operation counters and lease gauges.",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add subcommands to lock command
	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(updateCmd)
	LockCommands.AddCommand(releaseCmd)
	LockCommands.AddCommand(statsCmd)
	LockCommands.AddCommand(perfTestCmd)

	// Add common RPC flags to the lock command
	util.SetupRPCClientFlags(LockCommands)

	// Add flags specific to acquire
	acquireCmd.Flags().Uint64Var(&acquireValidity, "validity", 30, "Lease validity in seconds")
	acquireCmd.Flags().Uint64Var(&acquireTimeout, "wait", 0, "How long to wait for a held lock in seconds (0 = fail immediately)")

	// Add flags specific to update
	updateCmd.Flags().Uint64Var(&updateValidity, "validity", 30, "New lease validity in seconds")
}

// setupLockClient initializes the lock client
func setupLockClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the lock client
	rpcLocksmith, err = client.NewRPCLocksmith(
		*config,
		t,
		s,
	)

	return err
}

// runAcquire handles the acquire lock command
func runAcquire(cmd *cobra.Command, args []string) error {
	name := args[0]

	// Attempt to acquire the lock
	l, err := rpcLocksmith.AcquireWait(name, acquireValidity, acquireTimeout)

	if err != nil {
		return fmt.Errorf("failed to acquire lock: %v", err)
	}

	if l == nil {
		fmt.Printf("acquired=false\n")
		return nil
	}

	fmt.Printf("acquired=true, token=%s\n", l.Token)

	return nil
}

// runUpdate handles the update lease command
func runUpdate(_ *cobra.Command, args []string) error {
	token := args[0]

	// Attempt to renew the lease
	updated, err := rpcLocksmith.Update(token, updateValidity)

	if err != nil {
		return fmt.Errorf("failed to update lease: %v", err)
	}

	fmt.Printf("updated=%v\n", updated)

	return nil
}

// runRelease handles the release lock command
func runRelease(_ *cobra.Command, args []string) error {
	token := args[0]

	// Attempt to release the lock
	released, err := rpcLocksmith.Release(token)

	if err != nil {
		return fmt.Errorf("failed to release lock: %v", err)
	}

	fmt.Printf("released=%v\n", released)

	return nil
}

// runStats handles the stats command
func runStats(_ *cobra.Command, _ []string) error {
	snap, err := rpcLocksmith.Statistics()
	if err != nil {
		return fmt.Errorf("failed to fetch statistics: %v", err)
	}

	fmt.Println("CALLS")
	fmt.Printf("  %-18s: %d (%d ok)\n", "acquire", snap.Calls.Acquire, snap.Calls.AcquireSuccess)
	fmt.Printf("  %-18s: %d (%d ok)\n", "update", snap.Calls.Update, snap.Calls.UpdateSuccess)
	fmt.Printf("  %-18s: %d (%d ok)\n", "release", snap.Calls.Release, snap.Calls.ReleaseSuccess)
	fmt.Printf("  %-18s: %d\n", "watchdog release", snap.Calls.WatchdogRelease)

	fmt.Println("LOCKS")
	fmt.Printf("  %-18s: %d\n", "live", snap.Locks.Count)

	fmt.Println("WAITING")
	fmt.Printf("  %-18s: %d\n", "consumers", snap.Consumers.Waiting)

	return nil
}
