package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/locksmith-go/locksmith/cmd/lock"
	"github.com/locksmith-go/locksmith/cmd/serve"
	"github.com/locksmith-go/locksmith/cmd/util"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "locksmith",
		Short: "distributed lock service",
		Long: fmt.Sprintf(`locksmith (v%s)

A lock service written in Go. Clients acquire named locks with
time-bounded leases and renew or release them with an owner token.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of locksmith",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("locksmith v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
