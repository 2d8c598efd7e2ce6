// Command protogonosctl drives the evolution engine from the shell: run a
// generation-scheduler pass, step a live evolver, seed a starting
// topology, or inspect what a prior run persisted.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "protogonosctl",
		Short:         "Drive the protogonos neuroevolution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInitCmd(),
		newRunCmd(),
		newLiveCmd(),
		newInspectCmd(),
	)
	return root
}
