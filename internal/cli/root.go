// Package cli sets up the CLI commands for the dmerge binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/sardonyx-sard/dmerge/internal/cmd"
	"github.com/sardonyx-sard/dmerge/pkg/version"
)

var Debug cmd.DebugConfig

// App builds the root dmerge command with its subcommands attached.
func App() *cobra.Command {
	root := cmd.Command(&DMerge{}, cobra.Command{
		Version:       version.FriendlyVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	})

	cmd.AddDebug(root, &Debug)
	root.AddCommand(
		NewMerge(),
	)

	return root
}

// DMerge is the root command; it carries no flags of its own beyond debug
// and prints help when invoked with no subcommand.
type DMerge struct{}

func (r *DMerge) Run(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func (r *DMerge) PersistentPre(cmd *cobra.Command, args []string) error {
	Debug.MustSetupDebug()
	return nil
}
