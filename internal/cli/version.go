package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}

			info := slotfd.GetVersionInfo()
			if formatter.Format == "json" {
				return formatter.Success(info)
			}
			text := fmt.Sprintf("slotfd version %s", info.Version)
			if rootOpts.Verbose {
				text += fmt.Sprintf("\ngo: %s\ncommit: %s\nbuilt: %s", info.GoVersion, info.GitCommit, info.BuildDate)
			}
			return formatter.Success(text)
		},
	}
}
