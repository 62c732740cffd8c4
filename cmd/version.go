package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// versionCmd returns the callers installed chip8-vm version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Retrieve the currently installed chip8-vm version",
	Long:  "Run `chip8-vm version` to get your current chip8-vm version",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		fmt.Println("The version command does not take any arguments")
		os.Exit(1)
	}
	fmt.Println(currentReleaseVersion)
}
