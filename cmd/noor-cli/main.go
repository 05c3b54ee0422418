package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCommand := &cobra.Command{
		Use:          "noor-cli",
		Short:        "Manage the offline Quran and Hadith data of a Noor installation",
		SilenceUsage: true,
	}
	rootCommand.AddCommand(
		newPrefetchCommand(),
		newRefreshCommand(),
		newStatusCommand(),
		newClearCommand(),
	)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
