package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gateway",
		Short: "Safety training gateway: course catalog, assessments, panorama tours and certificates",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newSeedCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
