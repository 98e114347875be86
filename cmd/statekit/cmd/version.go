package cmd

import "fmt"

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  `Show the statekit CLI version and build time.`,
		Usage: "statekit version",
		Run:   runVersion,
	})
}

func runVersion(args []string) error {
	fmt.Printf("statekit version %s (built %s)\n", Version, BuildTime)
	return nil
}
