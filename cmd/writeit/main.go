// Package main is the WriteIt command-line entry point. It exposes the HTTP
// server and workspace, config, and pipeline management commands, all wired
// through the dependency-injection container.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:           "writeit",
		Short:         "WriteIt is an LLM pipeline authoring and execution tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&profile, "profile", defaultProfile(),
		"configuration profile (local, dev, qa, prod)")

	cmd.AddCommand(
		newServeCmd(&profile),
		newWorkspaceCmd(&profile),
		newConfigCmd(&profile),
		newPipelineCmd(&profile),
	)
	return cmd
}

func defaultProfile() string {
	if p := os.Getenv("WRITEIT_PROFILE"); p != "" {
		return p
	}
	return "local"
}
