package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/writeit-dev/writeit/internal/container"
	"github.com/writeit-dev/writeit/internal/ports"
)

func newPipelineCmd(profile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Manage and run pipelines",
	}
	cmd.AddCommand(
		newPipelineListCmd(profile),
		newPipelineRunCmd(profile),
	)
	return cmd
}

func newPipelineListCmd(profile *string) *cobra.Command {
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a workspace's pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				wsID, err := resolveWorkspaceID(ctx, rt, workspaceName)
				if err != nil {
					return err
				}
				svc, err := container.Resolve[ports.PipelineService](rt.container)
				if err != nil {
					return err
				}
				pipelines, err := svc.List(ctx, wsID)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tID\tSTEPS\tDESCRIPTION")
				for _, p := range pipelines {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.ID, len(p.Steps), p.Description)
				}
				return tw.Flush()
			})
		},
	}

	addWorkspaceFlag(cmd.Flags(), &workspaceName)
	return cmd
}

func newPipelineRunCmd(profile *string) *cobra.Command {
	var workspaceName, input string

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Execute a pipeline and print the final output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				wsID, err := resolveWorkspaceID(ctx, rt, workspaceName)
				if err != nil {
					return err
				}
				repo, err := container.Resolve[ports.PipelineRepository](rt.container)
				if err != nil {
					return err
				}
				p, err := repo.GetByName(ctx, wsID, args[0])
				if err != nil {
					return err
				}

				svc, err := container.Resolve[ports.PipelineService](rt.container)
				if err != nil {
					return err
				}
				run, runErr := svc.Run(ctx, p.ID, input)
				if run != nil {
					fmt.Fprintf(os.Stderr, "run %s: %s (%d steps, %d tokens, %s)\n",
						run.ID, run.Status, len(run.Steps), run.TotalTokens, run.Duration.Round(time.Millisecond))
				}
				if runErr != nil {
					return runErr
				}

				fmt.Println(run.Output())
				return nil
			})
		},
	}

	addWorkspaceFlag(cmd.Flags(), &workspaceName)
	cmd.Flags().StringVar(&input, "input", "", "initial input for the {{input}} placeholder")
	return cmd
}
