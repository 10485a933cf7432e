package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/writeit-dev/writeit/internal/container"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

func newWorkspaceCmd(profile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}
	cmd.AddCommand(
		newWorkspaceCreateCmd(profile),
		newWorkspaceListCmd(profile),
		newWorkspaceGetCmd(profile),
		newWorkspaceActivateCmd(profile),
		newWorkspaceRmCmd(profile),
	)
	return cmd
}

func newWorkspaceCreateCmd(profile *string) *cobra.Command {
	var root, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.WorkspaceService](rt.container)
				if err != nil {
					return err
				}
				ws, err := svc.Create(ctx, &workspace.Workspace{
					Name:        args[0],
					Root:        root,
					Description: description,
				})
				if err != nil {
					return err
				}
				fmt.Printf("created workspace %s (%s) at %s\n", ws.Name, ws.ID, ws.Root)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "workspace root directory (derived from name if empty)")
	cmd.Flags().StringVar(&description, "description", "", "workspace description")
	return cmd
}

func newWorkspaceListCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.WorkspaceService](rt.container)
				if err != nil {
					return err
				}
				workspaces, err := svc.List(ctx, workspace.Filter{})
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tID\tACTIVE\tROOT")
				for _, ws := range workspaces {
					active := ""
					if ws.Active {
						active = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ws.Name, ws.ID, active, ws.Root)
				}
				return tw.Flush()
			})
		},
	}
}

func newWorkspaceGetCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show workspace details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.WorkspaceService](rt.container)
				if err != nil {
					return err
				}
				ws, err := svc.GetByName(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Printf("name:        %s\n", ws.Name)
				fmt.Printf("id:          %s\n", ws.ID)
				fmt.Printf("root:        %s\n", ws.Root)
				fmt.Printf("active:      %t\n", ws.Active)
				fmt.Printf("description: %s\n", ws.Description)
				fmt.Printf("created:     %s\n", ws.CreatedAt.Format("2006-01-02 15:04:05"))
				if len(ws.Settings) > 0 {
					fmt.Println("settings:")
					for _, key := range ws.Settings.Keys() {
						v, _ := ws.Settings.Get(key)
						fmt.Printf("  %s = %s\n", key, v)
					}
				}
				return nil
			})
		},
	}
}

func newWorkspaceActivateCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <name>",
		Short: "Make a workspace the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.WorkspaceService](rt.container)
				if err != nil {
					return err
				}
				ws, err := svc.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if _, err := svc.Activate(ctx, ws.ID); err != nil {
					return err
				}
				fmt.Printf("workspace %s is now active\n", ws.Name)
				return nil
			})
		},
	}
}

func newWorkspaceRmCmd(profile *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.WorkspaceService](rt.container)
				if err != nil {
					return err
				}
				ws, err := svc.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if err := svc.Delete(ctx, ws.ID, force); err != nil {
					return err
				}
				fmt.Printf("removed workspace %s\n", ws.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "allow removing the active workspace")
	return cmd
}
