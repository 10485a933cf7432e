package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/writeit-dev/writeit/internal/container"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/ports"
)

// addWorkspaceFlag registers the shared --workspace selector used by every
// command that operates on a single workspace.
func addWorkspaceFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVar(target, "workspace", "", "workspace name (defaults to the active workspace)")
}

func newConfigCmd(profile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage typed settings in the global and workspace scopes",
	}
	cmd.AddCommand(
		newConfigSchemaCmd(profile),
		newConfigGetCmd(profile),
		newConfigSetCmd(profile),
		newConfigUnsetCmd(profile),
		newConfigResolveCmd(profile),
	)
	return cmd
}

func newConfigSchemaCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the setting schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.ConfigService](rt.container)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tKIND\tDEFAULT\tDESCRIPTION")
				for _, field := range svc.Describe(ctx) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						field.Key, field.Kind, field.Default, field.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func newConfigGetCmd(profile *string) *cobra.Command {
	var global bool
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a setting from the workspace or global layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.ConfigService](rt.container)
				if err != nil {
					return err
				}

				if global {
					settings, err := svc.Global(ctx)
					if err != nil {
						return err
					}
					v, ok := settings.Get(args[0])
					if !ok {
						return fmt.Errorf("global setting %q is not set", args[0])
					}
					fmt.Println(v)
					return nil
				}

				wsID, err := resolveWorkspaceID(ctx, rt, workspaceName)
				if err != nil {
					return err
				}
				v, err := svc.Get(ctx, wsID, args[0])
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "read from the global layer")
	addWorkspaceFlag(cmd.Flags(), &workspaceName)
	return cmd
}

func newConfigSetCmd(profile *string) *cobra.Command {
	var global bool
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting in the workspace or global layer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.ConfigService](rt.container)
				if err != nil {
					return err
				}

				var v configset.Value
				if global {
					v, err = svc.SetGlobal(ctx, args[0], args[1])
				} else {
					var wsID string
					wsID, err = resolveWorkspaceID(ctx, rt, workspaceName)
					if err != nil {
						return err
					}
					v, err = svc.Set(ctx, wsID, args[0], args[1])
				}
				if err != nil {
					return err
				}
				fmt.Printf("%s = %s\n", args[0], v)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "write to the global layer")
	addWorkspaceFlag(cmd.Flags(), &workspaceName)
	return cmd
}

func newConfigUnsetCmd(profile *string) *cobra.Command {
	var global bool
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from the workspace or global layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.ConfigService](rt.container)
				if err != nil {
					return err
				}

				if global {
					if err := svc.UnsetGlobal(ctx, args[0]); err != nil {
						return err
					}
				} else {
					wsID, err := resolveWorkspaceID(ctx, rt, workspaceName)
					if err != nil {
						return err
					}
					if err := svc.Unset(ctx, wsID, args[0]); err != nil {
						return err
					}
				}
				fmt.Printf("unset %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "remove from the global layer")
	addWorkspaceFlag(cmd.Flags(), &workspaceName)
	return cmd
}

func newConfigResolveCmd(profile *string) *cobra.Command {
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show a workspace's effective settings (defaults, global, workspace merged)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), *profile, func(ctx context.Context, rt *runtime) error {
				svc, err := container.Resolve[ports.ConfigService](rt.container)
				if err != nil {
					return err
				}
				wsID, err := resolveWorkspaceID(ctx, rt, workspaceName)
				if err != nil {
					return err
				}
				settings, err := svc.Resolve(ctx, wsID)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tKIND\tVALUE")
				for _, key := range settings.Keys() {
					v, _ := settings.Get(key)
					fmt.Fprintf(tw, "%s\t%s\t%s\n", key, v.Kind(), v)
				}
				return tw.Flush()
			})
		},
	}

	addWorkspaceFlag(cmd.Flags(), &workspaceName)
	return cmd
}

// resolveWorkspaceID maps a workspace name to its ID, defaulting to the
// active workspace when no name is given.
func resolveWorkspaceID(ctx context.Context, rt *runtime, name string) (string, error) {
	svc, err := container.Resolve[ports.WorkspaceService](rt.container)
	if err != nil {
		return "", err
	}
	if name == "" {
		ws, err := svc.Active(ctx)
		if err != nil {
			return "", fmt.Errorf("no active workspace: %w", err)
		}
		return ws.ID, nil
	}
	ws, err := svc.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return ws.ID, nil
}
