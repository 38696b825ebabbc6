package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofctl/util"
)

func newGroupCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage audience groups",
		Long: `Audience groups decide which items a page shows. A page is assigned one
group and rotates through the active items listing it.`,
	}

	cmd.AddCommand(
		newGroupAddCmd(o),
		newGroupListCmd(o),
		newGroupRemoveCmd(o),
	)

	return cmd
}

func newGroupAddCmd(o *options) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:     "add NAME",
		Short:   "Add an audience group",
		Example: `  wproofctl group add "Pricing visitors" --description="Pages near checkout"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.getClient()
			if err != nil {
				return err
			}

			created, err := c.AddGroup(cmd.Context(), &v1alpha1.DisplayGroup{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("error adding group: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Group %d %q added\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Who the group targets")

	return cmd
}

func newGroupListCmd(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audience groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.getClient()
			if err != nil {
				return err
			}

			s, err := c.GetSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing groups: %w", err)
			}

			switch output {
			case "json":
				return util.PrintJSON(cmd.OutOrStdout(), s.Groups)
			default:
				// Count the items shown to each group
				counts := make(map[string]int)
				for _, item := range s.Items {
					for _, g := range item.Groups {
						counts[g]++
					}
				}

				tw := util.NewTabWriter(cmd.OutOrStdout())
				defer tw.Flush()

				fmt.Fprintf(tw, "ID\tNAME\tITEMS\tDESCRIPTION\n")
				for _, g := range s.Groups {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", g.ID, g.Name, counts[strconv.Itoa(g.ID)], g.Description)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func newGroupRemoveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an audience group",
		Long: `Remove an audience group. Items that listed the group no longer do;
pages assigned to it stop showing overlays.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid group id %q", args[0])
			}

			c, err := o.getClient()
			if err != nil {
				return err
			}
			if err := c.RemoveGroup(cmd.Context(), id); err != nil {
				return fmt.Errorf("error removing group: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Group %d removed\n", id)
			return nil
		},
	}
}
