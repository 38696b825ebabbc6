package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofctl/util"
)

func newSettingsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or replace the overlay settings",
	}

	cmd.AddCommand(
		newSettingsShowCmd(o),
		newSettingsApplyCmd(o),
	)

	return cmd
}

func newSettingsShowCmd(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the overlay settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.getClient()
			if err != nil {
				return err
			}

			s, err := c.GetSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("error getting settings: %w", err)
			}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				return util.PrintJSON(out, s)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(s)
			default:
				r := s.Rotation
				fmt.Fprintf(out, "Enabled:   %v\n", s.Enabled)
				fmt.Fprintf(out, "Delay:     %dms\n", r.Delay)
				fmt.Fprintf(out, "Duration:  %dms\n", r.Duration)
				fmt.Fprintf(out, "Interval:  %dms\n", r.Interval)
				fmt.Fprintf(out, "Position:  %s\n", r.Position)
				fmt.Fprintf(out, "Animation: %s\n", r.Animation)
				fmt.Fprintf(out, "Theme:     %s\n", r.Theme)
				if r.CustomColors != nil && r.Theme == "custom" {
					cc := r.CustomColors
					fmt.Fprintf(out, "Colors:    background %s, text %s, border %s %dpx\n",
						cc.Background, cc.Text, cc.Border, cc.BorderWidth)
				}
				fmt.Fprintf(out, "Items:     %d\n", len(s.Items))
				fmt.Fprintf(out, "Groups:    %d\n", len(s.Groups))
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func newSettingsApplyCmd(o *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "apply",
		Short:   "Replace the overlay settings from a YAML file",
		Example: `  wproofctl settings show -o yaml > settings.yaml && wproofctl settings apply -f settings.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("error reading settings: %w", err)
			}

			var s v1alpha1.Settings
			if err := yaml.Unmarshal(data, &s); err != nil {
				return fmt.Errorf("error parsing settings: %w", err)
			}

			c, err := o.getClient()
			if err != nil {
				return err
			}

			saved, err := c.PutSettings(cmd.Context(), &s)
			if err != nil {
				return fmt.Errorf("error applying settings: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Settings applied: %d items, %d groups\n", len(saved.Items), len(saved.Groups))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Settings file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
