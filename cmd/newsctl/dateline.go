package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/newsdesk/internal/feed"
)

func datelineCmd() *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "dateline <value>...",
		Short: "Print the dateline the widget would show for each timestamp",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("unknown timezone %q: %w", tz, err)
			}
			n := feed.NewNormalizer(loc)
			for _, v := range args {
				fmt.Fprintln(cmd.OutOrStdout(), n.Normalize(v))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tz, "tz", "UTC", "Display timezone")
	return cmd
}
