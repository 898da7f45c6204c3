package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/newsdesk/internal/fetch"
	"github.com/JonMunkholm/newsdesk/internal/logging"
	"github.com/JonMunkholm/newsdesk/internal/poller"
)

func fetchCmd() *cobra.Command {
	var (
		url       string
		format    string
		delimiter string
		output    string
		tz        string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a published sheet once and print its articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			f, err := fetch.ParseFormat(format)
			if err != nil {
				return err
			}
			d, err := dialect(delimiter)
			if err != nil {
				return err
			}
			b, err := builder(cmd, tz)
			if err != nil {
				return err
			}

			client := fetch.NewClient(fetch.Options{
				URL:         url,
				Format:      f,
				Timeout:     timeout,
				MaxBodySize: defaultMaxSize,
			})
			p := poller.New(client, poller.Options{Decoder: d, Logger: newLogger(cmd)})

			snap, err := p.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return writeArticles(cmd.OutOrStdout(), output, b.Build(snap.Records))
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Published sheet URL")
	cmd.MarkFlagRequired("url")
	cmd.Flags().StringVar(&format, "format", "auto", "Feed format: auto, csv, json or rss")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output: json, yaml or table")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "Display timezone for datelines")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Fetch timeout")
	return cmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if f := cmd.Flag("log-level"); f != nil {
		level = f.Value.String()
	}
	return logging.New(cmd.ErrOrStderr(), level, "text")
}
