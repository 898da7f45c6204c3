package main

import (
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/newsdesk/internal/article"
	"github.com/JonMunkholm/newsdesk/internal/feed"
	"github.com/JonMunkholm/newsdesk/internal/fetch"
)

const defaultMaxSize = 10 << 20

func decodeCmd() *cobra.Command {
	var (
		format    string
		delimiter string
		output    string
		articles  bool
		tz        string
		maxSize   int64
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a news sheet from a file or stdin",
		Long:  "Decodes a CSV, JSON or RSS news sheet. Records go to stdout; skipped rows are reported on stderr.",
		Args:  cobra.MaximumNArgs(1),
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

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			body, err := feed.CleanInput(in, maxSize)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if f == fetch.FormatAuto {
				f = fetch.Detect("", []byte(body))
			}

			res, err := fetch.Decode(&fetch.Payload{Body: body, Format: f}, d)
			if err != nil {
				return err
			}
			writeSkipped(cmd.ErrOrStderr(), res.Skipped)

			if !articles {
				return writeRecords(cmd.OutOrStdout(), output, res)
			}

			b, err := builder(cmd, tz)
			if err != nil {
				return err
			}
			return writeArticles(cmd.OutOrStdout(), output, b.Build(res.Records))
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Input format: auto, csv, json or rss")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output: json, yaml or table")
	cmd.Flags().BoolVar(&articles, "articles", false, "Build sorted articles instead of raw records")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "Display timezone for datelines")
	cmd.Flags().Int64Var(&maxSize, "max-size", defaultMaxSize, "Maximum input size in bytes")
	return cmd
}

func dialect(delimiter string) (*feed.Decoder, error) {
	r, size := utf8.DecodeRuneInString(delimiter)
	if size == 0 || size != len(delimiter) || r == '"' || r == '\n' || r == '\r' {
		return nil, fmt.Errorf("delimiter %q must be a single character other than a quote or newline", delimiter)
	}
	return feed.NewDecoder(feed.Dialect{Comma: r, Quote: '"', TrimSpace: true}), nil
}

func builder(cmd *cobra.Command, tz string) (*article.Builder, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	b := article.NewBuilder(feed.NewNormalizer(loc))
	b.Logger = newLogger(cmd)
	return b, nil
}
