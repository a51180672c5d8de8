package version

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jongio/logbar/columns"
	"github.com/jongio/logbar/logutil"
)

// writerSink writes column rows to w without level labels.
type writerSink struct {
	w io.Writer
}

func (s writerSink) Emit(_ logutil.Level, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(s.w, line)
	}
}

// NewCommand creates a version command that displays build info.
// outputFormat is an optional pointer to a global output format flag (e.g. "json").
// If nil, defaults to a human-readable table.
func NewCommand(info *Info, outputFormat *string) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Display %s version information", info.Name),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			format := ""
			if outputFormat != nil {
				format = *outputFormat
			}

			if format == "json" {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if quiet {
				fmt.Fprintln(out, info.Version)
				return nil
			}

			table, err := columns.New(writerSink{w: out}, []any{info.Name, ""},
				columns.WithPadding(1), columns.WithSize(func() (int, int) { return 0, 0 }))
			if err != nil {
				return err
			}
			rows := [][]any{
				{"Version", info.Version},
				{"Build Date", info.BuildDate},
				{"Git Commit", info.GitCommit},
				{"Go Version", info.GoVersion},
			}
			for _, row := range rows {
				table.Reserve(row...)
			}
			table.Render()
			for _, row := range rows {
				table.Info(row...)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print version number")
	return cmd
}
