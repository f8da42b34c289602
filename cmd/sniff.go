// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/mwdumps/config"
	"github.com/cardinalhq/mwdumps/internal/dumpsource"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sniff <file>...",
		Short: "Print the detected container format of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCommand("sniff", func(_ context.Context, _ *config.Config) error {
				return runSniff(c.OutOrStdout(), args)
			})
		},
	}

	rootCmd.AddCommand(cmd)
}

// runSniff prints one "path<TAB>format" line per file. Files that cannot be
// identified are reported as unknown and make the command fail after all
// files were checked.
func runSniff(out io.Writer, paths []string) error {
	var result *multierror.Error
	for _, path := range paths {
		format, err := dumpsource.SniffFile(path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
		}
		compressed := ""
		if format.Compressed() {
			compressed = "\tcompressed"
		}
		if _, err := fmt.Fprintf(out, "%s\t%s%s\n", path, format, compressed); err != nil {
			return err
		}
	}
	return result.ErrorOrNil()
}
