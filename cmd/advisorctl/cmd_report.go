package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newReportCommand(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "report <submission-id>",
		Short: "Download the generated report for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			report, err := root.client().DownloadReport(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer report.Body.Close()

			path := output
			if path == "" {
				path = reportFilename(report.ContentDisposition, id)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			n, err := io.Copy(f, report.Body)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: name sent by the server)")
	return cmd
}

// reportFilename takes the server's suggested name, reduced to its base so a
// hostile header cannot write outside the working directory.
func reportFilename(disposition, id string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "report_" + filepath.Base(id) + ".pdf"
}
