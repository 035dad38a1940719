package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modernsales/pawnshop/internal/app"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		filter filterFlags
		out    string
		secret string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching tickets to an Excel workbook",
		Long: `Writes two sheets: PhieuCam with one row per ticket and ChiTiet with one row per item.
The export secret is read from --secret or, when absent, from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			f, err := filter.build()
			if err != nil {
				return err
			}
			if secret == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Mật khẩu xuất Excel: ")
				secret = readLine(cmd)
			}
			path := out
			if strings.TrimSpace(path) == "" {
				path = fmt.Sprintf("PhieuCam_%s.xlsx", time.Now().Format("20060102_150405"))
			}
			result, err := a.Exporter.Export(ctx, path, f, secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã xuất %d phiếu, %d món hàng ra %s.\n", result.Records, result.Items, result.Path)
			return nil
		}),
	}
	filter.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .xlsx path (default PhieuCam_<timestamp>.xlsx)")
	cmd.Flags().StringVar(&secret, "secret", "", "export secret")
	return cmd
}

func readLine(cmd *cobra.Command) string {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
