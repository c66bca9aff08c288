package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/maloquacious/datacycle/internal/logger"
	"github.com/maloquacious/datacycle/internal/service"
	"github.com/maloquacious/datacycle/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ValidFormats defines the allowed output formats for records list.
var ValidFormats = []string{"table", "json", "yaml"}

func newRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect tbl_test directly",
	}

	var format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every record in storage",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(format) {
				return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(cmd, format)
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "output format (table|json|yaml)")

	cmd.AddCommand(listCmd)
	return cmd
}

func runRecordsList(cmd *cobra.Command, format string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := service.New(st, log).ListRecords(cmd.Context())
	if err != nil {
		return err
	}
	return writeRecords(cmd.OutOrStdout(), format, records, log)
}

// writeRecords renders records in the given format.
func writeRecords(w io.Writer, format string, records []store.Record, log logger.Logger) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.Style().Format.Footer = text.FormatDefault
		t.AppendHeader(table.Row{"ID", "Data"})
		for _, r := range records {
			t.AppendRow(table.Row{r.ID, r.Data})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d records", len(records))})
		t.Render()
		return nil
	}
	log.Warn("unknown format %q", format)
	return fmt.Errorf("unknown format %q", format)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
