package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteStoreStatus prints bar store status information.
func WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeStoreStatusText(w, status)
	}, "Wrote status")
}

func writeStoreStatusText(w io.Writer, status schema.StoreStatus) error {
	lines := []string{
		fmt.Sprintf("Store Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines,
			fmt.Sprintf("Schema Version: %d", status.SchemaVersion),
			fmt.Sprintf("Total Series: %d", status.TotalSeries),
			fmt.Sprintf("Total Bars: %d", status.TotalBars),
		)
		if status.TotalSeries > 0 {
			lines = append(lines, fmt.Sprintf("Last Update: %s", status.LastUpdateTime.Format(timeLayout)))
		}
		lines = append(lines, fmt.Sprintf("Table Size: %d bytes", status.TableSizeBytes))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteSeriesList outputs stored series summaries, dispatching based on the output format configured.
func WriteSeriesList(infos []schema.SeriesInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, infos)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "kind", "bars", "updated_at"}, func(cw *csv.Writer) error {
				for _, info := range infos {
					record := []string{info.Name, string(info.Kind), strconv.Itoa(info.BarCount), info.UpdatedAt.UTC().Format(timeLayout)}
					if err := cw.Write(record); err != nil {
						return fmt.Errorf("failed to write CSV record: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesTable(w, infos, cfg)
		}, "Wrote table")
	}
}

func writeSeriesTable(w io.Writer, infos []schema.SeriesInfo, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Kind", "Bars", "Updated"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	width := getMaxTableTextWidth(cfg)
	var data [][]string
	for _, info := range infos {
		data = append(data, []string{
			contract.TruncatePath(info.Name, width),
			string(info.Kind),
			strconv.Itoa(info.BarCount),
			info.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d stored series. Store backend: %s\n", len(infos), cfg.StoreBackend)
	return err
}
