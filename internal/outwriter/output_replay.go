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

// WriteReplay outputs a replay result, dispatching based on the output format configured.
func WriteReplay[T any](result schema.ReplayResult[T], cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReplayCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReplayText(w, result, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	}
	return nil
}

// writeReplayText writes one table per data step, the final time axis and the drained mask.
func writeReplayText[T any](w io.Writer, result schema.ReplayResult[T], cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	width := getMaxTableTextWidth(cfg)
	for _, step := range result.Steps {
		if _, err := fmt.Fprintf(w, "Step %d: %s %s\n", step.Index, step.Op, step.Series); err != nil {
			return err
		}
		if step.Error != "" {
			if _, err := fmt.Fprintf(w, "  ❌ %s\n", step.Error); err != nil {
				return err
			}
			continue
		}
		if step.Response == nil {
			continue
		}
		if err := writeResponseTable(w, *step.Response, result.SeriesNames, cfg.UseColors, width, fmtFloat, intFmt); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\nTime axis (%d points)\n", len(result.Points)); err != nil {
		return err
	}
	if err := writePointsTable(w, result.Points, width, intFmt); err != nil {
		return err
	}
	if err := writeMaskText(w, result.Invalidation, cfg.UseColors, fmtFloat); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Replay of %s finished: %d steps, %d failed. Axis: %s\n", result.Script, len(result.Steps), result.Failed(), result.Axis)
	return err
}

// writeResponseTable renders the series updates of one response plus a time-scale summary line.
func writeResponseTable[T any](
	w io.Writer, resp schema.DataUpdateResponse[T], names map[schema.SeriesHandle]string,
	useColors bool, width int, fmtFloat func(float64) string, intFmt string,
) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Series", "Change", "Rows", "Last Index", "Last Time", "Last Close", "Edge"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, u := range resp.Series {
		change := "resync"
		edge := ""
		if u.Info != nil {
			change = string(u.Info.Kind)
			if useColors {
				change = contract.GetChangeLabel(u.Info.Kind)
			}
			if u.Info.RightEdge {
				edge = "yes"
			}
		}
		lastIndex, lastTime, lastClose := "-", "-", "-"
		if n := len(u.Rows); n > 0 {
			last := u.Rows[n-1]
			lastIndex = fmt.Sprintf(intFmt, last.Index)
			lastTime = contract.TruncatePath(schema.FormatOriginalTime(last.OriginalTime), width)
			lastClose = fmtFloat(last.Value[schema.PlotClose])
		}
		data = append(data, []string{
			contract.TruncatePath(seriesName(u.Series, names), width),
			change,
			fmt.Sprintf(intFmt, len(u.Rows)),
			lastIndex,
			lastTime,
			lastClose,
			edge,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Time scale: first changed %s, base index %s\n",
		formatFirstChanged(resp.TimeScale.FirstChangedPointIndex), formatBaseIndex(resp.TimeScale.BaseIndex))
	return err
}

// writePointsTable renders the global time axis.
func writePointsTable[T any](w io.Writer, points []schema.TimePoint[T], width int, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Index", "Time", "Weight"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, p := range points {
		data = append(data, []string{
			fmt.Sprintf(intFmt, p.Index),
			contract.TruncatePath(schema.FormatOriginalTime(p.OriginalTime), width),
			fmt.Sprintf(intFmt, int(p.TimeWeight)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeMaskText renders a drained invalidation mask.
func writeMaskText(w io.Writer, snap *schema.InvalidationSnapshot, useColors bool, fmtFloat func(float64) string) error {
	if snap == nil {
		_, err := fmt.Fprintln(w, "Invalidation: none")
		return err
	}
	level := snap.Global.String()
	if useColors {
		level = contract.GetLevelLabel(snap.Global)
	}
	if _, err := fmt.Fprintf(w, "Invalidation: %s\n", level); err != nil {
		return err
	}
	for _, pane := range sortedPanes(snap.Panes) {
		inv := snap.Panes[pane]
		if _, err := fmt.Fprintf(w, "  pane %d: %s (autoscale: %t)\n", pane, inv.Level, inv.AutoScale); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  time scale: %s\n", formatOps(snap.Ops, fmtFloat))
	return err
}

// writeReplayCSV writes one record per series update, and one per step without updates.
func writeReplayCSV[T any](w io.Writer, result schema.ReplayResult[T], fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"step", "op", "series", "change", "rows", "last_index", "last_time",
		"last_close", "first_changed", "base_index", "error",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, step := range result.Steps {
			stepNo := strconv.Itoa(step.Index)
			if step.Response == nil {
				if err := cw.Write([]string{stepNo, step.Op, step.Series, "", "", "", "", "", "", "", step.Error}); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
				continue
			}
			ts := step.Response.TimeScale
			for _, u := range step.Response.Series {
				change := "resync"
				if u.Info != nil {
					change = string(u.Info.Kind)
				}
				lastIndex, lastTime, lastClose := "", "", ""
				if n := len(u.Rows); n > 0 {
					last := u.Rows[n-1]
					lastIndex = fmt.Sprintf(intFmt, last.Index)
					lastTime = schema.FormatOriginalTime(last.OriginalTime)
					lastClose = fmtFloat(last.Value[schema.PlotClose])
				}
				record := []string{
					stepNo, step.Op, seriesName(u.Series, result.SeriesNames), change,
					fmt.Sprintf(intFmt, len(u.Rows)), lastIndex, lastTime, lastClose,
					strconv.Itoa(ts.FirstChangedPointIndex), formatBaseIndex(ts.BaseIndex), "",
				}
				if err := cw.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

func seriesName(h schema.SeriesHandle, names map[schema.SeriesHandle]string) string {
	if name, ok := names[h]; ok {
		return name
	}
	return h.String()
}

func formatFirstChanged(idx int) string {
	if idx == schema.NoTimeScaleChange {
		return "none"
	}
	return strconv.Itoa(idx)
}
