package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/chartaxis/core/horz"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/internal/parquet"
	"github.com/huangsam/chartaxis/schema"
)

// ExecuteStoreImport reads bars from a Parquet file, checks every series against the
// configured axis, and saves them to the bar store. Series already stored are replaced.
// When cfg.SeriesName is set only that series is imported.
func ExecuteStoreImport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, inputPath string) error {
	store, err := barStore(mgr)
	if err != nil {
		return err
	}

	bars, err := parquet.ReadBarsParquet(inputPath)
	if err != nil {
		return err
	}
	series, err := parquet.GroupBars(bars)
	if err != nil {
		return err
	}
	if cfg.SeriesName != "" {
		if series, err = selectSeries(series, cfg.SeriesName); err != nil {
			return err
		}
	}

	if err := checkAll(ctx, cfg, series); err != nil {
		return err
	}

	total := 0
	for _, s := range series {
		if err := store.SaveSeries(s); err != nil {
			return fmt.Errorf("failed to save series %s: %w", s.Name, err)
		}
		total += len(s.Items)
	}
	fmt.Fprintf(os.Stderr, "💾 Imported %d series (%d bars) from %s\n", len(series), total, inputPath)
	return nil
}

// ExecuteStoreExport writes the named series, or every stored series when names is empty,
// to a Parquet file.
func ExecuteStoreExport(ctx context.Context, mgr contract.StoreManager, outputPath string, names []string) error {
	store, err := barStore(mgr)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		infos, err := store.ListSeries()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.Name)
		}
	}

	series := make([]schema.StoredSeries, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := store.LoadSeries(name)
		if err != nil {
			return err
		}
		series = append(series, s)
	}

	bars, err := parquet.ConvertStoredSeries(series)
	if err != nil {
		return err
	}
	if err := parquet.WriteBarsParquet(bars, outputPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Exported %d series (%d bars) to %s\n", len(series), len(bars), outputPath)
	return nil
}

// CheckSeries loads a stored series into a scratch data layer of the given axis, so that
// unknown kinds and times the axis cannot convert are caught before they are persisted.
func CheckSeries(axis schema.AxisKind, s schema.StoredSeries) error {
	var err error
	switch axis {
	case schema.IndexAxis:
		err = checkSeries[float64](horz.NewIndexBehavior(), s)
	default:
		err = checkSeries[schema.UTCTime](horz.NewTimeBehavior(), s)
	}
	if err != nil {
		return fmt.Errorf("series %s does not fit the %s axis: %w", s.Name, axis, err)
	}
	return nil
}

// checkAll checks the series in parallel using a worker pool.
// It spawns cfg.Workers goroutines and joins the errors of every failing series.
func checkAll(ctx context.Context, cfg *contract.Config, series []schema.StoredSeries) error {
	idxCh := make(chan int, len(series))
	errs := make([]error, len(series))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for i := range idxCh {
				// Each worker writes to a unique index of errs
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				errs[i] = CheckSeries(cfg.Axis, series[i])
			}
		})
	}

	for i := range series {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return errors.Join(errs...)
}

func checkSeries[T any](behavior contract.HorzScaleBehavior[T], s schema.StoredSeries) error {
	dl := NewDataLayer(behavior)
	h, err := dl.RegisterSeries(s.Kind, SeriesOptions{Owner: s.Name})
	if err != nil {
		return err
	}
	_, err = dl.SetSeriesData(h, s.Items)
	return err
}

// selectSeries keeps only the named series.
func selectSeries(series []schema.StoredSeries, name string) ([]schema.StoredSeries, error) {
	for _, s := range series {
		if s.Name == name {
			return []schema.StoredSeries{s}, nil
		}
	}
	return nil, fmt.Errorf("series %s not found in input file", name)
}

func barStore(mgr contract.StoreManager) (contract.BarStore, error) {
	if mgr == nil || mgr.GetBarStore() == nil {
		return nil, errors.New("bar store is not initialized")
	}
	return mgr.GetBarStore(), nil
}
