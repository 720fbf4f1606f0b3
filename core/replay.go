package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/chartaxis/core/horz"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/internal/outwriter"
	"github.com/huangsam/chartaxis/internal/script"
	"github.com/huangsam/chartaxis/internal/telemetry"
	"github.com/huangsam/chartaxis/schema"
)

// ExecuteReplay runs the replay script named by the config and prints one response per step.
// It serves as the main entry point for the 'replay' command.
func ExecuteReplay(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	sc, err := script.Load(cfg.ScriptPath)
	if err != nil {
		return err
	}
	axis := cfg.Axis
	if sc.Axis != "" {
		axis = sc.Axis
	}

	var store contract.BarStore
	if mgr != nil {
		store = mgr.GetBarStore()
	}
	metrics := telemetry.New()

	var failed int
	switch axis {
	case schema.IndexAxis:
		result, err := RunReplay[float64](ctx, sc, horz.NewIndexBehavior(), store, metrics)
		if err != nil {
			return err
		}
		result.Script, result.Axis = cfg.ScriptPath, axis
		if err := outwriter.WriteReplay(result, cfg); err != nil {
			return err
		}
		failed = result.Failed()
	default:
		result, err := RunReplay[schema.UTCTime](ctx, sc, horz.NewTimeBehavior(), store, metrics)
		if err != nil {
			return err
		}
		result.Script, result.Axis = cfg.ScriptPath, schema.TimeAxis
		if err := outwriter.WriteReplay(result, cfg); err != nil {
			return err
		}
		failed = result.Failed()
	}

	if cfg.MetricsFile != "" {
		if err := outwriter.WriteMetrics(metrics, cfg.MetricsFile); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d replay steps failed", failed, len(sc.Steps))
	}
	return nil
}

// RunReplay applies a script to a fresh session. Failing steps are recorded and the
// replay goes on; only context cancellation and series registration abort it.
func RunReplay[T any](
	ctx context.Context, sc *script.Script, behavior contract.HorzScaleBehavior[T],
	store contract.BarStore, metrics *telemetry.Metrics,
) (schema.ReplayResult[T], error) {
	result := schema.ReplayResult[T]{
		SeriesNames: make(map[schema.SeriesHandle]string, len(sc.Series)),
		Steps:       make([]schema.ReplayStep[T], 0, len(sc.Steps)),
	}
	session := NewSession(behavior, metrics)

	handles := make(map[string]schema.SeriesHandle, len(sc.Series))
	for _, def := range sc.Series {
		h, err := session.AddSeries(def.Kind, def.Pane, SeriesOptions{Owner: def.Name})
		if err != nil {
			return result, fmt.Errorf("failed to register series %s: %w", def.Name, err)
		}
		handles[def.Name] = h
		result.SeriesNames[h] = def.Name
	}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rs := schema.ReplayStep[T]{Index: i + 1, Op: string(step.Op), Series: step.Series}
		resp, err := applyStep(session, step, handles, store)
		if err != nil {
			rs.Error = err.Error()
		} else if resp != nil {
			rs.Response = resp
		}
		result.Steps = append(result.Steps, rs)
	}

	result.Points = session.Layer().Points()
	if m := session.Drain(); m != nil {
		snap := m.Snapshot()
		result.Invalidation = &snap
	}
	return result, nil
}

// applyStep runs one step against the session. Mask steps return a nil response.
func applyStep[T any](
	session *Session[T], step script.Step, handles map[string]schema.SeriesHandle, store contract.BarStore,
) (*schema.DataUpdateResponse[T], error) {
	var resp schema.DataUpdateResponse[T]
	var err error

	switch step.Op {
	case script.OpSet:
		resp, err = session.SetData(handles[step.Series], step.Data)
	case script.OpUpdate:
		if step.Persist && store == nil {
			return nil, errors.New("bar store is not initialized")
		}
		h := handles[step.Series]
		if resp, err = session.Update(h, *step.Item, step.Historical); err == nil && step.Persist {
			err = persistItem(session, store, h, step)
		}
	case script.OpRemove:
		resp, err = session.RemoveSeries(handles[step.Series])
	case script.OpLoad:
		var items []schema.DataItem
		if items, err = loadItems(store, step); err == nil {
			resp, err = session.SetData(handles[step.Series], items)
		}
	case script.OpFitContent:
		session.FitContent()
		return nil, nil
	case script.OpRange:
		session.SetVisibleRange(*step.Range)
		return nil, nil
	case script.OpBarSpacing:
		session.SetBarSpacing(step.Value)
		return nil, nil
	case script.OpRightOffset:
		session.SetRightOffset(step.Value)
		return nil, nil
	case script.OpReset:
		session.ResetTimeScale()
		return nil, nil
	case script.OpAnimate:
		session.StartAnimation(step.Animation)
		return nil, nil
	case script.OpStopAnimation:
		session.StopAnimation()
		return nil, nil
	case script.OpCrosshair:
		session.MoveCrosshair()
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}

	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// persistItem mirrors an applied update into the stored series of the same name.
func persistItem[T any](session *Session[T], store contract.BarStore, h schema.SeriesHandle, step script.Step) error {
	kind, err := session.Layer().Kind(h)
	if err != nil {
		return err
	}
	if err := store.AppendBar(step.Series, kind, *step.Item); err != nil {
		return fmt.Errorf("failed to persist update of %s: %w", step.Series, err)
	}
	return nil
}

func loadItems(store contract.BarStore, step script.Step) ([]schema.DataItem, error) {
	if store == nil {
		return nil, errors.New("bar store is not initialized")
	}
	name := step.Source
	if name == "" {
		name = step.Series
	}
	stored, err := store.LoadSeries(name)
	if err != nil {
		return nil, err
	}
	return stored.Items, nil
}
