package tui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/crmdeck/crmdeck/internal/query"
)

// bulkWorkers caps concurrent per-record calls during a bulk action.
const bulkWorkers = 4

// bulkTimeout bounds a whole bulk fan-out.
const bulkTimeout = 30 * time.Second

// deleteTargets deletes the selected rows (or the cursor row) concurrently.
// Partial failure is reported with the count that did apply.
func (m Model) deleteTargets() (Model, tea.Cmd) {
	ids := m.targetIDs()
	if len(ids) == 0 {
		return m, nil
	}

	engine := m.engine
	screen := m.state.Screen
	spin := m.startSpinner()
	m.loading = true
	cmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bulkTimeout)
		defer cancel()

		var applied atomic.Int32
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(bulkWorkers)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				var err error
				if screen == query.ScreenActivities {
					err = engine.DeleteActivity(gctx, id)
				} else {
					err = engine.DeletePerson(gctx, id)
				}
				if err != nil {
					return err
				}
				applied.Add(1)
				return nil
			})
		}
		err := g.Wait()
		return bulkAppliedMsg{verb: "deleted", applied: int(applied.Load()), err: err}
	}
	return m, tea.Batch(spin, cmd)
}

// markDone sets or clears the done flag on the targeted activities.
func (m Model) markDone(done bool) (Model, tea.Cmd) {
	if m.state.Screen != query.ScreenActivities {
		return m, nil
	}
	ids := m.targetIDs()
	if len(ids) == 0 {
		return m, nil
	}

	verb := "marked done"
	if !done {
		verb = "marked undone"
	}
	engine := m.engine
	spin := m.startSpinner()
	m.loading = true
	cmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bulkTimeout)
		defer cancel()

		var applied atomic.Int32
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(bulkWorkers)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				d := done
				if err := engine.UpdateActivity(gctx, id, query.ActivityUpdate{Done: &d}); err != nil {
					return err
				}
				applied.Add(1)
				return nil
			})
		}
		err := g.Wait()
		return bulkAppliedMsg{verb: verb, applied: int(applied.Load()), err: err}
	}
	return m, tea.Batch(spin, cmd)
}

// saveFilter persists the manual conditions under a name.
func (m Model) saveFilter(name string) tea.Cmd {
	store := m.filters[m.state.Screen]
	conds := append([]query.Condition(nil), m.state.Manual...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bulkTimeout)
		defer cancel()
		if err := store.Save(ctx, name, conds); err != nil {
			return filterMutatedMsg{name: name, err: err}
		}
		return filterMutatedMsg{name: name}
	}
}

// deleteFilter removes a custom saved filter.
func (m Model) deleteFilter(name string) tea.Cmd {
	store := m.filters[m.state.Screen]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bulkTimeout)
		defer cancel()
		if err := store.Delete(ctx, name); err != nil {
			return filterMutatedMsg{name: name, deleted: true, err: err}
		}
		return filterMutatedMsg{name: name, deleted: true}
	}
}
