package ui

import (
	"fmt"
	"io"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/internal/scheduler"
	"github.com/bigpick/bigpick/pkg/listcore"
)

// RunPlain evaluates a single query against the records and writes every
// match to out, one per line. Used for pipes and CI where the
// full-screen widget cannot run.
func RunPlain(out io.Writer, cfg *config.Config, records listcore.Records, query string) (int, error) {
	list, err := plainList(cfg)
	if err != nil {
		return 0, err
	}
	if err := list.SetRecords(records); err != nil {
		return 0, err
	}

	if err := applySync(list, query); err != nil {
		return 0, err
	}

	matched := 0
	total := list.TotalVisible()
	for vis := 0; vis < total; vis++ {
		abs := list.NthVisible(vis)
		if abs < 0 {
			break
		}
		if _, err := fmt.Fprintln(out, records.Text(abs)); err != nil {
			return matched, err
		}
		matched++
	}
	return matched, nil
}

// plainList builds a list tuned for one-shot evaluation: no debounce, no
// background workers, so Submit produces its response before returning.
func plainList(cfg *config.Config) (*listcore.List[*rowNode], error) {
	c := *cfg
	c.Search.DebounceWindow = 0
	c.Search.Workers = 0
	return listcore.New(&c, func() *rowNode { return &rowNode{abs: -1} })
}

// applySync submits a query on a synchronous list and applies the result.
func applySync(list *listcore.List[*rowNode], query string) error {
	list.Submit(query)
	select {
	case resp := <-list.Responses():
		outcome, err := list.Apply(resp)
		if err != nil {
			return err
		}
		if outcome != scheduler.OutcomeApplied {
			return fmt.Errorf("synchronous query not applied: %s", outcome)
		}
		return nil
	default:
		return fmt.Errorf("synchronous query produced no response")
	}
}
