package app

import (
	"fmt"
	"sort"

	"github.com/AmauryD/garden/internal/scheduler"
)

// stateGlyphs marks each terminal state in the rendered summary so skipped
// nodes are immediately distinguishable from failed and successful ones.
var stateGlyphs = map[scheduler.NodeState]string{
	scheduler.Succeeded: "✅",
	scheduler.Cached:    "💾",
	scheduler.Skipped:   "⏭️",
	scheduler.Failed:    "❌",
}

// renderSummary writes one line per processed action, in key order, followed
// by failure details.
func (a *App) renderSummary(results scheduler.ResultMap) {
	keys := make([]string, 0, len(results))
	byKey := make(map[string]*scheduler.Result, len(results))
	for ref, res := range results {
		keys = append(keys, ref.String())
		byKey[ref.String()] = res
	}
	sort.Strings(keys)

	fmt.Fprintln(a.outW)
	for _, key := range keys {
		res := byKey[key]
		fmt.Fprintf(a.outW, "%s  %-10s %s\n", stateGlyphs[res.State], res.State, key)
	}

	for _, key := range keys {
		res := byKey[key]
		if res.State == scheduler.Failed {
			fmt.Fprintf(a.outW, "\n%s failed: %v\n", key, res.Err)
		}
	}
}
