package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/doppelrender/internal/doppel"
	"github.com/backmassage/doppelrender/internal/history"
)

// Report is everything a run decided and measured. It is returned by Run,
// optionally written as JSON, and condensed into a history row.
type Report struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Engine    string    `json:"engine"`
	Source    string    `json:"source"`
	Output    string    `json:"output"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	CloneMode string    `json:"clone_mode"`
	DryRun    bool      `json:"dry_run"`

	Sets    []doppel.Set `json:"sets"`
	Dropped []string     `json:"dropped,omitempty"` // proxies with no frame number
	Outside []int        `json:"outside,omitempty"` // frames filtered by the range
	Missing []int        `json:"missing,omitempty"` // frames with no proxy

	Renders []FrameTiming `json:"renders"`
	Clones  []FrameTiming `json:"clones"`
	Stats   RunStats      `json:"stats"`

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// WriteJSON writes the report to path, replacing any previous file.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// historyRun condenses the report into a ledger row.
func (r *Report) historyRun() history.Run {
	return history.Run{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		Engine:     r.Engine,
		Source:     r.Source,
		Output:     r.Output,
		Start:      r.Start,
		End:        r.End,
		CloneMode:  r.CloneMode,
		Frames:     r.Stats.Frames,
		Sets:       r.Stats.Sets,
		Renders:    r.Stats.Renders,
		Clones:     r.Stats.Clones,
		ProxyTime:  r.Stats.ProxyTime,
		HashTime:   r.Stats.HashTime,
		RenderTime: r.Stats.RenderTime,
		CloneTime:  r.Stats.CloneTime,
		Saved:      r.Stats.Saved(),
		Status:     r.Status,
		Error:      r.Error,
	}
}

// record appends the report to the ledger at dbPath.
func record(ctx context.Context, dbPath string, r *Report) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if _, err := store.Record(ctx, r.historyRun()); err != nil {
		return fmt.Errorf("history %s: %w", dbPath, err)
	}
	return nil
}
