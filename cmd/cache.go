package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheList shows the tracks the user previously chose to keep.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	decisions, err := r.openDecisions()
	if err != nil {
		return err
	}

	entries, err := decisions.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.writePlain("No keep decisions recorded.\n")
		return nil
	}

	r.writePlain("%d kept track(s):\n\n", len(entries))
	for i, d := range entries {
		r.writePlain("%d. %s - %s\n", i+1, d.Artist, d.Title)
		r.writePlain("   Kept: %s\n", d.DecidedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// CacheClear forgets all keep decisions after confirmation.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	decisions, err := r.openDecisions()
	if err != nil {
		return err
	}

	count, err := decisions.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		r.writePlain("No keep decisions to clear.\n")
		return nil
	}

	ok, err := r.prompter.Confirm("Forget all keep decisions? Kept tracks will be flagged again.")
	if err != nil {
		return err
	}
	if !ok {
		r.writePlain("Cache left untouched.\n")
		return nil
	}

	removed, err := decisions.Clear(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("cleared %d keep decision(s)", removed)
	r.writePlain("✓ Cleared %d keep decision(s)\n", removed)
	return nil
}
