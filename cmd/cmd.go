// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SpotifyAuth,
	}
}

// playlistsCommand lists the user's playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List Spotify playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to show",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "mine",
				Usage: "Only show playlists owned by the current user",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Playlists,
	}
}

func reviewFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:  "id",
			Usage: "Playlist ID to review (skips the playlist picker)",
		},
		&cli.IntFlag{
			Name:  "cutoff",
			Usage: "Album-year cutoff; tracks released after it are flagged",
		},
		&cli.StringFlag{
			Name:    "report",
			Aliases: []string{"o"},
			Usage:   "Write a removal report to this path (.txt, .md, or .csv)",
		},
	}
}

// reviewCommand runs the interactive review passes
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "review",
		Usage:  "Review a playlist for duplicates and era outliers, then delete with confirmation",
		Flags:  reviewFlags(),
		Action: r.reviewAction(reviewAll),
		Commands: []*cli.Command{
			{
				Name:    "duplicates",
				Aliases: []string{"dupes"},
				Usage:   "Only run the duplicate-recording pass",
				Flags:   reviewFlags(),
				Action:  r.reviewAction(reviewDuplicates),
			},
			{
				Name:   "year",
				Usage:  "Only run the album-year pass",
				Flags:  reviewFlags(),
				Action: r.reviewAction(reviewYear),
			},
		},
	}
}

// cacheCommand manages the persisted keep decisions
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage remembered keep decisions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show tracks you previously chose to keep",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Forget all keep decisions",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the decision database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for full-screen review.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the full-screen review interface",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "cutoff",
				Usage: "Album-year cutoff; tracks released after it are flagged",
			},
		},
		Action: r.TUI,
	}
}
