package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/wubba/internal/adapter"
	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/search"
	"github.com/mmcdole/wubba/internal/tui"
)

func newRootCmd() *cobra.Command {
	var opts appOptions

	root := &cobra.Command{
		Use:           "wubba",
		Short:         "Browse Rick and Morty episodes and keep a list of favourites",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "", "directory containing config.yaml")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "treat the network as unreachable for refreshes")

	root.AddCommand(
		newEpisodesCmd(&opts),
		newFavouritesCmd(&opts),
		newCharactersCmd(&opts),
		newRefreshCmd(&opts),
		newConfigCmd(&opts),
		newVersionCmd(),
	)
	return root
}

func runTUI(opts appOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("wubba needs an interactive terminal; try `wubba episodes` instead")
	}

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(a.catalog, a.views, a.characters, tui.Options{
		ExitDuration:      a.cfg.UI.ExitDuration,
		ExitFrames:        a.cfg.UI.ExitFrames,
		CharactersPerPage: a.cfg.UI.CharactersPerPage,
		Opener:            adapter.NewLauncher(a.cfg.Opener, a.logger),
	}, a.logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}

func newEpisodesCmd(opts *appOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "Print the full episode catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.catalog.LoadAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load episodes: %w", err)
			}

			episodes := search.Apply(a.catalog.Episodes(), query)
			if len(episodes) == 0 && query != "" {
				return printSuggestions(cmd.OutOrStdout(), search.Suggest(a.catalog.Episodes(), query, 3))
			}
			return printEpisodes(cmd.OutOrStdout(), episodes, a.views.IsFavourite)
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only show episodes whose name contains this text")
	return cmd
}

func newFavouritesCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favourites",
		Aliases: []string{"favs"},
		Short:   "List or change favourite episodes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print favourite episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.catalog.LoadAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load episodes: %w", err)
			}

			rows := a.views.Favourites()
			episodes := make([]domain.Episode, len(rows))
			for i, row := range rows {
				episodes[i] = row.Episode
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.views.FavouritesLabel())
			return printEpisodes(cmd.OutOrStdout(), episodes, a.views.IsFavourite)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <episode-id>",
		Short: "Add or remove an episode from favourites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEpisodeID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			now, _ := a.views.ToggleFavourite(id, false)
			verb := "Removed from"
			if now {
				verb = "Added to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s favourites: episode %d\n", verb, id)
			return nil
		},
	})

	cmd.AddCommand(
		newFavouriteSetCmd(opts, "add", "Mark an episode as a favourite", true),
		newFavouriteSetCmd(opts, "remove", "Remove an episode from favourites", false),
	)
	return cmd
}

// newFavouriteSetCmd builds the idempotent add and remove commands
func newFavouriteSetCmd(opts *appOptions, use, short string, favourite bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <episode-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEpisodeID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			was := a.favs.IsFavourite(id)
			a.favs.Set(id, favourite)

			out := cmd.OutOrStdout()
			switch {
			case was == favourite && favourite:
				fmt.Fprintf(out, "Already a favourite: episode %d\n", id)
			case was == favourite:
				fmt.Fprintf(out, "Not a favourite: episode %d\n", id)
			case favourite:
				fmt.Fprintf(out, "Added to favourites: episode %d\n", id)
			default:
				fmt.Fprintf(out, "Removed from favourites: episode %d\n", id)
			}
			return nil
		},
	}
}

func newCharactersCmd(opts *appOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "characters <episode-id>",
		Short: "Print the characters appearing in an episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEpisodeID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ep, err := findEpisode(cmd.Context(), a, id)
			if err != nil {
				return err
			}
			chars, err := a.characters.ForEpisode(cmd.Context(), ep)
			if err != nil {
				return fmt.Errorf("failed to load characters: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", ep.Name, ep.Code)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, m := range search.FilterCharacters(chars, filter) {
				c := m.Character
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, c.Species)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy-filter characters by name")
	return cmd
}

func newRefreshCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch the first catalog page and report what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.catalog.LoadNextPage(cmd.Context()); err != nil && !errors.Is(err, domain.ErrExhausted) {
				a.logger.Warn("initial page failed", "error", err)
			}

			outcome, err := a.catalog.Refresh(cmd.Context())
			title, body := outcome.Notice()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", title, body)
			if err != nil && !errors.Is(err, domain.ErrOffline) {
				return err
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wubba %s\n", Version)
		},
	}
}

// findEpisode pages through the catalog until id is cached or the catalog
// is exhausted.
func findEpisode(ctx context.Context, a *app, id int) (domain.Episode, error) {
	for {
		if ep, ok := a.catalog.Lookup(id); ok {
			return ep, nil
		}
		if err := a.catalog.LoadNextPage(ctx); err != nil {
			if errors.Is(err, domain.ErrExhausted) {
				return domain.Episode{}, fmt.Errorf("episode %d: %w", id, domain.ErrNotFound)
			}
			return domain.Episode{}, fmt.Errorf("failed to load episodes: %w", err)
		}
	}
}

func parseEpisodeID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid episode id %q", arg)
	}
	return id, nil
}

func printEpisodes(out io.Writer, episodes []domain.Episode, isFavourite func(int) bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, ep := range episodes {
		star := " "
		if isFavourite(ep.ID) {
			star = "★"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", star, ep.ID, ep.Code, ep.Name, ep.AirDate)
	}
	return w.Flush()
}

func printSuggestions(out io.Writer, suggestions []domain.Episode) error {
	if len(suggestions) == 0 {
		_, err := fmt.Fprintln(out, "No episodes match.")
		return err
	}
	fmt.Fprintln(out, "No episodes match. Did you mean:")
	for _, ep := range suggestions {
		fmt.Fprintf(out, "  %s (%s)\n", ep.Name, ep.Code)
	}
	return nil
}
