package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/store"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var (
	eventsKind     string
	eventsLast     int
	eventsTopics   bool
	eventsFollow   bool
	eventsInterval time.Duration
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the vault's event journal",
	Long: `Show the vault's event journal.

With --follow the command keeps running and prints events as other w3vault
commands commit them. Following needs the json state backend, since a
leveldb database can only be open in one process at a time.`,
	Example: `  w3vault events
  w3vault events --kind Transfer --last 10
  w3vault events --topics
  w3vault events --follow`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter events.Kind
		if eventsKind != "" {
			k, err := events.ParseKind(eventsKind)
			if err != nil {
				return err
			}
			filter = k
		}
		if eventsFollow && cfg.StateBackend == store.BackendLevelDB {
			return fmt.Errorf("--follow needs the json state backend\n  Switch with: w3vault config set state_backend json")
		}

		s, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		// Subscribe before reading the journal so nothing falls in between.
		var feed chan events.Event
		if eventsFollow {
			feed = make(chan events.Event, 16)
			sub := s.vault.Subscribe(feed)
			defer sub.Unsubscribe()
		}

		journal, err := s.vault.Events(cmd.Context())
		if err != nil {
			return err
		}
		var shown []events.Event
		for _, e := range journal {
			if filter == 0 || e.Kind == filter {
				shown = append(shown, e)
			}
		}
		if eventsLast > 0 && len(shown) > eventsLast {
			shown = shown[len(shown)-eventsLast:]
		}

		t := ui.NewTable(eventColumns())
		for _, e := range shown {
			t.AddRow(eventRow(e))
		}
		switch {
		case len(shown) > 0:
			fmt.Println(t.Render())
			fmt.Println(ui.Meta(fmt.Sprintf("%d of %d event(s)", len(shown), len(journal))))
		case !eventsFollow:
			fmt.Println(ui.Info("No events recorded yet."))
		}
		if !eventsFollow {
			return nil
		}

		var seen uint64
		if len(journal) > 0 {
			seen = journal[len(journal)-1].Seq
		}
		return followEvents(cmd.Context(), s, feed, filter, seen)
	},
}

// followEvents prints events from feed until ctx is done. Events up to seen
// were already printed.
func followEvents(ctx context.Context, s *session, feed <-chan events.Event, filter events.Kind, seen uint64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.vault.Follow(ctx, eventsInterval) }()

	fmt.Println(ui.Meta("Following new events. Press Ctrl+C to stop."))
	cols := eventColumns()
	for {
		select {
		case e := <-feed:
			if e.Seq <= seen || (filter != 0 && e.Kind != filter) {
				continue
			}
			seen = e.Seq
			line := ui.NewTable(cols)
			line.AddRow(eventRow(e))
			fmt.Println(line.RenderRows())
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func eventColumns() []ui.Column {
	cols := []ui.Column{
		{Title: "#", Width: 6, Right: true},
		{Title: "Time (UTC)", Width: 17},
		{Title: "Event", Width: 18},
		{Title: "Details", Width: 90},
	}
	if eventsTopics {
		cols = append(cols, ui.Column{Title: "Topic", Width: 66})
	}
	return cols
}

func eventRow(e events.Event) ui.Row {
	row := ui.Row{
		ui.Meta(fmt.Sprint(e.Seq)),
		ui.Meta(time.Unix(int64(e.Time), 0).UTC().Format("2006-01-02 15:04")),
		ui.Kind(e.Kind.String()),
		e.Summary(),
	}
	if eventsTopics {
		row = append(row, ui.Meta(e.Kind.Topic().Hex()))
	}
	return row
}

func init() {
	eventsCmd.Flags().StringVar(&eventsKind, "kind", "", "only show events of this kind, e.g. Transfer")
	eventsCmd.Flags().IntVarP(&eventsLast, "last", "n", 0, "only show the last n events")
	eventsCmd.Flags().BoolVar(&eventsTopics, "topics", false, "show each event's log topic")
	eventsCmd.Flags().BoolVarP(&eventsFollow, "follow", "f", false, "keep printing new events as they are committed")
	eventsCmd.Flags().DurationVar(&eventsInterval, "interval", 2*time.Second, "how often --follow checks for new events")
}
