package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"farm-assistant/internal/export"
	"farm-assistant/internal/models"
	"farm-assistant/internal/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Fold legacy stores into the unified collections",
	Long:  `Merges the legacy garden and diagnosis lists into the logbook and the old chat history into a session. Safe to run more than once.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := repository.NewMigrator(store, logger).Migrate()
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		return printJSON(report)
	},
}

var logbookCmd = &cobra.Command{
	Use:   "logbook",
	Short: "Inspect the logbook",
}

var logbookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logbook entries",
	Long:  `Lists entries newest first. --from and --to take YYYY-MM-DD days, both inclusive.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		from, err := dayFlag(cmd, "from", loc)
		if err != nil {
			return err
		}
		to, err := dayFlag(cmd, "to", loc)
		if err != nil {
			return err
		}

		repo, err := repository.NewLogbookRepository(store, logger)
		if err != nil {
			return err
		}
		entries := repo.FilterByDateRange(from, to)
		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		fmt.Println("ID | Type | Date | Title | Logs | Follow-ups")
		fmt.Println("--------------------------------------------")
		for _, e := range entries {
			fmt.Printf("%s | %s | %s | %s | %d | %d\n",
				e.ID, e.Type, e.Date.In(loc).Format("2006-01-02 15:04"), e.Title(), len(e.ManualLogs), len(e.FollowUps))
		}
		return nil
	},
}

var logbookTimelineCmd = &cobra.Command{
	Use:   "timeline [entry-id]",
	Short: "Print the history of an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		repo, err := repository.NewLogbookRepository(store, logger)
		if err != nil {
			return err
		}
		entry, err := repo.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to get entry %s: %w", args[0], err)
		}
		return printJSON(entry.Timeline())
	},
}

var logbookExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the logbook",
	Long:  `Writes the logbook as csv, json or xlsx, chosen by --format. Without a file it writes to stdout.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		write, ok := map[string]func(w io.Writer, entries []models.Entry) error{
			"csv":  export.WriteCSV,
			"json": export.WriteJSON,
			"xlsx": export.WriteXLSX,
		}[format]
		if !ok {
			return fmt.Errorf("unsupported format %q", format)
		}

		_, store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		repo, err := repository.NewLogbookRepository(store, logger)
		if err != nil {
			return err
		}

		out := io.Writer(os.Stdout)
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer f.Close()
			out = f
		}
		return write(out, repo.List())
	},
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List chat sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		repo, err := repository.NewChatRepository(store, logger)
		if err != nil {
			return err
		}
		sessions := repo.List()
		if len(sessions) == 0 {
			fmt.Println("No chat sessions found.")
			return nil
		}
		active, _ := repo.Active()

		fmt.Println("ID | Title | Messages | Created At | Active")
		fmt.Println("------------------------------------------")
		for _, s := range sessions {
			fmt.Printf("%s | %s | %d | %s | %t\n",
				s.ID, s.Title, len(s.History), s.CreatedAt.Format(time.RFC3339), s.ID == active.ID)
		}
		return nil
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Print the community feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		repo, err := repository.NewCommunityRepository(store, nil, logger)
		if err != nil {
			return err
		}
		return printJSON(repo.List())
	},
}

func dayFlag(cmd *cobra.Command, name string, loc *time.Location) (*time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &day, nil
}

func init() {
	logbookListCmd.Flags().String("from", "", "first day to include (YYYY-MM-DD)")
	logbookListCmd.Flags().String("to", "", "last day to include (YYYY-MM-DD)")
	logbookExportCmd.Flags().StringP("format", "f", "csv", "csv, json or xlsx")

	logbookCmd.AddCommand(logbookListCmd)
	logbookCmd.AddCommand(logbookTimelineCmd)
	logbookCmd.AddCommand(logbookExportCmd)
}
