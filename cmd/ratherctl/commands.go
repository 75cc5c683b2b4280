package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/wyr-platform/internal/config"
	"github.com/suPer8Hu/wyr-platform/internal/game"
	"github.com/suPer8Hu/wyr-platform/internal/generator"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openDB(cmd, config.Load()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the system themes and sample questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(cmd, config.Load())
			if err != nil {
				return err
			}
			res, err := game.Seed(cmd.Context(), gdb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "themes created: %d, questions created: %d\n", res.ThemesCreated, res.QuestionsCreated)
			return nil
		},
	}
}

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List system themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(cmd, config.Load())
			if err != nil {
				return err
			}
			themes, err := game.NewService(game.NewRepo(gdb), nil).ListThemes(cmd.Context(), nil)
			if err != nil {
				return err
			}
			for _, t := range themes {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", t.ID, t.Name, t.Description)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <theme_id>",
		Short: "Generate and store a new question for a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			themeID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid theme id %q", args[0])
			}
			cfg := config.Load()
			gdb, err := openDB(cmd, cfg)
			if err != nil {
				return err
			}
			gen, err := generator.NewFromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			q, err := game.NewService(game.NewRepo(gdb), gen).GenerateForTheme(cmd.Context(), themeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "question %d\n  A: %s\n  B: %s\n", q.ID, q.OptionA, q.OptionB)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <question_id>",
		Short: "Show response tallies for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qid, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			gdb, err := openDB(cmd, config.Load())
			if err != nil {
				return err
			}
			st, err := game.NewService(game.NewRepo(gdb), nil).Stats(cmd.Context(), qid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "question %d: total=%d A=%d B=%d\n", st.QuestionID, st.Total, st.CountA, st.CountB)
			return nil
		},
	}
}
