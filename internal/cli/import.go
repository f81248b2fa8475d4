package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"millionaire-service/internal/config"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/store/migrations"
	"millionaire-service/internal/questions"
)

// NewImportQuestionsCmd loads YAML question banks into the database.
func NewImportQuestionsCmd(opts *options) *cobra.Command {
	var withDefault bool
	cmd := &cobra.Command{
		Use:   "import-questions [file.yaml...]",
		Short: "Import questions into the question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !withDefault {
				return fmt.Errorf("no files given; pass YAML files or --default")
			}
			ctx := cmd.Context()
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.Run(ctx, db.DB()); err != nil {
				return err
			}

			if withDefault {
				n, err := db.ImportQuestions(ctx, questions.DefaultBank())
				if err != nil {
					return fmt.Errorf("import built-in bank: %w", err)
				}
				slog.InfoContext(ctx, "questions imported", "source", "built-in", "count", n)
			}
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				qs, err := questions.ParseBank(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				n, err := db.ImportQuestions(ctx, qs)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				slog.InfoContext(ctx, "questions imported", "source", path, "count", n)
			}

			counts, err := db.CountQuestions(ctx)
			if err != nil {
				return err
			}
			for _, d := range domain.Difficulties {
				fmt.Fprintf(cmd.OutOrStdout(), "%-7s %d\n", d, counts[d])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withDefault, "default", false, "also import the built-in question bank")
	return cmd
}
