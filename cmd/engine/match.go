package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/match"
	"fundfinder-engine/internal/selection"
)

var matchCmd = &cobra.Command{
	Use:   "match <grants|vcs|mentors> [query]",
	Short: "Print ranked results for a questionnaire query string",
	Example: `  engine match grants "stage=1&industry=5"
  engine match mentors "industries=Technology%20%26%20Software&budget=Free"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseKind(args[0])
		if err != nil {
			return err
		}
		raw := ""
		if len(args) == 2 {
			raw = args[1]
		}
		q := selection.ParseQuery(raw)

		e, err := loadEnv()
		if err != nil {
			return err
		}
		db, err := openStore(cmd.Context(), e)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := match.NewService(db, func() config.Matching { return e.Cfg.Matching }, slog.Default())

		var out any
		switch kind {
		case domain.KindGrant:
			res, err := svc.Grants(cmd.Context(), selection.ParseGrant(q))
			if err != nil {
				return err
			}
			if len(res.MissingRequirementTags) > 0 {
				slog.Warn("requirement tags missing from store", "tags", res.MissingRequirementTags)
			}
			out = res
		case domain.KindVC:
			if out, err = svc.VCs(cmd.Context(), selection.ParseVC(q)); err != nil {
				return err
			}
		case domain.KindMentor:
			if out, err = svc.Mentors(cmd.Context(), selection.ParseMentor(q)); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}
