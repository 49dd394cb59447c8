package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// playerFile is the YAML layout read by draftctl
type playerFile struct {
	Event   string          `yaml:"event"`
	Teams   []string        `yaml:"teams"`
	Players []models.Player `yaml:"players" validate:"required,dive"`
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	playersFlag := &cli.StringFlag{Name: "players", Aliases: []string{"p"}, Usage: "YAML player file", Required: true}
	teamsFlag := &cli.IntFlag{Name: "teams", Aliases: []string{"t"}, Usage: "number of teams", Value: 2}

	return &cli.App{
		Name:      "draftctl",
		Usage:     "run tiered team drafts from a player file",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			logger.Configure(logger.Options{Level: c.String("log-level")})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "draft the players into teams in one pass",
				Flags: []cli.Flag{
					playersFlag,
					teamsFlag,
					&cli.StringSliceFlag{Name: "names", Usage: "team names, comma separated"},
					&cli.Uint64Flag{Name: "seed", Usage: "seed for a reproducible draft (0 = random)"},
					&cli.BoolFlag{Name: "json", Usage: "print the roster as JSON"},
				},
				Action: runDraft,
			},
			{
				Name:  "validate",
				Usage: "check a player file without drafting",
				Flags: []cli.Flag{playersFlag, teamsFlag},
				Action: func(c *cli.Context) error {
					pf, err := loadPlayers(c.String("players"))
					if err != nil {
						return err
					}
					if err := draft.ValidatePool(pf.Players, c.Int("teams")); err != nil {
						return fmt.Errorf("invalid pool: %w", err)
					}
					totals := draft.TierTotals(pf.Players)
					fmt.Fprintf(c.App.Writer, "ok: %d players (A=%d B=%d C=%d) for %d teams\n",
						len(pf.Players), totals[models.TierA], totals[models.TierB], totals[models.TierC], c.Int("teams"))
					return nil
				},
			},
		},
	}
}

func runDraft(c *cli.Context) error {
	pf, err := loadPlayers(c.String("players"))
	if err != nil {
		return err
	}

	names := pf.Teams
	if c.IsSet("names") {
		names = nil
		for _, n := range c.StringSlice("names") {
			names = append(names, strings.TrimSpace(n))
		}
	}

	opts := draft.Options{Event: pf.Event, Scheduler: draft.NewManualScheduler()}
	if seed := c.Uint64("seed"); seed != 0 {
		opts.Random = draft.NewSeededSource(seed)
	}
	ctl := draft.NewController(opts)

	if _, err := ctl.Start(pf.Players, names, c.Int("teams")); err != nil {
		return fmt.Errorf("failed to start draft: %w", err)
	}
	roster, err := ctl.AutoFinish()
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(roster)
	}
	printRoster(c.App.Writer, roster)
	return nil
}

func printRoster(w io.Writer, roster models.Roster) {
	if roster.Event != "" {
		fmt.Fprintf(w, "%s\n\n", roster.Event)
	}
	for _, team := range roster.Teams {
		fmt.Fprintf(w, "%s  score=%d  A=%d B=%d C=%d\n",
			team.Name, team.Score, team.Stats[models.TierA], team.Stats[models.TierB], team.Stats[models.TierC])
		for _, p := range team.Members {
			fmt.Fprintf(w, "  - %s (%s)\n", p.Name, p.Tier)
		}
	}
}

func loadPlayers(path string) (*playerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read player file: %w", err)
	}
	var pf playerFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse player file: %w", err)
	}

	for i := range pf.Players {
		p := &pf.Players[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Tier = models.Tier(strings.ToUpper(string(p.Tier)))
		if p.ID == "" {
			p.ID = fmt.Sprintf("p%d", i+1)
		}
	}

	if err := validator.New().Struct(pf); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid player file: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, err
	}
	return &pf, nil
}
