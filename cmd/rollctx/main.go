// Package main provides rollctx, which resolves roll contexts for a
// scenario, rolls them, and prints the resolved context as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/config"
	"github.com/cory-johannsen/rollcontext/internal/game/rollcontext"
	"github.com/cory-johannsen/rollcontext/internal/game/session"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	scenarioPath := flag.String("scenario", "content/scenarios/goblin-ambush.yaml", "path to the scenario YAML file")
	requestsPath := flag.String("requests", "", "YAML list of roll requests to run in order; overrides the single-roll flags")
	seed := flag.Uint64("seed", 0, "dice seed for reproducible rolls (0 = crypto/rand)")

	var req session.Request
	kind := flag.String("kind", "check", "roll kind: check or damage")
	roller := flag.String("roller", "origin", "side supplying the statistic: origin or target")
	flag.StringVar(&req.Origin, "origin", "", "origin actor id")
	flag.StringVar(&req.Target, "target", "", "target actor id")
	flag.StringVar(&req.Statistic, "statistic", "", "statistic slug rolled, e.g. reflex or athletics")
	flag.StringVar(&req.Strike, "strike", "", "item id of the strike rolled")
	flag.BoolVar(&req.Thrown, "thrown", false, "use the thrown usage of the strike")
	flag.StringVar(&req.Item, "item", "", "origin item id for non-strike rolls")
	flag.StringVar(&req.Against, "against", "", "target statistic the DC comes from, e.g. armor-class or will-dc")
	flag.BoolVar(&req.ViewOnly, "view-only", false, "preview the roll without a target")
	flag.IntVar(&req.Die, "die", 0, "fix the natural d20 result (0 = roll)")
	flag.StringVar(&req.Outcome, "outcome", "", "degree of success a damage roll follows")
	domains := flag.String("domains", "", "comma-separated roll domains (default: the statistic's)")
	options := flag.String("options", "", "comma-separated extra roll options")
	traits := flag.String("traits", "", "comma-separated action traits")
	flag.Parse()

	req.Kind = session.Kind(*kind)
	req.Roller = rollcontext.Role(*roller)
	req.Domains = splitList(*domains)
	req.Options = splitList(*options)
	req.Traits = splitList(*traits)

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	app, cleanup, err := initializeApp(ctx, cfg, Options{ScenarioPath: *scenarioPath, Seed: *seed})
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()
	logger := app.Logger

	reqs := []session.Request{req}
	if *requestsPath != "" {
		if reqs, err = session.LoadRequests(*requestsPath); err != nil {
			logger.Fatal("loading requests", zap.Error(err))
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for i, r := range reqs {
		rep, err := app.Session.Execute(ctx, r)
		if err != nil {
			logger.Error("roll failed", zap.Int("request", i), zap.Error(err))
			cleanup()
			os.Exit(1)
		}
		if err := enc.Encode(rep); err != nil {
			logger.Error("writing report", zap.Error(err))
			cleanup()
			os.Exit(1)
		}
	}

	logger.Info("rolls complete",
		zap.Int("count", len(reqs)),
		zap.String("history", cfg.History.Backend),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
