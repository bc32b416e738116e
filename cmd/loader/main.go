// Command loader inserts extracted policy documents into the policy store.
// Each input file is one JSON policy document; loading the same file twice
// is a no-op, the stored document wins.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	appconfig "github.com/nadine-ai/resubmission-copilot/internal/config"
	"github.com/nadine-ai/resubmission-copilot/internal/policy"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

func main() {
	dir := flag.String("dir", "policies", "directory of policy JSON files")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing to the database")
	summary := flag.Bool("summary", true, "print the active/expired breakdown after loading")
	flag.Parse()

	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var store policy.Store
	if *dryRun {
		store = policy.NewMemoryStore()
	} else {
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is required")
			os.Exit(1)
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open policy database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pg := policy.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure policy schema", "error", err)
			os.Exit(1)
		}
		store = pg
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("failed to read policy directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	var inserted, skipped, failed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(*dir, entry.Name())

		p, err := readPolicy(path)
		if err != nil {
			logger.Error("failed to parse policy file", "path", path, "error", err)
			failed++
			continue
		}
		if p.PolicyNumber == "" {
			logger.Error("policy file has no policy_number", "path", path)
			failed++
			continue
		}

		_, ok, err := store.InsertIfAbsent(ctx, p)
		if err != nil {
			logger.Error("failed to insert policy", "policy_number", p.PolicyNumber, "error", err)
			failed++
			continue
		}
		if ok {
			logger.Info("policy inserted", "policy_number", p.PolicyNumber, "tiers", len(p.CoverageDetails))
			inserted++
		} else {
			logger.Info("policy already present, skipped", "policy_number", p.PolicyNumber)
			skipped++
		}
	}

	logger.Info("load complete", "inserted", inserted, "skipped", skipped, "failed", failed)

	if *summary {
		s, err := policy.Summarize(ctx, store, time.Now().UTC())
		if err != nil {
			logger.Error("failed to summarize policies", "error", err)
			os.Exit(1)
		}
		logger.Info("policy summary",
			"active", len(s.Active),
			"expired", len(s.Expired),
			"undated", len(s.Undated),
		)
		for _, span := range s.Expired {
			logger.Warn("policy expired", "policy_number", span.PolicyNumber, "effective_to", span.EffectiveTo)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func readPolicy(path string) (*policy.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p policy.Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
