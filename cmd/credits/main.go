package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"moodboard/internal/adapter/repo"
	"moodboard/internal/domain"
	"moodboard/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		userFlag string
		tierFlag string
	)
	flag.StringVar(&userFlag, "user", "", "user ID whose balance is reset")
	flag.StringVar(&tierFlag, "tier", string(domain.CreditTierPlus), "tier to grant (free, plus, pro)")
	flag.Parse()

	userID := strings.TrimSpace(userFlag)
	if userID == "" {
		exitWithError(errors.New("-user is required"))
	}
	tier := domain.CreditTier(strings.TrimSpace(strings.ToLower(tierFlag)))
	if _, ok := tier.MonthlyAllowance(); !ok {
		exitWithError(fmt.Errorf("unsupported tier %q", tierFlag))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "credits").Logger()
	credits := repo.NewCreditRepo(infra.NewSQLRunner(pool, logger))

	balance, err := credits.GrantMonthly(ctx, userID, tier)
	if err != nil {
		exitWithError(fmt.Errorf("failed to grant credits: %w", err))
	}
	fmt.Printf("User %s on tier %s: current=%d monthly=%d\n", balance.UserID, balance.Tier, balance.Current, balance.Monthly)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
