package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/accounts"
	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/ledger"
	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/posting"
)

// chartFile is the chart-of-accounts export written next to the config.
const chartFile = "chart-of-accounts.csv"

func newInitCommand() *cobra.Command {
	var name string
	var businessType string
	var chart string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new flipledger project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, name, businessType, chart)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&businessType, "type", "flip_and_contract", "business type")
	cmd.Flags().StringVar(&chart, "chart", "", "chart-of-accounts CSV to seed instead of the default chart")

	return cmd
}

func runInit(ctx context.Context, dir, name, businessType, chart string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	svc := accounts.NewService(accounts.DefaultChart(businessType))
	if chart != "" {
		loaded, err := accounts.Load(chart)
		if err != nil {
			return err
		}
		svc = loaded
	}
	statementAccounts := append(svc.ByClass(model.ClassCash), svc.ByClass(model.ClassCreditCard)...)
	if len(statementAccounts) == 0 {
		return model.ValidationError{Field: "chart", Description: "no bank or credit card account (1xxxx or 2xxxx codes)"}
	}

	cfg := config.Default(name, businessType)
	cfg.Dir = dir

	store, err := ledger.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	for _, a := range svc.All() {
		if _, err := store.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("seeding chart of accounts: %w", err)
		}
	}
	if _, err := posting.ResolveConfig(ctx, store, cfg.Posting); err != nil {
		return fmt.Errorf("chart of accounts is missing a posting account: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := svc.Save(filepath.Join(dir, chartFile)); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	pterm.Success.Printf("Initialized %s at %s (%d accounts)\n", name, dir, len(svc.All()))
	for _, a := range statementAccounts {
		pterm.Info.Printf("Statement account %s %s\n", a.Code, a.Name)
	}
	return nil
}
