package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	"github.com/yanqian/vita/internal/infra/config"
	"github.com/yanqian/vita/internal/infra/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vitactl",
		Short:         "VITA operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newTasksCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var dsn string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), postgres.Schema())
				return err
			}
			pgCfg := postgres.Config{DSN: dsn}
			if dsn == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				pgCfg = postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: 2}
			}
			pool, err := postgres.Open(cmd.Context(), pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return err
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (defaults to the configured postgres.dsn)")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the schema instead of applying it")
	return cmd
}

// classifyReport is what classify prints.
type classifyReport struct {
	Classification lifestyle.Classification `json:"classification"`
	DailyTask      string                   `json:"dailyTask"`
	Suggestion     string                   `json:"suggestion"`
}

func newClassifyCmd() *cobra.Command {
	var file string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify onboarding answers read from a YAML or JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, err := readAnswers(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			report, err := classify(answers, seed, cmd.Flags().Changed("seed"))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Answers file, - for stdin")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible daily task")
	return cmd
}

// readAnswers decodes YAML; JSON input parses as YAML too.
func readAnswers(stdin io.Reader, path string) (lifestyle.Answers, error) {
	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return lifestyle.Answers{}, fmt.Errorf("read answers: %w", err)
	}
	var answers lifestyle.Answers
	if err := yaml.Unmarshal(raw, &answers); err != nil {
		return lifestyle.Answers{}, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

func classify(answers lifestyle.Answers, seed uint64, seeded bool) (classifyReport, error) {
	c, err := lifestyle.Classify(answers)
	if err != nil {
		var verr *lifestyle.ValidationError
		if errors.As(err, &verr) {
			return classifyReport{}, fmt.Errorf("answers rejected: %w", verr)
		}
		return classifyReport{}, err
	}
	gen := lifestyle.NewGenerator(nil)
	if seeded {
		gen = lifestyle.NewSeededGenerator(seed)
	}
	return classifyReport{
		Classification: c,
		DailyTask:      gen.DailyTask(c.RiskIndicators),
		Suggestion:     lifestyle.Suggestion(c),
	}, nil
}

// taskCatalog maps each risk indicator tag to its candidate daily tasks.
type taskCatalog struct {
	ByIndicator map[string][]string `json:"byIndicator"`
	Default     []string            `json:"default"`
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "Print the daily task catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := taskCatalog{
				ByIndicator: make(map[string][]string),
				Default:     lifestyle.DefaultTasks(),
			}
			for _, r := range lifestyle.AllRiskIndicators() {
				catalog.ByIndicator[r.String()] = r.Tasks()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(catalog)
		},
	}
}
