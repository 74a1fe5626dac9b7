package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/vita/internal/domain/auth"
	"github.com/yanqian/vita/internal/domain/coach"
	"github.com/yanqian/vita/internal/domain/dailylog"
	"github.com/yanqian/vita/internal/domain/dashboard"
	"github.com/yanqian/vita/internal/domain/food"
	"github.com/yanqian/vita/internal/domain/lifestyle"
	"github.com/yanqian/vita/internal/domain/onboarding"
	"github.com/yanqian/vita/internal/infra/assessmentrepo"
	"github.com/yanqian/vita/internal/infra/chatrepo"
	"github.com/yanqian/vita/internal/infra/config"
	"github.com/yanqian/vita/internal/infra/dailylogrepo"
	"github.com/yanqian/vita/internal/infra/llm/chatgpt"
	"github.com/yanqian/vita/internal/infra/postgres"
	"github.com/yanqian/vita/internal/infra/telemetry"
	"github.com/yanqian/vita/internal/infra/tokenizer"
	"github.com/yanqian/vita/internal/infra/userrepo"
)

// backends holds the optional shared connections. A nil field means the
// matching memory implementation is used.
type backends struct {
	pool   *pgxpool.Pool
	valkey valkey.Client
}

func provideBackends(cfg *config.Config, logger *slog.Logger) (*backends, func(), error) {
	b := &backends{}
	ctx := context.Background()

	pool, err := postgres.Open(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	switch {
	case errors.Is(err, postgres.ErrNotConfigured):
		logger.Info("postgres dsn not set, using memory repositories")
	case err != nil:
		logger.Error("postgres unavailable, using memory repositories", "error", err)
	default:
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			logger.Info("postgres schema applied")
		}
		logger.Info("postgres repositories enabled")
		b.pool = pool
	}

	if cfg.Valkey.Enabled {
		client, err := openValkey(ctx, cfg)
		if err != nil {
			logger.Error("valkey unavailable, chat history falls back", "error", err)
		} else {
			logger.Info("valkey chat history enabled", "addr", cfg.Valkey.Addr)
			b.valkey = client
		}
	}

	cleanup := func() {
		if b.valkey != nil {
			b.valkey.Close()
		}
		if b.pool != nil {
			b.pool.Close()
		}
	}
	return b, cleanup, nil
}

func openValkey(ctx context.Context, cfg *config.Config) (valkey.Client, error) {
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}, nil
}

func provideAuthRepository(b *backends) auth.Repository {
	if b.pool != nil {
		return userrepo.NewPostgresRepository(b.pool)
	}
	return userrepo.NewMemoryRepository()
}

func provideAssessmentRepository(b *backends) onboarding.Repository {
	if b.pool != nil {
		return assessmentrepo.NewPostgresRepository(b.pool)
	}
	return assessmentrepo.NewMemoryRepository()
}

func provideDailyLogRepository(b *backends) dailylog.Repository {
	if b.pool != nil {
		return dailylogrepo.NewPostgresRepository(b.pool)
	}
	return dailylogrepo.NewMemoryRepository()
}

// provideChatRepository keeps history in Postgres when it is available, with
// Valkey as a capped recent-history cache in front. Valkey alone stores the
// full history with no trimming or expiry.
func provideChatRepository(cfg *config.Config, b *backends, logger *slog.Logger) coach.Repository {
	switch {
	case b.pool != nil && b.valkey != nil:
		cache := chatrepo.NewValkeyRepository(b.valkey, chatrepo.ValkeyOptions{
			Prefix:      cfg.Valkey.Prefix,
			MaxMessages: cfg.Valkey.MaxMessages,
			TTL:         cfg.Valkey.TTL,
		})
		return chatrepo.NewCachedRepository(chatrepo.NewPostgresRepository(b.pool), cache, logger)
	case b.valkey != nil:
		if cfg.Valkey.MaxMessages > 0 || cfg.Valkey.TTL > 0 {
			logger.Info("valkey is the only chat store, ignoring maxMessages and ttl")
		}
		return chatrepo.NewValkeyRepository(b.valkey, chatrepo.ValkeyOptions{Prefix: cfg.Valkey.Prefix})
	case b.pool != nil:
		return chatrepo.NewPostgresRepository(b.pool)
	default:
		return chatrepo.NewMemoryRepository()
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

func provideCoachConfig(cfg *config.Config) coach.Config {
	return coach.Config{
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		SystemPrompt:     cfg.Coach.SystemPrompt,
		MaxContextTokens: cfg.Coach.MaxContextTokens,
		HistoryLimit:     cfg.Coach.HistoryLimit,
		PersistTimeout:   cfg.Coach.PersistTimeout,
	}
}

func provideFoodConfig(cfg *config.Config) food.Config {
	model := cfg.Food.Model
	if strings.TrimSpace(model) == "" {
		model = cfg.LLM.Model
	}
	return food.Config{
		Model:       model,
		Temperature: cfg.LLM.Temperature,
		Prompt:      cfg.Food.Prompt,
		MaxResults:  cfg.Food.MaxResults,
	}
}

func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.DailyLog.Location()
}

func provideDailyLogConfig(loc *time.Location) dailylog.Config {
	return dailylog.Config{Location: loc}
}

func provideGenerator() *lifestyle.Generator {
	return lifestyle.NewGenerator(nil)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) *tokenizer.Counter {
	return tokenizer.New(cfg.LLM.Model, logger)
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideTracing(cfg *config.Config, logger *slog.Logger) telemetry.Shutdown {
	return telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
		Stdout:      cfg.Telemetry.Stdout,
	}, logger)
}

func provideAssessmentSource(repo onboarding.Repository) coach.AssessmentSource {
	return repo
}

func provideProfileSource(svc auth.Service) dashboard.ProfileSource {
	return svc
}
