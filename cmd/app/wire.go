//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/vita/internal/bootstrap"
	"github.com/yanqian/vita/internal/domain/auth"
	"github.com/yanqian/vita/internal/domain/coach"
	"github.com/yanqian/vita/internal/domain/dailylog"
	"github.com/yanqian/vita/internal/domain/dashboard"
	"github.com/yanqian/vita/internal/domain/food"
	"github.com/yanqian/vita/internal/domain/onboarding"
	"github.com/yanqian/vita/internal/infra/config"
	"github.com/yanqian/vita/internal/infra/llm/chatgpt"
	"github.com/yanqian/vita/internal/infra/tokenizer"
	httpiface "github.com/yanqian/vita/internal/interface/http"
	"github.com/yanqian/vita/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideBackends,
		provideAuthRepository,
		provideAssessmentRepository,
		provideDailyLogRepository,
		provideChatRepository,
		provideAuthConfig,
		provideCoachConfig,
		provideFoodConfig,
		provideLocation,
		provideDailyLogConfig,
		provideGenerator,
		provideTokenCounter,
		provideChatGPTClient,
		provideTracing,
		provideAssessmentSource,
		provideProfileSource,
		auth.NewService,
		onboarding.NewService,
		dailylog.NewService,
		dashboard.NewService,
		coach.NewService,
		food.NewService,
		wire.Bind(new(coach.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(food.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(coach.TokenCounter), new(*tokenizer.Counter)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
