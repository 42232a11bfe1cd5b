package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skhosravi/weathercheck/config"
	"github.com/skhosravi/weathercheck/internal/agent/core"
	"github.com/skhosravi/weathercheck/internal/agent/telemetry"
	"github.com/skhosravi/weathercheck/internal/extract"
	"github.com/skhosravi/weathercheck/provider"
	"github.com/skhosravi/weathercheck/tools/web_fetch"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	root := &cobra.Command{
		Use:     "weathercheck <city> <expected_condition>",
		Short:   "Verify that a city's current weather matches an expected condition",
		Example: `  weathercheck "Pune" "Sunny"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cfgPath, args[0], args[1])
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfgPath, city, expected string) error {
	cfg := config.LoadConfig(cfgPath)
	logger := log.New(os.Stderr, "[WEATHERCHECK] ", log.LstdFlags)
	tel := telemetry.New(cfg.General.Debug, nil)

	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Type), cfg.Fetch)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	extractor := extract.New(time.Duration(cfg.Fetch.StrategyWaitMS)*time.Millisecond, nil)

	registry, err := core.NewRegistry(fetcher, extractor, tel, nil, cfg.Agent.SigningSecret, cfg.Agent.RequiredTools)
	if err != nil {
		return fmt.Errorf("failed to build capability registry: %w", err)
	}

	var policy core.Policy
	switch cfg.Agent.Policy {
	case "llm":
		llm, err := provider.NewProvider(provider.Client(cfg.LLM.Type), cfg.LLM)
		if err != nil {
			// Without a reasoning backend no run can proceed.
			logger.Printf("error initializing reasoning backend: %v", err)
			os.Exit(1)
		}
		logger.Printf("using %s reasoning backend (%s)", cfg.LLM.Type, llm.Model())
		policy = core.NewLLMPolicy(llm, registry, tel, nil)
	default:
		policy = core.NewScriptedPolicy(city, expected)
	}

	loop := core.NewLoop(registry, policy, cfg.Agent.MaxSteps, nil, tel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.General.DefaultTimeout)
	defer cancel()

	logger.Printf("checking if the weather in %s is %s...", city, expected)
	answer, _ := loop.Run(ctx, core.Goal(city, expected))
	tel.LogSummary()

	fmt.Println()
	fmt.Println("Final Result:")
	fmt.Println(answer)

	if !strings.Contains(answer, "SUCCESS") {
		os.Exit(1)
	}
	return nil
}
