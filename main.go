package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"sc-trade-advisor/internal/api"
	"sc-trade-advisor/internal/config"
	"sc-trade-advisor/internal/db"
	"sc-trade-advisor/internal/engine"
	"sc-trade-advisor/internal/logger"
	"sc-trade-advisor/internal/ratelimit"
	"sc-trade-advisor/internal/uex"
)

var version = "dev"

var (
	cfgDir string
	port   int
	scu    float64
)

var rootCmd = &cobra.Command{
	Use:   "sc-trade-advisor",
	Short: "Recommends the most profitable Star Citizen cargo routes",
	Long: `sc-trade-advisor scans UEX commodity-market data and recommends the
most profitable legal and illegal cargo routes for your ship's cargo hold.

Examples:
  sc-trade-advisor serve
  sc-trade-advisor routes --scu 96`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "One-shot route recommendation printed to stdout",
	RunE:  runRoutes,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sc-trade-advisor %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "directory containing config.yaml (default: working directory)")
	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	routesCmd.Flags().Float64Var(&scu, "scu", 0, "ship cargo capacity in SCU")
	routesCmd.MarkFlagRequired("scu")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}

func buildAdvisor(cfg *config.Config) (*engine.Advisor, *uex.CachedClient) {
	client := uex.NewClient(cfg.UEX.BaseURL, cfg.UEX.Token, cfg.UEX.Timeout)
	cached := uex.NewCachedClient(client, uex.MarketDataTTL)
	return engine.NewAdvisor(cached), cached
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}
	logger.Banner(version)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	advisor, cached := buildAdvisor(cfg)

	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.RequestsPerMinute, ratelimit.DefaultWindow)
		logger.Info("RATELIMIT", "using Redis-backed limiter")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, ratelimit.DefaultWindow)
	}

	srv := api.NewServer(cfg, advisor, limiter, database, cached)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Errorf("HTTP", "server failed: %v", err)
		return err
	}
	return nil
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	advisor, _ := buildAdvisor(cfg)
	report, err := advisor.Recommend(context.Background(), scu)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
