// README: Smoke and load runner; checks Postgres, Redis and the cargoshare API and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	results := NewRunner(cfg).RunAll(ctx)

	fmt.Println("\n== Summary ==")
	counts := map[Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", counts[StatusPass], counts[StatusFail], counts[StatusSkip])

	if counts[StatusFail] > 0 || (cfg.Strict && counts[StatusSkip] > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string
	DSN         string
	RedisAddr   string
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

// loadConfig reads CARGO_BENCH_* and the service's own CARGO_* variables; flags win.
func loadConfig() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("CARGO_BENCH_BASE_URL", "http://localhost:8080")
	v.SetDefault("CARGO_BENCH_TIMEOUT", 60*time.Second)
	v.SetDefault("CARGO_BENCH_CONCURRENCY", 20)
	v.SetDefault("CARGO_BENCH_DURATION", 10*time.Second)

	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", v.GetString("CARGO_BENCH_BASE_URL"), "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", v.GetString("CARGO_DB_DSN"), "Postgres DSN (empty skips DB checks)")
	flag.StringVar(&cfg.RedisAddr, "redis", v.GetString("CARGO_REDIS_ADDR"), "Redis address (empty skips GEO checks)")
	flag.BoolVar(&cfg.Strict, "strict", v.GetBool("CARGO_BENCH_STRICT"), "fail when checks were skipped")
	flag.DurationVar(&cfg.Timeout, "timeout", v.GetDuration("CARGO_BENCH_TIMEOUT"), "total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", v.GetInt("CARGO_BENCH_CONCURRENCY"), "concurrent clients for load checks")
	flag.DurationVar(&cfg.Duration, "duration", v.GetDuration("CARGO_BENCH_DURATION"), "duration of each load check")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}
