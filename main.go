package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Project-Sylos/Specular/internal/config"
	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/sdk"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path (defaults are used when empty)")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	fmt.Println("Specular - SDK Demo")
	fmt.Println("===================")
	fmt.Println("This seeds a throwaway store and mirrors it into a temporary directory.")
	fmt.Println("For the full CLI, run: go run ./cmd/specular --help")
	fmt.Println()

	runDemo(*configPath)
}

func showHelp() {
	fmt.Println("Specular - Hierarchical Tree Mirroring Engine")
	fmt.Println("=============================================")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run main.go [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config string")
	fmt.Println("        Configuration file path")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println("CLI:")
	fmt.Println("  go run ./cmd/specular mirror --out ./mirror")
	fmt.Println("  go run ./cmd/specular serve --seed")
}

func runDemo(configPath string) {
	logging.InitDefault()
	defer func() { _ = logging.Sync() }()

	work, err := os.MkdirTemp("", "specular-demo-*")
	if err != nil {
		log.Fatalf("Failed to create work directory: %v", err)
	}
	fmt.Printf("Working in %s\n", work)

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = *loaded
	}
	cfg.Store.DBPath = work + "/demo.db"
	cfg.Mirror.OutputRootPath = work + "/mirror"
	cfg.Mirror.RemoteURL = ""

	s, err := sdk.NewWithConfig(&cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Specular: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	n, err := s.Seed(ctx)
	if err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}
	fmt.Printf("Seeded %d nodes (MaxDepth=%d, Seed=%d)\n", n, cfg.Seed.MaxDepth, cfg.Seed.Seed)

	report, err := s.Mirror(ctx)
	if err != nil {
		log.Fatalf("Mirror failed: %v", err)
	}

	fmt.Println("\nMirror Report:")
	fmt.Printf("  Containers: %d\n", report.Containers)
	fmt.Printf("  Files:      %d\n", report.Files)
	fmt.Printf("  Written:    %d\n", report.Written)
	fmt.Printf("  Skipped:    %d\n", report.Skipped)
	fmt.Printf("  Unplaced:   %d\n", report.Unplaced)
	fmt.Printf("  Duration:   %v\n", report.Duration)

	fmt.Printf("\nMirrored tree written to %s\n", cfg.Mirror.OutputRootPath)
	fmt.Println("\nSpecular SDK demo completed successfully!")
}
