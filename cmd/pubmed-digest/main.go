package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ryosukesatoh/pubmed-digest/internal/config"
	"github.com/ryosukesatoh/pubmed-digest/internal/mailer"
	"github.com/ryosukesatoh/pubmed-digest/internal/pubmed"
	"github.com/ryosukesatoh/pubmed-digest/internal/runner"
	"github.com/ryosukesatoh/pubmed-digest/internal/summarizer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	dryRun := flag.Bool("dry-run", false, "print the digest to stdout instead of sending mail")
	flag.Parse()

	// Secrets live in .env locally; in CI they arrive as real env vars.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	src := pubmed.NewClient(cfg.PubMed.Email, cfg.PubMed.APIKey, cfg.Journals, cfg.LookbackDays, cfg.MaxResults)

	sum := summarizer.NewGeminiSummarizer(
		cfg.Summarizer.APIKey,
		cfg.Summarizer.Model,
		cfg.Summarizer.Temperature,
		cfg.Summarizer.SanitizeFacts,
	)

	var snd runner.Sender
	if *dryRun {
		snd = mailer.Stdout{}
	} else {
		recipients := mailer.ResolveRecipients(cfg.Mail.To, cfg.Mail.Recipient, cfg.Mail.From)
		if len(recipients) == 0 {
			log.Fatal("No digest recipients: set mail.to, mail.recipient, or mail.from")
		}
		snd = mailer.New(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.From, cfg.Mail.Password, recipients, cfg.Mail.BccMode)
	}

	r := runner.New(cfg, src, sum, snd)

	// Single-run mode, for external schedulers (cron, GitHub Actions).
	if *once {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		log.Println("Running digest (once mode)...")
		if err := r.Run(ctx); err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		log.Println("Done")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RunOnStart {
		log.Println("Running initial digest...")
		if err := r.Run(ctx); err != nil {
			log.Printf("Initial run failed: %v", err)
		}
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule, func() {
		log.Println("Cron triggered, running digest...")
		if err := r.Run(ctx); err != nil {
			log.Printf("Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron schedule %q: %v", cfg.Schedule, err)
	}
	c.Start()
	log.Printf("Scheduled digest with cron expression: %s", cfg.Schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	cancel()
	c.Stop()
	log.Println("Shutdown complete")
}
