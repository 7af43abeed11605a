// cmd/demo/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/doutorgpt/carousel-maker/internal/app"
	"github.com/doutorgpt/carousel-maker/internal/config"
	"github.com/doutorgpt/carousel-maker/internal/generation"
	"github.com/doutorgpt/carousel-maker/internal/logger"
	"github.com/doutorgpt/carousel-maker/internal/models"
	"github.com/doutorgpt/carousel-maker/internal/render"
	"github.com/doutorgpt/carousel-maker/internal/services"
)

func main() {
	var (
		strategy = pflag.StringP("strategy", "s", models.DemoStrategy, "narrative strategy")
		topic    = pflag.StringP("topic", "t", "", "override the demo topic")
		prompts  = pflag.BoolP("prompts", "p", false, "also generate the image prompt of every slide")
		format   = pflag.StringP("format", "f", "", "export format: json, markdown or html")
		outDir   = pflag.StringP("out", "o", ".", "export directory")
		list     = pflag.Bool("list-strategies", false, "print the strategy catalog and exit")
	)
	pflag.Parse()

	if *list {
		for _, s := range models.Strategies {
			fmt.Printf("%s %s\n    %s\n", s.Icon, s.ID, s.Description)
		}
		return
	}

	if err := run(*strategy, *topic, *prompts, *format, *outDir); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(strategy, topic string, withPrompts bool, format, outDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	provider, err := app.NewProvider(cfg)
	if err != nil {
		return err
	}
	client, err := generation.NewClient(generation.Options{
		Provider:            provider,
		ProviderName:        cfg.LLMProvider,
		Model:               cfg.Model(),
		CarouselTemperature: cfg.CarouselTemperature,
		PromptTemperature:   cfg.PromptTemperature,
	})
	if err != nil {
		return err
	}
	status := client.Status()
	fmt.Printf("DoutorGPT demo (%s / %s: %s)\n\n", status.Provider, status.Model, status.State)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := services.NewSession("console", services.SessionOptions{
		Generator:         client,
		PromptConcurrency: cfg.PromptConcurrency,
	})
	session.LoadDemoData()
	if topic != "" {
		session.UpdateField(models.FieldTopic, topic)
	}
	if _, err := session.SelectStrategy(strategy); err != nil {
		return err
	}

	snap, err := session.Generate(ctx)
	if err != nil {
		return err
	}
	if snap.Error != "" {
		return fmt.Errorf("generation failed: %s", snap.Error)
	}

	if withPrompts {
		if snap, err = session.GenerateAllSlidePrompts(ctx); err != nil {
			return err
		}
	}

	printCarousel(snap)

	if format == "" {
		return nil
	}
	result, err := session.Export(format)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, result.Filename)
	if err := os.WriteFile(path, result.Content, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("\nexported %s\n", path)
	return nil
}

func printCarousel(snap services.Snapshot) {
	fmt.Println(snap.Result.CarouselTitle)
	fmt.Println(strings.Repeat("=", len([]rune(snap.Result.CarouselTitle))))
	fmt.Println(render.AllSlidesText(snap.Result.Slides))

	for _, card := range snap.Cards {
		if card.Prompt != "" {
			fmt.Printf("%s prompt: %s\n", card.Label, card.Prompt)
		} else if card.Error {
			fmt.Printf("%s prompt: failed\n", card.Label)
		}
	}

	if snap.Banner != nil {
		fmt.Printf("\n%s\n", snap.Banner.Title)
		for _, flag := range snap.Banner.Flags {
			mark := "✗"
			if flag.Passed {
				mark = "✓"
			}
			fmt.Printf("  %s %s\n", mark, flag.Label)
		}
		if snap.Banner.Notes != "" {
			fmt.Printf("  %s\n", snap.Banner.Notes)
		}
	}
	if snap.Checks != nil {
		for _, check := range snap.Checks.Slides {
			if check.BodyTooLong {
				fmt.Printf("  ! slide %d body has %d words (max %d)\n", check.SlideNumber, check.BodyWords, render.MaxBodyWords)
			}
			if check.HeadlineWraps {
				fmt.Printf("  ! slide %d headline spans %d lines\n", check.SlideNumber, check.HeadlineLines)
			}
		}
	}
}
