package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"google.golang.org/genai"

	"resume-matcher/internal/shared/config"
)

func main() {
	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		exitErr("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		exitErr(fmt.Sprintf("create client: %v", err))
	}

	fmt.Println("Models supporting generateContent:")
	found := 0
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			exitErr(fmt.Sprintf("list models: %v", err))
		}
		if !slices.Contains(model.SupportedActions, "generateContent") {
			continue
		}
		found++
		marker := ""
		if model.Name == "models/"+cfg.LLMModel {
			marker = " (configured)"
		}
		fmt.Printf("- %s%s\n", model.Name, marker)
	}
	if found == 0 {
		exitErr("no models support generateContent for this key")
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
