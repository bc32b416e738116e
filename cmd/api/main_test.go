package main

import (
	"context"
	"testing"

	appconfig "github.com/nadine-ai/resubmission-copilot/internal/config"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

func TestBuildLLMClientRequiresProvider(t *testing.T) {
	logger := logging.New("error")

	tests := []struct {
		name string
		cfg  appconfig.Config
	}{
		{"bedrock selected without model id", appconfig.Config{LLMProvider: "bedrock"}},
		{"gemini selected without api key", appconfig.Config{LLMProvider: "gemini"}},
		{"auto with nothing configured", appconfig.Config{LLMProvider: "auto"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := buildLLMClient(context.Background(), &tt.cfg, logger); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestBuildLLMClientGemini(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		LLMProvider:   "gemini",
		GeminiAPIKey:  "test-key",
		GeminiModelID: "gemini-2.5-flash",
	}

	client, modelID, err := buildLLMClient(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("buildLLMClient: %v", err)
	}
	if client == nil {
		t.Fatal("client is nil")
	}
	if modelID != "gemini-2.5-flash" {
		t.Errorf("modelID = %q", modelID)
	}
}
