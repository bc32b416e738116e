// Command llmtest smoke-tests the configured text-generation providers
// with a short claims question, including the <think> trace handling.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/nadine-ai/resubmission-copilot/internal/conversation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req := conversation.LLMRequest{
		System: []string{
			"You assist a hospital claims team with insurance resubmissions. Keep responses brief.",
		},
		Messages: []conversation.ChatMessage{
			conversation.SystemMessage("vip_level: VIP+\npsychiatric: fully covered\noverall_annual_limit: 500,000 SAR"),
			conversation.UserMessage("The insurer rejected a psychiatry session as not medically necessary. Which policy clause supports resubmission?"),
		},
		MaxTokens:   300,
		Temperature: 0.2,
	}

	fmt.Println("LLM Provider Test")
	fmt.Println("-----------------")

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		fmt.Println("\n[1] Gemini...")
		client, err := conversation.NewGeminiLLMClient(ctx, key, os.Getenv("GEMINI_MODEL_ID"))
		if err != nil {
			fmt.Printf("    failed to create client: %v\n", err)
		} else {
			runOnce(ctx, client, req)
			client.Close()
		}
	} else {
		fmt.Println("\n[1] Gemini skipped (GEMINI_API_KEY not set)")
	}

	if modelID := os.Getenv("BEDROCK_MODEL_ID"); modelID != "" {
		fmt.Println("\n[2] Bedrock...")
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			fmt.Printf("    failed to load AWS config: %v\n", err)
		} else {
			client := conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
			bedrockReq := req
			bedrockReq.Model = modelID
			runOnce(ctx, client, bedrockReq)
		}
	} else {
		fmt.Println("\n[2] Bedrock skipped (BEDROCK_MODEL_ID not set)")
	}
}

func runOnce(ctx context.Context, client conversation.LLMClient, req conversation.LLMRequest) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    error: %v\n", err)
		return
	}

	visible, trace := conversation.SplitReasoning(resp.Text)
	fmt.Printf("    response (%v):\n    %s\n", elapsed.Round(time.Millisecond), visible)
	if trace != "" {
		fmt.Printf("    reasoning trace (%d chars, stripped from answer)\n", len(trace))
	}
	fmt.Printf("    tokens: in=%d out=%d stop=%s\n",
		resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
}
