package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"go.uber.org/zap"
)

var (
	// Triage flags
	strategy       = flag.String("strategy", "additive", "Heuristic strategy (baseline, additive)")
	threshold      = flag.Int("threshold", 90, "Confidence threshold for escalating to an LLM")
	vipSenders     = flag.String("vip", "", "Comma-separated list of additional VIP sender substrings")
	providers      = flag.String("providers", "", "Comma-separated LLM provider order (bedrock, gemini, openai)")
	maxConcurrency = flag.Int("max-concurrency", 4, "Maximum concurrent classifications for batch input")
	excerptLength  = flag.Int("excerpt-length", 200, "Maximum body excerpt length in characters")

	// LLM flags
	llmTimeout  = flag.Duration("llm-timeout", 10*time.Second, "Per-provider call timeout")
	maxTokens   = flag.Int("max-tokens", 200, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum message body size to send to an LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-3.5-turbo", "OpenAI model name")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	batchFile  = flag.String("batch", "", "JSON file with an array of messages to rank")
	tierFilter = flag.String("tier", "", "Only print messages in this tier (HIGH, MEDIUM, LOW)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

// batchMessage is the JSON form accepted by the -batch input
type batchMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"isRead"`
}

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	service, cleanup, err := buildService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build triage service", zap.Error(err))
	}
	defer cleanup()

	if *batchFile != "" {
		runBatch(service, logger)
		return
	}
	runSingle(cfg, service, logger)
}

// buildService assembles the engine outside the DI container so the CLI can
// run from flags alone.
func buildService(cfg *config.Config, logger *zap.Logger) (*core.TriageService, func(), error) {
	triageConfig, err := cfg.GetTriage()
	if err != nil {
		return nil, nil, err
	}

	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()

	providerChain, err := factory.NewLLMFactory(cfg, logger, textProcessor).CreateChain()
	if err != nil {
		return nil, nil, err
	}

	heuristic, err := factory.NewHeuristicFactory(cfg, logger).CreateHeuristic()
	if err != nil {
		return nil, nil, err
	}

	service := core.NewTriageService(
		heuristic,
		providerChain,
		core.NewGate(triageConfig.EscalationThreshold),
		core.NewMerger(triageConfig.EscalationThreshold),
		logger,
		triageConfig.Strategy == "baseline",
		triageConfig.MaxConcurrency,
	)

	cleanup := func() {
		if err := providerChain.Close(); err != nil {
			logger.Error("Failed to close provider chain", zap.Error(err))
		}
	}
	return service, cleanup, nil
}

// runSingle classifies one email read from a file or stdin
func runSingle(cfg *config.Config, service *core.TriageService, logger *zap.Logger) {
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	triageConfig, err := cfg.GetTriage()
	if err != nil {
		logger.Fatal("Invalid triage configuration", zap.Error(err))
	}

	timestamp := time.Now().UTC()
	if date, err := msg.Header.Date(); err == nil {
		timestamp = date.UTC()
	}

	message := &core.Message{
		ID:        uuid.NewString(),
		From:      msg.Header.Get("From"),
		Subject:   msg.Header.Get("Subject"),
		Body:      textProcessor.Excerpt(textProcessor.StripHTML(string(bodyBytes)), triageConfig.ExcerptLength),
		Timestamp: timestamp,
	}

	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("From: %s\n", message.From)
	fmt.Printf("Subject: %s\n", message.Subject)
	fmt.Printf("Date: %s\n", message.Timestamp.Format(time.RFC1123))
	fmt.Printf("Body length: %d bytes\n", len(message.Body))

	startTime := time.Now()
	result := service.ClassifyMessage(context.Background(), message)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Priority: %s\n", result.Tier)
	fmt.Printf("Confidence: %d\n", result.Confidence)
	fmt.Printf("Reasoning: %s\n", result.Reasoning)
	fmt.Printf("Source: %s\n", result.Provenance)
	if result.Provider != "" {
		fmt.Printf("Provider: %s\n", result.Provider)
	}
	fmt.Printf("Processing time: %v\n", time.Since(startTime))
}

// runBatch ranks a JSON array of messages
func runBatch(service *core.TriageService, logger *zap.Logger) {
	data, err := os.ReadFile(*batchFile)
	if err != nil {
		logger.Fatal("Failed to read batch file", zap.Error(err), zap.String("file", *batchFile))
	}

	var raw []batchMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Fatal("Failed to parse batch file", zap.Error(err))
	}

	messages := make([]*core.Message, len(raw))
	for i, m := range raw {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		messages[i] = &core.Message{
			ID:        m.ID,
			From:      m.From,
			Subject:   m.Subject,
			Body:      m.Body,
			Timestamp: m.Timestamp.UTC(),
			Read:      m.Read,
		}
	}

	ranked := service.ClassifyBatch(context.Background(), messages)

	if *tierFilter != "" {
		tier := core.Tier(strings.ToUpper(*tierFilter))
		if !tier.IsValid() {
			logger.Fatal("Unknown tier filter", zap.String("tier", *tierFilter))
		}
		ranked = core.FilterByTier(ranked, tier)
	}

	fmt.Printf("\n=== Ranked Messages (%d) ===\n", len(ranked))
	for i, item := range ranked {
		fmt.Printf("%2d. [%-6s %3d] %s - %s (%s)\n",
			i+1,
			item.Classification.Tier,
			item.Classification.Confidence,
			item.Message.From,
			item.Message.Subject,
			item.Classification.Provenance)
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("triage.strategy", *strategy)
	v.Set("triage.escalation_threshold", *threshold)
	v.Set("triage.max_concurrency", *maxConcurrency)
	v.Set("triage.excerpt_length", *excerptLength)

	if *vipSenders != "" {
		senders := strings.Split(*vipSenders, ",")
		for i, sender := range senders {
			senders[i] = strings.TrimSpace(sender)
		}
		v.Set("triage.vip_senders", senders)
	} else {
		v.Set("triage.vip_senders", []string{})
	}

	var providerList []string
	if *providers != "" {
		providerList = strings.Split(*providers, ",")
		for i, name := range providerList {
			providerList[i] = strings.TrimSpace(name)
		}
	}
	v.Set("llm.providers", providerList)
	v.Set("llm.timeout", llmTimeout.String())
	v.Set("llm.breaker.max_failures", 3)
	v.Set("llm.breaker.cooldown", "30s")

	v.Set("bedrock.enabled", containsProvider(providerList, "bedrock"))
	v.Set("bedrock.region", *bedrockRegion)
	v.Set("bedrock.model_id", *bedrockModelID)
	v.Set("bedrock.max_tokens", *maxTokens)
	v.Set("bedrock.temperature", *temperature)
	v.Set("bedrock.top_p", *topP)
	v.Set("bedrock.max_body_size", *maxBodySize)

	v.Set("gemini.api_key", *geminiAPIKey)
	v.Set("gemini.model_name", *geminiModelName)
	v.Set("gemini.max_tokens", *maxTokens)
	v.Set("gemini.temperature", *temperature)
	v.Set("gemini.top_p", *topP)
	v.Set("gemini.max_body_size", *maxBodySize)

	v.Set("openai.api_key", *openaiAPIKey)
	v.Set("openai.model_name", *openaiModelName)
	v.Set("openai.max_tokens", *maxTokens)
	v.Set("openai.temperature", *temperature)
	v.Set("openai.top_p", *topP)
	v.Set("openai.max_body_size", *maxBodySize)

	return config.NewFromViper(v)
}

func containsProvider(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
