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

	"github.com/mikey/llm-smart-forward/internal/config"
	"github.com/mikey/llm-smart-forward/internal/core"
	"github.com/mikey/llm-smart-forward/internal/factory"
	"github.com/mikey/llm-smart-forward/internal/logging"
	"go.uber.org/zap"
)

var (
	// LLM provider flags
	provider      = flag.String("provider", "bedrock", "LLM provider (bedrock, gemini, openai)")
	maxTokens     = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature   = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP          = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize   = flag.Int("max-body-size", 4096, "Maximum prompt size to send to the LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	jsonOutput = flag.Bool("json", false, "Print the forwarding result as JSON")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

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
		cfg, err = config.NewFromFile(*configFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", *configFile))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Initialize text generator
	textProcessorFactory := factory.NewTextProcessorFactory(logger)
	textProcessor := textProcessorFactory.CreateTextProcessor()
	llmFactory := factory.NewLLMFactory(cfg, logger, textProcessor)
	generator, err := llmFactory.CreateTextGenerator()
	if err != nil {
		logger.Fatal("Failed to create text generator", zap.Error(err))
	}

	// Build the pipeline
	extractor := core.NewKeywordExtractor()
	summarizer := core.NewSummarizationPipeline(generator, extractor, logger)
	matcher := core.NewRuleMatcher(extractor, textProcessor, logger)
	resolver := core.NewForwardingResolver()
	service := core.NewForwardingService(summarizer, extractor, matcher, resolver, logger)

	// Load the rule set
	rules := cfg.GetForwardingRules(logger)
	defaultDestination := cfg.GetDefaultDestination(logger)
	logger.Info("Loaded forwarding rules",
		zap.Int("rules", len(rules)),
		zap.Bool("default_destination", defaultDestination != nil))

	// Read email from file or stdin
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

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	from := msg.Header.Get("From")
	subject := msg.Header.Get("Subject")
	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}
	body := string(bodyBytes)

	content := fmt.Sprintf("Subject: %s\nFrom: %s\nContent: %s", subject, from, body)
	templateContext := map[string]string{
		"email_subject": subject,
		"email_from":    from,
		"email_body":    body,
	}

	result := service.ProcessAndForward(context.Background(), content, rules, defaultDestination, templateContext)

	if *jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to encode result", zap.Error(err))
		}
		fmt.Println(string(encoded))
		return
	}

	printResult(result)
}

func printResult(result *core.ForwardingResult) {
	fmt.Printf("Success:  %t\n", result.Success)
	fmt.Printf("Message:  %s\n", result.Message)
	fmt.Printf("Summary:  %s\n", result.Summary)
	fmt.Printf("Keywords: %v\n", result.ExtractedKeywords)
	if result.MatchedRule != nil {
		fmt.Printf("Rule:     %s (priority %d)\n", result.MatchedRule.Description, result.MatchedRule.Priority)
	}
	for i, action := range result.Actions {
		fmt.Printf("Action %d: platform=%s", i+1, action.Platform)
		if action.Email != "" {
			fmt.Printf(" email=%s", action.Email)
		}
		if action.ChatID != "" {
			fmt.Printf(" chat_id=%s", action.ChatID)
		}
		if action.TargetUserID != "" {
			fmt.Printf(" user=%s", action.TargetUserID)
		}
		if action.Subject != "" {
			fmt.Printf(" subject=%q", action.Subject)
		}
		fmt.Println()
	}
}

// createConfigFromFlags builds a configuration instance from the command
// line flags.
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.provider", *provider)

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
