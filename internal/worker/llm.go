package worker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// LLMConfig contains configuration for creating an LLMWorker.
type LLMConfig struct {
	// Role is the role identity the worker serves.
	Role string
	// System is the system prompt framing the role's responsibilities.
	System string
	// Model is the Claude model to use; defaults to Sonnet.
	Model anthropic.Model
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// MaxTokens caps the response length; defaults to 1024.
	MaxTokens int64
	// UseAWSBedrock routes requests through AWS Bedrock instead of the API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock.
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// LLMWorker processes tasks by prompting a Claude model with the task
// description. The model's text output becomes the task result; a response
// whose first line is "ESCALATE: <reason>" raises an escalation signal.
type LLMWorker struct {
	role      string
	system    string
	model     anthropic.Model
	maxTokens int64
	client    anthropic.Client
}

// NewLLM creates an LLM-backed worker from the given configuration.
func NewLLM(cfg LLMConfig) (*LLMWorker, error) {
	if cfg.Role == "" {
		return nil, fmt.Errorf("llm worker requires a role")
	}

	var opts []option.RequestOption
	if cfg.UseAWSBedrock {
		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(context.Background(), loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := cfg.Model
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &LLMWorker{
		role:      cfg.Role,
		system:    cfg.System,
		model:     model,
		maxTokens: maxTokens,
		client:    anthropic.NewClient(opts...),
	}, nil
}

// Role returns the role identity this worker serves.
func (w *LLMWorker) Role() string {
	return w.role
}

// ProcessTask prompts the model with the task description and returns the
// text response as the task output.
func (w *LLMWorker) ProcessTask(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
	params := anthropic.MessageNewParams{
		Model:     w.model,
		MaxTokens: w.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(task.Description)),
		},
	}
	if w.system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: w.system},
		}
	}

	resp, err := w.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llm request for role %s: %w", w.role, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}
	output := strings.TrimSpace(sb.String())

	result := &models.TaskResult{Output: output}
	if reason, ok := parseEscalationMarker(output); ok {
		result.Escalation = &models.EscalationSignal{Reason: reason}
	}
	return result, nil
}

// parseEscalationMarker checks whether the first line of a model response
// requests escalation and extracts the reason.
func parseEscalationMarker(output string) (string, bool) {
	line := output
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, "ESCALATE:"); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}
