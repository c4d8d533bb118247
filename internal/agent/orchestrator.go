package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/dataquery"
	"github.com/adpulse/adpulse/internal/llm"
	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/prompts"
)

// MaxTurns bounds the number of model round-trips within one Ask call.
const MaxTurns = 10

const (
	ceilingApology = "Sorry - I could not finish the analysis within the allowed number of steps. Please narrow the question and try again."
	transportReply = "Sorry - I could not reach the analysis model just now. Please try again in a moment."
)

// Orchestrator owns one conversation turn with the LLM: it builds the
// system prompt and tool catalog, lets the model request tool calls,
// dispatches them and loops until the model answers or the turn ceiling is
// hit. It holds no per-conversation state; callers resupply history.
type Orchestrator struct {
	catalog      *Catalog
	mods         *modules.Service
	queries      *dataquery.Service
	llmCfg       llm.Config
	templatesDir string
	maxTurns     int
	log          *zap.Logger

	modelFactory func(context.Context, llm.Config) (model.BaseChatModel, error)
	now          func() time.Time
}

// NewOrchestrator wires the orchestrator's collaborators together.
func NewOrchestrator(catalog *Catalog, mods *modules.Service, queries *dataquery.Service, cfg llm.Config, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		catalog:      catalog,
		mods:         mods,
		queries:      queries,
		llmCfg:       cfg,
		maxTurns:     MaxTurns,
		log:          log,
		modelFactory: llm.NewChatModel,
		now:          time.Now,
	}
}

// SetTemplatesDir points prompt resolution at a directory of override
// templates.
func (o *Orchestrator) SetTemplatesDir(dir string) {
	o.templatesDir = dir
}

// SetMaxTurns overrides the model round-trip ceiling.
func (o *Orchestrator) SetMaxTurns(n int) {
	if n > 0 && n <= 20 {
		o.maxTurns = n
	}
}

// Ask answers one user question for the given agent category. history holds
// the prior conversation (without system prompt) and may be nil. The
// returned string is always a presentable answer; a non-nil error means the
// model endpoint failed and the string is an apology for the user.
func (o *Orchestrator) Ask(ctx context.Context, category string, history []*schema.Message, question string) (string, error) {
	prompt, err := prompts.GetPrompt(category, o.templatesDir)
	if err != nil {
		return transportReply, fmt.Errorf("load prompt for %q: %w", category, err)
	}
	prompt = prompts.WithDateBlock(prompt, o.now())

	chatModel, err := o.modelFactory(ctx, o.llmCfg)
	if err != nil {
		return transportReply, fmt.Errorf("create chat model: %w", err)
	}

	bindings := o.catalog.Tools(category)
	infos := toolInfos(bindings)
	byName := make(map[string]Binding, len(bindings))
	for _, b := range bindings {
		byName[b.Descriptor.Name] = b
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(prompt))
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(question))

	// Tool loop: model -> (tool calls -> tool results -> model)* -> answer.
	for turn := 0; turn < o.maxTurns; turn++ {
		select {
		case <-ctx.Done():
			return transportReply, ctx.Err()
		default:
		}

		resp, err := chatModel.Generate(ctx, messages, model.WithTools(infos))
		if err != nil {
			o.log.Warn("model turn failed", zap.Int("turn", turn+1), zap.Error(err))
			return transportReply, fmt.Errorf("generate (turn %d): %w", turn+1, err)
		}

		messages = append(messages, resp)

		if len(resp.ToolCalls) == 0 {
			o.log.Debug("final answer", zap.Int("turns", turn+1))
			return resp.Content, nil
		}

		// All results for this model turn are appended before the next
		// request, each tagged with the call id it answers.
		for _, tc := range resp.ToolCalls {
			result := o.dispatch(ctx, byName, tc)
			messages = append(messages, schema.ToolMessage(result, tc.ID))
		}
	}

	o.log.Warn("turn ceiling reached", zap.Int("max_turns", o.maxTurns))
	return ceilingApology, nil
}

// dispatch serves one tool call. Failures of any kind are serialized as an
// error payload for the model instead of aborting the turn, so one bad call
// leaves the other calls of the same turn intact.
func (o *Orchestrator) dispatch(ctx context.Context, byName map[string]Binding, tc schema.ToolCall) (result string) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("tool call panicked",
				zap.String("tool", tc.Function.Name), zap.Any("cause", r))
			result = errorPayload(fmt.Sprintf("tool %s panicked: %v", tc.Function.Name, r))
		}
	}()

	name := tc.Function.Name
	binding, ok := byName[name]
	if !ok {
		return errorPayload(fmt.Sprintf("unknown tool %q", name))
	}

	o.log.Debug("dispatching tool call",
		zap.String("tool", name), zap.String("call_id", tc.ID))

	var payload any
	switch binding.Kind {
	case KindQuery:
		payload = o.queries.Invoke(ctx, name, tc.Function.Arguments)

	case KindModule:
		overrides := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &overrides); err != nil {
				return errorPayload(fmt.Sprintf("parse arguments for %s: %v", name, err))
			}
		}
		res, err := o.mods.Run(ctx, binding.ModuleID, overrides)
		if err != nil {
			return errorPayload(err.Error())
		}
		payload = res

	default:
		return errorPayload(fmt.Sprintf("unhandled tool kind for %q", name))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errorPayload(fmt.Sprintf("serialize result of %s: %v", name, err))
	}
	return string(data)
}

func errorPayload(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}
