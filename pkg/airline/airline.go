// Package airline is the FlightAI customer assistant: a short-answer chat bot
// that can look up return ticket prices through an OpenAI tool call.
package airline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider/openai"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// DefaultModel is the OpenAI model the assistant talks to.
const DefaultModel = "gpt-4o-mini"

// SystemPrompt sets the assistant's tone.
const SystemPrompt = "You are a helpful assistant for an Airline called FlightAI. " +
	"Give short, courteous answers, no more then 1 sentence. " +
	"Always be accurate. If you don't know the answer. Say so."

// PriceTool is the name of the price lookup function exposed to the model.
const PriceTool = "get_ticket_price"

// UnknownPrice is reported for destinations missing from the price table.
const UnknownPrice = "Unknown"

// Prices maps lower-cased destination cities to return ticket prices.
var Prices = map[string]string{
	"varanasi":   "₹20000",
	"tirupathi":  "₹4000",
	"ujjain":     "₹8000",
	"ayodhya":    "₹9000",
	"madhura":    "₹12000",
	"vrindhavan": "₹10000",
	"belur":      "₹19000",
}

// TicketPrice looks up the return ticket price for city, case-insensitively.
func TicketPrice(city string) string {
	if price, ok := Prices[strings.ToLower(city)]; ok {
		return price
	}
	return UnknownPrice
}

// Tools returns the tool definitions offered to the model.
func Tools() []goopenai.Tool {
	return []goopenai.Tool{{
		Type: goopenai.ToolTypeFunction,
		Function: &goopenai.FunctionDefinition{
			Name: PriceTool,
			Description: "Get the price of a return ticket to the destination city. " +
				"Call this whenever you need to know the ticket price, " +
				"for example when a customer asks 'How much is a ticket to this city'",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"destination_city": {
						Type:        jsonschema.String,
						Description: "The city that the customer wants to travel to",
					},
				},
				Required:             []string{"destination_city"},
				AdditionalProperties: false,
			},
		},
	}}
}

type priceArgs struct {
	DestinationCity string `json:"destination_city"`
}

type priceResult struct {
	DestinationCity string `json:"destination_city"`
	Price           string `json:"price"`
}

// Assistant answers FlightAI customer questions.
type Assistant struct {
	client *goopenai.Client
	model  string
	log    *slog.Logger
}

// New creates an assistant backed by the OpenAI endpoint in cfg. An empty
// model selects DefaultModel.
func New(cfg llm.ClientConfig, model string) *Assistant {
	if model == "" {
		model = DefaultModel
	}
	return &Assistant{
		client: openai.Client(cfg),
		model:  model,
		log:    cfg.Log().With("component", "airline"),
	}
}

// Messages builds the conversation for message given the prior history.
func Messages(history []llm.Message, message string) []goopenai.ChatCompletionMessage {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.NewTextMessage(llm.RoleSystem, SystemPrompt))
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.NewTextMessage(llm.RoleUser, message))
	return openai.Messages(msgs)
}

// Chat answers message. When the model asks for a ticket price the tool is
// resolved locally and the model is asked again with the result.
func (a *Assistant) Chat(ctx context.Context, history []llm.Message, message string) (string, error) {
	msgs := Messages(history, message)

	resp, err := a.create(ctx, msgs, Tools())
	if err != nil {
		return "", err
	}

	choice := resp.Choices[0]
	if choice.FinishReason != goopenai.FinishReasonToolCalls {
		return choice.Message.Content, nil
	}

	msgs = append(msgs, choice.Message)
	for _, call := range choice.Message.ToolCalls {
		reply, err := a.handleToolCall(call)
		if err != nil {
			return "", err
		}
		msgs = append(msgs, reply)
	}

	resp, err = a.create(ctx, msgs, nil)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *Assistant) create(ctx context.Context, msgs []goopenai.ChatCompletionMessage, tools []goopenai.Tool) (goopenai.ChatCompletionResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    a.model,
		Messages: msgs,
		Tools:    tools,
	})
	if err != nil {
		return resp, stream.Transport("openai", err)
	}
	if len(resp.Choices) == 0 {
		return resp, stream.Malformed("openai", nil, errors.New("response has no choices"))
	}
	return resp, nil
}

func (a *Assistant) handleToolCall(call goopenai.ToolCall) (goopenai.ChatCompletionMessage, error) {
	if call.Function.Name != PriceTool {
		return goopenai.ChatCompletionMessage{}, fmt.Errorf("unknown tool %q", call.Function.Name)
	}

	var args priceArgs
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return goopenai.ChatCompletionMessage{}, stream.Malformed("openai", []byte(call.Function.Arguments), err)
	}

	price := TicketPrice(args.DestinationCity)
	a.log.Info("tool called", "tool", call.Function.Name, "destination_city", args.DestinationCity, "price", price)

	content, err := json.Marshal(priceResult{DestinationCity: args.DestinationCity, Price: price})
	if err != nil {
		return goopenai.ChatCompletionMessage{}, fmt.Errorf("encoding tool result: %w", err)
	}
	return goopenai.ChatCompletionMessage{
		Role:       goopenai.ChatMessageRoleTool,
		Content:    string(content),
		ToolCallID: call.ID,
	}, nil
}
