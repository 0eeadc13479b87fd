// Package debate runs a turn-based conversation between two models, each
// playing a persona and seeing the other's replies as user turns.
package debate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/logger"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// DefaultRounds is the number of exchanges after the opening lines.
const DefaultRounds = 5

// Personas used by the debate command.
const (
	ArgumentativePrompt = "You are a chatbot who is very argumentative; " +
		"you disagree with anything in the conversation and you challenge everything, in a snarky way."

	PolitePrompt = "You are a very polite, courteous chatbot. You try to agree with " +
		"everything the other person says, or find common ground. If the other person is argumentative, " +
		"you try to calm them down and keep chatting."
)

// OpeningCue is the user turn placed before the leading side's opening line
// for backends that reject a conversation starting with an assistant turn.
const OpeningCue = "Let's begin."

// userFirst lists the backends that require the first non-system turn to be
// a user turn.
var userFirst = map[string]bool{
	provider.Anthropic: true,
	provider.Gemini:    true,
}

// Side is one participant.
type Side struct {
	// Name labels the participant's turns, e.g. "GPT".
	Name string

	Provider provider.Provider
	Model    string

	// System is the persona prompt.
	System string

	// Opening is the participant's first line, spoken without a model call.
	Opening string

	// MaxTokens caps each reply when positive.
	MaxTokens int
}

// Turn is one line of the transcript.
type Turn struct {
	Speaker string
	Text    string
}

// Debate alternates Lead and Reply for Rounds exchanges.
type Debate struct {
	Lead   Side
	Reply  Side
	Rounds int
	Logger *slog.Logger
}

// Messages builds the conversation one side sees. mine and theirs are the
// lines spoken so far by that side and its opponent. The leading side sees
// its own lines as assistant turns followed by the opponent's answer. The
// replying side sees the mirror image plus the opponent's latest line.
func Messages(system string, mine, theirs []string, leads bool) []llm.Message {
	msgs := []llm.Message{llm.NewTextMessage(llm.RoleSystem, system)}

	if leads {
		for i := range min(len(mine), len(theirs)) {
			msgs = append(msgs,
				llm.NewTextMessage(llm.RoleAssistant, mine[i]),
				llm.NewTextMessage(llm.RoleUser, theirs[i]))
		}
		return msgs
	}

	for i := range min(len(mine), len(theirs)) {
		msgs = append(msgs,
			llm.NewTextMessage(llm.RoleUser, theirs[i]),
			llm.NewTextMessage(llm.RoleAssistant, mine[i]))
	}
	if len(theirs) > 0 {
		msgs = append(msgs, llm.NewTextMessage(llm.RoleUser, theirs[len(theirs)-1]))
	}
	return msgs
}

// Run plays the debate. The opening lines are reported first, then each
// reply is streamed into the sink returned by newSink for its speaker. A nil
// newSink only accumulates. On failure the transcript so far is returned
// together with the error, which carries the failed turn's partial text.
func (d *Debate) Run(ctx context.Context, newSink func(speaker string) stream.Sink) ([]Turn, error) {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	rounds := d.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	lead := []string{d.Lead.Opening}
	reply := []string{d.Reply.Opening}
	transcript := []Turn{
		{Speaker: d.Lead.Name, Text: d.Lead.Opening},
		{Speaker: d.Reply.Name, Text: d.Reply.Opening},
	}
	for _, t := range transcript {
		if err := render(newSink, t); err != nil {
			return transcript, err
		}
	}

	for round := range rounds {
		log.Debug("debate round", "round", round+1, "of", rounds)

		text, err := d.turn(ctx, d.Lead, Messages(d.Lead.System, lead, reply, true), newSink)
		if err != nil {
			return transcript, err
		}
		lead = append(lead, text)
		transcript = append(transcript, Turn{Speaker: d.Lead.Name, Text: text})

		text, err = d.turn(ctx, d.Reply, Messages(d.Reply.System, reply, lead, false), newSink)
		if err != nil {
			return transcript, err
		}
		reply = append(reply, text)
		transcript = append(transcript, Turn{Speaker: d.Reply.Name, Text: text})
	}
	return transcript, nil
}

// StartWithUser returns msgs with an OpeningCue user turn inserted after the
// system prompt when the first remaining turn is an assistant turn.
func StartWithUser(msgs []llm.Message) []llm.Message {
	first := 0
	for first < len(msgs) && msgs[first].Role == llm.RoleSystem {
		first++
	}
	if first == len(msgs) || msgs[first].Role != llm.RoleAssistant {
		return msgs
	}

	out := make([]llm.Message, 0, len(msgs)+1)
	out = append(out, msgs[:first]...)
	out = append(out, llm.NewTextMessage(llm.RoleUser, OpeningCue))
	return append(out, msgs[first:]...)
}

func (d *Debate) turn(ctx context.Context, side Side, msgs []llm.Message, newSink func(string) stream.Sink) (string, error) {
	if userFirst[side.Provider.Name()] {
		msgs = StartWithUser(msgs)
	}

	req := llm.ChatRequest{Model: side.Model, Messages: msgs}
	if side.MaxTokens > 0 {
		req = req.WithMaxTokens(side.MaxTokens)
	}

	var sink stream.Sink
	if newSink != nil {
		sink = newSink(side.Name)
	}
	text, err := stream.Fold(side.Provider.Stream(ctx, &req), sink)
	if err != nil {
		return text, fmt.Errorf("%s turn: %w", side.Name, err)
	}
	return text, nil
}

func render(newSink func(string) stream.Sink, t Turn) error {
	if newSink == nil {
		return nil
	}
	if sink := newSink(t.Speaker); sink != nil {
		return sink.Render(t.Text)
	}
	return nil
}
