// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/util"
)

// MaxTitleWidth bounds generated step titles in display cells.
const MaxTitleWidth = 60

// ClarificationReply answers questions that do not ask for a sequence.
const ClarificationReply = "I can draft a sequence of steps for you. Describe what you need, or ask me to add or change a step by number."

var (
	stepRef = regexp.MustCompile(`(?i)\bstep\s*#?\s*(\d+)\b`)

	topicPrefixes = []string{
		"please ",
		"can you ",
		"could you ",
		"help me ",
		"i need ",
		"i want ",
		"create ",
		"generate ",
		"make ",
		"write ",
		"draft ",
		"build ",
		"a sequence ",
		"sequence ",
		"of steps ",
		"steps ",
		"for ",
		"to ",
		"on ",
		"about ",
	}

	addPrefixes = []string{
		"please ",
		"add ",
		"insert ",
		"append ",
		"include ",
		"another step ",
		"a step ",
		"a new step ",
		"one more step ",
		"step ",
		"that ",
		"for ",
		"to ",
		"about ",
		"saying ",
		"called ",
		": ",
	}

	fragmentSep = regexp.MustCompile(`(?i)\n|;|,?\s+then\s+|,\s*and\s+|\.\s+`)
)

// Result is what the assistant produces for one chat message.
type Result struct {
	Reply    string
	Sequence model.Sequence
	// Save is set when Sequence differs from what was stored.
	Save bool
}

// Generator produces placeholder replies and sequences.
type Generator struct {
	newID func() string
}

// NewGenerator returns a generator that issues UUID sequence ids.
func NewGenerator() *Generator {
	return &Generator{newID: func() string { return uuid.NewString() }}
}

// Respond handles one message given the user's active sequence.
func (g *Generator) Respond(intent model.Intent, text string, current model.Sequence) Result {
	switch intent {
	case model.IntentAddStep:
		if current.IsEmpty() {
			return g.newSequence(text)
		}
		return addStep(text, current)
	case model.IntentEditStep:
		return editStep(text, current)
	case model.IntentClarification:
		return Result{Reply: ClarificationReply, Sequence: current}
	default:
		return g.newSequence(text)
	}
}

func (g *Generator) newSequence(text string) Result {
	topic := topicOf(text)
	fragments := splitFragments(topic)

	var steps []model.Step
	if len(fragments) >= 2 {
		for i, f := range fragments {
			steps = append(steps, model.Step{
				Number:  i + 1,
				Title:   title(f),
				Content: capitalize(f) + ".",
			})
		}
	} else {
		steps = []model.Step{
			{Number: 1, Title: "Plan", Content: fmt.Sprintf("Decide what %s involves and gather what you need.", topic)},
			{Number: 2, Title: "Carry out", Content: fmt.Sprintf("Work through %s one piece at a time.", topic)},
			{Number: 3, Title: "Review", Content: fmt.Sprintf("Check the result of %s and note what to change.", topic)},
		}
	}

	return Result{
		Reply:    fmt.Sprintf("Here is a %d-step sequence for %s. Edit any step in the sequence panel.", len(steps), topic),
		Sequence: model.NewSequence(g.newID(), steps),
		Save:     true,
	}
}

func addStep(text string, current model.Sequence) Result {
	body := trimPrefixes(strings.TrimSpace(text), addPrefixes)
	if body == "" {
		body = "New step"
	}
	next := 1
	for _, st := range current.Steps {
		if st.Number >= next {
			next = st.Number + 1
		}
	}
	seq := current.Clone()
	seq.Steps = append(seq.Steps, model.Step{Number: next, Title: title(body), Content: capitalize(body) + "."})
	return Result{
		Reply:    fmt.Sprintf("Added step %d.", next),
		Sequence: seq,
		Save:     true,
	}
}

func editStep(text string, current model.Sequence) Result {
	ask := Result{
		Reply:    `Which step should I change? Mention it by number, for example "change step 2 to ...".`,
		Sequence: current,
	}
	m := stepRef.FindStringSubmatch(text)
	if m == nil {
		return ask
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || current.Index(n) < 0 {
		return ask
	}

	lower := strings.ToLower(text)
	at := strings.LastIndex(lower, " to ")
	if at < 0 {
		return ask
	}
	value := strings.TrimSpace(strings.Trim(text[at+len(" to "):], ` ."'`))
	if value == "" {
		return ask
	}

	seq, err := current.WithEdit(n, model.FieldTitle, title(value))
	if err != nil {
		return ask
	}
	return Result{
		Reply:    fmt.Sprintf("Updated step %d.", n),
		Sequence: seq,
		Save:     true,
	}
}

// topicOf strips request phrasing so only the subject remains.
func topicOf(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimRight(t, ".!?")
	t = trimPrefixes(t, topicPrefixes)
	if t == "" {
		return "your task"
	}
	return t
}

func trimPrefixes(s string, prefixes []string) string {
	for {
		lower := strings.ToLower(s)
		trimmed := false
		for _, p := range prefixes {
			if strings.HasPrefix(lower, p) {
				s = strings.TrimSpace(s[len(p):])
				trimmed = true
				break
			}
		}
		if !trimmed {
			return s
		}
	}
}

func splitFragments(s string) []string {
	var out []string
	for _, f := range fragmentSep.Split(s, -1) {
		f = strings.TrimSpace(strings.Trim(f, " ,."))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func title(s string) string {
	return util.TruncateWidth(capitalize(util.FirstLine(s)), MaxTitleWidth)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
