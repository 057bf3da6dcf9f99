package prompt

import (
	"strings"
	"unicode/utf8"

	"site-assistant-be/internal/entity"
	"site-assistant-be/pkg/llm"
)

// MaxContextChars bounds how much retrieved material is handed to the
// model for a single answer.
const MaxContextChars = 6000

// Builder assembles the message list sent to the model: the assistant
// instruction, optional retrieved context, recent history and finally
// the visitor's question.
type Builder struct {
	context  string
	history  []*entity.Message
	question string
}

func NewBuilder(context string, history []*entity.Message, question string) *Builder {
	return &Builder{
		context:  context,
		history:  history,
		question: question,
	}
}

func (b *Builder) Build() []llm.Message {
	messages := make([]llm.Message, 0, len(b.history)+3)

	messages = append(messages, llm.Message{
		Role:    "system",
		Content: b.systemInstruction(),
	})

	if ctx := strings.TrimSpace(b.context); ctx != "" {
		ctx = truncateRunes(ctx, MaxContextChars)
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: "Reference material from the website's documents:\n\n" + ctx,
		})
	}

	for _, msg := range b.history {
		messages = append(messages, llm.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	messages = append(messages, llm.Message{
		Role:    "user",
		Content: b.question,
	})

	return messages
}

// truncateRunes caps s at max characters without splitting a UTF-8
// sequence mid-rune.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func (b *Builder) systemInstruction() string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant for a website, answering visitor questions.\n")
	sb.WriteString("Base your answers on the reference material when it is provided.\n")
	sb.WriteString("If the material does not contain enough information to answer, ")
	sb.WriteString("say that you do not have enough information rather than guessing.\n")
	sb.WriteString("Keep answers concise and directly useful to the visitor.")
	return sb.String()
}
