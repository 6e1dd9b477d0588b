// Package advisor forwards a user question plus a snapshot of their
// current-month finances to a chat-completion provider and relays the text
// answer. Provider failures degrade to ErrUnavailable, never a raw error.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/report"

	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned for any provider-side failure; callers show a
// retry message.
var ErrUnavailable = errors.New("advisor is unavailable")

// Snapshot is the financial summary sent alongside every question.
type Snapshot struct {
	BudgetCeiling    decimal.Decimal        `json:"budget_ceiling"`
	TotalIncome      decimal.Decimal        `json:"total_income"`
	TotalExpense     decimal.Decimal        `json:"total_expense"`
	Remaining        decimal.Decimal        `json:"remaining"`
	CategoryTotals   []report.CategoryTotal `json:"category_totals"`
	TransactionCount int64                  `json:"transaction_count"`
}

const systemPrompt = "You are a personal finance advisor. Answer briefly and " +
	"concretely, grounded only in the financial summary provided. Amounts are " +
	"in the user's home currency."

// Advisor is a thin client over the chat-completion API.
type Advisor struct {
	client *openai.Client
	model  string
}

// New builds an advisor for the given API key and model.
func New(apiKey, model string) *Advisor {
	return NewWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewWithConfig builds an advisor from an explicit client config, which lets
// tests point BaseURL at a local server.
func NewWithConfig(cfg openai.ClientConfig, model string) *Advisor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Advisor{client: openai.NewClientWithConfig(cfg), model: model}
}

// GetAdvice asks the provider the user's question in the context of snap.
func (a *Advisor) GetAdvice(ctx context.Context, question string, snap Snapshot) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(question, snap)},
		},
	})
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Advisory call failed")
		return "", ErrUnavailable
	}
	if len(resp.Choices) == 0 {
		logrus.Warn("Advisory call returned no choices")
		return "", ErrUnavailable
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildPrompt serializes the snapshot and question into the user message.
func BuildPrompt(question string, snap Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current month summary:\n")
	fmt.Fprintf(&b, "- budget ceiling: %s\n", snap.BudgetCeiling.StringFixed(2))
	fmt.Fprintf(&b, "- total income: %s\n", snap.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "- total expenses: %s\n", snap.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "- remaining budget: %s\n", snap.Remaining.StringFixed(2))
	fmt.Fprintf(&b, "- transactions recorded: %d\n", snap.TransactionCount)
	if len(snap.CategoryTotals) > 0 {
		b.WriteString("- spending by category:\n")
		for _, ct := range snap.CategoryTotals {
			fmt.Fprintf(&b, "  - %s: %s\n", ct.Name, ct.Total.StringFixed(2))
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s", strings.TrimSpace(question))
	return b.String()
}
