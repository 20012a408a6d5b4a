// Package llm implements the LLM Invoker (C6): a vendor-agnostic chat
// completion call with per-node failover, bounded retries, and a
// zero-usage fallback, grounded on llm_provider.py's GonkaChatModel.
package llm

import (
	"context"
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

// Usage mirrors the OpenAI-compatible usage shape the back-office and
// session statistics expect (llm_provider.py's OpenAIUsage).
type Usage = model.UsageSample

// Response is one completed chat turn.
type Response struct {
	Content string
	Usage   Usage
}

// Client is the vendor-agnostic chat completion boundary; GonkaClient and
// OpenRouterClient both implement it.
type Client interface {
	// Complete issues one non-streaming chat completion at temperature 0.
	Complete(ctx context.Context, messages []model.Message, modelID string) (Response, error)
}

// classifyError reports whether an error is node-local (connection/auth)
// vs a per-node transient worth retrying on the same node (spec §6.2).
func classifyError(err error) (nodeLocal bool) {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range criticalErrors {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// criticalErrors are error substrings that mean "do not retry this node
// again, switch immediately" (llm_provider.py's critical_errors list).
var criticalErrors = []string{
	"connection aborted",
	"remote end closed",
	"connection refused",
	"connecttimeouterror",
	"remotedisconnected",
	"transfer agent capacity reached",
	"429",
	"signature is too old",
	"signature is in the future",
	"unable to validate request",
	"invalid signature",
	"request timed out",
	"read timed out",
}
