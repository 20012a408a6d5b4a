package llm

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/telemetry"
)

// GonkaClient talks to the decentralized Gonka network through an
// Anthropic-compatible transport, retrying within a node before failing
// over to the next candidate (spec §4.6, grounded on GonkaChatModel's
// outer node-switch loop and inner per-node retry loop).
type GonkaClient struct {
	privateKey      string
	maxRetriesPerNode int
	maxNodeSwitches   int
	requestTimeout    time.Duration

	nodes     *NodeDirectory
	limiter   *rate.Limiter
	logger    telemetry.Logger

	dialNode func(node string) *anthropic.Client
}

// NewGonkaClient builds a GonkaClient. dialNode is injected so tests can
// substitute a fake transport without a live network.
func NewGonkaClient(privateKey string, nodes *NodeDirectory, logger telemetry.Logger, dialNode func(node string) *anthropic.Client) *GonkaClient {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	return &GonkaClient{
		privateKey:        privateKey,
		maxRetriesPerNode: 3,
		maxNodeSwitches:   10,
		requestTimeout:    60 * time.Second,
		nodes:             nodes,
		// Paces node switches to at most one every 200ms; retries within a
		// single node are paced by completeOnNode's 2*(attempt+1)s backoff.
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		logger:   logger,
		dialNode: dialNode,
	}
}

// Complete runs the node-failover state machine: up to maxNodeSwitches
// candidate nodes, each given up to maxRetriesPerNode attempts with
// 2*(attempt+1)s backoff, short-circuiting to the next node immediately on
// a critical (node-local) error.
func (g *GonkaClient) Complete(ctx context.Context, messages []model.Message, modelID string) (Response, error) {
	candidates := g.candidateNodes(ctx)
	if len(candidates) == 0 {
		return Response{}, errors.New("no gonka nodes available")
	}

	var lastErr error
	for i, node := range candidates {
		if i >= g.maxNodeSwitches {
			break
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return Response{}, err
		}

		client := g.dial(node)
		resp, err := g.completeOnNode(ctx, client, messages, modelID)
		if err == nil {
			g.nodes.Remember(ctx, node)
			return resp, nil
		}

		lastErr = err
		g.logger.Warn(ctx, "gonka node failed", "node", node, "error", err.Error())
		if classifyError(err) {
			continue // node-local: switch immediately, no further retries here
		}
	}

	if lastErr == nil {
		lastErr = errors.New("all gonka nodes failed")
	}
	return Response{}, lastErr
}

func (g *GonkaClient) dial(node string) *anthropic.Client {
	if g.dialNode != nil {
		return g.dialNode(node)
	}
	c := anthropic.NewClient(option.WithBaseURL(node), option.WithAPIKey(g.privateKey))
	return &c
}

// completeOnNode retries a single node up to maxRetriesPerNode times,
// sleeping 2*(attempt+1) seconds between attempts, bailing immediately on
// a critical error.
func (g *GonkaClient) completeOnNode(ctx context.Context, client *anthropic.Client, messages []model.Message, modelID string) (Response, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxRetriesPerNode; attempt++ {
		resp, err := g.callOnce(ctx, client, messages, modelID)
		if err == nil {
			return resp, nil
		}
		if classifyError(err) {
			return Response{}, err
		}
		lastErr = err
		if attempt < g.maxRetriesPerNode-1 {
			wait := time.Duration(2*(attempt+1)) * time.Second
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return Response{}, ctx.Err()
			}
		}
	}
	return Response{}, lastErr
}

func (g *GonkaClient) callOnce(ctx context.Context, client *anthropic.Client, messages []model.Message, modelID string) (Response, error) {
	cctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()

	req := buildAnthropicRequest(messages, modelID)
	msg, err := client.Messages.New(cctx, req)
	if err != nil {
		return Response{}, err
	}

	content := extractAnthropicText(msg)
	usage := usageFromAnthropic(msg, messages, content)
	return Response{Content: content, Usage: usage}, nil
}

// candidateNodes orders node URLs to try: the last-successful node (if the
// directory has one), then the genesis nodes, with duplicates removed.
func (g *GonkaClient) candidateNodes(ctx context.Context) []string {
	var ordered []string
	if last := g.nodes.Last(ctx); last != "" {
		ordered = append(ordered, last)
	}
	ordered = append(ordered, genesisNodes...)
	return dedupeStrings(ordered)
}

// genesisNodes is the fallback bootstrap list when no node has succeeded
// yet in this process. utils.py's GENESIS_NODES/get_available_nodes pull
// this from a discovery endpoint at runtime; that endpoint isn't part of
// this checkout, so these are placeholder seeds. No environment variable
// or config field replaces them.
var genesisNodes = []string{
	"https://node1.gonka.ai",
	"https://node2.gonka.ai",
	"https://node3.gonka.ai",
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
