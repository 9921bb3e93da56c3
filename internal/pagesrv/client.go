package pagesrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/hashchain"
	"github.com/GoSim-25-26J-441/webgraph/internal/webgraph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

// ErrPageNotFound is returned for pages the server does not know.
var ErrPageNotFound = errors.New("page not found")

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	BuildID    string              `json:"build_id"`
	TotalPages int                 `json:"total_pages"`
	Root       string              `json:"root"`
	Puzzle     webgraph.PuzzleInfo `json:"puzzle"`
}

// RootID returns the root page id.
func (i *ServiceInfo) RootID() models.PageID {
	return models.PageID(strings.TrimPrefix(i.Root, "/api/"))
}

// PageResponse is the body of GET /api/{id}.
type PageResponse struct {
	PageID         models.PageID       `json:"page_id"`
	PageType       models.BehaviorType `json:"page_type"`
	LinkCount      int                 `json:"link_count"`
	DelayMs        int64               `json:"delay_ms"`
	URL            string              `json:"url"`
	RequestedAt    string              `json:"requested_at"`
	Links          []models.PageID     `json:"links,omitempty"`
	HashSeeds      []string            `json:"hashseeds,omitempty"`
	MultiSeeds     [][]string          `json:"multiseeds,omitempty"`
	HashIterations int                 `json:"hash_iterations,omitempty"`
}

// Client fetches pages from the HTTP API. Simulated failures (5xx) are retried.
type Client struct {
	baseURL     string
	http        *http.Client
	backoff     utils.BackoffStrategy
	maxAttempts int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the backoff between attempts and the attempt limit per page.
func WithRetry(strategy utils.BackoffStrategy, maxAttempts int) ClientOption {
	return func(c *Client) {
		c.backoff = strategy
		c.maxAttempts = maxAttempts
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		backoff: utils.ExponentialBackoff{
			BaseDelay:  50 * time.Millisecond,
			Multiplier: 2,
			MaxDelay:   2 * time.Second,
		},
		maxAttempts: 20,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Info fetches the service description.
func (c *Client) Info(ctx context.Context) (*ServiceInfo, error) {
	var info ServiceInfo
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Page fetches one page, retrying simulated failures.
func (c *Client) Page(ctx context.Context, id models.PageID) (*PageResponse, error) {
	var page PageResponse
	err := utils.Retry(ctx, c.backoff, c.maxAttempts, func(attempt int) error {
		if attempt > 0 {
			logger.Debug("retrying page", "page_id", id, "attempt", attempt)
		}
		return c.getJSON(ctx, PagePath(id), &page)
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrPermanent, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w: %s", utils.ErrPermanent, ErrPageNotFound, path)
	case resp.StatusCode >= 500:
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: GET %s: status %d", utils.ErrPermanent, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", utils.ErrPermanent, path, err)
	}
	return nil
}

// Solver recovers link targets from page payloads.
type Solver struct {
	hasher hashchain.Hasher
	puzzle webgraph.PuzzleInfo
}

// NewSolver creates a Solver for the puzzle parameters a server advertises.
func NewSolver(puzzle webgraph.PuzzleInfo) (*Solver, error) {
	h, err := hashchain.New(puzzle.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Solver{hasher: h, puzzle: puzzle}, nil
}

// Targets returns the ids page links to, solving hash-chain puzzles as needed.
func (s *Solver) Targets(p *PageResponse) []models.PageID {
	switch p.PageType {
	case models.BehaviorCPU:
		iterations := p.HashIterations
		if iterations == 0 {
			iterations = s.puzzle.CPUIterations
		}
		out := make([]models.PageID, 0, len(p.HashSeeds))
		for _, seed := range p.HashSeeds {
			out = append(out, models.PageID(s.hasher.Output(seed, iterations, s.puzzle.PageIDLength)))
		}
		return out
	case models.BehaviorMultiSeed:
		iterations := p.HashIterations
		if iterations == 0 {
			iterations = s.puzzle.MultiIterations
		}
		out := make([]models.PageID, 0, len(p.MultiSeeds))
		var sb strings.Builder
		for _, group := range p.MultiSeeds {
			sb.Reset()
			for _, seed := range group {
				sb.WriteString(s.hasher.Output(seed, iterations, s.puzzle.FragmentLength))
			}
			out = append(out, models.PageID(sb.String()))
		}
		return out
	default:
		return p.Links
	}
}

// CrawlResult summarizes a crawl.
type CrawlResult struct {
	Root    models.PageID
	Visited map[models.PageID]models.BehaviorType
	Edges   int
}

// Crawl walks the whole graph breadth first from the root.
func (c *Client) Crawl(ctx context.Context) (*CrawlResult, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch service info: %w", err)
	}
	solver, err := NewSolver(info.Puzzle)
	if err != nil {
		return nil, err
	}

	res := &CrawlResult{Root: info.RootID(), Visited: make(map[models.PageID]models.BehaviorType)}
	queue := []models.PageID{res.Root}
	seen := map[models.PageID]bool{res.Root: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		page, err := c.Page(ctx, id)
		if err != nil {
			return res, fmt.Errorf("crawl %s: %w", id, err)
		}
		res.Visited[id] = page.PageType
		for _, next := range solver.Targets(page) {
			res.Edges++
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return res, nil
}
