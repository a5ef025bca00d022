package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/response"
)

var (
	ErrBoardNotFound = domain.ErrBoardNotFound
	ErrElementExists = errors.New("element already exists")
)

// GatewayClient wraps the persistence gateway HTTP API.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
	boards     map[string]*cachedBoard
	cacheTTL   time.Duration
	mu         sync.RWMutex
}

type cachedBoard struct {
	board     *domain.Board
	expiresAt time.Time
}

type apiResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error,omitempty"`
}

// NewGatewayClient creates a gateway client. Boards fetched by GetBoard
// are cached for cacheTTL; zero disables the cache.
func NewGatewayClient(baseURL string, timeout, cacheTTL time.Duration) *GatewayClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		boards:   make(map[string]*cachedBoard),
		cacheTTL: cacheTTL,
	}
}

// CreateBoard creates a board with the given title.
func (c *GatewayClient) CreateBoard(ctx context.Context, title string) (*domain.Board, error) {
	var board domain.Board
	if err := c.do(ctx, http.MethodPost, "/api/v1/boards", domain.CreateBoardRequest{Title: title}, &board); err != nil {
		return nil, err
	}
	c.addToCache(&board)
	return &board, nil
}

// GetBoard retrieves a board by ID.
func (c *GatewayClient) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	if board := c.getFromCache(boardID); board != nil {
		return board, nil
	}

	var board domain.Board
	if err := c.do(ctx, http.MethodGet, boardPath(boardID), nil, &board); err != nil {
		return nil, err
	}
	c.addToCache(&board)
	return &board, nil
}

// ListElements returns a board's elements bottom to top.
func (c *GatewayClient) ListElements(ctx context.Context, boardID string) ([]domain.Element, error) {
	var els []domain.Element
	if err := c.do(ctx, http.MethodGet, boardPath(boardID)+"/elements", nil, &els); err != nil {
		return nil, err
	}
	return els, nil
}

// CreateElement stores one new element.
func (c *GatewayClient) CreateElement(ctx context.Context, boardID string, el domain.Element) error {
	return c.do(ctx, http.MethodPost, boardPath(boardID)+"/elements", el, nil)
}

// BatchUpdate creates or replaces elements.
func (c *GatewayClient) BatchUpdate(ctx context.Context, boardID string, els []domain.Element) error {
	return c.do(ctx, http.MethodPut, boardPath(boardID)+"/elements", domain.ElementsRequest{Elements: els}, nil)
}

// BatchDelete removes elements by id.
func (c *GatewayClient) BatchDelete(ctx context.Context, boardID string, ids []string) error {
	return c.do(ctx, http.MethodPost, boardPath(boardID)+"/elements/delete", domain.DeleteElementsRequest{IDs: ids}, nil)
}

// InvalidateCache removes a board from the cache.
func (c *GatewayClient) InvalidateCache(boardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.boards, boardID)
}

func boardPath(boardID string) string {
	return "/api/v1/boards/" + url.PathEscape(boardID)
}

func (c *GatewayClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("gateway returned status %d: failed to decode response: %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrBoardNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrElementExists
	case resp.StatusCode >= 300 || !apiResp.Success:
		msg := http.StatusText(resp.StatusCode)
		if apiResp.Error != nil {
			msg = apiResp.Error.Code + ": " + apiResp.Error.Message
		}
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, msg)
	}

	if out != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *GatewayClient) getFromCache(boardID string) *domain.Board {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.boards[boardID]; ok {
		if time.Now().Before(cached.expiresAt) {
			return cached.board
		}
	}
	return nil
}

func (c *GatewayClient) addToCache(board *domain.Board) {
	if c.cacheTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.boards[board.ID] = &cachedBoard{
		board:     board,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
}
