package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *HTTPClient) List(ctx context.Context, status model.Status) ([]model.Task, error) {
	q := url.Values{}
	if status != "" && status != model.StatusAll {
		q.Set("status", string(status))
	}
	var tasks []model.Task
	err := c.do(ctx, "list tasks", http.MethodGet, "/api/tasks", q, nil, nil, &tasks)
	return tasks, err
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]model.Task, error) {
	q := url.Values{}
	q.Set("query", query)
	var tasks []model.Task
	err := c.do(ctx, "search tasks", http.MethodGet, "/api/tasks/search", q, nil, nil, &tasks)
	return tasks, err
}

func (c *HTTPClient) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	var hdr http.Header
	if idempKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{idempKey}}
	}
	var task model.Task
	err := c.do(ctx, "create task", http.MethodPost, "/api/tasks", nil, hdr, in, &task)
	return task, err
}

func (c *HTTPClient) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, "update task", http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, nil, patch, &task)
	return task, err
}

func (c *HTTPClient) SetCompleted(ctx context.Context, id string, completed bool) (model.Task, error) {
	body := map[string]bool{"isCompleted": completed}
	var task model.Task
	err := c.do(ctx, "set task status", http.MethodPatch, "/api/tasks/"+url.PathEscape(id)+"/status", nil, nil, body, &task)
	return task, err
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, q url.Values, hdr http.Header, in, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range hdr {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed", zap.String("op", op), zap.Error(err))
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	var env envelope
	decodeErr := error(nil)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &RemoteError{Op: op, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			re.Message = env.Error
		}
		c.logger.Info("remote call rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("error", re.Message),
		)
		return re
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: decode response: %w", op, decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		if _, isList := out.(*[]model.Task); isList {
			return nil
		}
		return fmt.Errorf("%s: response has no data", op)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}
