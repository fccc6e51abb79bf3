// Package apiclient talks to the task CRUD API and the chat agent endpoint.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"todo-dashboard/internal/model"

	"k8s.io/klog/v2"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListTasks fetches the task list. The server may answer with a bare array or
// with an object carrying a "tasks" array.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	body, err := c.do(ctx, "list tasks", http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	tasks, err := decodeTaskList(body)
	if err != nil {
		return nil, &DecodeError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, t model.Task) error {
	_, err := c.do(ctx, "create task", http.MethodPost, "/add", t)
	return err
}

// ReplaceTask sends the full record to PUT /update/{id}.
func (c *Client) ReplaceTask(ctx context.Context, t model.Task) error {
	_, err := c.do(ctx, "update task", http.MethodPut, "/update/"+strconv.Itoa(t.ID), t)
	return err
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete task", http.MethodDelete, "/delete/"+strconv.Itoa(id), nil)
	return err
}

// ChatReply is the decoded body of a successful chat call.
type ChatReply struct {
	Reply string
}

// Chat posts one message to the agent endpoint. A reply field that is missing
// or not a string decodes as an empty Reply.
func (c *Client) Chat(ctx context.Context, message string) (ChatReply, error) {
	body, err := c.do(ctx, "chat", http.MethodPost, "/agent/chat", map[string]string{"message": message})
	if err != nil {
		return ChatReply{}, err
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ChatReply{}, &DecodeError{Op: "chat", Err: err}
	}
	var reply string
	if raw, ok := payload["reply"]; ok {
		_ = json.Unmarshal(raw, &reply)
	}
	return ChatReply{Reply: reply}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in any) ([]byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		klog.V(4).Infof("apiclient: %s %s failed: %v", method, url, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		return nil, &TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, URL: url, Err: err}
	}
	klog.V(4).Infof("apiclient: %s %s -> %d (%d bytes)", method, url, resp.StatusCode, len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Op:         op,
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
	}
	return body, nil
}

func decodeTaskList(body []byte) ([]model.Task, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}
	switch trimmed[0] {
	case '[':
		var tasks []model.Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if tasks == nil {
			tasks = []model.Task{}
		}
		return tasks, nil
	case '{':
		var wrapper struct {
			Tasks *[]model.Task `json:"tasks"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if wrapper.Tasks == nil {
			return nil, ErrUnexpectedShape
		}
		tasks := *wrapper.Tasks
		if tasks == nil {
			tasks = []model.Task{}
		}
		return tasks, nil
	default:
		return nil, ErrUnexpectedShape
	}
}
