package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WorkerClient talks to the completion proxy worker. The worker accepts the
// full transcript and forwards it to the upstream model, so the request body
// carries only messages. No timeout is set: a call runs until the transport
// resolves it one way or the other.
type WorkerClient struct {
	url        string
	httpClient *http.Client
}

type workerRequest struct {
	Messages []Message `json:"messages"`
}

type workerResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewWorker(url string) *WorkerClient {
	return &WorkerClient{url: url, httpClient: &http.Client{}}
}

func (c *WorkerClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	body, err := json.Marshal(workerRequest{Messages: messages})
	if err != nil {
		return Response{}, fmt.Errorf("marshal worker request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build worker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("call completion worker: %w", err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("completion worker returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read worker response: %w", err)
	}

	var wr workerResponse
	if err := json.Unmarshal(data, &wr); err != nil {
		return Response{}, fmt.Errorf("decode worker response: %w", err)
	}
	if len(wr.Choices) == 0 {
		return Response{}, fmt.Errorf("worker response has no choices")
	}
	return Response{Content: wr.Choices[0].Message.Content, Model: "worker"}, nil
}
