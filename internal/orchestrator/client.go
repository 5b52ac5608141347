// Package orchestrator submits inference tasks to the ML layer. The
// primary path is the orchestrator service's HTTP /infer endpoint; a
// local Ollama model can be preferred when configured.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

const requestTimeout = 12 * time.Second

// TaskRequest describes one inference task.
type TaskRequest struct {
	EngineName string
	TaskID     string
	InputData  string
}

// TaskResponse is the normalized outcome of a task submission.
type TaskResponse struct {
	TaskID     string
	Status     string
	OutputData string
}

// Client talks to the ML orchestrator service over HTTP.
type Client struct {
	httpClient *http.Client
	address    string
	log        logger.Logger
}

func NewClient(address string, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		address:    strings.TrimSpace(address),
		log:        log,
	}
}

// SubmitTask posts the task to the orchestrator's /infer endpoint.
// Transport failures are folded into a failed TaskResponse rather than an
// error: the caller always gets a normalized outcome to record.
func (c *Client) SubmitTask(ctx context.Context, req *TaskRequest) (*TaskResponse, error) {
	if req == nil {
		return nil, errors.New("nil task request")
	}
	if strings.TrimSpace(req.TaskID) == "" {
		req.TaskID = uuid.NewString()
	}

	base := strings.TrimRight(c.address, "/")
	url := fmt.Sprintf("%s/infer", base)
	payload := map[string]interface{}{
		"text": req.InputData,
		"payload": map[string]interface{}{
			"engine": req.EngineName,
			"taskId": req.TaskID,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal task payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("could not build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warning("Orchestrator", "task submission failed", map[string]interface{}{
			"task":  req.TaskID,
			"error": err.Error(),
		})
		errBody, _ := json.Marshal(map[string]string{"error": err.Error()})
		return &TaskResponse{
			TaskID:     req.TaskID,
			Status:     "failed",
			OutputData: string(errBody),
		}, nil
	}
	defer httpResp.Body.Close()

	respBody, _ := io.ReadAll(httpResp.Body)
	status := "success"
	if httpResp.StatusCode >= 400 {
		status = "failed"
	}
	return &TaskResponse{
		TaskID:     req.TaskID,
		Status:     status,
		OutputData: string(respBody),
	}, nil
}

// SubmitInput marshals input and submits it under the named engine.
func (c *Client) SubmitInput(ctx context.Context, engineName, taskID string, input interface{}) (*TaskResponse, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("could not marshal task input: %w", err)
	}
	return c.SubmitTask(ctx, &TaskRequest{
		EngineName: engineName,
		TaskID:     taskID,
		InputData:  string(inputJSON),
	})
}
