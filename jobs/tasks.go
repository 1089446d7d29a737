package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatementRefresh rebuilds consolidated statements for a scope.
	TaskStatementRefresh = "consol:refresh"
)

// StatementRefreshPayload configures the scope of a refresh run. A zero
// company id fans out to every company; an empty period resolves to the
// latest loaded trial balance period per company.
type StatementRefreshPayload struct {
	CompanyID int64  `json:"company_id"`
	Period    string `json:"period"`
}

// NewStatementRefreshTask constructs an Asynq task.
func NewStatementRefreshTask(payload StatementRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatementRefresh, data, asynq.Queue(QueueDefault)), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	client := asynq.NewClient(redisOpts)
	return &Client{client: client}, nil
}

// EnqueueStatementRefresh enqueues a refresh run for one company and period.
func (c *Client) EnqueueStatementRefresh(ctx context.Context, companyID int64, period string) error {
	task, err := NewStatementRefreshTask(StatementRefreshPayload{CompanyID: companyID, Period: period})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
