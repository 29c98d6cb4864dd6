package marketplace

import (
	"context"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/internal/validation"
	"fmt"
	"strings"
	"time"
)

// DefaultPollInterval is how often an open chat refreshes
const DefaultPollInterval = 5 * time.Second

// Chat reads and writes the conversation attached to a job
type Chat struct {
	api      operation.Doer
	validate *validation.Validator
}

// NewChat creates the chat service
func NewChat(api operation.Doer, v *validation.Validator) *Chat {
	return &Chat{api: api, validate: v}
}

// Messages returns the conversation of jobID, oldest first
func (c *Chat) Messages(ctx context.Context, jobID int64) ([]models.Message, error) {
	resp, err := c.api.Do(ctx, operation.Request{Op: operation.ListMessages, JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("list messages of job %d: %w", jobID, err)
	}
	return decodeList[models.Message](resp)
}

// Send posts text to the conversation and returns it freshly re-read
func (c *Chat) Send(ctx context.Context, jobID int64, text string) ([]models.Message, error) {
	form := validation.MessageForm{Job: jobID, Text: strings.TrimSpace(text)}
	if err := c.validate.Struct(form); err != nil {
		return nil, err
	}

	_, err := c.api.Do(ctx, operation.Request{
		Op:    operation.CreateMessage,
		JobID: jobID,
		Body:  models.MessageInput{Job: form.Job, Text: form.Text},
	})
	if err != nil {
		return nil, fmt.Errorf("send message to job %d: %w", jobID, err)
	}
	return c.Messages(ctx, jobID)
}

// Poll calls fn with the conversation right away and then every interval
// until ctx is done. Fetch errors are handed to fn and polling goes on.
func (c *Chat) Poll(ctx context.Context, jobID int64, interval time.Duration, fn func([]models.Message, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		msgs, err := c.Messages(ctx, jobID)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fn(msgs, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
