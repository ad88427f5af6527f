package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unclebandit/campaign-admin/internal/model"
)

const TopicBatchRuns = "campaign_batches"

// RunPublisher sends finished batch runs to a topic as JSON.
type RunPublisher struct {
	Queue Queue
	Topic string
}

func (p *RunPublisher) PublishRun(ctx context.Context, run *model.BatchRun) error {
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode batch run: %w", err)
	}
	return p.Queue.Publish(ctx, p.topic(), body)
}

func (p *RunPublisher) topic() string {
	if p.Topic == "" {
		return TopicBatchRuns
	}
	return p.Topic
}

// DecodeRun is the consumer side of PublishRun.
func DecodeRun(body []byte) (*model.BatchRun, error) {
	var run model.BatchRun
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("decode batch run: %w", err)
	}
	if run.ID == "" {
		return nil, fmt.Errorf("decode batch run: missing id")
	}
	return &run, nil
}
