package jobs

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

const (
	QueueDunning  = "dunning"
	QueueWebhooks = "webhooks"
)

// DunningScanArgs triggers one pass of the dunning runner
type DunningScanArgs struct {
	// Reason records who asked for the scan: "periodic", "manual"
	Reason string `json:"reason"`
}

// Kind returns the job type name
func (DunningScanArgs) Kind() string { return "dunning_scan" }

// InsertOpts keeps at most one scan queued or running at a time
func (DunningScanArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueDunning,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRetryable,
				rivertype.JobStateRunning,
				rivertype.JobStateScheduled,
			},
		},
	}
}

// WebhookRedeliveryArgs re-sends the payload of a failed delivery
type WebhookRedeliveryArgs struct {
	DeliveryID string `json:"delivery_id"`
	Attempt    int    `json:"attempt"`
}

// Kind returns the job type name
func (WebhookRedeliveryArgs) Kind() string { return "webhook_redelivery" }

func (WebhookRedeliveryArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueWebhooks, MaxAttempts: 3}
}
