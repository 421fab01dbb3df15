package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-ims/stockroom/jobs"
)

type recordingClient struct {
	tasks []*asynq.Task
}

func (r *recordingClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func (s stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return nil, s.err
}

func TestEnqueueAuditCommand(t *testing.T) {
	client := &recordingClient{}
	c := newJobsCLIWith(client, stubInspector{})
	var out bytes.Buffer

	require.NoError(t, c.Run(context.Background(), []string{"enqueue-audit", "-product", "p-1"}, &out))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, jobs.TaskLedgerAudit, client.tasks[0].Type())

	var payload jobs.LedgerAuditPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, "p-1", payload.ProductID)
	assert.Equal(t, "cli", payload.RequestedBy)
	assert.Contains(t, out.String(), "enqueued stockroom:ledger:audit")
}

func TestStatsCommand(t *testing.T) {
	c := newJobsCLIWith(&recordingClient{}, stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4, Retry: 1}})
	var out bytes.Buffer
	require.NoError(t, c.Run(context.Background(), []string{"stats"}, &out))
	assert.Contains(t, out.String(), "PENDING")
	assert.Contains(t, out.String(), "default")
}

func TestStatsMissingQueue(t *testing.T) {
	c := newJobsCLIWith(&recordingClient{}, stubInspector{err: asynq.ErrQueueNotFound})
	stats, err := c.InspectQueue()
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault}, stats)
}

func TestUnknownCommand(t *testing.T) {
	c := newJobsCLIWith(&recordingClient{}, stubInspector{})
	var out bytes.Buffer
	assert.Error(t, c.Run(context.Background(), []string{"purge"}, &out))
	assert.Contains(t, out.String(), "usage: stockroom jobs")
	assert.Error(t, c.Run(context.Background(), nil, &out))
}
