package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
	"github.com/CalibrantLtd/Slido/internal/dataset"
)

// Enqueuer submits dashboard jobs to the queue.
type Enqueuer interface {
	EnqueueDashboardWarmup(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) (string, error)
	EnqueueCacheInvalidate(ctx context.Context) (string, error)
}

// JobsCLI wraps manual management helpers for queued jobs.
type JobsCLI struct {
	client Enqueuer
}

// NewJobsCLI initialises the helpers around an enqueuer.
func NewJobsCLI(client Enqueuer) (*JobsCLI, error) {
	if client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	return &JobsCLI{client: client}, nil
}

// JobsOptions defines available flags for the jobs command.
type JobsOptions struct {
	Job         string
	DatasetPath string
	DatasetID   string
	Sheet       string
	ParamsPath  string
	Stdout      io.Writer
	Stderr      io.Writer
}

// TriggerCommand enqueues a supported job by name and prints its task ID.
func (c *JobsCLI) TriggerCommand(ctx context.Context, opts JobsOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	var (
		id  string
		err error
	)
	switch opts.Job {
	case "warmup":
		id, err = c.warmup(ctx, opts)
	case "invalidate":
		id, err = c.client.EnqueueCacheInvalidate(ctx)
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "jobs: unsupported job %q\n", opts.Job)
		return ExitInvalid
	}
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs: %v\n", err)
		return ExitFailure
	}
	_, _ = fmt.Fprintf(opts.Stdout, "enqueued %s %s\n", opts.Job, id)
	return ExitOK
}

func (c *JobsCLI) warmup(ctx context.Context, opts JobsOptions) (string, error) {
	if opts.DatasetPath == "" || opts.DatasetID == "" {
		return "", errors.New("warmup requires --data and --id")
	}
	ds, err := dataset.Open(opts.DatasetPath, opts.Sheet)
	if err != nil {
		return "", err
	}
	ds.ID = opts.DatasetID
	var params dashboard.Parameters
	if opts.ParamsPath != "" {
		if params, err = dataset.LoadParameters(opts.ParamsPath); err != nil {
			return "", err
		}
	}
	return c.client.EnqueueDashboardWarmup(ctx, ds, params)
}
