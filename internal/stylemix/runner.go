package stylemix

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/remote"
	ziputil "github.com/fasion-image-generator-project/FashionFusion/pkg/zip"
)

// DefaultPollInterval is the fixed delay between status calls in Wait.
const DefaultPollInterval = 2 * time.Second

// maxTracked bounds the remembered job statuses; the oldest job is forgotten
// first.
const maxTracked = 1024

// ErrJobFailed is returned by Wait when the backend reports a failed job.
var ErrJobFailed = errors.New("stylemix: job failed")

// Runner drives upload → submit → poll → download against the backend and
// remembers the last status seen per job.
type Runner struct {
	client remote.Client
	logger *infra.Logger

	mu    sync.Mutex
	limit int
	jobs  map[string]domain.JobState
	order []string
}

func NewRunner(client remote.Client, logger *infra.Logger) *Runner {
	return &Runner{
		client: client,
		logger: infra.OrDiscard(logger),
		limit:  maxTracked,
		jobs:   make(map[string]domain.JobState),
	}
}

// Start uploads image and submits a style-mixing job for it.
func (r *Runner) Start(ctx context.Context, image domain.ImagePayload, params domain.StyleMixingParams) (domain.JobSubmission, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return domain.JobSubmission{}, err
	}
	if image.IsZero() {
		return domain.JobSubmission{}, fmt.Errorf("stylemix: image required: %w", domain.ErrInvalidState)
	}
	upload, err := r.client.UploadImage(ctx, image)
	if err != nil {
		return domain.JobSubmission{}, fmt.Errorf("stylemix: upload: %w", err)
	}
	sub, err := r.client.SubmitStyleMixingJob(ctx, upload.ImageID, params)
	if err != nil {
		return domain.JobSubmission{}, fmt.Errorf("stylemix: submit: %w", err)
	}
	status := sub.Status
	if status == "" {
		status = domain.JobStatusPending
	}
	r.remember(sub.JobID, domain.JobState{Status: status, Message: sub.Message})
	r.logger.Info().Str("job_id", sub.JobID).Str("image_id", upload.ImageID).Int("num_seeds", params.NumSeeds).Msg("style mixing job submitted")
	return sub, nil
}

// Poll issues a single status call.
func (r *Runner) Poll(ctx context.Context, jobID string) (domain.JobState, error) {
	st, err := r.client.PollJobStatus(ctx, jobID)
	if err != nil {
		return domain.JobState{}, fmt.Errorf("stylemix: poll %s: %w", jobID, err)
	}
	r.remember(jobID, st)
	return st, nil
}

// Wait polls at a fixed interval until the job reaches a terminal status or
// ctx ends. onUpdate, when set, sees every status.
func (r *Runner) Wait(ctx context.Context, jobID string, interval time.Duration, onUpdate func(domain.JobState)) (domain.JobState, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := r.Poll(ctx, jobID)
		if err != nil {
			return st, err
		}
		if onUpdate != nil {
			onUpdate(st)
		}
		switch st.Status {
		case domain.JobStatusCompleted:
			return st, nil
		case domain.JobStatusFailed:
			reason := st.Error
			if reason == "" {
				reason = st.Message
			}
			return st, fmt.Errorf("%w: %s: %s", ErrJobFailed, jobID, reason)
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download fetches the result archive once a completed status was observed.
func (r *Runner) Download(ctx context.Context, jobID string) ([]byte, error) {
	st, ok := r.Status(jobID)
	if !ok || st.Status != domain.JobStatusCompleted {
		return nil, fmt.Errorf("stylemix: job %s is not completed: %w", jobID, domain.ErrInvalidState)
	}
	data, err := r.client.DownloadJobResult(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("stylemix: download %s: %w", jobID, err)
	}
	return data, nil
}

// Status returns the last status seen for jobID.
func (r *Runner) Status(jobID string) (domain.JobState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.jobs[jobID]
	return st, ok
}

func (r *Runner) remember(jobID string, st domain.JobState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; !ok {
		r.order = append(r.order, jobID)
		for len(r.order) > r.limit {
			delete(r.jobs, r.order[0])
			r.order = r.order[1:]
		}
	}
	r.jobs[jobID] = st
}

// Extract splits a result archive into image assets, dropping anything that
// is not an image.
func Extract(archive []byte) ([]domain.ImageAsset, error) {
	files, err := ziputil.ExtractAssets(archive)
	if err != nil {
		if errors.Is(err, ziputil.ErrNotArchive) {
			return nil, fmt.Errorf("stylemix: %w: %v", domain.ErrFormat, err)
		}
		return nil, fmt.Errorf("stylemix: %w", err)
	}
	assets := make([]domain.ImageAsset, 0, len(files))
	for _, f := range files {
		if !strings.HasPrefix(f.MIME, "image/") {
			continue
		}
		assets = append(assets, domain.ImageAsset{Filename: f.Filename, Image: domain.ImageFromBytes(f.Data, f.MIME)})
	}
	return assets, nil
}
