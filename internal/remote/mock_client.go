package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	ziputil "github.com/fasion-image-generator-project/FashionFusion/pkg/zip"
)

const placeholderSVG = `<svg width="400" height="400" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%%" height="100%%" fill="%s"/>
  <text x="50%%" y="50%%" font-family="Arial" font-size="24" fill="white" text-anchor="middle" dy=".3em">%s</text>
</svg>`

// Placeholder renders a solid SVG card with a centered label.
func Placeholder(fill, label string) domain.ImagePayload {
	svg := fmt.Sprintf(placeholderSVG, fill, label)
	return domain.ImagePayload{
		Base64:   base64.StdEncoding.EncodeToString([]byte(svg)),
		MIMEType: "image/svg+xml",
	}
}

var (
	DummyInitialImage = Placeholder("#2196F3", "Initial Image")
	DummyFinalImage   = Placeholder("#4CAF50", "Transformed Image")
)

type MockOptions struct {
	Delay  time.Duration
	Logger *infra.Logger
}

// MockClient answers every call with canned data after Delay. Tests can
// override individual operations through the exported hooks.
type MockClient struct {
	delay  time.Duration
	logger *infra.Logger

	InitialFunc   func(ctx context.Context, prompt, model string) (domain.ImagePayload, error)
	TransformFunc func(ctx context.Context, req TransformRequest) (domain.ImagePayload, error)
	HealthErr     error

	mu    sync.Mutex
	calls map[string]int
	jobs  map[string]mockJob
}

type mockJob struct {
	seeds int
	polls int
}

func NewMockClient(opts MockOptions) *MockClient {
	return &MockClient{
		delay:  opts.Delay,
		logger: infra.OrDiscard(opts.Logger),
		calls:  make(map[string]int),
		jobs:   make(map[string]mockJob),
	}
}

// Calls reports how many times op was invoked.
func (m *MockClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockClient) record(op string) {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
}

func (m *MockClient) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("remote: %w: %w", domain.ErrNetwork, ctx.Err())
	case <-t.C:
		return nil
	}
}

func (m *MockClient) RequestInitialImage(ctx context.Context, prompt, model string) (domain.ImagePayload, error) {
	m.record("initial")
	if strings.TrimSpace(prompt) == "" {
		return domain.ImagePayload{}, fmt.Errorf("remote: initial: %w", domain.Invalid("prompt", "prompt is required"))
	}
	if err := m.wait(ctx); err != nil {
		return domain.ImagePayload{}, err
	}
	if m.InitialFunc != nil {
		return m.InitialFunc(ctx, prompt, model)
	}
	m.logger.Debug().Str("model", model).Msg("dummy initial image")
	return DummyInitialImage, nil
}

func (m *MockClient) RequestTransform(ctx context.Context, req TransformRequest) (domain.ImagePayload, error) {
	m.record("transform")
	if req.Image.IsZero() {
		return domain.ImagePayload{}, fmt.Errorf("remote: transform: image required: %w", domain.ErrInvalidState)
	}
	if err := m.wait(ctx); err != nil {
		return domain.ImagePayload{}, err
	}
	if m.TransformFunc != nil {
		return m.TransformFunc(ctx, req)
	}
	m.logger.Debug().Str("model", req.Model).Msg("dummy final image")
	return DummyFinalImage, nil
}

func (m *MockClient) UploadImage(ctx context.Context, image domain.ImagePayload) (domain.UploadResult, error) {
	m.record("upload")
	if image.IsZero() {
		return domain.UploadResult{}, fmt.Errorf("remote: upload: image required: %w", domain.ErrInvalidState)
	}
	if err := m.wait(ctx); err != nil {
		return domain.UploadResult{}, err
	}
	return domain.UploadResult{ImageID: uuid.NewString(), OriginalFilename: "image" + image.Extension()}, nil
}

func (m *MockClient) SubmitStyleMixingJob(ctx context.Context, imageID string, params domain.StyleMixingParams) (domain.JobSubmission, error) {
	m.record("style_mixing")
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return domain.JobSubmission{}, fmt.Errorf("remote: style mixing: %w", err)
	}
	if err := m.wait(ctx); err != nil {
		return domain.JobSubmission{}, err
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.jobs[id] = mockJob{seeds: params.NumSeeds}
	m.mu.Unlock()
	return domain.JobSubmission{JobID: id, Status: domain.JobStatusPending, Message: "job queued", NumSeeds: params.NumSeeds}, nil
}

// PollJobStatus walks a job through processing to completed on successive polls.
func (m *MockClient) PollJobStatus(ctx context.Context, jobID string) (domain.JobState, error) {
	m.record("job_status")
	if err := ctx.Err(); err != nil {
		return domain.JobState{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.JobState{}, fmt.Errorf("remote: job status: %w", &domain.ServerError{Status: 404, Detail: "job not found"})
	}
	job.polls++
	m.jobs[jobID] = job
	if job.polls < 2 {
		return domain.JobState{Status: domain.JobStatusProcessing, Message: "generating variations", Progress: 0.5}, nil
	}
	return domain.JobState{
		Status:   domain.JobStatusCompleted,
		Message:  "done",
		Progress: 1,
		Result:   map[string]any{"num_images": job.seeds},
	}, nil
}

func (m *MockClient) DownloadJobResult(ctx context.Context, jobID string) ([]byte, error) {
	m.record("download")
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("remote: download: %w", &domain.ServerError{Status: 404, Detail: "job not found"})
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	assets := make([]ziputil.Asset, 0, job.seeds)
	for i := 0; i < job.seeds; i++ {
		img := Placeholder("#9C27B0", fmt.Sprintf("Seed %d", i+1))
		data, _ := img.Bytes()
		assets = append(assets, ziputil.Asset{Filename: fmt.Sprintf("style_mix_%02d.svg", i+1), MIME: img.MIMEType, Data: data})
	}
	archive, err := ziputil.ArchiveAssets(assets)
	if err != nil {
		return nil, fmt.Errorf("remote: download: %w", err)
	}
	return archive, nil
}

func (m *MockClient) Health(ctx context.Context) error {
	m.record("health")
	return m.HealthErr
}

var (
	_ Client = (*MockClient)(nil)
	_ Client = (*HTTPClient)(nil)
)
