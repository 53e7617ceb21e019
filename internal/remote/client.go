package remote

import (
	"context"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/metrics"
)

// Client is the request/response contract of the generation backend. No
// implementation retries or caches.
type Client interface {
	RequestInitialImage(ctx context.Context, prompt, model string) (domain.ImagePayload, error)
	RequestTransform(ctx context.Context, req TransformRequest) (domain.ImagePayload, error)
	UploadImage(ctx context.Context, image domain.ImagePayload) (domain.UploadResult, error)
	SubmitStyleMixingJob(ctx context.Context, imageID string, params domain.StyleMixingParams) (domain.JobSubmission, error)
	PollJobStatus(ctx context.Context, jobID string) (domain.JobState, error)
	DownloadJobResult(ctx context.Context, jobID string) ([]byte, error)
	Health(ctx context.Context) error
}

// TransformRequest asks the backend to restyle Image with Model.
type TransformRequest struct {
	Image domain.ImagePayload
	Model string
	// Params is sent only for tunable models.
	Params *domain.StyleParams
	Seed   *int
}

// New selects the canned client when dummy data is enabled, the HTTP client otherwise.
func New(cfg infra.RemoteConfig, logger *infra.Logger, rec *metrics.Recorder) Client {
	if cfg.UseDummyData {
		return NewMockClient(MockOptions{Delay: cfg.DummyDelay, Logger: logger})
	}
	return NewHTTPClient(HTTPOptions{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Paths: Paths{
			Initial:     cfg.InitialPath,
			Transform:   cfg.TransformPath,
			Upload:      cfg.UploadPath,
			StyleMixing: cfg.StyleMixingPath,
			Job:         cfg.JobPath,
			Download:    cfg.DownloadPath,
			Health:      cfg.HealthPath,
		},
		Logger:  logger,
		Metrics: rec,
	})
}
