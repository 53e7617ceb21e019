package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/metrics"
)

const maxResponseBytes = 64 << 20

// Paths are the backend endpoints relative to the base URL.
type Paths struct {
	Initial     string
	Transform   string
	Upload      string
	StyleMixing string
	Job         string
	Download    string
	Health      string
}

var defaultPaths = Paths{
	Initial:     "/predict/initial",
	Transform:   "/predict/final",
	Upload:      "/upload",
	StyleMixing: "/style-mixing",
	Job:         "/job",
	Download:    "/download",
	Health:      "/health",
}

type HTTPOptions struct {
	BaseURL    string
	Paths      Paths
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
	Metrics    *metrics.Recorder
}

// HTTPClient talks to the generation backend over JSON and multipart HTTP.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	paths      Paths
	logger     *infra.Logger
	metrics    *metrics.Recorder
}

func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = "http://127.0.0.1:8000"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		httpClient: client,
		baseURL:    base,
		paths:      mergePaths(opts.Paths),
		logger:     infra.OrDiscard(opts.Logger),
		metrics:    opts.Metrics,
	}
}

func mergePaths(p Paths) Paths {
	pick := func(v, def string) string {
		if v = strings.TrimSpace(v); v == "" {
			return def
		}
		return "/" + strings.Trim(v, "/")
	}
	return Paths{
		Initial:     pick(p.Initial, defaultPaths.Initial),
		Transform:   pick(p.Transform, defaultPaths.Transform),
		Upload:      pick(p.Upload, defaultPaths.Upload),
		StyleMixing: pick(p.StyleMixing, defaultPaths.StyleMixing),
		Job:         pick(p.Job, defaultPaths.Job),
		Download:    pick(p.Download, defaultPaths.Download),
		Health:      pick(p.Health, defaultPaths.Health),
	}
}

type initialRequest struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	Seed   *int   `json:"seed,omitempty"`
}

type transformRequest struct {
	Image  string              `json:"image"`
	Model  string              `json:"model"`
	Seed   *int                `json:"seed,omitempty"`
	Params *domain.StyleParams `json:"params,omitempty"`
}

type styleMixingRequest struct {
	UploadedImageID string  `json:"uploaded_image_id"`
	NumSeeds        int     `json:"num_seeds"`
	LayerCutoff     int     `json:"layer_cutoff"`
	Truncation      float64 `json:"truncation"`
	SeedRange       [2]int  `json:"seed_range"`
	BaseSeed        int     `json:"base_seed"`
}

// imageResponse covers the field names the backend variants answer with.
type imageResponse struct {
	ImageURL   string `json:"imageUrl"`
	Image      string `json:"image"`
	ImageSnake string `json:"image_url"`
	FinalImage string `json:"final_image"`
}

func (r imageResponse) first() string {
	for _, v := range []string{r.ImageURL, r.Image, r.ImageSnake, r.FinalImage} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type errorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (c *HTTPClient) RequestInitialImage(ctx context.Context, prompt, model string) (domain.ImagePayload, error) {
	if strings.TrimSpace(prompt) == "" {
		return domain.ImagePayload{}, fmt.Errorf("remote: initial: %w", domain.Invalid("prompt", "prompt is required"))
	}
	body := initialRequest{Text: prompt, Prompt: prompt, Model: model}
	return c.postForImage(ctx, "initial", c.paths.Initial, body)
}

func (c *HTTPClient) RequestTransform(ctx context.Context, req TransformRequest) (domain.ImagePayload, error) {
	if req.Image.IsZero() {
		return domain.ImagePayload{}, fmt.Errorf("remote: transform: image required: %w", domain.ErrInvalidState)
	}
	if strings.TrimSpace(req.Model) == "" {
		return domain.ImagePayload{}, fmt.Errorf("remote: transform: %w", domain.Invalid("model", "model is required"))
	}
	body := transformRequest{Image: req.Image.String(), Model: req.Model, Seed: req.Seed, Params: req.Params}
	return c.postForImage(ctx, "transform", c.paths.Transform, body)
}

func (c *HTTPClient) postForImage(ctx context.Context, op, path string, payload any) (out domain.ImagePayload, err error) {
	defer c.observe(op, time.Now(), &err)
	body, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("remote: %s: encode request: %w", op, err)
	}
	resp, err := c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	data, err := readBody(resp)
	if err != nil {
		return out, fmt.Errorf("remote: %s: read response: %w: %w", op, domain.ErrNetwork, err)
	}

	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		if len(data) == 0 {
			return out, fmt.Errorf("remote: %s: empty image body: %w", op, domain.ErrFormat)
		}
		return domain.ImageFromBytes(data, ct), nil
	}

	var decoded imageResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return out, fmt.Errorf("remote: %s: decode response: %w", op, domain.ErrFormat)
	}
	raw := decoded.first()
	if raw == "" {
		return out, fmt.Errorf("remote: %s: missing image in response: %w", op, domain.ErrFormat)
	}
	return domain.ParseImagePayload(raw), nil
}

func (c *HTTPClient) UploadImage(ctx context.Context, image domain.ImagePayload) (out domain.UploadResult, err error) {
	defer c.observe("upload", time.Now(), &err)
	if image.IsZero() {
		return out, fmt.Errorf("remote: upload: image required: %w", domain.ErrInvalidState)
	}
	data, err := c.imageBytes(ctx, image)
	if err != nil {
		return out, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "image"+image.Extension())
	if err != nil {
		return out, fmt.Errorf("remote: upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return out, fmt.Errorf("remote: upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("remote: upload: %w", err)
	}

	resp, err := c.do(ctx, "upload", http.MethodPost, c.paths.Upload, mw.FormDataContentType(), &buf)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, fmt.Errorf("remote: upload: %w", err)
	}
	if strings.TrimSpace(out.ImageID) == "" {
		return out, fmt.Errorf("remote: upload: missing image_id: %w", domain.ErrFormat)
	}
	return out, nil
}

func (c *HTTPClient) SubmitStyleMixingJob(ctx context.Context, imageID string, params domain.StyleMixingParams) (out domain.JobSubmission, err error) {
	defer c.observe("style_mixing", time.Now(), &err)
	if strings.TrimSpace(imageID) == "" {
		return out, fmt.Errorf("remote: style mixing: %w", domain.Invalid("image_id", "image id is required"))
	}
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return out, fmt.Errorf("remote: style mixing: %w", err)
	}
	body, err := json.Marshal(styleMixingRequest{
		UploadedImageID: imageID,
		NumSeeds:        params.NumSeeds,
		LayerCutoff:     params.LayerCutoff,
		Truncation:      params.Truncation,
		SeedRange:       params.SeedRange,
		BaseSeed:        params.BaseSeed,
	})
	if err != nil {
		return out, fmt.Errorf("remote: style mixing: encode request: %w", err)
	}
	resp, err := c.do(ctx, "style_mixing", http.MethodPost, c.paths.StyleMixing, "application/json", bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, fmt.Errorf("remote: style mixing: %w", err)
	}
	if strings.TrimSpace(out.JobID) == "" {
		return out, fmt.Errorf("remote: style mixing: missing job_id: %w", domain.ErrFormat)
	}
	return out, nil
}

func (c *HTTPClient) PollJobStatus(ctx context.Context, jobID string) (out domain.JobState, err error) {
	defer c.observe("job_status", time.Now(), &err)
	if strings.TrimSpace(jobID) == "" {
		return out, fmt.Errorf("remote: job status: %w", domain.Invalid("job_id", "job id is required"))
	}
	resp, err := c.do(ctx, "job_status", http.MethodGet, c.paths.Job+"/"+url.PathEscape(jobID), "", nil)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, fmt.Errorf("remote: job status: %w", err)
	}
	switch out.Status {
	case domain.JobStatusPending, domain.JobStatusProcessing, domain.JobStatusCompleted, domain.JobStatusFailed:
		return out, nil
	default:
		return out, fmt.Errorf("remote: job status: unknown status %q: %w", out.Status, domain.ErrFormat)
	}
}

func (c *HTTPClient) DownloadJobResult(ctx context.Context, jobID string) (data []byte, err error) {
	defer c.observe("download", time.Now(), &err)
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("remote: download: %w", domain.Invalid("job_id", "job id is required"))
	}
	resp, err := c.do(ctx, "download", http.MethodGet, c.paths.Download+"/"+url.PathEscape(jobID), "", nil)
	if err != nil {
		return nil, err
	}
	data, err = readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("remote: download: %w: %w", domain.ErrNetwork, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("remote: download: empty archive: %w", domain.ErrFormat)
	}
	return data, nil
}

func (c *HTTPClient) Health(ctx context.Context) (err error) {
	defer c.observe("health", time.Now(), &err)
	resp, err := c.do(ctx, "health", http.MethodGet, c.paths.Health, "", nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()
	return nil
}

// do sends the request and converts transport failures and non-2xx statuses
// into the domain taxonomy. On success the caller owns resp.Body.
func (c *HTTPClient) do(ctx context.Context, op, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("remote: %s: build request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, image/*, application/zip")
	if rid := infra.RequestIDFrom(ctx); rid != "" {
		req.Header.Set(infra.RequestIDHeader, rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("backend unreachable")
		return nil, fmt.Errorf("remote: %s: %w: %w", op, domain.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		serr := &domain.ServerError{Status: resp.StatusCode, Detail: errorDetail(resp.Body)}
		c.logger.Warn().Int("status", resp.StatusCode).Str("op", op).Str("detail", serr.Detail).Msg("backend error")
		return nil, fmt.Errorf("remote: %s: %w", op, serr)
	}
	return resp, nil
}

func (c *HTTPClient) imageBytes(ctx context.Context, image domain.ImagePayload) ([]byte, error) {
	data, err := image.Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, domain.ErrInvalidState) {
		return nil, fmt.Errorf("remote: upload: %w", err)
	}
	target, err := c.backendURL(image.URL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: upload: fetch image: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: upload: fetch image: %w: %w", domain.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("remote: upload: fetch image: %w", &domain.ServerError{Status: resp.StatusCode})
	}
	data, err = readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("remote: upload: fetch image: %w: %w", domain.ErrNetwork, err)
	}
	return data, nil
}

// backendURL resolves an image URL against the backend and refuses anything
// served from another origin.
func (c *HTTPClient) backendURL(raw string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("remote: upload: base url: %w", err)
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		raw = c.baseURL + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("remote: upload: image url: %w", domain.ErrFormat)
	}
	target := base.ResolveReference(ref)
	if target.Scheme != base.Scheme || target.Host != base.Host {
		return "", fmt.Errorf("remote: upload: image %s is not served by the backend: %w", target.Redacted(), domain.ErrFormat)
	}
	return target.String(), nil
}

func (c *HTTPClient) observe(op string, started time.Time, errp *error) {
	c.metrics.ObserveRemote(op, started, *errp)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

func decodeJSON(resp *http.Response, v any) error {
	data, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", domain.ErrFormat)
	}
	return nil
}

// errorDetail extracts a FastAPI-style detail or message from an error body.
func errorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 16<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var out errorResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return strings.TrimSpace(string(data))
	}
	if len(out.Detail) > 0 {
		var s string
		if json.Unmarshal(out.Detail, &s) == nil {
			return s
		}
		return string(out.Detail)
	}
	if out.Message != "" {
		return out.Message
	}
	return out.Error
}
