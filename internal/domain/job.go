package domain

// JobStatus enumerates style-mixing job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether polling can stop.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// StyleMixingParams configures a seed-variation job on an uploaded image.
type StyleMixingParams struct {
	NumSeeds    int     `json:"num_seeds"`
	LayerCutoff int     `json:"layer_cutoff"`
	Truncation  float64 `json:"truncation"`
	SeedRange   [2]int  `json:"seed_range"`
	BaseSeed    int     `json:"base_seed"`
}

// DefaultStyleMixingParams are used when a caller leaves fields unset.
var DefaultStyleMixingParams = StyleMixingParams{
	NumSeeds:    4,
	LayerCutoff: 8,
	Truncation:  0.7,
	SeedRange:   [2]int{0, 1000},
	BaseSeed:    42,
}

// WithDefaults fills zero fields from DefaultStyleMixingParams.
func (p StyleMixingParams) WithDefaults() StyleMixingParams {
	d := DefaultStyleMixingParams
	if p.NumSeeds <= 0 {
		p.NumSeeds = d.NumSeeds
	}
	if p.LayerCutoff <= 0 {
		p.LayerCutoff = d.LayerCutoff
	}
	if p.Truncation <= 0 {
		p.Truncation = d.Truncation
	}
	if p.SeedRange == [2]int{} {
		p.SeedRange = d.SeedRange
	}
	return p
}

// Validate rejects parameters the backend cannot run.
func (p StyleMixingParams) Validate() error {
	if p.NumSeeds <= 0 {
		return Invalid("num_seeds", "must be positive")
	}
	if p.LayerCutoff < 0 {
		return Invalid("layer_cutoff", "must not be negative")
	}
	if p.Truncation <= 0 || p.Truncation > MaxStyleParam {
		return Invalid("truncation", "must be within (0, 1]")
	}
	if p.SeedRange[1] < p.SeedRange[0] {
		return Invalid("seed_range", "upper bound below lower bound")
	}
	return nil
}

// UploadResult is returned by the upload endpoint.
type UploadResult struct {
	ImageID          string `json:"image_id"`
	OriginalFilename string `json:"original_filename"`
}

// JobSubmission acknowledges a submitted style-mixing job.
type JobSubmission struct {
	JobID    string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Message  string    `json:"message"`
	NumSeeds int       `json:"num_seeds"`
}

// JobState is one poll result.
type JobState struct {
	Status   JobStatus      `json:"status"`
	Message  string         `json:"message"`
	Progress float64        `json:"progress"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}
