package domain

// Stage distinguishes the two model catalogs.
type Stage string

const (
	StageInitial Stage = "initial"
	StageFinal   Stage = "final"
)

// Model describes one entry of a model catalog.
type Model struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Stage       Stage    `json:"stage"`
	Description string   `json:"description"`
	Features    []string `json:"features,omitempty"`
	// Tunable models accept StyleParams with transform requests.
	Tunable bool `json:"tunable"`
}

const (
	DefaultInitialModel = "Stable Diffusion 1.5"
	DefaultFinalModel   = "cycle-gan-turbo"
)

var initialModels = []Model{
	{ID: "Stable Diffusion 1.5", Label: "Stable Diffusion 1.5", Stage: StageInitial,
		Description: "Fast, stable base model", Features: []string{"fast generation", "stable output", "broad style coverage"}},
	{ID: "Stable Diffusion 3.5", Label: "Stable Diffusion 3.5", Stage: StageInitial,
		Description: "Higher quality images with finer detail", Features: []string{"high quality", "fine detail", "better composition"}},
}

var finalModels = []Model{
	{ID: "cycle-gan-turbo", Label: "Cycle GAN-turbo", Stage: StageFinal, Description: "Fast unpaired style transfer"},
	{ID: "cycle-gan", Label: "Cycle GAN", Stage: StageFinal, Description: "Unpaired style transfer"},
	{ID: "style-gan", Label: "Style GAN", Stage: StageFinal, Description: "Style-based generator", Tunable: true},
	{ID: "Disco GAN", Label: "Disco GAN", Stage: StageFinal,
		Description: "GAN specialised in style transfer", Features: []string{"fast style transfer", "varied styles", "stable output"}},
	{ID: "Style GAN-ada", Label: "Style GAN-ada", Stage: StageFinal, Tunable: true,
		Description: "Adaptive StyleGAN with fine-grained controls", Features: []string{"detailed parameters", "high quality", "adaptive transfer"}},
}

// Models returns a copy of the catalog for stage.
func Models(stage Stage) []Model {
	src := finalModels
	if stage == StageInitial {
		src = initialModels
	}
	out := make([]Model, len(src))
	copy(out, src)
	return out
}

// LookupModel finds id in the catalog for stage.
func LookupModel(stage Stage, id string) (Model, bool) {
	for _, m := range Models(stage) {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
