package domain

// ImageAsset is one image extracted from a style-mixing result archive.
type ImageAsset struct {
	Filename string
	Image    ImagePayload
}
