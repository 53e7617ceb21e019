package domain

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultImageMIME is assumed for bare base64 payloads without a declared type.
const DefaultImageMIME = "image/png"

// ImagePayload is either a URL or base64 bytes paired with a MIME type.
// Consumers treat the normalized String form as opaque.
type ImagePayload struct {
	URL      string
	Base64   string
	MIMEType string
}

// ParseImagePayload interprets a displayable string: data URLs, absolute
// http(s) URLs, same-origin relative URLs, or bare base64 of DefaultImageMIME.
func ParseImagePayload(raw string) ImagePayload {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImagePayload{}
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "data:"):
		meta, data, ok := strings.Cut(raw[len("data:"):], ",")
		if !ok {
			return ImagePayload{URL: raw}
		}
		mime := strings.TrimSuffix(meta, ";base64")
		if mime == "" {
			mime = DefaultImageMIME
		}
		return ImagePayload{Base64: data, MIMEType: mime}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(raw, "/"):
		return ImagePayload{URL: raw}
	default:
		return ImagePayload{Base64: raw, MIMEType: DefaultImageMIME}
	}
}

// ImageFromBytes encodes raw image bytes, sniffing the MIME type when mime is empty.
func ImageFromBytes(data []byte, mime string) ImagePayload {
	mime = strings.TrimSpace(mime)
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return ImagePayload{Base64: base64.StdEncoding.EncodeToString(data), MIMEType: mime}
}

// IsZero reports whether the payload holds no image.
func (p ImagePayload) IsZero() bool {
	return p.URL == "" && p.Base64 == ""
}

// String normalizes the payload to a URL or a data URL.
func (p ImagePayload) String() string {
	if p.URL != "" {
		return p.URL
	}
	if p.Base64 == "" {
		return ""
	}
	mime := p.MIMEType
	if mime == "" {
		mime = DefaultImageMIME
	}
	return "data:" + mime + ";base64," + p.Base64
}

// Bytes decodes inline payloads. URL payloads return ErrInvalidState since
// they must be fetched.
func (p ImagePayload) Bytes() ([]byte, error) {
	if p.Base64 == "" {
		return nil, ErrInvalidState
	}
	data, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, Invalid("image", "malformed base64 data")
	}
	return data, nil
}

// Extension returns a file extension matching the MIME type.
func (p ImagePayload) Extension() string {
	switch p.MIMEType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}

func (p ImagePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *ImagePayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParseImagePayload(s)
	return nil
}
