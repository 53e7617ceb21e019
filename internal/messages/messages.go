// Package messages holds the user-facing text shown in the error banner.
package messages

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
)

// Key identifies a catalog message independent of language.
type Key string

const (
	KeyNetwork            Key = "network"
	KeyUnknown            Key = "unknown"
	KeyPromptRequired     Key = "prompt_required"
	KeyPromptTooLong      Key = "prompt_too_long"
	KeyInitialRequired    Key = "initial_required"
	KeyFormat             Key = "format"
	KeyBusy               Key = "busy"
	KeyConfirmation       Key = "confirmation"
	KeyBackendUnavailable Key = "backend_unavailable"
)

var supported = []language.Tag{language.Korean, language.English}

var matcher = language.NewMatcher(supported)

var statusText = map[language.Tag]map[int]string{
	language.Korean: {
		400: "잘못된 요청입니다.",
		401: "인증이 필요합니다.",
		403: "접근이 거부되었습니다.",
		404: "요청한 리소스를 찾을 수 없습니다.",
		429: "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		500: "서버 오류가 발생했습니다.",
		503: "서비스가 일시적으로 사용할 수 없습니다.",
	},
	language.English: {
		400: "The request was invalid.",
		401: "Authentication is required.",
		403: "Access was denied.",
		404: "The requested resource could not be found.",
		429: "Too many requests. Please try again shortly.",
		500: "The server encountered an error.",
		503: "The service is temporarily unavailable.",
	},
}

var text = map[language.Tag]map[Key]string{
	language.Korean: {
		KeyNetwork:            "서버에 연결할 수 없습니다. 네트워크 연결을 확인해주세요.",
		KeyUnknown:            "알 수 없는 오류가 발생했습니다.",
		KeyPromptRequired:     "프롬프트를 입력해주세요.",
		KeyPromptTooLong:      "프롬프트는 %d자를 초과할 수 없습니다.",
		KeyInitialRequired:    "먼저 초기 이미지를 생성해주세요.",
		KeyFormat:             "잘못된 형식의 파일입니다.",
		KeyBusy:               "이미 요청을 처리하고 있습니다.",
		KeyConfirmation:       "확인이 필요합니다.",
		KeyBackendUnavailable: "서버에 연결할 수 없습니다. 잠시 후 다시 시도해주세요.",
	},
	language.English: {
		KeyNetwork:            "Cannot reach the server. Please check your network connection.",
		KeyUnknown:            "An unknown error occurred.",
		KeyPromptRequired:     "Please enter a prompt.",
		KeyPromptTooLong:      "The prompt cannot exceed %d characters.",
		KeyInitialRequired:    "Generate an initial image first.",
		KeyFormat:             "The file has an invalid format.",
		KeyBusy:               "A request is already in progress.",
		KeyConfirmation:       "Confirmation is required.",
		KeyBackendUnavailable: "Cannot reach the server. Please try again later.",
	},
}

// Match picks the closest supported language for the given preferences,
// falling back to Korean.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

func base(tag language.Tag) language.Tag {
	for _, s := range supported {
		if s == tag {
			return s
		}
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// Text returns the catalog text for key.
func Text(tag language.Tag, key Key) string {
	if s, ok := text[base(tag)][key]; ok {
		return s
	}
	return text[language.Korean][KeyUnknown]
}

// Status returns the fixed message for an HTTP status, or the generic
// fallback when the status is not in the table.
func Status(tag language.Tag, status int) string {
	if s, ok := statusText[base(tag)][status]; ok {
		return s
	}
	return Text(tag, KeyUnknown)
}

// Describe turns an error from the core into banner text.
func Describe(tag language.Tag, err error) string {
	if err == nil {
		return ""
	}
	var se *domain.ServerError
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &se):
		return Status(tag, se.Status)
	case errors.Is(err, domain.ErrNetwork):
		return Text(tag, KeyNetwork)
	case errors.As(err, &ve):
		if ve.Field == "prompt" {
			if ve.Max > 0 {
				return fmt.Sprintf(Text(tag, KeyPromptTooLong), ve.Max)
			}
			return Text(tag, KeyPromptRequired)
		}
		return ve.Error()
	case errors.Is(err, domain.ErrInvalidState):
		return Text(tag, KeyInitialRequired)
	case errors.Is(err, domain.ErrFormat):
		return Text(tag, KeyFormat)
	case errors.Is(err, domain.ErrBusy):
		return Text(tag, KeyBusy)
	case errors.Is(err, domain.ErrConfirmationRequired):
		return Text(tag, KeyConfirmation)
	case errors.Is(err, domain.ErrNotFound):
		return Status(tag, 404)
	}
	return Text(tag, KeyUnknown)
}
