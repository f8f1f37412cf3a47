// Package types - Request, identity and quota types
package types

import (
	"strings"
	"unicode/utf8"
)

// MinContentLength is the fewest characters of pricing text worth analyzing
const MinContentLength = 50

// DefaultLanguage is used when no locale is known
const DefaultLanguage = "en"

// SupportedLanguages are the locales the backend answers in
var SupportedLanguages = []string{"en", "zh", "ja", "de", "fr", "ko", "es"}

// DeviceID is the opaque per-visitor token used to meter the free quota
type DeviceID string

// String returns the string representation
func (d DeviceID) String() string {
	return string(d)
}

// AnalysisRequest is what the client sends to the backend
type AnalysisRequest struct {
	// Content is the pricing page text
	Content string `json:"content"`

	// ToolName is the optional tool name; empty is sent as null
	ToolName string `json:"tool_name"`

	// Language is the short locale code for the answer
	Language string `json:"language"`
}

// ContentLength counts characters, not bytes
func ContentLength(content string) int {
	return utf8.RuneCountInString(content)
}

// MeetsMinimumLength reports whether content is long enough to submit
func MeetsMinimumLength(content string) bool {
	return ContentLength(content) >= MinContentLength
}

// NormalizeLanguage reduces a locale tag to its primary subtag ("en-US" -> "en")
func NormalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ToLower(tag)
	if tag == "" {
		return DefaultLanguage
	}
	return tag
}

// IsSupportedLanguage reports whether the backend is known to answer in lang
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// TrialStatus is the server's view of the free quota for a device.
// Only Remaining > 0 is meaningful to the client.
type TrialStatus struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// HasRemaining reports whether free analyses are left
func (t TrialStatus) HasRemaining() bool {
	return t.Remaining > 0
}
