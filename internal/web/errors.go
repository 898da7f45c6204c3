package web

// errors.go maps feed failures to coded user messages.
//
// Codes:
//
//	FEED001 - Upstream status: the sheet host answered with a non-2xx status
//	FEED002 - Too large: the sheet body exceeded FEED_MAX_BODY_SIZE
//	FEED003 - Malformed: the body could not be decoded as the detected format
//	FEED004 - Timeout: the sheet host did not answer in time
//	FEED005 - No data: no refresh has succeeded yet
//	RATE001 - Rate limited: too many requests from one client
//	GEN001  - Unknown: anything else; check the server log by request id
//
// Sentinel errors are matched with errors.Is first. Messages from wrapped
// library errors that carry no sentinel fall back to case-insensitive
// substring patterns; the first match wins.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/newsdesk/internal/feed"
	"github.com/JonMunkholm/newsdesk/internal/fetch"
	"github.com/JonMunkholm/newsdesk/internal/poller"
	"github.com/JonMunkholm/newsdesk/internal/web/templates"
)

// errRateLimited is reported by the rate limiter.
var errRateLimited = errors.New("rate limit exceeded")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUpstream = UserMessage{
		Message: "The news source returned an error",
		Action:  "Check that the sheet is still published to the web",
		Code:    "FEED001",
	}
	msgTooLarge = UserMessage{
		Message: "The news source is larger than the configured limit",
		Action:  "Trim the sheet or raise FEED_MAX_BODY_SIZE",
		Code:    "FEED002",
	}
	msgMalformed = UserMessage{
		Message: "The news source could not be read",
		Action:  "Check the sheet export format",
		Code:    "FEED003",
	}
	msgTimeout = UserMessage{
		Message: "The news source did not respond in time",
		Action:  "Please try refreshing in a few moments",
		Code:    "FEED004",
	}
	msgNoData = UserMessage{
		Message: "News has not been loaded yet",
		Action:  "Please try refreshing",
		Code:    "FEED005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "GEN001",
	}
)

var sentinels = []struct {
	target error
	msg    UserMessage
}{
	{errRateLimited, msgRateLimited},
	{fetch.ErrUnexpectedStatus, msgUpstream},
	{feed.ErrInputTooLarge, msgTooLarge},
	{context.DeadlineExceeded, msgTimeout},
}

var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"timeout", msgTimeout},
	{"deadline exceeded", msgTimeout},
	{"decode", msgMalformed},
	{"unexpected eof", msgMalformed},
	{"invalid character", msgMalformed},
	{"failed to detect feed type", msgMalformed},
}

// MapError converts a technical error to a user-friendly message.
// When err wraps both poller.ErrNoSnapshot and the failure behind it, the
// failure's code is reported. A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.Is(err, poller.ErrNoSnapshot) {
		return msgNoData
	}
	return defaultMessage
}

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes a coded message in the
// format the client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	switch {
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	case wantsHTML(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
