// Package templates holds the news page components.
//
// Components are written in news.templ; run `templ generate` after editing it.
package templates

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/newsdesk/internal/article"
)

// Messages shown in place of the article list.
const (
	MsgFailed    = "Failed to retrieve news. Please try refreshing."
	MsgEmpty     = "No news articles found."
	MsgNoSummary = "No summary available."
)

// State selects what the news column shows.
type State int

const (
	StateLoading State = iota
	StateFailed
	StateEmpty
	StateReady
)

// PageData is everything the news page renders.
type PageData struct {
	Title       string
	State       State
	Articles    []article.Article
	ReloadAfter time.Duration // meta refresh interval, 0 disables
	UpdatedAt   time.Time
}

func (d PageData) title() string {
	if d.Title == "" {
		return "News"
	}
	return d.Title
}

// reloadContent is the meta refresh value, or "" when reloading is off.
func (d PageData) reloadContent() string {
	secs := int(d.ReloadAfter.Seconds())
	if secs <= 0 {
		return ""
	}
	return strconv.Itoa(secs)
}

func (d PageData) updated() string {
	return d.UpdatedAt.Format(time.Kitchen)
}
