package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/newsdesk/internal/article"
	"github.com/JonMunkholm/newsdesk/internal/feed"
	"github.com/JonMunkholm/newsdesk/internal/fetch"
	"github.com/JonMunkholm/newsdesk/internal/logging"
	"github.com/JonMunkholm/newsdesk/internal/poller"
	"github.com/JonMunkholm/newsdesk/internal/web/templates"
)

// loadingReload is how soon the page reloads itself while the first fetch runs.
const loadingReload = 5 * time.Second

// StatusResponse is the body of /api/status and /api/refresh.
type StatusResponse struct {
	poller.Status
	SnapshotID string            `json:"snapshot_id,omitempty"`
	FetchedAt  time.Time         `json:"fetched_at,omitempty"`
	Format     fetch.Format      `json:"format,omitempty"`
	Records    int               `json:"records"`
	Dropped    int               `json:"dropped"`
	Skipped    []feed.SkippedRow `json:"skipped"`
}

func (s *Server) statusResponse() StatusResponse {
	resp := StatusResponse{
		Status:  s.source.Status(),
		Skipped: []feed.SkippedRow{},
	}
	if snap := s.source.Snapshot(); snap != nil {
		resp.SnapshotID = snap.ID
		resp.FetchedAt = snap.FetchedAt
		resp.Format = snap.Format
		resp.Records = len(snap.Records)
		resp.Dropped = snap.Dropped
		if snap.Skipped != nil {
			resp.Skipped = snap.Skipped
		}
	}
	return resp
}

func (s *Server) articles(snap *poller.Snapshot) []article.Article {
	return s.opts.Builder.Build(snap.Records)
}

// handleIndex renders the news page. A failed refresh after a successful one
// keeps showing the last good articles.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := templates.PageData{
		Title:       s.opts.Title,
		ReloadAfter: s.source.Status().Interval,
	}

	snap := s.source.Snapshot()
	switch {
	case snap == nil && s.source.Status().LastError != "":
		data.State = templates.StateFailed
	case snap == nil:
		data.State = templates.StateLoading
		data.ReloadAfter = loadingReload
	default:
		data.Articles = s.articles(snap)
		data.UpdatedAt = snap.FetchedAt.In(s.opts.Location)
		data.State = templates.StateReady
		if len(data.Articles) == 0 {
			data.State = templates.StateEmpty
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render news page", "error", err)
	}
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Latest()
	if err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.articles(snap))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statusResponse())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	logger.Info("manual refresh requested")

	if _, err := s.source.Refresh(r.Context()); err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, s.statusResponse())
}

// handleRefreshForm serves the page's refresh button.
func (s *Server) handleRefreshForm(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).Info("manual refresh requested", "source", "form")

	if _, err := s.source.Refresh(r.Context()); err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
