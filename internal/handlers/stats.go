package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalUsers   int64  `json:"total_users"`
	TotalEmails  int64  `json:"total_emails"`
	LastActivity string `json:"last_activity"`
}

// Stats returns platform totals for the dashboard.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.db.CountUsers(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count users")
		return
	}

	totalEmails, err := h.db.CountEmails(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count emails")
		return
	}

	lastActivityTime, err := h.db.GetMostRecentActivity(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to get last activity")
		return
	}

	lastActivity := "no activity yet"
	if lastActivityTime != nil {
		lastActivity = formatTimeAgo(*lastActivityTime)
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:   totalUsers,
		TotalEmails:  totalEmails,
		LastActivity: lastActivity,
	})
}

// formatTimeAgo formats a time as a human-readable "X ago" string.
func formatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return strconv.Itoa(mins) + " minutes ago"
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return strconv.Itoa(hours) + " hours ago"
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return strconv.Itoa(days) + " days ago"
	}
}
