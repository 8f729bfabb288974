package dto

import (
	"time"

	"github.com/noah-isme/teamhub-go-api/internal/models"
)

// ActivityDraft is the payload posted to the remote activities table.
type ActivityDraft struct {
	User   string `json:"user_name"`
	Action string `json:"action"`
	Item   string `json:"item,omitempty"`
	Avatar string `json:"avatar"`
}

// ActivityResponse is an activity with its rendered display time.
type ActivityResponse struct {
	models.Activity
	DisplayTime string `json:"display_time"`
}

// NewActivityResponseSlice renders activities relative to now.
func NewActivityResponseSlice(activities []models.Activity, now time.Time) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, ActivityResponse{
			Activity:    activity,
			DisplayTime: activity.DisplayTime(now),
		})
	}
	return responses
}
