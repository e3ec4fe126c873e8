package models

import "time"

// TransitionEvent is the payload pushed to the notification sink after each
// committed transition. Delivery is best-effort; a sink failure never rolls
// back the transition that produced the event.
type TransitionEvent struct {
	AssetType     AssetType      `json:"assetType"`
	AssetCategory string         `json:"assetCategory"`
	Action        string         `json:"action"`
	ActionTime    time.Time      `json:"actionTime"`
	Fields        map[string]any `json:"fields,omitempty"`
}
