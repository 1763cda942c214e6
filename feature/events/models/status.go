package models

import "strings"

// Status is the closed scheduling status vocabulary of the remote.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCancelled   Status = "cancelled"
	StatusPostponed   Status = "postponed"
	StatusRescheduled Status = "rescheduled"
	StatusMovedOnline Status = "movedOnline"
)

var sourceStatuses = map[string]Status{
	"scheduled":     StatusScheduled,
	"cancelled":     StatusCancelled,
	"canceled":      StatusCancelled,
	"abgesagt":      StatusCancelled,
	"postponed":     StatusPostponed,
	"verschoben":    StatusPostponed,
	"rescheduled":   StatusRescheduled,
	"neuer termin":  StatusRescheduled,
	"movedonline":   StatusMovedOnline,
	"moved online":  StatusMovedOnline,
	"online":        StatusMovedOnline,
	"findet online": StatusMovedOnline,
}

// ParseStatus maps a source status label onto Status.
// Unknown labels are scheduled.
func ParseStatus(label string) Status {
	if s, ok := sourceStatuses[strings.ToLower(strings.TrimSpace(label))]; ok {
		return s
	}
	return StatusScheduled
}
