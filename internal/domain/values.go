package domain

import (
	"fmt"
	"strings"
)

// InstanceStatus represents the current state of a task instance.
// Value object - immutable string enum.
type InstanceStatus string

const (
	StatusPending    InstanceStatus = "PENDING"
	StatusInProgress InstanceStatus = "IN_PROGRESS"
	StatusOverdue    InstanceStatus = "OVERDUE"
	StatusDone       InstanceStatus = "DONE"
	StatusMissed     InstanceStatus = "MISSED"
)

// NewInstanceStatus validates and creates an InstanceStatus.
func NewInstanceStatus(s string) (InstanceStatus, error) {
	status := InstanceStatus(strings.ToUpper(s))

	switch status {
	case StatusPending, StatusInProgress, StatusOverdue,
		StatusDone, StatusMissed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidInstanceStatus, s)
	}
}

// Settled reports whether the status is terminal for automatic transitions.
// Done instances and missed (locked) instances are only changed by explicit
// administrative actions.
func (s InstanceStatus) Settled() bool {
	return s == StatusDone || s == StatusMissed
}

// FrequencyFamily represents one of the structurally distinct recurrence
// behaviors. Value object - immutable string enum.
type FrequencyFamily string

const (
	FamilyOnceOff      FrequencyFamily = "once_off"
	FamilyEveryDay     FrequencyFamily = "every_day"
	FamilyOnceWeekly   FrequencyFamily = "once_weekly"
	FamilyWeekday      FrequencyFamily = "weekday"
	FamilyOnceMonthly  FrequencyFamily = "once_monthly"
	FamilyStartOfMonth FrequencyFamily = "start_of_month"
	FamilyEndOfMonth   FrequencyFamily = "end_of_month"
)
