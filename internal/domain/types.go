package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskDefinition is an admin-authored checklist task template. The engine
// only reads definitions; the CRUD layer that persists them lives outside
// this module.
type TaskDefinition struct {
	ID     string
	Title  string
	Active bool

	// A task may recur under more than one frequency at once; each variant
	// produces its own independent instances.
	Frequencies []Frequency

	// DueTime is the wall-clock deadline on the due date (default 23:59).
	DueTime TimeOfDay

	// PublishAt suppresses instances before this date (nil = no bound).
	PublishAt *time.Time

	// DueDate is the fixed deadline for once-off tasks. Ignored by every
	// recurring family.
	DueDate *time.Time

	// StartDate and EndDate bound the validity window for recurring
	// generation (nil = unbounded on that side).
	StartDate *time.Time
	EndDate   *time.Time
}

// TaskInstance is one materialized occurrence of a task for a calendar date.
// Instances are immutable artifacts of a generation pass; the status fields
// are advanced by the status engine after persistence.
type TaskInstance struct {
	// Key is the deterministic identity of the occurrence, shared by the
	// original appearance and every carry rendering of it.
	Key string

	TaskID    string
	Frequency Frequency

	AppearanceDate time.Time
	DueDate        time.Time
	DueTime        TimeOfDay

	Status InstanceStatus
	Locked bool

	// IsCarry marks a later-date rendering of an occurrence that already
	// appeared; OriginalAppearanceDate then holds the first appearance.
	IsCarry                bool
	OriginalAppearanceDate time.Time
}

// Holiday is one non-business date in the pharmacy calendar.
type Holiday struct {
	Date time.Time
	Name string
}

// instanceNamespace scopes deterministic instance keys. Changing it would
// re-key every occurrence, so it is fixed for the life of the schema.
var instanceNamespace = uuid.MustParse("9f2c1b34-40de-4e9a-8b6c-55702f1e6a10")

// InstanceKey derives the deterministic identity of an occurrence from the
// task, the frequency variant and the occurrence's first appearance date.
// Regenerating the same occurrence always yields the same key, which is what
// makes skip-if-exists persistence idempotent.
func InstanceKey(taskID string, freq Frequency, firstAppearance time.Time) string {
	name := fmt.Sprintf("%s|%s|%s", taskID, freq.Code(), DateOf(firstAppearance).Format(DateLayout))
	return uuid.NewSHA1(instanceNamespace, []byte(name)).String()
}
