package event

import (
	"image"
	"time"

	"github.com/google/uuid"
)

type Event interface {
	Message() string
	Image() image.Image
	OccurredAt() time.Time
	Supervisor() string
}

type BaseEvent struct {
	message    string
	image      image.Image
	occurredAt time.Time
	supervisor string
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) Image() image.Image {
	return b.image
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func (b BaseEvent) Supervisor() string {
	return b.supervisor
}

func WithScreenshot(supervisor string, message string, img image.Image) BaseEvent {
	return BaseEvent{
		message:    message,
		image:      img,
		occurredAt: time.Now(),
		supervisor: supervisor,
	}
}

func Text(supervisor string, message string) BaseEvent {
	return BaseEvent{
		message:    message,
		occurredAt: time.Now(),
		supervisor: supervisor,
	}
}

type ResearchReceivedEvent struct {
	BaseEvent
	CycleID uuid.UUID
	Slot    int
}

func ResearchReceived(be BaseEvent, cycleID uuid.UUID, slot int) ResearchReceivedEvent {
	return ResearchReceivedEvent{BaseEvent: be, CycleID: cycleID, Slot: slot}
}

type ResearchStartedEvent struct {
	BaseEvent
	CycleID uuid.UUID
	Slot    int
}

func ResearchStarted(be BaseEvent, cycleID uuid.UUID, slot int) ResearchStartedEvent {
	return ResearchStartedEvent{BaseEvent: be, CycleID: cycleID, Slot: slot}
}

type ResearchResetEvent struct {
	BaseEvent
	CycleID uuid.UUID
}

func ResearchReset(be BaseEvent, cycleID uuid.UUID) ResearchResetEvent {
	return ResearchResetEvent{BaseEvent: be, CycleID: cycleID}
}

type ResearchCycleFinishedEvent struct {
	BaseEvent
	CycleID  uuid.UUID
	Attempts int
	Finished int // slot whose reward was claimed, -1 if none
}

func ResearchCycleFinished(be BaseEvent, cycleID uuid.UUID, attempts, finished int) ResearchCycleFinishedEvent {
	return ResearchCycleFinishedEvent{BaseEvent: be, CycleID: cycleID, Attempts: attempts, Finished: finished}
}

type CheckFailedEvent struct {
	BaseEvent
	Err string
}

func CheckFailed(be BaseEvent, err error) CheckFailedEvent {
	return CheckFailedEvent{BaseEvent: be, Err: err.Error()}
}

type SupervisorPausedEvent struct {
	BaseEvent
	Paused bool
}

func SupervisorPaused(be BaseEvent, paused bool) SupervisorPausedEvent {
	return SupervisorPausedEvent{BaseEvent: be, Paused: paused}
}
