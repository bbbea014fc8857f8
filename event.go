// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"slices"
	"strconv"
)

// EventType identifies the kind of an [Event].
type EventType int

const (
	// EventDestroy asks the target to destroy itself, see [DestroyLater].
	EventDestroy EventType = iota

	EventPointerMove
	EventPointerScroll
	EventPointerButton
	EventPointerEnter
	EventPointerLeave
	EventPointerSwipeBegin
	EventPointerSwipeUpdate
	EventPointerSwipeEnd
	EventPointerPinchBegin
	EventPointerPinchUpdate
	EventPointerPinchEnd
	EventPointerHoldBegin
	EventPointerHoldEnd

	EventKeyboardKey
	EventKeyboardModifiers
	EventKeyboardEnter
	EventKeyboardLeave

	EventTouchMove
	EventTouchFrame
	EventTouchDown
	EventTouchUp
	EventTouchCancel

	EventWindowState
	EventWindowClose

	EventRender
	EventBake

	EventSceneChanged
	EventLayout

	EventVibrancy

	// EventUser is the first value available for application defined types.
	EventUser EventType = 1000
)

var eventTypeNames = map[EventType]string{
	EventDestroy:            `Destroy`,
	EventPointerMove:        `PointerMove`,
	EventPointerScroll:      `PointerScroll`,
	EventPointerButton:      `PointerButton`,
	EventPointerEnter:       `PointerEnter`,
	EventPointerLeave:       `PointerLeave`,
	EventPointerSwipeBegin:  `PointerSwipeBegin`,
	EventPointerSwipeUpdate: `PointerSwipeUpdate`,
	EventPointerSwipeEnd:    `PointerSwipeEnd`,
	EventPointerPinchBegin:  `PointerPinchBegin`,
	EventPointerPinchUpdate: `PointerPinchUpdate`,
	EventPointerPinchEnd:    `PointerPinchEnd`,
	EventPointerHoldBegin:   `PointerHoldBegin`,
	EventPointerHoldEnd:     `PointerHoldEnd`,
	EventKeyboardKey:        `KeyboardKey`,
	EventKeyboardModifiers:  `KeyboardModifiers`,
	EventKeyboardEnter:      `KeyboardEnter`,
	EventKeyboardLeave:      `KeyboardLeave`,
	EventTouchMove:          `TouchMove`,
	EventTouchFrame:         `TouchFrame`,
	EventTouchDown:          `TouchDown`,
	EventTouchUp:            `TouchUp`,
	EventTouchCancel:        `TouchCancel`,
	EventWindowState:        `WindowState`,
	EventWindowClose:        `WindowClose`,
	EventRender:             `Render`,
	EventBake:               `Bake`,
	EventSceneChanged:       `SceneChanged`,
	EventLayout:             `Layout`,
	EventVibrancy:           `Vibrancy`,
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	if t >= EventUser {
		return `User+` + strconv.Itoa(int(t-EventUser))
	}
	return `EventType(` + strconv.Itoa(int(t)) + `)`
}

// IsPointer reports whether t is one of the pointer event types.
func (t EventType) IsPointer() bool {
	return t >= EventPointerMove && t <= EventPointerHoldEnd
}

// Event is a typed message routed through [Loop.SendEvent] and
// [Loop.PostEvent]. The core never inspects Payload.
type Event struct {
	Payload  any
	UserData any
	typ      EventType
	serial   uint32
	accepted bool
}

// NewEvent returns an event of type t carrying payload, stamped with a fresh
// serial.
func NewEvent(t EventType, payload any) *Event {
	return &Event{typ: t, serial: NextSerial(), Payload: payload}
}

func (e *Event) Type() EventType { return e.typ }

func (e *Event) Serial() uint32 { return e.serial }

func (e *Event) SetSerial(serial uint32) { e.serial = serial }

// Is reports whether the event's type is any of types.
func (e *Event) Is(types ...EventType) bool { return slices.Contains(types, e.typ) }

func (e *Event) Accept() { e.accepted = true }

func (e *Event) Ignore() { e.accepted = false }

func (e *Event) IsAccepted() bool { return e.accepted }

// Clone returns a shallow copy of e.
func (e *Event) Clone() *Event {
	c := *e
	return &c
}
