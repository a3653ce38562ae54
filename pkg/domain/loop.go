package domain

import (
	"errors"
	"fmt"
)

type LoopType string

const (
	// projects OpsEvents on CANs into CAN history.
	CANHistoryProjection LoopType = "can_history_projection"
)

// NOTE: we define them here, because "we have loops, they are like this" is a part of
// the model of OPS. Loops keep their cursors in the database.

func (lt LoopType) String() string {
	return string(lt)
}

func (lt LoopType) IsKnown() bool {
	switch lt {
	case CANHistoryProjection:
		return true
	default:
		return false
	}
}

func AsLoopType(s string) (LoopType, error) {
	l := LoopType(s)
	if l.IsKnown() {
		return l, nil
	}
	return l, fmt.Errorf(`%w: "%s"`, ErrUnknownLoopType, s)
}

var ErrUnknownLoopType = errors.New("unknown loop type")
