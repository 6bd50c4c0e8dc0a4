package sim

import (
	"strconv"

	"github.com/roach88/bulletml/internal/ir"
)

// TracePrecision is the number of decimals kept when events are encoded.
// Canonical JSON has no floats, so coordinates travel as fixed-point text.
const TracePrecision = 4

// FormatFloat renders v with TracePrecision decimals. Negative zero and
// values that round to it print as zero.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', TracePrecision, 64)
	if s == "-0.0000" {
		return "0.0000"
	}
	return s
}

// EventValue encodes ev for canonical JSON. Empty optional fields are left
// out.
func EventValue(ev Event) ir.Object {
	obj := ir.Object{
		"frame":     ir.Int(ev.Frame),
		"kind":      ir.String(ev.Kind),
		"bullet":    ir.String(ev.BulletID),
		"x":         ir.String(FormatFloat(ev.X)),
		"y":         ir.String(FormatFloat(ev.Y)),
		"direction": ir.String(FormatFloat(ev.Direction)),
		"speed":     ir.String(FormatFloat(ev.Speed)),
	}
	if ev.ParentID != "" {
		obj["parent"] = ir.String(ev.ParentID)
	}
	if ev.Code != "" {
		obj["code"] = ir.String(ev.Code)
	}
	if ev.Message != "" {
		obj["message"] = ir.String(ev.Message)
	}
	return obj
}

// TraceJSON encodes events as a canonical JSON array.
func TraceJSON(events []Event) ([]byte, error) {
	arr := make(ir.Array, len(events))
	for i, ev := range events {
		arr[i] = EventValue(ev)
	}
	return ir.MarshalCanonical(arr)
}

// TraceHash identifies an event stream by content.
func TraceHash(events []Event) (string, error) {
	data, err := TraceJSON(events)
	if err != nil {
		return "", err
	}
	return ir.HashWithDomain(ir.DomainTrace, data), nil
}
