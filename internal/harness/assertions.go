package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/bulletml/internal/sim"
)

// DefaultTolerance is used by position assertions that leave tolerance unset.
const DefaultTolerance = 1e-6

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func check(r *Result, a Assertion) error {
	switch a.Type {
	case AssertFireCount:
		return assertFireCount(r, a)
	case AssertVanishedAt:
		return assertVanishedAt(r, a)
	case AssertAliveCount:
		return assertAliveCount(r, a)
	case AssertNoErrors:
		return assertNoErrors(r)
	case AssertErrorCode:
		return assertErrorCode(r, a)
	case AssertPosition:
		return assertPosition(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertFireCount counts fire events in [From, To]. To = 0 is unbounded.
func assertFireCount(r *Result, a Assertion) error {
	count := 0
	for _, ev := range r.Events {
		if ev.Kind != sim.EventFire || ev.Frame < a.From {
			continue
		}
		if a.To != 0 && ev.Frame > a.To {
			continue
		}
		count++
	}

	if count != *a.Count {
		return &AssertionError{
			Type:     AssertFireCount,
			Expected: fmt.Sprintf("%d fires%s", *a.Count, frameRange(a.From, a.To)),
			Actual:   fmt.Sprintf("%d fires", count),
		}
	}
	return nil
}

func frameRange(from, to int) string {
	switch {
	case from == 0 && to == 0:
		return ""
	case to == 0:
		return fmt.Sprintf(" from frame %d", from)
	default:
		return fmt.Sprintf(" in frames %d..%d", from, to)
	}
}

// assertVanishedAt checks the frame of the bullet's vanish event. The root
// is the bullet of the first spawn event.
func assertVanishedAt(r *Result, a Assertion) error {
	id := a.Bullet
	if id == "" {
		id = rootID(r.Events)
	}

	for _, ev := range r.Events {
		if ev.BulletID != id || ev.Kind != sim.EventVanish {
			continue
		}
		if ev.Frame != a.Frame {
			return &AssertionError{
				Type:     AssertVanishedAt,
				Expected: fmt.Sprintf("%s to vanish at frame %d", id, a.Frame),
				Actual:   fmt.Sprintf("vanished at frame %d", ev.Frame),
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertVanishedAt,
		Expected: fmt.Sprintf("%s to vanish at frame %d", id, a.Frame),
		Actual:   "no vanish event",
	}
}

func rootID(events []sim.Event) string {
	for _, ev := range events {
		if ev.Kind == sim.EventSpawn {
			return ev.BulletID
		}
	}
	return ""
}

func assertAliveCount(r *Result, a Assertion) error {
	n, ok := r.AliveAt(a.Frame)
	if !ok {
		return &AssertionError{
			Type:     AssertAliveCount,
			Expected: fmt.Sprintf("%d alive after frame %d", *a.Count, a.Frame),
			Actual:   fmt.Sprintf("run ended after frame %d", len(r.Alive)-1),
		}
	}
	if n != *a.Count {
		return &AssertionError{
			Type:     AssertAliveCount,
			Expected: fmt.Sprintf("%d alive after frame %d", *a.Count, a.Frame),
			Actual:   fmt.Sprintf("%d alive", n),
		}
	}
	return nil
}

func assertNoErrors(r *Result) error {
	for _, ev := range r.Events {
		if ev.Kind == sim.EventError {
			return &AssertionError{
				Type:     AssertNoErrors,
				Expected: "no runtime errors",
				Actual:   fmt.Sprintf("%s at frame %d: %s", ev.BulletID, ev.Frame, ev.Message),
			}
		}
	}
	return nil
}

func assertErrorCode(r *Result, a Assertion) error {
	var seen []string
	for _, ev := range r.Events {
		if ev.Kind != sim.EventError {
			continue
		}
		if ev.Code == a.Code {
			return nil
		}
		seen = append(seen, ev.Code)
	}

	actual := "no runtime errors"
	if len(seen) > 0 {
		actual = "codes " + strings.Join(seen, ", ")
	}
	return &AssertionError{
		Type:     AssertErrorCode,
		Expected: fmt.Sprintf("a runtime error with code %s", a.Code),
		Actual:   actual,
	}
}

func assertPosition(r *Result, a Assertion) error {
	tol := a.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	expected := fmt.Sprintf("%s at (%s, %s) after frame %d",
		a.Bullet, sim.FormatFloat(a.X), sim.FormatFloat(a.Y), a.Frame)

	p, ok := r.Positions[a.Frame][a.Bullet]
	if !ok {
		return &AssertionError{
			Type:     AssertPosition,
			Expected: expected,
			Actual:   "bullet not alive",
		}
	}
	if math.Abs(p.X-a.X) > tol || math.Abs(p.Y-a.Y) > tol {
		return &AssertionError{
			Type:     AssertPosition,
			Expected: expected,
			Actual:   fmt.Sprintf("(%s, %s)", sim.FormatFloat(p.X), sim.FormatFloat(p.Y)),
		}
	}
	return nil
}
