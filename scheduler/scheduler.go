// Package scheduler задает темп повторной доставки: для n-й доставки
// возвращает смещение от начала прогона, раньше которого ее нельзя отправлять.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"
)

type Scheduler interface {
	Next(n int64) (at time.Duration, ok bool)
}

// A Constant spaces deliveries evenly.
type Constant struct {
	interval time.Duration
}

func NewConstant(perSecond uint64) (Constant, error) {
	if perSecond == 0 {
		return Constant{}, fmt.Errorf("rate must be positive")
	}
	return Constant{time.Second / time.Duration(perSecond)}, nil
}

func (c Constant) Next(n int64) (time.Duration, bool) {
	return time.Duration(n) * c.interval, true
}

type Unlimited struct{}

func (Unlimited) Next(int64) (time.Duration, bool) { return 0, true }

// Ramp linearly changes the rate from one value to another over d and stops there.
type Ramp struct {
	from, a float64
	limit   time.Duration
}

func NewRamp(from, to float64, d time.Duration) (Ramp, error) {
	if from <= 0 || to <= 0 || d <= 0 {
		return Ramp{}, fmt.Errorf("ramp needs positive rates and duration")
	}
	return Ramp{from: from, a: (to - from) / d.Seconds(), limit: d}, nil
}

// Next решает a/2*t^2 + from*t = n относительно t.
func (r Ramp) Next(n int64) (time.Duration, bool) {
	var sec float64
	if r.a == 0 {
		sec = float64(n) / r.from
	} else {
		disc := 2*r.a*float64(n) + r.from*r.from
		if disc < 0 {
			return 0, false
		}
		sec = (math.Sqrt(disc) - r.from) / r.a
	}
	at := time.Duration(sec * float64(time.Second))
	return at, at <= r.limit
}

// Wait спит до момента n-й доставки. Возвращает false, если расписание
// исчерпано или ctx отменен.
func Wait(ctx context.Context, s Scheduler, start time.Time, n int64) bool {
	at, ok := s.Next(n)
	if !ok {
		return false
	}
	d := at - time.Since(start)
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
