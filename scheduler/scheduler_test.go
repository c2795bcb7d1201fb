package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	_, err := NewConstant(0)
	a.Error(err)

	c, err := NewConstant(100)
	a.NoError(err)
	at, ok := c.Next(50)
	a.True(ok)
	a.Equal(500*time.Millisecond, at)
}

func TestRamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to float64
		n        int64
		want     time.Duration
		ok       bool
	}{
		{"flat", 10, 10, 50, 5 * time.Second, true},
		// 10/s -> 30/s за 10s: за первые 5s отправлено 10*5 + 2/2*25 = 75
		{"rising", 10, 30, 75, 5 * time.Second, true},
		// 30/s -> 10/s: за 5s отправлено 30*5 - 2/2*25 = 125
		{"falling", 30, 10, 125, 5 * time.Second, true},
		{"past the end", 10, 30, 1000, 0, false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			r, err := NewRamp(tc.from, tc.to, 10*time.Second)
			a.NoError(err)
			at, ok := r.Next(tc.n)
			a.Equal(tc.ok, ok)
			if tc.ok {
				a.InDelta(float64(tc.want), float64(at), float64(time.Millisecond))
			}
		})
	}

	_, err := NewRamp(0, 1, time.Second)
	assert.Error(t, err)
}

func TestWait(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	start := time.Now()
	a.True(Wait(context.Background(), Unlimited{}, start, 1000))

	c, _ := NewConstant(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.False(Wait(ctx, c, start, 3600))

	r, _ := NewRamp(1, 1, time.Second)
	a.False(Wait(context.Background(), r, start, 10))
}
