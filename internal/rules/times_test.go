package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"19:43", "19:45"},
		{"19:53", "20:00"},
		{"19:10", "19:00"},
		{"09:07", "09:00"},
		{"09:08", "09:15"},
		{"09:22", "09:15"},
		{"09:23", "09:30"},
		{"09:37", "09:30"},
		{"09:38", "09:45"},
		{"09:52", "09:45"},
		{"09:55", "10:00"},
		{"23:58", "00:00"},
		{"10:00", "10:00"},
		{"10:15", "10:15"},
		{"10.45", "10:45"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundTime(tc.in))
		})
	}
}

func TestRoundTime_AMPM(t *testing.T) {
	assert.Equal(t, "19:45", RoundTime("7:43 pm"))
	assert.Equal(t, "07:45", RoundTime("7:43 am"))
	assert.Equal(t, "00:00", RoundTime("12:05 am"))
	assert.Equal(t, "12:00", RoundTime("12:05 pm"))
}

func TestRoundTime_Idempotent(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 15, 30, 45} {
			in := fmt.Sprintf("%02d:%02d", hour, minute)
			assert.Equal(t, in, RoundTime(in))
		}
	}
}

func TestRoundTime_Unparseable(t *testing.T) {
	assert.Equal(t, "after lunch", RoundTime("after lunch"))
	assert.Equal(t, "", RoundTime(""))
	assert.Equal(t, "NA", RoundTime("NA"))
}
