package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_Count(t *testing.T) {
	tests := []struct {
		duration, rows, cols int
	}{
		{0, 1, 1},
		{1, 6, 3},
		{1437, 6, 3},
		{7, 4, 4},
		{86400, 10, 10},
	}
	for _, tt := range tests {
		got := Schedule(tt.duration, tt.rows, tt.cols, 60)
		assert.Len(t, got, tt.rows*tt.cols, "duration=%d grid=%dx%d", tt.duration, tt.rows, tt.cols)
	}
}

func TestSchedule_RowMajorCells(t *testing.T) {
	got := Schedule(600, 2, 3, 0)
	require.Len(t, got, 6)
	for i, ts := range got {
		assert.Equal(t, i, ts.Index)
		assert.Equal(t, i/3, ts.Row)
		assert.Equal(t, i%3, ts.Col)
	}
}

func TestSchedule_Values(t *testing.T) {
	got := Schedule(100, 2, 2, 60)
	secs := make([]int, len(got))
	for i, ts := range got {
		secs[i] = ts.Seconds
	}
	assert.Equal(t, []int{60, 25, 50, 75}, secs)
}

func TestSchedule_Floors(t *testing.T) {
	// 10*i/3 -> 0, 3, 6
	got := Schedule(10, 1, 3, 0)
	assert.Equal(t, 3, got[1].Seconds)
	assert.Equal(t, 6, got[2].Seconds)
}

func TestSchedule_ZeroDuration(t *testing.T) {
	got := Schedule(0, 6, 3, 60)
	require.Len(t, got, 18)
	assert.Equal(t, 60, got[0].Seconds)
	for _, ts := range got[1:] {
		assert.Equal(t, 0, ts.Seconds)
	}
}

func TestSchedule_MonotonicAfterFirst(t *testing.T) {
	for _, d := range []int{0, 1, 59, 3600, 5400, 99999} {
		got := Schedule(d, 6, 3, 60)
		for i := 2; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i].Seconds, got[i-1].Seconds, "duration %d index %d", d, i)
		}
		for _, ts := range got[1:] {
			assert.LessOrEqual(t, ts.Seconds, d)
		}
	}
}

func TestSchedule_OffsetOnlyOnFirst(t *testing.T) {
	without := Schedule(1800, 3, 3, 0)
	with := Schedule(1800, 3, 3, 60)
	assert.Equal(t, without[0].Seconds+60, with[0].Seconds)
	for i := 1; i < len(with); i++ {
		assert.Equal(t, without[i].Seconds, with[i].Seconds)
	}
}

func TestSchedule_EmptyGrid(t *testing.T) {
	assert.Empty(t, Schedule(100, 0, 3, 60))
	assert.Empty(t, Schedule(100, 3, 0, 60))
}

func TestThumbHeight(t *testing.T) {
	tests := []struct {
		name          string
		tw, w, h, exp int
	}{
		{"1080p", 360, 1920, 1080, 203},
		{"4:3", 360, 640, 480, 270},
		{"NTSC DVD", 360, 720, 480, 240},
		{"portrait", 360, 1080, 1920, 640},
		{"rounds half up", 3, 2, 1, 2},
		{"floor of 1", 360, 100000, 1, 1},
		{"bad input", 360, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, ThumbHeight(tt.tw, tt.w, tt.h))
		})
	}
}

func TestThumbHeight_AspectWithinOnePixel(t *testing.T) {
	for _, dims := range [][2]int{{1920, 1080}, {1280, 720}, {720, 576}, {853, 480}} {
		w, h := dims[0], dims[1]
		th := ThumbHeight(360, w, h)
		exact := 360 * float64(h) / float64(w)
		assert.InDelta(t, exact, float64(th), 0.5)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{0, "0:00:00"},
		{59, "0:00:59"},
		{60, "0:01:00"},
		{3599, "0:59:59"},
		{3600, "1:00:00"},
		{5025, "1:23:45"},
		{90000, "25:00:00"},
		{-5, "0:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Timestamp{Seconds: tt.sec}.Label())
	}
}
