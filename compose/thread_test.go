package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadStartsSingle(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	assert.Equal(1, th.Len())
	assert.Equal(0, th.Active())
	assert.False(th.IsThread())
}

func TestThreadAddEntry(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	buf := &Entry{Text: "first"}

	i := th.AddEntry(buf)
	assert.Equal(1, i)
	assert.Equal(2, th.Len())
	assert.True(th.IsThread())
	assert.Equal("", buf.Text, "new active entry is blank")
	assert.Equal("first", th.Entry(0).Text, "buffer flushed into previous entry")
}

func TestThreadRemoveEntryInvariants(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	buf := &Entry{Text: "only"}

	// removing the only entry is a no-op
	assert.False(th.RemoveEntry(0, buf))
	assert.Equal(1, th.Len())
	assert.Equal("only", buf.Text)

	// out of bounds is a no-op
	th.AddEntry(buf)
	assert.False(th.RemoveEntry(5, buf))
	assert.False(th.RemoveEntry(-1, buf))
	assert.Equal(2, th.Len())
}

func TestThreadRemoveActiveEntryClampsAndLoads(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	buf := &Entry{Text: "a"}
	th.AddEntry(buf)
	buf.Text = "b"
	th.AddEntry(buf)
	buf.Text = "c" // active = 2

	assert.True(th.RemoveEntry(2, buf))
	assert.Equal(2, th.Len())
	assert.Equal(1, th.Active())
	assert.Equal("b", buf.Text, "buffer loads the entry that takes the removed slot")

	// dropping to one entry reverts to single state
	assert.True(th.RemoveEntry(1, buf))
	assert.False(th.IsThread())
	assert.Equal("a", buf.Text)
}

func TestThreadRemoveBeforeActiveShiftsIndex(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	buf := &Entry{Text: "a"}
	th.AddEntry(buf)
	buf.Text = "b" // active = 1

	assert.True(th.RemoveEntry(0, buf))
	assert.Equal(0, th.Active())
	assert.Equal("b", buf.Text, "buffer untouched when a non-active entry is removed")
}

func TestThreadSwitchTo(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	buf := &Entry{Text: "first"}
	th.AddEntry(buf)
	buf.Text = "second"

	assert.True(th.SwitchTo(0, buf))
	assert.Equal(0, th.Active())
	assert.Equal("first", buf.Text)
	assert.Equal("second", th.Entry(1).Text, "in-progress edits saved before switching")

	// out of bounds is a no-op
	assert.False(th.SwitchTo(7, buf))
	assert.Equal("first", buf.Text)
}

func TestThreadSwitchToCurrentRoundTrips(t *testing.T) {
	assert := assert.New(t)

	th := NewThread()
	buf := &Entry{Text: "stay"}
	buf.Images = []*MediaItem{NewLoadedMediaItem([]byte{1}, "image/png", nil)}

	assert.True(th.SwitchTo(0, buf))
	assert.Equal("stay", buf.Text)
	assert.Len(buf.Images, 1)
}
