package link

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/pkopriv2/conduit/common"
	"github.com/pkopriv2/conduit/pipe"
)

func TestRegistry_AddRemove(t *testing.T) {
	reg := NewRegistry()

	fake := &fakeStream{}
	link, _, _ := newTestLink(fake)

	reg.Add(link)
	assert.Equal(t, 1, reg.Len())

	found, ok := reg.Get(link.Id())
	assert.True(t, ok)
	assert.Equal(t, link.Id(), found.Id())

	reg.Remove(link.Id())
	assert.Equal(t, 0, reg.Len())

	_, ok = reg.Get(link.Id())
	assert.False(t, ok)
}

func TestRegistry_ServiceAll(t *testing.T) {
	reg := NewRegistry()

	healthy := &fakeStream{writeQ: []writeStep{{max: -1}}}
	hLink, hIn, _ := newTestLink(healthy)
	hIn.Push([]byte("data"))

	broken := &fakeStream{readQ: []readStep{{err: unix.ECONNRESET}}}
	bLink, _, _ := newTestLink(broken)

	reg.Add(hLink)
	reg.Add(bLink)

	results, failures := reg.ServiceAll()

	assert.Equal(t, 4, results[hLink.Id()].Written)
	assert.IsType(t, AbortedError{}, failures[bLink.Id()])

	// the aborted link was pruned, the healthy one kept
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Get(bLink.Id())
	assert.False(t, ok)
	_, ok = reg.Get(hLink.Id())
	assert.True(t, ok)
}

func TestRegistry_PrunesClosed(t *testing.T) {
	reg := NewRegistry()

	fake := &fakeStream{readQ: []readStep{{err: io.EOF}}}
	link, in, _ := newTestLink(fake)
	in.Close()

	reg.Add(link)

	results, failures := reg.ServiceAll()
	assert.Empty(t, failures)
	assert.True(t, results[link.Id()].Closed)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Each(t *testing.T) {
	reg := NewRegistry()

	for i := 0; i < 3; i++ {
		link := NewLink(common.NewEmptyContext(), &fakeStream{}, pipe.NewBuffer(8), pipe.NewBuffer(8))
		reg.Add(link)
	}

	count := 0
	reg.Each(func(Servicer) { count++ })
	assert.Equal(t, 3, count)
}
