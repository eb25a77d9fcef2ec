package state

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	value []byte
}

func (f *fakeNode) GetState(w io.Writer) error {
	_, err := w.Write(f.value)
	return err
}

func (f *fakeNode) SetState(r io.Reader) error {
	v, err := io.ReadAll(r)
	f.value = v
	return err
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	src := &fakeNode{value: []byte("hello")}
	dst := &fakeNode{}

	snap, err := Capture(map[uint32]Stateful{1: src})
	require.NoError(t, err)

	err = Restore(map[uint32]Stateful{1: dst}, snap)
	require.NoError(t, err)

	assert.Equal(t, src.value, dst.value)
}

func TestRestoreSkipsUnknownNodes(t *testing.T) {
	snap := NewSnapshot()
	snap.Blobs[99] = []byte("orphan")

	dst := &fakeNode{}
	err := Restore(map[uint32]Stateful{1: dst}, snap)
	require.NoError(t, err)
	assert.Nil(t, dst.value)
}

func TestEncodeDecodeByteExact(t *testing.T) {
	snap := NewSnapshot()
	snap.Blobs[1] = []byte("abc")
	snap.Blobs[2] = []byte{}
	snap.Blobs[3] = []byte("a longer blob of state data")

	var buf bytes.Buffer
	require.NoError(t, snap.Encode(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Blobs, decoded.Blobs)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a snapshot")))
	assert.Error(t, err)
}
