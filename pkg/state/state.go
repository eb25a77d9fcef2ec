// Package state implements the opaque persistence contract nodes may
// expose: get_state/set_state byte-exact blobs the core stores and
// restores verbatim without interpreting their contents.
package state

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const magic = "GRPHST1"

// Stateful is implemented by nodes that want their internal state
// persisted across save/restore. The core treats the blob as opaque.
type Stateful interface {
	GetState(w io.Writer) error
	SetState(r io.Reader) error
}

// Snapshot is a graph-wide collection of per-node state blobs, keyed
// by the node id they belong to. It is the unit a host persists; the
// core imposes no schema on the blobs themselves.
type Snapshot struct {
	Blobs map[uint32][]byte
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Blobs: make(map[uint32][]byte)}
}

// Capture reads the state of every Stateful node into the snapshot,
// keyed by the ids given in nodes.
func Capture(nodes map[uint32]Stateful) (*Snapshot, error) {
	snap := NewSnapshot()
	for id, n := range nodes {
		var buf bytes.Buffer
		if err := n.GetState(&buf); err != nil {
			return nil, fmt.Errorf("capture state for node %d: %w", id, err)
		}
		snap.Blobs[id] = buf.Bytes()
	}
	return snap, nil
}

// Restore writes each blob in the snapshot back into the matching
// node. Node ids present in the snapshot but absent from nodes are
// silently skipped, allowing a snapshot taken against a superset
// graph to restore onto a subset.
func Restore(nodes map[uint32]Stateful, snap *Snapshot) error {
	for id, blob := range snap.Blobs {
		n, ok := nodes[id]
		if !ok {
			continue
		}
		if err := n.SetState(bytes.NewReader(blob)); err != nil {
			return fmt.Errorf("restore state for node %d: %w", id, err)
		}
	}
	return nil
}

// Encode writes the snapshot to w in a simple length-prefixed, byte-
// exact wire format: magic, node count, then (id, length, blob)*.
func (s *Snapshot) Encode(w io.Writer) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Blobs))); err != nil {
		return err
	}
	for id, blob := range s.Blobs {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(blob))); err != nil {
			return err
		}
		if _, err := w.Write(blob); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a snapshot previously written by Encode.
func Decode(r io.Reader) (*Snapshot, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if string(header) != magic {
		return nil, fmt.Errorf("state: bad magic header")
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	snap := NewSnapshot()
	for i := uint32(0); i < count; i++ {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, err
		}
		blob := make([]byte, length)
		if _, err := io.ReadFull(r, blob); err != nil {
			return nil, err
		}
		snap.Blobs[id] = blob
	}
	return snap, nil
}
