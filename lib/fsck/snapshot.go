// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsck

import (
	"fmt"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/regionfs/regionfs/lib/codec"
	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/region"
)

// Node is a canonical, serialisable description of one file or
// directory. Children are sorted by name so two snapshots of the same
// logical tree encode to identical bytes even if their on-disk
// children arrays hold entries in different physical slots.
type Node struct {
	Name     string `cbor:"name"`
	Dir      bool   `cbor:"dir"`
	Mtime    int64  `cbor:"mtime"`
	Data     []byte `cbor:"data,omitempty"`
	Children []Node `cbor:"children,omitempty"`
}

// Snapshot walks tree from its root and returns a canonical
// description of the whole filesystem, suitable for a
// deterministic-bytes comparison across a close/reopen cycle (P1).
func Snapshot(tree *fsnode.Tree) Node {
	return snapshotDir(tree, tree.SB.Root, "/")
}

func snapshotDir(tree *fsnode.Tree, off region.Offset, name string) Node {
	in := tree.InodeAt(off)
	node := Node{Name: name, Dir: true, Mtime: in.Mtime.Sec}

	children := tree.ChildOffsets(in.AsDir())
	for _, childOff := range children[1:] {
		child := tree.InodeAt(childOff)
		switch child.Type {
		case fsnode.TypeDir:
			node.Children = append(node.Children, snapshotDir(tree, childOff, child.NameString()))
		case fsnode.TypeFile:
			node.Children = append(node.Children, snapshotFile(tree, childOff))
		}
	}
	sort.Slice(node.Children, func(i, j int) bool { return node.Children[i].Name < node.Children[j].Name })
	return node
}

func snapshotFile(tree *fsnode.Tree, off region.Offset) Node {
	in := tree.InodeAt(off)
	body := in.AsFile()
	data := make([]byte, body.Size)
	tree.ReadRange(body, 0, data)
	return Node{Name: in.NameString(), Mtime: in.Mtime.Sec, Data: data}
}

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("fsck: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("fsck: zstd decoder initialization failed: " + err.Error())
	}
}

// EncodeSnapshot serialises node to deterministic CBOR and compresses
// it with zstd.
func EncodeSnapshot(node Node) ([]byte, error) {
	raw, err := codec.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(compressed []byte) (Node, error) {
	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return Node{}, fmt.Errorf("decompressing snapshot: %w", err)
	}
	var node Node
	if err := codec.Unmarshal(raw, &node); err != nil {
		return Node{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return node, nil
}
