package aml

import (
	"errors"
	"fmt"
)

// NodeKind tags the namespace object a Node refers to.
type NodeKind uint8

const (
	NodeDevice NodeKind = iota
	NodeMethod
	NodeName
	NodeAlias
)

// ErrPathNotFound is returned when a namespace path resolves to nothing.
var ErrPathNotFound = errors.New("aml: path not found in namespace")

// Node is an opaque handle to an ACPI namespace object. This module only
// concatenates paths onto it and passes it back into the owning
// Namespace; it never walks the tree itself.
type Node struct {
	Path  string
	Kind  NodeKind
	Value Value  // stored object, Name nodes only
	Alias string // target path, Alias nodes only

	hid  Value // hardware ID key for device enumeration
	body func() (Value, error)
}

// Namespace is the view of the AML interpreter's namespace this module
// needs: path resolution, method execution, and enumeration of devices
// by hardware ID.
type Namespace interface {
	// Resolve maps a dotted path to a node.
	Resolve(path string) (*Node, error)

	// Exec runs a Method node and returns its return value.
	Exec(n *Node) (Value, error)

	// DeviceByID returns the index-th device whose hardware ID matches
	// id, in enumeration order, or false when no more devices match.
	DeviceByID(id *Value, index int) (*Node, bool)
}

// StaticNamespace is an in-memory Namespace assembled by hand. It backs
// the tests in this module and serves as a reference for embedders that
// bring their own interpreter.
type StaticNamespace struct {
	nodes   map[string]*Node
	devices []*Node
}

func NewStaticNamespace() *StaticNamespace {
	return &StaticNamespace{nodes: map[string]*Node{}}
}

func (s *StaticNamespace) add(n *Node) *Node {
	s.nodes[n.Path] = n

	return n
}

// AddDevice registers a device node with the given hardware ID.
// Enumeration order is insertion order.
func (s *StaticNamespace) AddDevice(path string, hid Value) *Node {
	n := s.add(&Node{Path: path, Kind: NodeDevice, hid: hid})
	s.devices = append(s.devices, n)

	return n
}

// AddName registers a Name node storing v.
func (s *StaticNamespace) AddName(path string, v Value) *Node {
	return s.add(&Node{Path: path, Kind: NodeName, Value: v})
}

// AddAlias registers an alias pointing at target.
func (s *StaticNamespace) AddAlias(path, target string) *Node {
	return s.add(&Node{Path: path, Kind: NodeAlias, Alias: target})
}

// AddMethod registers a Method node whose execution runs body.
func (s *StaticNamespace) AddMethod(path string, body func() (Value, error)) *Node {
	return s.add(&Node{Path: path, Kind: NodeMethod, body: body})
}

func (s *StaticNamespace) Resolve(path string) (*Node, error) {
	n, ok := s.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	return n, nil
}

func (s *StaticNamespace) Exec(n *Node) (Value, error) {
	if n.Kind != NodeMethod || n.body == nil {
		return Value{}, fmt.Errorf("%w: %s", ErrNotEvaluable, n.Path)
	}

	return n.body()
}

func (s *StaticNamespace) DeviceByID(id *Value, index int) (*Node, bool) {
	for _, d := range s.devices {
		if !sameID(&d.hid, id) {
			continue
		}

		if index == 0 {
			return d, true
		}

		index--
	}

	return nil, false
}

// sameID compares hardware IDs. Firmware spells IDs either as packed
// EISA integers or as plain strings; the two forms never match each
// other.
func sameID(a, b *Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case ValueInteger:
		return a.Integer == b.Integer
	case ValueString:
		return a.String == b.String
	}

	return false
}
