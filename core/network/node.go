// Package network provides the node identity and source-routing header
// algebra shared by every component of the drone's packet-handling state
// machine.
package network

import "fmt"

// NodeId identifies a node in the mesh. It is an opaque small integer:
// equality and hashing are its only meaningful operations.
type NodeId uint32

// String renders the id for logging.
func (n NodeId) String() string {
	return fmt.Sprintf("%d", uint32(n))
}
