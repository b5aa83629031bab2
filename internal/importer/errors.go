package importer

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// ErrReferenceNotFound is returned when a name does not resolve in the registry.
var ErrReferenceNotFound = errors.New("reference not found")

// ErrRegistrySealed is returned when recording into a sealed registry type.
var ErrRegistrySealed = errors.New("registry type sealed")

// Reference kinds carried by ReferenceError.
const (
	RefFolder  = "folder"
	RefParent  = "parent folder"
	RefJournal = "journal"
	RefNote    = "note"
	RefToken   = "token"
)

// ReferenceError describes a name that failed to resolve.
type ReferenceError struct {
	// Kind is one of the Ref* constants.
	Kind string
	// Type is the document type the name was looked up under.
	Type world.DocumentType
	// Name is the unresolved name.
	Name string
	// Owner names the record that carried the reference.
	Owner string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s reference %s %q not found", e.Owner, e.Kind, e.Type, e.Name)
}

// Unwrap lets errors.Is match ErrReferenceNotFound.
func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

// Tier classifies how far a problem's effect reaches.
type Tier int

const (
	// TierStage problems abort a stage's remaining work for one record.
	TierStage Tier = iota
	// TierItem problems prevent one record from being created.
	TierItem
	// TierRecoverable problems degrade one reference; the record is still created.
	TierRecoverable
)

func (t Tier) String() string {
	switch t {
	case TierStage:
		return "stage"
	case TierItem:
		return "item"
	case TierRecoverable:
		return "recoverable"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Problem is one failure recorded during a run.
type Problem struct {
	Stage string
	Tier  Tier
	Err   error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s [%s]: %v", p.Stage, p.Tier, p.Err)
}

// Unwrap exposes the underlying error.
func (p Problem) Unwrap() error { return p.Err }
