// Package build drives one variant through the full pipeline:
// validate parameters, resolve the toolchain, probe the environment,
// ensure components, assemble flags, link, then post-process the
// image. Stage order is enforced by an explicit state machine instead
// of relying on sequential execution, so failure points are testable
// in isolation.
package build

import "fmt"

// State is the pipeline position for one build variant.
type State int

const (
	Unvalidated State = iota
	ParametersOK
	ToolchainResolved
	ComponentsReady
	FlagsAssembled
	Linked
	BinaryExtracted
	DigestComputed
	Disassembled
	// Aborted is terminal; no further stages execute.
	Aborted
)

var stateNames = map[State]string{
	Unvalidated:       "Unvalidated",
	ParametersOK:      "ParametersOK",
	ToolchainResolved: "ToolchainResolved",
	ComponentsReady:   "ComponentsReady",
	FlagsAssembled:    "FlagsAssembled",
	Linked:            "Linked",
	BinaryExtracted:   "BinaryExtracted",
	DigestComputed:    "DigestComputed",
	Disassembled:      "Disassembled",
	Aborted:           "Aborted",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// successor is the only legal forward transition from each state.
// Disassembled is reachable but optional: a variant may finish at
// DigestComputed.
var successor = map[State]State{
	Unvalidated:       ParametersOK,
	ParametersOK:      ToolchainResolved,
	ToolchainResolved: ComponentsReady,
	ComponentsReady:   FlagsAssembled,
	FlagsAssembled:    Linked,
	Linked:            BinaryExtracted,
	BinaryExtracted:   DigestComputed,
	DigestComputed:    Disassembled,
}

// Pipeline tracks the state of one variant's run.
type Pipeline struct {
	state State
}

func (p *Pipeline) State() State { return p.state }

// Advance moves to the named state, refusing skips, repeats, and any
// movement out of Aborted.
func (p *Pipeline) Advance(to State) error {
	if p.state == Aborted {
		return fmt.Errorf("pipeline aborted: cannot advance to %s", to)
	}
	if successor[p.state] != to {
		return fmt.Errorf("invalid transition %s -> %s", p.state, to)
	}
	p.state = to
	return nil
}

// Abort marks the pipeline terminally failed.
func (p *Pipeline) Abort() { p.state = Aborted }
