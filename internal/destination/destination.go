package destination

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/verify"
)

// Kind is the type of a move destination.
type Kind string

const (
	KindProject    Kind = "project"
	KindSection    Kind = "section"
	KindParentTask Kind = "parent_task"
)

// ProjectTarget moves tasks to the top level of a project.
type ProjectTarget struct {
	ID   string
	Name string
}

// SectionTarget moves tasks into a section. ProjectName is the name of the
// section's project.
type SectionTarget struct {
	ID          string
	Name        string
	ProjectName string
}

// ParentTaskTarget moves tasks under another task.
type ParentTaskTarget struct {
	ID          string
	Name        string
	ProjectName string
}

// Request names candidate destinations. Exactly one target must carry an ID.
type Request struct {
	Project    *ProjectTarget
	Section    *SectionTarget
	ParentTask *ParentTaskTarget
}

// Resolution is a verified destination.
type Resolution struct {
	Kind        Kind
	MoveArgs    todoist.MoveArgs
	Description string
}

// Resolver turns a Request into a verified Resolution.
type Resolver struct {
	verifier *verify.Verifier
}

// NewResolver returns a Resolver that verifies destinations with v.
func NewResolver(v *verify.Verifier) *Resolver {
	return &Resolver{verifier: v}
}

// Check validates the shape of req without any remote call: exactly one
// destination, with all names needed to verify it.
func Check(req Request) error {
	m, err := newMachine()
	if err != nil {
		return err
	}
	_, err = m.classify(req)
	return err
}

// Resolve checks req, verifies the single destination it names and returns
// the arguments for the move.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	m, err := newMachine()
	if err != nil {
		return nil, err
	}

	kind, err := m.classify(req)
	if err != nil {
		return nil, err
	}

	res, err := r.verify(ctx, kind, req)
	if err != nil {
		m.send(eventRejected)
		return nil, err
	}
	m.send(eventVerified)
	if m.current() != stateResolved {
		return nil, fmt.Errorf("destination resolution ended in state %q", m.current())
	}
	return res, nil
}

func (r *Resolver) verify(ctx context.Context, kind Kind, req Request) (*Resolution, error) {
	switch kind {
	case KindProject:
		pr, err := r.verifier.Project(ctx, req.Project.ID, req.Project.Name)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        KindProject,
			MoveArgs:    todoist.MoveArgs{ProjectID: req.Project.ID},
			Description: fmt.Sprintf("project %q", pr.Project.Name),
		}, nil

	case KindSection:
		sr, err := r.verifier.Section(ctx, req.Section.ID, req.Section.Name, req.Section.ProjectName)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        KindSection,
			MoveArgs:    todoist.MoveArgs{SectionID: req.Section.ID},
			Description: fmt.Sprintf("section %q in project %q", sr.Section.Name, sr.Project.Name),
		}, nil

	default:
		tr, err := r.verifier.ParentTask(ctx, req.ParentTask.ID, req.ParentTask.Name, req.ParentTask.ProjectName)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        KindParentTask,
			MoveArgs:    todoist.MoveArgs{ParentID: req.ParentTask.ID},
			Description: fmt.Sprintf("under parent task %q in project %q", tr.Task.Content, tr.Project.Name),
		}, nil
	}
}

// present returns the kinds whose target carries an ID, in a fixed order.
func (req Request) present() []Kind {
	var kinds []Kind
	if req.Project != nil && req.Project.ID != "" {
		kinds = append(kinds, KindProject)
	}
	if req.Section != nil && req.Section.ID != "" {
		kinds = append(kinds, KindSection)
	}
	if req.ParentTask != nil && req.ParentTask.ID != "" {
		kinds = append(kinds, KindParentTask)
	}
	return kinds
}

// missing names the companion fields kind still needs, or nil.
func (req Request) missing(kind Kind) []string {
	var out []string
	switch kind {
	case KindProject:
		if req.Project.Name == "" {
			out = append(out, "project name")
		}
	case KindSection:
		if req.Section.Name == "" {
			out = append(out, "section name")
		}
		if req.Section.ProjectName == "" {
			out = append(out, "project name")
		}
	case KindParentTask:
		if req.ParentTask.Name == "" {
			out = append(out, "parent task name")
		}
		if req.ParentTask.ProjectName == "" {
			out = append(out, "parent task project name")
		}
	}
	return out
}

// States of the resolution machine.
const (
	stateUnresolved = "unresolved"
	stateAmbiguous  = "ambiguous"
	stateResolving  = "resolving"
	stateResolved   = "resolved"
	stateFailed     = "failed"
)

// Events of the resolution machine.
const (
	eventNone       = "none"
	eventSingle     = "single"
	eventMultiple   = "multiple"
	eventIncomplete = "incomplete"
	eventVerified   = "verified"
	eventRejected   = "rejected"
)

type machineContext struct{}

// machine tracks one resolution. It is built per request and never shared.
type machine struct {
	interpreter *statekit.Interpreter[machineContext]
}

func newMachine() (*machine, error) {
	builder := statekit.NewMachine[machineContext]("destination").
		WithInitial(statekit.StateID(stateUnresolved)).
		WithContext(machineContext{})

	builder.State(stateUnresolved).
		On(eventNone).Target(stateAmbiguous).
		On(eventMultiple).Target(stateAmbiguous).
		On(eventSingle).Target(stateResolving).
		Done()

	builder.State(stateResolving).
		On(eventIncomplete).Target(stateFailed).
		On(eventVerified).Target(stateResolved).
		On(eventRejected).Target(stateFailed).
		Done()

	builder.State(stateAmbiguous).Done()
	builder.State(stateResolved).Done()
	builder.State(stateFailed).Done()

	m, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build destination state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(m)
	interpreter.Start()
	return &machine{interpreter: interpreter}, nil
}

func (m *machine) send(event string) {
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (m *machine) current() string {
	return string(m.interpreter.State().Value)
}

// classify counts destinations and checks companion names, leaving the
// machine in resolving on success.
func (m *machine) classify(req Request) (Kind, error) {
	kinds := req.present()
	switch len(kinds) {
	case 0:
		m.send(eventNone)
		return "", verify.NewParameterError(verify.ErrAmbiguousDestination,
			"You must specify exactly one destination: project, section, or parent task (none given)")
	case 1:
		m.send(eventSingle)
	default:
		m.send(eventMultiple)
		return "", verify.NewParameterError(verify.ErrAmbiguousDestination,
			"You must specify exactly one destination: project, section, or parent task (got %d: %v)", len(kinds), kinds)
	}

	kind := kinds[0]
	if missing := req.missing(kind); len(missing) > 0 {
		m.send(eventIncomplete)
		return "", verify.NewParameterError(verify.ErrIncompleteVerificationParameters,
			"Missing verification parameters for %s destination: %v", kind, missing)
	}
	return kind, nil
}
