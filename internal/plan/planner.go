package plan

import (
	"fmt"
	"strings"

	"ellietransfer/internal/ellie"
)

// Kind names the change one operation ships.
type Kind string

const (
	KindCreateModel      Kind = "CREATE_MODEL"
	KindReplaceEntities  Kind = "REPLACE_ENTITIES"
	KindAddRelationships Kind = "ADD_RELATIONSHIPS"
)

// Status tracks a plan and its operations through their lifecycle.
// Build moves NEW to PLANNED, Execute moves PLANNED through SUBMITTED
// to CONFIRMED.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPlanned   Status = "PLANNED"
	StatusSubmitted Status = "SUBMITTED"
	StatusConfirmed Status = "CONFIRMED"
)

// Operation is one API-shaped change carrying its payload fragment.
type Operation struct {
	Kind    Kind
	Status  Status
	Payload *ellie.Model
}

// Plan is an ordered set of operations bringing a stored model in line
// with a locally built one.
type Plan struct {
	ModelID    string
	Status     Status
	Remote     *ellie.Model
	Operations []Operation
}

// Empty reports whether the stored model already matches.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// TooLargeError reports a model above the configured entity ceiling.
type TooLargeError struct {
	EntityCount int
	MaxEntities int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("plan spans %d entities, the configured ceiling is %d", e.EntityCount, e.MaxEntities)
}

// Options bound and target the plan.
type Options struct {
	// ModelID of the stored model to update. Empty plans a creation.
	ModelID string
	// MaxEntities above which planning refuses. Zero disables the
	// ceiling.
	MaxEntities int
}

// Build diffs a locally built model against the stored remote one and
// plans the operations closing the gap. A nil remote plans a single
// creation. Otherwise entities that changed or appeared are shipped as
// one replace operation and relationships missing remotely as one add
// operation. Building is read-only and idempotent: against an identical
// remote the plan comes back empty, and nothing is sent anywhere until
// the plan is executed.
func Build(local *ellie.Model, remote *ellie.Model, opts Options) (*Plan, error) {
	if opts.MaxEntities > 0 && len(local.Entities) > opts.MaxEntities {
		return nil, &TooLargeError{EntityCount: len(local.Entities), MaxEntities: opts.MaxEntities}
	}

	p := &Plan{ModelID: opts.ModelID, Status: StatusNew, Remote: remote}

	if remote == nil {
		p.Operations = append(p.Operations, Operation{
			Kind:    KindCreateModel,
			Status:  StatusNew,
			Payload: local,
		})
	} else {
		if changed := changedEntities(local, remote); len(changed) > 0 {
			p.Operations = append(p.Operations, Operation{
				Kind:    KindReplaceEntities,
				Status:  StatusNew,
				Payload: &ellie.Model{Entities: changed},
			})
		}
		if missing := missingRelationships(local, remote); len(missing) > 0 {
			p.Operations = append(p.Operations, Operation{
				Kind:    KindAddRelationships,
				Status:  StatusNew,
				Payload: &ellie.Model{Relationships: missing},
			})
		}
	}

	for i := range p.Operations {
		p.Operations[i].Status = StatusPlanned
	}
	p.Status = StatusPlanned
	return p, nil
}

// changedEntities returns the local entities that are new or differ
// from their stored counterpart, in local order.
func changedEntities(local, remote *ellie.Model) []ellie.Entity {
	stored := make(map[string]ellie.Entity, len(remote.Entities))
	for _, e := range remote.Entities {
		stored[e.ID] = e
	}

	var changed []ellie.Entity
	for _, e := range local.Entities {
		if r, ok := stored[e.ID]; ok && entityEqual(e, r) {
			continue
		}
		changed = append(changed, e)
	}
	return changed
}

func entityEqual(a, b ellie.Entity) bool {
	if a.ID != b.ID || a.Name != b.Name || len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for i := range a.Attributes {
		if a.Attributes[i] != b.Attributes[i] {
			return false
		}
	}
	return true
}

// missingRelationships returns the local relationships absent from the
// stored model, matched on entity IDs and attribute names.
func missingRelationships(local, remote *ellie.Model) []ellie.Relationship {
	stored := make(map[string]bool, len(remote.Relationships))
	for _, r := range remote.Relationships {
		stored[relationshipKey(r)] = true
	}

	var missing []ellie.Relationship
	for _, r := range local.Relationships {
		if stored[relationshipKey(r)] {
			continue
		}
		missing = append(missing, r)
	}
	return missing
}

func relationshipKey(r ellie.Relationship) string {
	return strings.Join([]string{
		r.SourceEntity.ID,
		strings.Join(r.SourceEntity.AttributeNames, ","),
		r.TargetEntity.ID,
		strings.Join(r.TargetEntity.AttributeNames, ","),
	}, "|")
}
