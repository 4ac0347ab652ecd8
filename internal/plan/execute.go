package plan

import (
	"context"
	"fmt"

	"ellietransfer/internal/ellie"
)

// ModelAPI is the surface Execute needs from the Ellie client.
type ModelAPI interface {
	CreateModel(ctx context.Context, m *ellie.Model) (string, error)
	UpdateModel(ctx context.Context, id string, m *ellie.Model) error
}

// Result reports what an execution did.
type Result struct {
	ModelID string
	Created bool
}

// Execute runs a plan's operations against the API in order. Update
// operations fold their fragment into the remote snapshot and send the
// whole document, since the API stores models as a unit. Each operation
// moves PLANNED to SUBMITTED before its call and to CONFIRMED after, so
// a failed run shows which operation was in flight.
func Execute(ctx context.Context, p *Plan, api ModelAPI) (*Result, error) {
	res := &Result{ModelID: p.ModelID}
	working := p.Remote
	p.Status = StatusSubmitted

	for i := range p.Operations {
		op := &p.Operations[i]
		if op.Kind != KindCreateModel && p.ModelID == "" {
			return res, fmt.Errorf("operation %s targets no model", op.Kind)
		}
		op.Status = StatusSubmitted

		switch op.Kind {
		case KindCreateModel:
			id, err := api.CreateModel(ctx, op.Payload)
			if err != nil {
				return res, fmt.Errorf("creating model: %w", err)
			}
			res.ModelID = id
			res.Created = true
		case KindReplaceEntities:
			next := replaceEntities(working, op.Payload.Entities)
			if err := api.UpdateModel(ctx, p.ModelID, next); err != nil {
				return res, fmt.Errorf("replacing entities: %w", err)
			}
			working = next
		case KindAddRelationships:
			next := addRelationships(working, op.Payload.Relationships)
			if err := api.UpdateModel(ctx, p.ModelID, next); err != nil {
				return res, fmt.Errorf("adding relationships: %w", err)
			}
			working = next
		default:
			return res, fmt.Errorf("unknown operation kind %q", op.Kind)
		}

		op.Status = StatusConfirmed
	}

	p.Status = StatusConfirmed
	return res, nil
}

// replaceEntities swaps changed entities into base by ID, keeping base
// order, and appends entities the stored model does not have yet.
func replaceEntities(base *ellie.Model, entities []ellie.Entity) *ellie.Model {
	incoming := make(map[string]ellie.Entity, len(entities))
	for _, e := range entities {
		incoming[e.ID] = e
	}

	next := *base
	next.Entities = make([]ellie.Entity, 0, len(base.Entities)+len(entities))
	for _, e := range base.Entities {
		if r, ok := incoming[e.ID]; ok {
			next.Entities = append(next.Entities, r)
			delete(incoming, e.ID)
			continue
		}
		next.Entities = append(next.Entities, e)
	}
	for _, e := range entities {
		if _, ok := incoming[e.ID]; ok {
			next.Entities = append(next.Entities, e)
		}
	}
	return &next
}

func addRelationships(base *ellie.Model, rels []ellie.Relationship) *ellie.Model {
	next := *base
	next.Relationships = append(append([]ellie.Relationship{}, base.Relationships...), rels...)
	return &next
}
