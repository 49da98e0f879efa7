// Package membership is the authorization kernel: it resolves the access
// level a user holds on a project. Every project, document and logo
// operation consults it before reading or writing anything.
package membership

import (
	"context"
	"errors"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/server/repositories/participants"
	"github.com/mlebedeva/projectdock/internal/server/repositories/projects"
)

// Level is the tri-state access level of a (user, project) pair.
type Level int

const (
	None Level = iota
	Participant
	Owner
)

func (l Level) String() string {
	switch l {
	case Owner:
		return "owner"
	case Participant:
		return "participant"
	default:
		return "none"
	}
}

// Resolver answers access-level queries against fresh repository state.
// No caching: the membership graph is small and staleness would turn into
// authorization bugs.
type Resolver struct {
	projects     projects.Repository
	participants participants.Repository
}

func NewResolver(p projects.Repository, pp participants.Repository) *Resolver {
	return &Resolver{projects: p, participants: pp}
}

// AccessLevel resolves the level userID holds on projectID. The owner match
// is checked first, then the participant row. A missing project resolves to
// None without an error; callers decide how that maps onto their outcome
// taxonomy.
func (r *Resolver) AccessLevel(ctx context.Context, userID, projectID string) (Level, error) {
	project, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return None, nil
		}
		return None, err
	}

	if project.OwnerID == userID {
		return Owner, nil
	}

	_, err = r.participants.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return None, nil
		}
		return None, err
	}

	return Participant, nil
}

// CanRead reports whether the user may read the project and its assets.
func (r *Resolver) CanRead(ctx context.Context, userID, projectID string) (bool, error) {
	level, err := r.AccessLevel(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	return level != None, nil
}

// CanMutate reports whether the user may change project metadata, delete the
// project, or invite participants. Participants never can.
func (r *Resolver) CanMutate(ctx context.Context, userID, projectID string) (bool, error) {
	level, err := r.AccessLevel(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	return level == Owner, nil
}
