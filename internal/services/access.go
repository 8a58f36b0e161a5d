package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
)

// projectAccess gathers the facts the policy table needs about a project.
type projectAccess struct {
	projects repository.ProjectRepository
	now      func() time.Time
}

func (a projectAccess) facts(ctx context.Context, actor *models.User, project *models.Project) (policy.Facts, error) {
	f := policy.Facts{Actor: actor, Now: a.now(), OwnerID: project.OwnerID}
	if actor == nil || actor.ID == project.OwnerID {
		return f, nil
	}

	ok, err := a.projects.IsParticipant(ctx, project.ID, actor.ID)
	if err != nil {
		return f, fmt.Errorf("failed to check participation: %w", err)
	}
	f.IsParticipant = ok
	return f, nil
}

func (a projectAccess) authorize(ctx context.Context, actor *models.User, project *models.Project, resource policy.Resource, action policy.Action) error {
	f, err := a.facts(ctx, actor, project)
	if err != nil {
		return err
	}
	return policy.Authorize(resource, action, f)
}
