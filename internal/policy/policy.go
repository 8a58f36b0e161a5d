package policy

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the actor is authenticated but not allowed
// to perform the action.
var ErrForbidden = errors.New("not authorized to perform this action")

type Resource string

const (
	ResourceUser         Resource = "user"
	ResourceProject      Resource = "project"
	ResourceTask         Resource = "task"
	ResourceSubscription Resource = "subscription"
)

type Action string

const (
	ActionCreate           Action = "create"
	ActionList             Action = "list"
	ActionRead             Action = "read"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionUpdateRole       Action = "update_role"
	ActionAddParticipant   Action = "add_participant"
	ActionListParticipants Action = "list_participants"
	ActionSearchCandidates Action = "search_candidates"
	ActionProgress         Action = "progress"
	ActionListTasks        Action = "list_tasks"
	ActionSetStatus        Action = "set_status"
	ActionSubscribe        Action = "subscribe"
	ActionUnsubscribe      Action = "unsubscribe"
)

type key struct {
	resource Resource
	action   Action
}

var (
	projectMember = Any(Owner, Participant, Subscribed)
	projectEditor = All(Subscribed, Any(Owner, Participant))
	projectAdmin  = All(Subscribed, Owner)
)

// rules is the complete authorization table. A (resource, action) pair that
// is not listed is denied.
var rules = map[key]Gate{
	{ResourceUser, ActionList}:       Authenticated,
	{ResourceUser, ActionRead}:       Authenticated,
	{ResourceUser, ActionUpdateRole}: Admin,
	{ResourceUser, ActionDelete}:     Any(Admin, Self),

	{ResourceProject, ActionCreate}:           Subscribed,
	{ResourceProject, ActionList}:             Authenticated,
	{ResourceProject, ActionRead}:             projectMember,
	{ResourceProject, ActionUpdate}:           projectAdmin,
	{ResourceProject, ActionDelete}:           projectAdmin,
	{ResourceProject, ActionAddParticipant}:   projectAdmin,
	{ResourceProject, ActionListParticipants}: projectMember,
	{ResourceProject, ActionSearchCandidates}: Owner,
	{ResourceProject, ActionProgress}:         projectMember,
	{ResourceProject, ActionListTasks}:        projectMember,

	{ResourceTask, ActionCreate}:    projectEditor,
	{ResourceTask, ActionRead}:      projectMember,
	{ResourceTask, ActionUpdate}:    projectEditor,
	{ResourceTask, ActionSetStatus}: Owner,
	{ResourceTask, ActionDelete}:    Owner,

	{ResourceSubscription, ActionSubscribe}:   Authenticated,
	{ResourceSubscription, ActionUnsubscribe}: Authenticated,
	{ResourceSubscription, ActionRead}:        Authenticated,
	{ResourceSubscription, ActionList}:        Authenticated,
}

// Allowed reports whether the table grants action on resource for f.
func Allowed(resource Resource, action Action, f Facts) bool {
	gate, ok := rules[key{resource, action}]
	if !ok {
		return false
	}
	return gate(f)
}

// Authorize is the single authorization entry point. It returns an error
// wrapping ErrForbidden when access is denied.
func Authorize(resource Resource, action Action, f Facts) error {
	if Allowed(resource, action, f) {
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrForbidden, action, resource)
}
