package accessservice

import (
	"context"
	"docshare/internal/models"
	"errors"
	"log/slog"
	"slices"
)

type Rule string

const (
	RuleNone        Rule = "none"
	RuleSuperUser   Rule = "superuser"
	RuleGroupMember Rule = "group_member"
	RuleOwner       Rule = "owner"
	RulePublicFlag  Rule = "public_flag"
	RuleActiveShare Rule = "active_share"
	RuleDirectGrant Rule = "direct_grant"
)

// Decision is the outcome of evaluating the rule chain for one request.
type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
	// Err is set when a rule could not be evaluated. The decision is then a deny
	// unless a later rule matched on facts that were available.
	Err error
}

type request struct {
	subject  *models.User
	document *models.Document
	action   models.Action
}

type rule struct {
	name    Rule
	applies func(req request) bool
	check   func(ctx context.Context, req request) (bool, error)
}

// chain returns the rules in precedence order. Evaluation stops at the first match.
func (r *Resolver) chain() []rule {
	return []rule{
		{
			name:    RuleSuperUser,
			applies: func(req request) bool { return req.subject.IsAuthenticated() },
			check: func(_ context.Context, req request) (bool, error) {
				return req.subject.IsSuperuser, nil
			},
		},
		{
			name:    RuleGroupMember,
			applies: func(req request) bool { return req.subject.IsAuthenticated() && r.opts.AdminGroup != "" },
			check: func(ctx context.Context, req request) (bool, error) {
				return r.inGroup(ctx, req.subject.ID, r.opts.AdminGroup)
			},
		},
		{
			name:    RuleOwner,
			applies: func(req request) bool { return req.subject.IsAuthenticated() },
			check: func(_ context.Context, req request) (bool, error) {
				return req.document.IsOwnedBy(req.subject.ID), nil
			},
		},
		{
			name:    RulePublicFlag,
			applies: func(req request) bool { return r.publicCovers(req.action) },
			check: func(_ context.Context, req request) (bool, error) {
				return req.document.IsPublic, nil
			},
		},
		{
			name:    RuleActiveShare,
			applies: func(req request) bool { return req.subject.IsAuthenticated() && grantable(req.action) },
			check:   r.activeShare,
		},
		{
			name:    RuleDirectGrant,
			applies: func(req request) bool { return req.subject.IsAuthenticated() && grantable(req.action) },
			check:   r.directGrant,
		},
	}
}

// grantable reports whether shares and grants may confer the action.
// Delete, restore and share stay with owners and administrators.
func grantable(action models.Action) bool {
	switch action {
	case models.ActionView, models.ActionList, models.ActionHead, models.ActionDownload, models.ActionEdit:
		return true
	}
	return false
}

func (r *Resolver) publicCovers(action models.Action) bool {
	if action.ReadOnly() {
		return true
	}
	return r.opts.PublicDownload && action == models.ActionDownload
}

func (r *Resolver) activeShare(ctx context.Context, req request) (bool, error) {
	share, err := r.shares.ShareFor(ctx, req.document.ID, req.subject.ID)
	if err != nil {
		if errors.Is(err, models.ErrShareNotFound) {
			return false, nil
		}
		return false, err
	}

	if !share.IsActive(r.clock.Now()) {
		return false, nil
	}

	return share.Level.Allows(req.action), nil
}

func (r *Resolver) directGrant(ctx context.Context, req request) (bool, error) {
	perm := req.action.Permission()

	cached, found, err := r.cache.Get(ctx, req.subject.ID, perm, req.document.ID)
	switch {
	case err != nil:
		permissionCacheTotal.WithLabelValues("error").Inc()
		r.log.Warn("permission cache read failed", slog.String("error", err.Error()))
	case found:
		permissionCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		permissionCacheTotal.WithLabelValues("miss").Inc()
	}

	ok, err := r.grants.HasGrant(ctx, req.subject.ID, perm, req.document.ID)
	if err != nil {
		return false, err
	}

	if err := r.cache.Put(ctx, req.subject.ID, perm, req.document.ID, ok, r.opts.PermissionTTL); err != nil {
		r.log.Warn("permission cache write failed", slog.String("error", err.Error()))
	}

	return ok, nil
}

func (r *Resolver) inGroup(ctx context.Context, userID string, group string) (bool, error) {
	groups, err := r.groupsOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(groups, group), nil
}

func (r *Resolver) groupsOf(ctx context.Context, userID string) ([]string, error) {
	if r.groupCache != nil {
		if groups, ok := r.groupCache.Get(userID); ok {
			groupCacheTotal.WithLabelValues("hit").Inc()
			return groups, nil
		}
		groupCacheTotal.WithLabelValues("miss").Inc()
	}

	groups, err := r.groupProvider.GroupsOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	if r.groupCache != nil {
		r.groupCache.Add(userID, groups)
	}

	return groups, nil
}
