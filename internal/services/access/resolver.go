package accessservice

import (
	"context"
	"docshare/internal/clock"
	"docshare/internal/models"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const pkg = "accessService/"

type Options struct {
	AdminGroup string
	// CreatorGroups restricts uploads to members of these groups. Empty lets
	// any authenticated subject upload.
	CreatorGroups  []string
	PermissionTTL  time.Duration
	GroupTTL       time.Duration
	GroupCacheSize int
	// Timeout bounds the store calls of one decision.
	Timeout time.Duration
	// PublicDownload lets the public flag confer download in addition to reads.
	PublicDownload bool
}

// Resolver decides whether a subject may perform an action on a document.
// It has no side effects besides cache fills and never allows on error.
type Resolver struct {
	log           *slog.Logger
	grants        GrantChecker
	shares        ShareProvider
	groupProvider GroupProvider
	cache         PermissionCache
	clock         clock.Clock
	opts          Options
	groupCache    *expirable.LRU[string, []string]
	rules         []rule
}

func New(
	log *slog.Logger,
	grants GrantChecker,
	shares ShareProvider,
	groups GroupProvider,
	cache PermissionCache,
	clk clock.Clock,
	opts Options,
) *Resolver {
	r := &Resolver{
		log:           log,
		grants:        grants,
		shares:        shares,
		groupProvider: groups,
		cache:         cache,
		clock:         clk,
		opts:          opts,
	}

	if opts.GroupTTL > 0 {
		r.groupCache = expirable.NewLRU[string, []string](opts.GroupCacheSize, nil, opts.GroupTTL)
	}

	r.rules = r.chain()

	return r
}

// Can reports whether subject may perform action on doc. A nil subject is anonymous.
func (r *Resolver) Can(ctx context.Context, subject *models.User, doc *models.Document, action models.Action) bool {
	return r.Decide(ctx, subject, doc, action).Allowed
}

func (r *Resolver) Decide(ctx context.Context, subject *models.User, doc *models.Document, action models.Action) Decision {
	op := pkg + "Decide"

	log := r.log.With(
		slog.String("op", op),
		slog.String("subject_id", subject.SubjectID()),
		slog.String("action", string(action)),
	)

	if doc == nil {
		return r.finish(Decision{Rule: RuleNone, Reason: "no document"})
	}

	if action == models.ActionShare {
		if r.CanShare(ctx, subject, doc) {
			return r.finish(Decision{Allowed: true, Rule: ruleForShare(subject), Reason: "may share"})
		}
		return r.finish(Decision{Rule: RuleNone, Reason: "only the owner or a superuser may share"})
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	req := request{subject: subject, document: doc, action: action}

	var errs []error

	for _, rl := range r.rules {
		if !rl.applies(req) {
			continue
		}

		ok, err := rl.check(ctx, req)
		if err != nil {
			ruleErrorsTotal.WithLabelValues(string(rl.name)).Inc()
			log.Error("rule evaluation failed, treating as no match",
				slog.String("rule", string(rl.name)),
				slog.String("doc_id", doc.ID),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", rl.name, err))
			continue
		}

		if ok {
			return r.finish(Decision{Allowed: true, Rule: rl.name})
		}
	}

	d := Decision{Rule: RuleNone, Reason: "no rule grants " + string(action)}
	if len(errs) > 0 {
		d.Err = fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, errors.Join(errs...))
		d.Reason = "permission state unavailable"
	}

	return r.finish(d)
}

func (r *Resolver) finish(d Decision) Decision {
	outcome := "deny"
	if d.Allowed {
		outcome = "allow"
	}
	decisionsTotal.WithLabelValues(outcome, string(d.Rule)).Inc()
	return d
}

func ruleForShare(subject *models.User) Rule {
	if subject.IsSuperuser {
		return RuleSuperUser
	}
	return RuleOwner
}

// CanShare is the narrow sharing predicate: superusers and the owner only.
// Grants, shares and group membership never confer it.
func (r *Resolver) CanShare(_ context.Context, subject *models.User, doc *models.Document) bool {
	if !subject.IsAuthenticated() || doc == nil {
		return false
	}
	return subject.IsSuperuser || doc.IsOwnedBy(subject.ID)
}

// IsAdmin reports superusers and members of the administrative group.
func (r *Resolver) IsAdmin(ctx context.Context, subject *models.User) (bool, error) {
	op := pkg + "IsAdmin"

	if !subject.IsAuthenticated() {
		return false, nil
	}
	if subject.IsSuperuser {
		return true, nil
	}
	if r.opts.AdminGroup == "" {
		return false, nil
	}

	ok, err := r.inGroup(ctx, subject.ID, r.opts.AdminGroup)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// CanCreate reports whether subject may upload new documents.
func (r *Resolver) CanCreate(ctx context.Context, subject *models.User) bool {
	log := r.log.With(slog.String("op", pkg+"CanCreate"))

	if !subject.IsAuthenticated() {
		return false
	}
	if subject.IsSuperuser || len(r.opts.CreatorGroups) == 0 {
		return true
	}

	groups, err := r.groupsOf(ctx, subject.ID)
	if err != nil {
		log.Error("failed to load groups", slog.String("error", err.Error()))
		return false
	}

	for _, g := range r.opts.CreatorGroups {
		if slices.Contains(groups, g) {
			return true
		}
	}

	return false
}

// Permissions summarises what subject may do with doc, including the subject's
// own active share on it.
func (r *Resolver) Permissions(ctx context.Context, subject *models.User, doc *models.Document) models.PermissionSummary {
	op := pkg + "Permissions"

	summary := models.PermissionSummary{
		CanView:     r.Can(ctx, subject, doc, models.ActionView),
		CanEdit:     r.Can(ctx, subject, doc, models.ActionEdit),
		CanDelete:   r.Can(ctx, subject, doc, models.ActionDelete),
		CanDownload: r.Can(ctx, subject, doc, models.ActionDownload),
		CanShare:    r.CanShare(ctx, subject, doc),
		IsOwner:     subject.IsAuthenticated() && doc.IsOwnedBy(subject.ID),
	}

	if !subject.IsAuthenticated() || summary.IsOwner {
		return summary
	}

	share, err := r.shares.ShareFor(ctx, doc.ID, subject.ID)
	if err != nil {
		if !errors.Is(err, models.ErrShareNotFound) {
			r.log.Error("failed to load share", slog.String("op", op), slog.String("error", err.Error()))
		}
		return summary
	}

	if share.IsActive(r.clock.Now()) {
		level := share.Level
		summary.SharedLevel = &level
		summary.ShareExpiresAt = share.ExpiresAt
	}

	return summary
}
