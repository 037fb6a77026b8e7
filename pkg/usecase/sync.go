package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

// SyncUseCase reconciles the identity directory with the application user table.
// The directory is the source of truth: repairs only ever write to the user table.
type SyncUseCase struct {
	repo      interfaces.Repository
	directory interfaces.IdentityDirectory
	clock     func() time.Time
}

func NewSyncUseCase(repo interfaces.Repository, directory interfaces.IdentityDirectory, clock func() time.Time) *SyncUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &SyncUseCase{
		repo:      repo,
		directory: directory,
		clock:     clock,
	}
}

// Analyze reads both sources in full and classifies every discrepancy. It has no side
// effects. If either source cannot be read the whole call fails with KindFetch.
func (uc *SyncUseCase) Analyze(ctx context.Context) (*model.SyncAnalysis, error) {
	var (
		identities []*model.Identity
		users      []*model.User
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		v, err := uc.directory.ListIdentities(egCtx)
		if err != nil {
			return goerr.Wrap(err, "failed to list identities")
		}
		identities = v
		return nil
	})
	eg.Go(func() error {
		v, err := uc.repo.User().List(egCtx)
		if err != nil {
			return goerr.Wrap(err, "failed to list users")
		}
		users = v
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, newSyncError(KindFetch, "", err)
	}

	analysis := classify(identities, users)
	analysis.AnalyzedAt = uc.clock()

	logging.From(ctx).Info("sync analysis completed",
		"identities", analysis.TotalIdentities,
		"users", analysis.TotalUsers,
		"issues", len(analysis.Issues),
	)

	return analysis, nil
}

// classify emits issues in identity order first, then orphans in user order
func classify(identities []*model.Identity, users []*model.User) *model.SyncAnalysis {
	byID := make(map[model.UserID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	known := make(map[model.UserID]struct{}, len(identities))
	issues := []model.SyncIssue{}
	missing := 0

	for _, identity := range identities {
		known[identity.ID] = struct{}{}

		user, ok := byID[identity.ID]
		if !ok {
			issues = append(issues, model.NewMissingInUsersIssue(identity))
			missing++
			continue
		}

		if model.ExpectedRole(identity.Metadata) != user.Role {
			issues = append(issues, model.NewRoleMismatchIssue(identity, user))
		}
	}

	for _, user := range users {
		if _, ok := known[user.ID]; !ok {
			issues = append(issues, model.NewOrphanedUserIssue(user))
		}
	}

	return &model.SyncAnalysis{
		TotalIdentities:       len(identities),
		TotalUsers:            len(users),
		ExistenceSynchronized: len(identities) - missing,
		Issues:                issues,
	}
}

func (uc *SyncUseCase) getIdentity(ctx context.Context, id model.UserID) (*model.Identity, error) {
	identity, err := uc.directory.GetIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newSyncError(KindNotFound, id, err)
		}
		return nil, newSyncError(KindFetch, id, err)
	}
	return identity, nil
}

// FixMissingUser inserts the user row mirroring identity id. Calling it for an id that
// already has a row fails with KindInsert and interfaces.ErrAlreadyExists.
func (uc *SyncUseCase) FixMissingUser(ctx context.Context, id model.UserID) error {
	identity, err := uc.getIdentity(ctx, id)
	if err != nil {
		return err
	}

	user := model.NewUserFromIdentity(identity, uc.clock())
	if err := uc.repo.User().Insert(ctx, user); err != nil {
		return newSyncError(KindInsert, id, goerr.Wrap(err, "failed to insert user",
			goerr.V("user_id", id),
			goerr.V("email", identity.Email)))
	}

	logging.From(ctx).Info("inserted missing user", "user_id", id, "role", user.Role)
	return nil
}

// FixRoleMismatch copies the identity's role onto the user row
func (uc *SyncUseCase) FixRoleMismatch(ctx context.Context, id model.UserID) error {
	identity, err := uc.getIdentity(ctx, id)
	if err != nil {
		return err
	}

	role := identity.Profile().Role
	patch := &model.UserPatch{
		Role:      &role,
		UpdatedAt: uc.clock(),
	}
	if err := uc.repo.User().Update(ctx, id, patch); err != nil {
		kind := KindUpdate
		if errors.Is(err, interfaces.ErrNotFound) {
			kind = KindNotFound
		}
		return newSyncError(kind, id, goerr.Wrap(err, "failed to update user role",
			goerr.V("user_id", id),
			goerr.V("email", identity.Email),
			goerr.V("role", role)))
	}

	logging.From(ctx).Info("fixed role mismatch", "user_id", id, "role", role)
	return nil
}

// RemoveOrphanedUser deletes the user row with id. A row that is already gone counts
// as removed.
func (uc *SyncUseCase) RemoveOrphanedUser(ctx context.Context, id model.UserID) error {
	if err := uc.repo.User().Delete(ctx, id); err != nil {
		return newSyncError(KindDelete, id, goerr.Wrap(err, "failed to delete user", goerr.V("user_id", id)))
	}

	logging.From(ctx).Info("removed orphaned user", "user_id", id)
	return nil
}

// FixAllIssues analyzes once and applies the matching fix to every issue in emission
// order. A failing fix is recorded and the run continues. Only a failed analysis is
// returned as an error.
func (uc *SyncUseCase) FixAllIssues(ctx context.Context) (*model.FixAllResult, error) {
	analysis, err := uc.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	return uc.FixIssues(ctx, analysis.Issues), nil
}

// FixIssues applies the matching fix to each issue, in order
func (uc *SyncUseCase) FixIssues(ctx context.Context, issues []model.SyncIssue) *model.FixAllResult {
	result := &model.FixAllResult{
		Errors: []string{},
	}

	for _, issue := range issues {
		if err := uc.fixIssue(ctx, issue); err != nil {
			label := issue.Email
			if label == "" {
				label = issue.UserID.String()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", label, err.Error()))

			logging.From(ctx).Warn("failed to fix sync issue",
				"kind", issue.Kind,
				"user_id", issue.UserID,
				"error", err,
			)
			continue
		}
		result.Fixed++
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (uc *SyncUseCase) fixIssue(ctx context.Context, issue model.SyncIssue) error {
	switch issue.Kind {
	case types.IssueMissingInUsers:
		return uc.FixMissingUser(ctx, issue.UserID)
	case types.IssueRoleMismatch:
		return uc.FixRoleMismatch(ctx, issue.UserID)
	case types.IssueOrphanedUser:
		return uc.RemoveOrphanedUser(ctx, issue.UserID)
	default:
		return goerr.New("unknown issue kind", goerr.V("kind", issue.Kind), goerr.V("user_id", issue.UserID))
	}
}

// CreateAutoSyncTrigger provisions the database trigger that keeps the user table in step
// with the identity table, and backfills missing rows. Backends without triggers return
// ErrTriggerUnsupported.
func (uc *SyncUseCase) CreateAutoSyncTrigger(ctx context.Context) error {
	provisioner, ok := uc.repo.(interfaces.TriggerProvisioner)
	if !ok {
		return goerr.Wrap(ErrTriggerUnsupported, "cannot create auto-sync trigger")
	}

	if err := provisioner.ProvisionAutoSyncTrigger(ctx); err != nil {
		return goerr.Wrap(err, "failed to create auto-sync trigger")
	}

	logging.From(ctx).Info("auto-sync trigger provisioned")
	return nil
}
