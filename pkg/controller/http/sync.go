package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/usecase"
	"github.com/gasyway/gasyway/pkg/utils/errutil"
)

// SyncUseCase is the reconciler surface exposed over HTTP
type SyncUseCase interface {
	Analyze(ctx context.Context) (*model.SyncAnalysis, error)
	FixMissingUser(ctx context.Context, id model.UserID) error
	FixRoleMismatch(ctx context.Context, id model.UserID) error
	RemoveOrphanedUser(ctx context.Context, id model.UserID) error
	FixAllIssues(ctx context.Context) (*model.FixAllResult, error)
	CreateAutoSyncTrigger(ctx context.Context) error
}

// statusOf maps a reconciler error to an HTTP status
func statusOf(err error) int {
	if errors.Is(err, usecase.ErrTriggerUnsupported) {
		return http.StatusNotImplemented
	}

	kind, ok := usecase.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func analysisHandler(uc SyncUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analysis, err := uc.Analyze(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, http.StatusOK, analysis)
	}
}

// fixHandler wraps a single-record repair; the response is always a FixResult
func fixHandler(fix func(ctx context.Context, id model.UserID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.UserID(chi.URLParam(r, "id"))

		if err := fix(r.Context(), id); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, http.StatusOK, model.NewFixResult(nil))
	}
}

func fixMissingHandler(uc SyncUseCase) http.HandlerFunc {
	return fixHandler(uc.FixMissingUser)
}

func fixRoleHandler(uc SyncUseCase) http.HandlerFunc {
	return fixHandler(uc.FixRoleMismatch)
}

func removeOrphanHandler(uc SyncUseCase) http.HandlerFunc {
	return fixHandler(uc.RemoveOrphanedUser)
}

func fixAllHandler(uc SyncUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := uc.FixAllIssues(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	}
}

func triggerHandler(uc SyncUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.CreateAutoSyncTrigger(r.Context()); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, http.StatusOK, model.NewFixResult(nil))
	}
}
