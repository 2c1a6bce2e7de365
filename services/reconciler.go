// File: services/reconciler.go
package services

import (
	"context"

	"hspace-portal/catalog"
	"hspace-portal/dates"
	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/models"
)

// CompetitionReconciler mirrors catalog events into competitions, keyed by
// exact title. Two unrelated events sharing a title map to the same row.
type CompetitionReconciler struct {
	store CompetitionStore
}

func NewCompetitionReconciler(store CompetitionStore) *CompetitionReconciler {
	return &CompetitionReconciler{store: store}
}

// Reconcile creates the competition for ev or refreshes the stored one. Only
// fields that are present in ev and differ from storage are written, and
// nothing is written when nothing changed. Events without a title yield nil.
func (r *CompetitionReconciler) Reconcile(ctx context.Context, ev catalog.Event) (*models.Competition, error) {
	if ev.Title == "" {
		return nil, nil
	}

	start := dates.Persist(ev.Start)
	finish := dates.Persist(ev.Finish)
	summary := ev.DescriptionShort
	if summary == "" {
		summary = ev.Description
	}

	existing, err := r.store.GetCompetitionByTitle(ctx, ev.Title)
	if err != nil && !dberrors.IsEntryNotFound(err) {
		return nil, err
	}

	if err == nil {
		comp := existing
		updated := false
		if start != "" && comp.EventStart != start {
			comp.EventStart = start
			comp.ApplyStart = start
			updated = true
		}
		if finish != "" && comp.EventEnd != finish {
			comp.EventEnd = finish
			comp.ApplyEnd = finish
			updated = true
		}
		updated = setIfChanged(&comp.Summary, summary) || updated
		updated = setIfChanged(&comp.Mode, ev.Format) || updated
		updated = setIfChanged(&comp.Tags, ev.Location) || updated
		updated = setIfChanged(&comp.CoverImage, ev.Logo) || updated

		if !updated {
			logger.Debug.Printf("Reconcile: competition %d (%q) already up to date", comp.ID, comp.Title)
			return &comp, nil
		}
		if err := r.store.UpdateCompetition(ctx, &comp); err != nil {
			return nil, err
		}
		logger.Info.Printf("Reconcile: updated competition %d (%q) from catalog event %d", comp.ID, comp.Title, ev.ID)
		return &comp, nil
	}

	comp := models.Competition{
		Title:      ev.Title,
		ApplyStart: start,
		ApplyEnd:   start,
		EventStart: start,
		EventEnd:   finish,
		Summary:    summary,
		Mode:       ev.Format,
		Tags:       ev.Location,
		CoverImage: ev.Logo,
		Approved:   true,
	}
	if err := r.store.CreateCompetition(ctx, &comp); err != nil {
		return nil, err
	}
	logger.Info.Printf("Reconcile: created competition %d (%q) from catalog event %d", comp.ID, comp.Title, ev.ID)
	return &comp, nil
}

// setIfChanged stores value into *field when value is non-empty and differs.
func setIfChanged(field *string, value string) bool {
	if value == "" || *field == value {
		return false
	}
	*field = value
	return true
}
