package directory

import (
	"context"
	"slices"
	"strings"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/store"
	"alumnilink/internal/pkg/errs"
)

// rsvpIndex maps event ids to the ids of users who RSVP'd.
type rsvpIndex map[string][]string

func emptyRSVPs() rsvpIndex { return rsvpIndex{} }

// ListEvents returns every event, or those whose title, location or description
// contain query (case-insensitive).
func (s *Service) ListEvents(ctx context.Context, query string) []entity.Event {
	all := s.events.List(ctx)

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	return slices.DeleteFunc(all, func(e entity.Event) bool {
		return !matches(q, e.Title, e.Location, e.Description)
	})
}

// GetEvent returns the event with id.
func (s *Service) GetEvent(ctx context.Context, id string) (entity.Event, error) {
	e, ok := s.events.Get(ctx, id)
	if !ok {
		return entity.Event{}, errs.NewError(errs.ErrEventNotFound)
	}
	return e, nil
}

// CreateEvent validates e and prepends it, generating an id when e has none.
func (s *Service) CreateEvent(ctx context.Context, e entity.Event) (entity.Event, error) {
	e.Normalize()
	if fields := e.Validate(s.now()); fields != nil {
		return entity.Event{}, errs.Validation(fields)
	}

	id, err := s.assignID(e.ID, entity.PrefixEvent)
	if err != nil {
		return entity.Event{}, err
	}
	e.ID = id

	if err := s.events.Create(ctx, e); err != nil {
		return entity.Event{}, mapStoreErr(err, errs.ErrEventNotFound)
	}

	s.log.Info().Str("event_id", e.ID).Msg("Event created")
	return e, nil
}

// UpdateEvent overwrites the event with id by e.
func (s *Service) UpdateEvent(ctx context.Context, id string, e entity.Event) (entity.Event, error) {
	e.ID = id
	e.Normalize()
	if fields := e.Validate(s.now()); fields != nil {
		return entity.Event{}, errs.Validation(fields)
	}

	if err := s.events.Update(ctx, e); err != nil {
		return entity.Event{}, mapStoreErr(err, errs.ErrEventNotFound)
	}
	return e, nil
}

// DeleteEvent removes the event with id and its RSVP list.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return mapStoreErr(err, errs.ErrEventNotFound)
	}

	_, err := store.Update(ctx, s.store, store.KeyRSVPs, emptyRSVPs, func(idx rsvpIndex) (rsvpIndex, error) {
		delete(idx, id)
		return idx, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", id).Msg("Failed to drop RSVPs of deleted event")
	}

	s.log.Info().Str("event_id", id).Msg("Event deleted")
	return nil
}

// HasRSVP reports whether userID has RSVP'd for eventID.
func (s *Service) HasRSVP(ctx context.Context, eventID, userID string) bool {
	idx := store.Load(ctx, s.store, store.KeyRSVPs, emptyRSVPs)
	return slices.Contains(idx[eventID], userID)
}

// RSVP records userID as attending eventID and increments the event's count.
// A user is counted once per event. The RSVP index is written while the events
// lock is held, so an RSVP cannot outlive a concurrent DeleteEvent.
func (s *Service) RSVP(ctx context.Context, eventID, userID string) (entity.Event, error) {
	var updated entity.Event
	_, err := s.events.Mutate(ctx, func(items []entity.Event) ([]entity.Event, error) {
		i := slices.IndexFunc(items, func(e entity.Event) bool { return e.ID == eventID })
		if i < 0 {
			return nil, store.ErrNotFound
		}

		_, err := store.Update(ctx, s.store, store.KeyRSVPs, emptyRSVPs, func(idx rsvpIndex) (rsvpIndex, error) {
			if slices.Contains(idx[eventID], userID) {
				return nil, errs.NewError(errs.ErrAlreadyRSVPd)
			}
			if idx == nil {
				idx = rsvpIndex{}
			}
			idx[eventID] = append(idx[eventID], userID)
			return idx, nil
		})
		if err != nil {
			return nil, err
		}

		items[i].RSVPs++
		updated = items[i]
		return items, nil
	})
	if err != nil {
		return entity.Event{}, mapStoreErr(err, errs.ErrEventNotFound)
	}

	return updated, nil
}
