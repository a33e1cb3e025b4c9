package chat

import (
	"context"
	"slices"
	"strings"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/store"
)

// KeySeparator joins the two participant ids of a conversation key.
const KeySeparator = "--"

// ConversationKey returns the key of the conversation between a and b. The key is
// the two ids sorted and joined with KeySeparator, so it does not depend on order.
func ConversationKey(a, b string) string {
	ids := []string{a, b}
	slices.Sort(ids)
	return strings.Join(ids, KeySeparator)
}

// Participants splits key into its two participant ids.
func Participants(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, KeySeparator)
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// PartnerOf returns the participant of key that is not userID.
func PartnerOf(key, userID string) (string, bool) {
	a, b, ok := Participants(key)
	switch {
	case !ok:
		return "", false
	case a == userID:
		return b, true
	case b == userID:
		return a, true
	}
	return "", false
}

// messageMap is the stored form of every conversation, keyed by conversation key.
type messageMap map[string][]entity.Message

func emptyMessages() messageMap { return messageMap{} }

// Index stores conversations under store.KeyMessages.
type Index struct {
	store *store.Store
}

// NewIndex returns an Index over st.
func NewIndex(st *store.Store) *Index {
	return &Index{store: st}
}

// Append adds msg to the end of the conversation under key and returns the
// conversation.
func (idx *Index) Append(ctx context.Context, key string, msg entity.Message) ([]entity.Message, error) {
	var conversation []entity.Message
	_, err := store.Update(ctx, idx.store, store.KeyMessages, emptyMessages, func(all messageMap) (messageMap, error) {
		if all == nil {
			all = messageMap{}
		}
		all[key] = append(all[key], msg)
		conversation = all[key]
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// Messages returns the conversation under key in append order, or an empty list.
func (idx *Index) Messages(ctx context.Context, key string) []entity.Message {
	all := store.Load(ctx, idx.store, store.KeyMessages, emptyMessages)
	if msgs := all[key]; msgs != nil {
		return msgs
	}
	return []entity.Message{}
}

// Partners returns the sorted ids of everyone userID has a conversation with.
func (idx *Index) Partners(ctx context.Context, userID string) []string {
	all := store.Load(ctx, idx.store, store.KeyMessages, emptyMessages)

	partners := make([]string, 0)
	for key := range all {
		if partner, ok := PartnerOf(key, userID); ok {
			partners = append(partners, partner)
		}
	}

	slices.Sort(partners)
	return slices.Compact(partners)
}

// Threads returns every conversation of userID keyed by partner id.
func (idx *Index) Threads(ctx context.Context, userID string) map[string][]entity.Message {
	all := store.Load(ctx, idx.store, store.KeyMessages, emptyMessages)

	threads := make(map[string][]entity.Message)
	for key, msgs := range all {
		if partner, ok := PartnerOf(key, userID); ok {
			threads[partner] = msgs
		}
	}
	return threads
}
