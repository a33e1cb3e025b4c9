package chat

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/user"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/randx"
)

// Directory resolves participant ids to user summaries.
type Directory interface {
	LookupUser(ctx context.Context, id string) (user.User, bool)
}

// Notifier pushes frames to the live connections of users.
type Notifier interface {
	Deliver(frame Frame, userIDs ...string)
}

// Summary is one entry of a user's conversation list.
type Summary struct {
	ConversationID string          `json:"conversationId"`
	Partner        user.User       `json:"partner"`
	LastMessage    *entity.Message `json:"lastMessage,omitempty"`
	Total          int             `json:"total"`
}

// Service validates and records messages between two directory members.
type Service struct {
	index     *Index
	directory Directory
	notifier  Notifier
	now       func() time.Time
	log       zerolog.Logger
}

// NewService returns a Service. notifier may be nil.
func NewService(index *Index, directory Directory, notifier Notifier) *Service {
	return &Service{
		index:     index,
		directory: directory,
		notifier:  notifier,
		now:       time.Now,
		log:       logx.Component("Messaging"),
	}
}

// Send appends text from senderID to the conversation with recipientID and
// pushes it to both participants' connections.
func (s *Service) Send(ctx context.Context, senderID, recipientID, text string) (entity.Message, error) {
	text = strings.TrimSpace(text)
	recipientID = strings.TrimSpace(recipientID)

	switch {
	case text == "":
		return entity.Message{}, errs.NewError(errs.ErrMessageEmpty)
	case len(text) > entity.MaxMessageBytes:
		return entity.Message{}, errs.NewError(errs.ErrMessageContentTooLong, entity.MaxMessageBytes)
	case recipientID == "":
		return entity.Message{}, errs.NewError(errs.ErrRecipientNotFound)
	case recipientID == senderID:
		return entity.Message{}, errs.NewError(errs.ErrSelfConversation)
	}

	if _, ok := s.directory.LookupUser(ctx, senderID); !ok {
		return entity.Message{}, errs.NewError(errs.ErrForbidden)
	}
	if _, ok := s.directory.LookupUser(ctx, recipientID); !ok {
		return entity.Message{}, errs.NewError(errs.ErrRecipientNotFound)
	}

	msg := entity.Message{
		ID:          randx.MessageID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		Timestamp:   s.now().UTC(),
	}

	key := ConversationKey(senderID, recipientID)
	if _, err := s.index.Append(ctx, key, msg); err != nil {
		return entity.Message{}, errs.NewError(errs.ErrUnknown, err)
	}

	s.log.Debug().Str("conversation", key).Str("message_id", msg.ID).Msg("Message appended")

	if s.notifier != nil {
		frame, err := NewFrame(TypeNewMessage, NewMessagePayload{ConversationID: key, Message: msg})
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to build NEW_MESSAGE frame")
		} else {
			s.notifier.Deliver(frame, senderID, recipientID)
		}
	}

	return msg, nil
}

// Conversation returns the messages between userID and partnerID in send order.
func (s *Service) Conversation(ctx context.Context, userID, partnerID string) ([]entity.Message, error) {
	if partnerID == userID {
		return nil, errs.NewError(errs.ErrSelfConversation)
	}
	return s.index.Messages(ctx, ConversationKey(userID, partnerID)), nil
}

// Conversations lists every conversation of userID, most recent first. A
// partner whose profile no longer exists is shown as an unknown user.
func (s *Service) Conversations(ctx context.Context, userID string) []Summary {
	threads := s.index.Threads(ctx, userID)

	out := make([]Summary, 0, len(threads))
	for partnerID, msgs := range threads {
		partner, ok := s.directory.LookupUser(ctx, partnerID)
		if !ok {
			partner = user.Unknown(partnerID)
		}

		summary := Summary{
			ConversationID: ConversationKey(userID, partnerID),
			Partner:        partner,
			Total:          len(msgs),
		}
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			summary.LastMessage = &last
		}
		out = append(out, summary)
	}

	slices.SortStableFunc(out, func(a, b Summary) int {
		if c := lastAt(b).Compare(lastAt(a)); c != 0 {
			return c
		}
		return strings.Compare(a.Partner.ID, b.Partner.ID)
	})

	return out
}

// Partners returns the sorted ids of everyone userID has messaged.
func (s *Service) Partners(ctx context.Context, userID string) []string {
	return s.index.Partners(ctx, userID)
}

func lastAt(s Summary) time.Time {
	if s.LastMessage == nil {
		return time.Time{}
	}
	return s.LastMessage.Timestamp
}
