package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/logging"
	"advisor-chat/internal/weblinks"
)

const (
	backendErrorPrefix     = "Error: "
	missingReplyContent    = "I apologize, but I encountered an error processing your request."
	connectionErrorContent = "I apologize, but I encountered an error connecting to the server."
	connectionRetryHint    = "Please make sure the advisor server is running and try again."
)

// AdvisorAPI is the backend the conversation talks to.
// *advisorapi.Client satisfies it.
type AdvisorAPI interface {
	SubmitQuery(ctx context.Context, text string) (domain.QueryResponse, error)
	UploadDocument(ctx context.Context, doc domain.Document) (domain.UploadResult, error)
}

// Turn is a query that has been accepted and is waiting for the backend.
type Turn struct {
	Query domain.Message
}

// TurnOutcome describes how a turn settled. Code is empty for a normal answer,
// ErrorBackendReported when the advisor itself failed, and ErrorTransport when
// the request never produced a response.
type TurnOutcome struct {
	Reply domain.Message
	Links []domain.Link
	Code  ErrorCode
	Err   error
}

// Conversation owns the session state: the message log, the link set of the
// latest answer, and the in-flight flags. Every mutation goes through its
// methods; readers get copies.
//
// A query turn moves Idle -> Sending (Begin) -> Idle (Settle). Send runs a
// whole turn for callers that can block.
type Conversation struct {
	api    AdvisorAPI
	store  *MessageStore
	logger *zap.Logger

	mu        sync.RWMutex
	links     []domain.Link
	pending   string
	uploading bool
}

func NewConversation(api AdvisorAPI, logger *zap.Logger) (*Conversation, error) {
	if api == nil {
		return nil, errors.New("usecase: advisor api must not be nil")
	}
	return &Conversation{
		api:    api,
		store:  NewMessageStore(),
		logger: logging.OrNop(logger),
		links:  []domain.Link{},
	}, nil
}

// CanSubmit reports whether text would be accepted by Begin: it is not blank
// and no query is in flight.
func (c *Conversation) CanSubmit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return !c.Querying()
}

// Begin validates text, appends it as a user message and marks the query as
// in flight. The caller must pass the returned Turn to Settle.
func (c *Conversation) Begin(text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, newError(ErrorValidation, "empty_query", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != "" {
		return Turn{}, newError(ErrorBusy, "query_in_flight", nil)
	}

	msg := c.store.Append(domain.RoleUser, text)
	c.pending = msg.ID
	c.logger.Debug("query started", zap.String("message_id", msg.ID), zap.Int("seq", msg.Seq))
	return Turn{Query: msg}, nil
}

// Settle records the backend's answer for turn. On success the advisor reply
// is appended and the link set replaced; on failure an apology is appended and
// the link set cleared. A turn that is not the one in flight is ignored.
func (c *Conversation) Settle(turn Turn, resp domain.QueryResponse, callErr error) TurnOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.Query.ID == "" || turn.Query.ID != c.pending {
		c.logger.Warn("ignoring stale turn", zap.String("message_id", turn.Query.ID))
		return TurnOutcome{Err: newError(ErrorValidation, "stale_turn", nil)}
	}
	c.pending = ""

	if callErr != nil {
		reply := c.store.Append(domain.RoleAdvisor, connectionErrorMessage(callErr))
		c.links = []domain.Link{}
		c.logger.Warn("query failed", zap.String("message_id", turn.Query.ID), zap.Error(callErr))
		return TurnOutcome{
			Reply: reply,
			Links: []domain.Link{},
			Code:  ErrorTransport,
			Err:   newError(ErrorTransport, "query_failed", callErr),
		}
	}

	var (
		content string
		out     TurnOutcome
	)
	switch resp.Advisor.Kind {
	case domain.ReplyText:
		content = resp.Advisor.Text
	case domain.ReplyError:
		content = backendErrorPrefix + resp.Advisor.Error
		out.Code = ErrorBackendReported
		out.Err = newError(ErrorBackendReported, "advisor_error", errors.New(resp.Advisor.Error))
	default:
		content = missingReplyContent
		out.Code = ErrorBackendReported
		out.Err = newError(ErrorBackendReported, "advisor_reply_missing", nil)
	}

	out.Reply = c.store.Append(domain.RoleAdvisor, content)
	c.links = weblinks.Parse(resp.WebLinks)
	out.Links = cloneLinks(c.links)

	c.logger.Info("query settled",
		zap.String("message_id", turn.Query.ID),
		zap.Stringer("reply_kind", resp.Advisor.Kind),
		zap.Int("links", len(c.links)),
	)
	return out
}

// Send runs a full turn and blocks until the backend answers. The returned
// error is non-nil only when the input was rejected before any request.
func (c *Conversation) Send(ctx context.Context, text string) (TurnOutcome, error) {
	turn, err := c.Begin(text)
	if err != nil {
		return TurnOutcome{}, err
	}
	resp, callErr := c.Submit(ctx, turn)
	return c.Settle(turn, resp, callErr), nil
}

// Submit sends the text of turn to the backend. It does not touch session
// state, so it can run off the UI thread; pass its result to Settle.
func (c *Conversation) Submit(ctx context.Context, turn Turn) (domain.QueryResponse, error) {
	return c.api.SubmitQuery(ctx, turn.Query.Content)
}

// Messages returns the message log in display order.
func (c *Conversation) Messages() []domain.Message {
	return c.store.All()
}

// LastMessage returns the most recent message.
func (c *Conversation) LastMessage() (domain.Message, bool) {
	return c.store.Last()
}

// Links returns the link set of the most recently settled query.
func (c *Conversation) Links() []domain.Link {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneLinks(c.links)
}

// Querying reports whether a query is in flight.
func (c *Conversation) Querying() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending != ""
}

func connectionErrorMessage(err error) string {
	if detail := queryFailureDetail(err); detail != "" {
		return connectionErrorContent + "\n\n" + detail
	}
	return connectionErrorContent + " " + connectionRetryHint
}

func cloneLinks(links []domain.Link) []domain.Link {
	out := make([]domain.Link, len(links))
	copy(out, links)
	return out
}
