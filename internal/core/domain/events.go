package domain

import "time"

const (
	EventNewPoll       = "new poll"
	EventCastVote      = "cast vote"
	EventAddChoice     = "add choice"
	EventEditPoll      = "edit poll"
	EventRemovePoll    = "remove poll"
	EventPostComment   = "post comment"
	EventEditComment   = "edit comment"
	EventRemoveComment = "remove comment"
)

// Event is a committed poll mutation pushed to connected viewers.
type Event interface {
	EventName() string
	EventPollID() string
}

type NewPollEvent struct {
	PollID         string    `json:"pollId"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	Issue          string    `json:"issue"`
	PostDate       time.Time `json:"postDate"`
	SearchKeywords string    `json:"searchKeywords"`
	Version        int64     `json:"version"`
}

type CastVoteEvent struct {
	PollID   string `json:"pollId"`
	ChoiceID string `json:"choiceId"`
	Version  int64  `json:"version"`
}

type AddChoiceEvent struct {
	PollID    string `json:"pollId"`
	ChoiceID  string `json:"choiceId"`
	Body      string `json:"body"`
	EditCount int    `json:"editCount"`
	IsAuthor  bool   `json:"isAuthor"`
	Version   int64  `json:"version"`
}

type EditPollEvent struct {
	PollID             string       `json:"pollId"`
	Issue              string       `json:"issue"`
	Choices            []ChoiceView `json:"choices"`
	Keywords           string       `json:"keywords"`
	RequiresLogin      bool         `json:"requiresLogin"`
	CanAddExtraChoices bool         `json:"canAddExtraChoices"`
	PollWillClose      bool         `json:"pollWillClose"`
	CloseDate          *time.Time   `json:"closeDate"`
	EditCount          int          `json:"editCount"`
	Version            int64        `json:"version"`
}

type RemovePollEvent struct {
	PollID string `json:"pollId"`
}

type PostCommentEvent struct {
	PollID     string    `json:"pollId"`
	CommentID  string    `json:"commentId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	PostDate   time.Time `json:"postDate"`
	Version    int64     `json:"version"`
}

type EditCommentEvent struct {
	PollID    string `json:"pollId"`
	CommentID string `json:"commentId"`
	Body      string `json:"body"`
	Version   int64  `json:"version"`
}

type RemoveCommentEvent struct {
	PollID    string `json:"pollId"`
	CommentID string `json:"commentId"`
	Version   int64  `json:"version"`
}

func (e NewPollEvent) EventName() string       { return EventNewPoll }
func (e CastVoteEvent) EventName() string      { return EventCastVote }
func (e AddChoiceEvent) EventName() string     { return EventAddChoice }
func (e EditPollEvent) EventName() string      { return EventEditPoll }
func (e RemovePollEvent) EventName() string    { return EventRemovePoll }
func (e PostCommentEvent) EventName() string   { return EventPostComment }
func (e EditCommentEvent) EventName() string   { return EventEditComment }
func (e RemoveCommentEvent) EventName() string { return EventRemoveComment }

func (e NewPollEvent) EventPollID() string       { return e.PollID }
func (e CastVoteEvent) EventPollID() string      { return e.PollID }
func (e AddChoiceEvent) EventPollID() string     { return e.PollID }
func (e EditPollEvent) EventPollID() string      { return e.PollID }
func (e RemovePollEvent) EventPollID() string    { return e.PollID }
func (e PostCommentEvent) EventPollID() string   { return e.PollID }
func (e EditCommentEvent) EventPollID() string   { return e.PollID }
func (e RemoveCommentEvent) EventPollID() string { return e.PollID }
