package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxIssueLength   = 280
	MaxChoiceLength  = 140
	MaxCommentLength = 140
	MinChoices       = 2
)

type Choice struct {
	ID     string
	Body   string
	Voters []string
}

type Comment struct {
	ID       string
	AuthorID string
	PostDate time.Time
	Body     string
}

// Poll is the aggregate root. Choices and comments are only ever changed
// through its methods so that the voting invariants hold after every save.
type Poll struct {
	ID                  string
	AuthorID            string
	PostDate            time.Time
	Issue               string
	Choices             []Choice
	Comments            []Comment
	RequiresLogin       bool
	CanAddExtraChoices  bool
	PollWillClose       bool
	CloseDate           *time.Time
	SearchKeywords      string
	LastInteractionDate time.Time
	EditCount           int
	Version             int64
}

type PollSettings struct {
	RequiresLogin      bool
	CanAddExtraChoices bool
	PollWillClose      bool
	CloseDate          *time.Time
}

type ChoiceEdit struct {
	ChoiceID string
	Body     string
}

type PollEdit struct {
	Issue          string
	SearchKeywords string
	Settings       PollSettings
	RemovedChoices []string
	EditedChoices  []ChoiceEdit
}

func NewPoll(authorID, issue string, choices []string, keywords string, settings PollSettings, now time.Time) *Poll {
	p := &Poll{
		ID:                  uuid.NewString(),
		AuthorID:            authorID,
		PostDate:            now,
		Issue:               issue,
		SearchKeywords:      keywords,
		LastInteractionDate: now,
	}
	p.applySettings(settings)
	for _, body := range choices {
		p.Choices = append(p.Choices, Choice{ID: uuid.NewString(), Body: body, Voters: []string{}})
	}
	return p
}

func (p *Poll) applySettings(s PollSettings) {
	p.RequiresLogin = s.RequiresLogin
	p.CanAddExtraChoices = s.CanAddExtraChoices
	p.PollWillClose = s.PollWillClose
	if s.PollWillClose && s.CloseDate != nil {
		closeDate := *s.CloseDate
		p.CloseDate = &closeDate
	} else {
		p.CloseDate = nil
	}
}

func (p *Poll) Closed(now time.Time) bool {
	return p.PollWillClose && p.CloseDate != nil && !now.Before(*p.CloseDate)
}

func (p *Poll) VoteCount() int {
	total := 0
	for _, c := range p.Choices {
		total += len(c.Voters)
	}
	return total
}

func (p *Poll) CommentCount() int {
	return len(p.Comments)
}

func (p *Poll) Heat() int {
	return p.VoteCount() + p.CommentCount()
}

func (p *Poll) Edited() bool {
	return p.EditCount > 0
}

// VotedFor returns the choice holding voterID, if any.
func (p *Poll) VotedFor(voterID string) (string, bool) {
	for _, c := range p.Choices {
		for _, v := range c.Voters {
			if v == voterID {
				return c.ID, true
			}
		}
	}
	return "", false
}

func (p *Poll) choiceIndex(choiceID string) int {
	for i, c := range p.Choices {
		if c.ID == choiceID {
			return i
		}
	}
	return -1
}

func (p *Poll) commentIndex(commentID string) int {
	for i, c := range p.Comments {
		if c.ID == commentID {
			return i
		}
	}
	return -1
}

// CastVote does not check for a previous vote; callers consult VotedFor first.
func (p *Poll) CastVote(voterID, choiceID string, now time.Time) error {
	if p.Closed(now) {
		return ErrPollClosed
	}
	if voterID == p.AuthorID {
		return ErrAuthorCannotVote
	}
	i := p.choiceIndex(choiceID)
	if i < 0 {
		return ErrChoiceNotFound
	}

	p.Choices[i].Voters = append(p.Choices[i].Voters, voterID)
	p.LastInteractionDate = now
	return nil
}

// AddChoice appends a write-in. The author may add choices at any time
// without it counting as an edit; anyone else votes for the choice they
// write in and bumps the edit count.
func (p *Poll) AddChoice(userID, body string, now time.Time) (Choice, error) {
	if err := validateChoiceBody(body); err != nil {
		return Choice{}, err
	}

	if userID == p.AuthorID {
		c := Choice{ID: uuid.NewString(), Body: body, Voters: []string{}}
		p.Choices = append(p.Choices, c)
		return c, nil
	}

	if p.Closed(now) {
		return Choice{}, ErrPollClosed
	}
	if !p.CanAddExtraChoices {
		return Choice{}, ErrExtraChoicesDisabled
	}

	c := Choice{ID: uuid.NewString(), Body: body, Voters: []string{userID}}
	p.Choices = append(p.Choices, c)
	p.LastInteractionDate = now
	p.EditCount++
	return c, nil
}

// Edit applies an author revision. Nothing is changed when it fails.
func (p *Poll) Edit(e PollEdit) error {
	removed := make(map[string]struct{}, len(e.RemovedChoices))
	for _, id := range e.RemovedChoices {
		removed[id] = struct{}{}
	}

	remaining := 0
	for _, c := range p.Choices {
		if _, ok := removed[c.ID]; !ok {
			remaining++
		}
	}
	if remaining < MinChoices {
		return ErrTooFewChoices
	}
	for _, edit := range e.EditedChoices {
		if err := validateChoiceBody(edit.Body); err != nil {
			return err
		}
	}

	kept := make([]Choice, 0, remaining)
	for _, c := range p.Choices {
		if _, ok := removed[c.ID]; ok {
			continue
		}
		for _, edit := range e.EditedChoices {
			if edit.ChoiceID == c.ID {
				c.Body = edit.Body
			}
		}
		kept = append(kept, c)
	}

	p.Choices = kept
	p.Issue = e.Issue
	p.SearchKeywords = e.SearchKeywords
	p.applySettings(e.Settings)
	p.EditCount++
	return nil
}

func (p *Poll) PostComment(authorID, body string, now time.Time) Comment {
	c := Comment{ID: uuid.NewString(), AuthorID: authorID, PostDate: now, Body: body}
	p.Comments = append(p.Comments, c)
	p.LastInteractionDate = now
	return c
}

func (p *Poll) canModerate(userID string, c Comment) bool {
	return userID == c.AuthorID || userID == p.AuthorID
}

func (p *Poll) EditComment(userID, commentID, body string) error {
	i := p.commentIndex(commentID)
	if i < 0 {
		return ErrCommentNotFound
	}
	if !p.canModerate(userID, p.Comments[i]) {
		return ErrNotCommentAuthor
	}

	p.Comments[i].Body = body
	return nil
}

func (p *Poll) RemoveComment(userID, commentID string) error {
	i := p.commentIndex(commentID)
	if i < 0 {
		return ErrCommentNotFound
	}
	if !p.canModerate(userID, p.Comments[i]) {
		return ErrNotCommentAuthor
	}

	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
	return nil
}

func (p *Poll) FindChoice(choiceID string) (Choice, bool) {
	i := p.choiceIndex(choiceID)
	if i < 0 {
		return Choice{}, false
	}
	return p.Choices[i], true
}

// Clone returns a deep copy, used by stores that keep polls in memory.
func (p *Poll) Clone() *Poll {
	c := *p
	c.Choices = make([]Choice, len(p.Choices))
	for i, choice := range p.Choices {
		choice.Voters = append([]string{}, choice.Voters...)
		c.Choices[i] = choice
	}
	c.Comments = append([]Comment(nil), p.Comments...)
	if p.CloseDate != nil {
		closeDate := *p.CloseDate
		c.CloseDate = &closeDate
	}
	return &c
}

func validateChoiceBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrChoiceRequired
	}
	if utf8.RuneCountInString(body) > MaxChoiceLength {
		return ErrChoiceTooLong
	}
	return nil
}
