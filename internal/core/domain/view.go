package domain

import "time"

type ChoiceView struct {
	ChoiceID string `json:"choiceId"`
	Body     string `json:"body"`
	Votes    int    `json:"votes"`
}

// PollView is a poll as seen by one viewer.
type PollView struct {
	PollURL            string       `json:"pollUrl"`
	PollID             string       `json:"pollId"`
	AuthorID           string       `json:"authorId"`
	AuthorName         string       `json:"authorName"`
	PostDate           time.Time    `json:"postDate"`
	Issue              string       `json:"issue"`
	Choices            []ChoiceView `json:"choices"`
	ChoiceVotedFor     *string      `json:"choiceVotedFor"`
	RequiresLogin      bool         `json:"requiresLogin"`
	CanAddExtraChoices bool         `json:"canAddExtraChoices"`
	PollWillClose      bool         `json:"pollWillClose"`
	CloseDate          *time.Time   `json:"closeDate"`
	Closed             bool         `json:"closed"`
	SearchKeywords     string       `json:"searchKeywords"`
	Edited             bool         `json:"edited"`
	EditCount          int          `json:"editCount"`
	IsAuthor           bool         `json:"isAuthor"`
	HasVoted           bool         `json:"hasVoted"`
}

type PollSummary struct {
	PollID       string    `json:"pollId"`
	Issue        string    `json:"issue"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	PostDate     time.Time `json:"postDate"`
	VoteCount    int       `json:"voteCount"`
	CommentCount int       `json:"commentCount"`
	EditCount    int       `json:"editCount"`
	Closed       bool      `json:"closed"`
}

type PollPage struct {
	Polls    []PollSummary `json:"polls"`
	LastPage bool          `json:"lastPage"`
}

type CommentView struct {
	CommentID  string    `json:"commentId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	PostDate   time.Time `json:"postDate"`
	Body       string    `json:"body"`
}

type CommentPage struct {
	Comments []CommentView `json:"comments"`
	LastPage bool          `json:"lastPage"`
}

func ChoiceViews(choices []Choice) []ChoiceView {
	views := make([]ChoiceView, 0, len(choices))
	for _, c := range choices {
		views = append(views, ChoiceView{ChoiceID: c.ID, Body: c.Body, Votes: len(c.Voters)})
	}
	return views
}
