package postgres

import (
	"time"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

// pollDocument is the JSONB shape of a poll. Arrays are never null so the
// heat ordering can take their length.
type pollDocument struct {
	Issue              string            `json:"issue"`
	Choices            []choiceDocument  `json:"choices"`
	Comments           []commentDocument `json:"comments"`
	RequiresLogin      bool              `json:"requiresLogin"`
	CanAddExtraChoices bool              `json:"canAddExtraChoices"`
	PollWillClose      bool              `json:"pollWillClose"`
	CloseDate          *time.Time        `json:"closeDate"`
	SearchKeywords     string            `json:"searchKeywords"`
	EditCount          int               `json:"editCount"`
}

type choiceDocument struct {
	ID     string   `json:"id"`
	Body   string   `json:"body"`
	Voters []string `json:"voters"`
}

type commentDocument struct {
	ID       string    `json:"id"`
	AuthorID string    `json:"authorId"`
	PostDate time.Time `json:"postDate"`
	Body     string    `json:"body"`
}

func toDocument(p *domain.Poll) pollDocument {
	doc := pollDocument{
		Issue:              p.Issue,
		Choices:            make([]choiceDocument, 0, len(p.Choices)),
		Comments:           make([]commentDocument, 0, len(p.Comments)),
		RequiresLogin:      p.RequiresLogin,
		CanAddExtraChoices: p.CanAddExtraChoices,
		PollWillClose:      p.PollWillClose,
		CloseDate:          p.CloseDate,
		SearchKeywords:     p.SearchKeywords,
		EditCount:          p.EditCount,
	}
	for _, c := range p.Choices {
		doc.Choices = append(doc.Choices, choiceDocument{ID: c.ID, Body: c.Body, Voters: append([]string{}, c.Voters...)})
	}
	for _, c := range p.Comments {
		doc.Comments = append(doc.Comments, commentDocument{ID: c.ID, AuthorID: c.AuthorID, PostDate: c.PostDate, Body: c.Body})
	}
	return doc
}

func (d pollDocument) toDomain(id, authorID string, postDate, lastInteraction time.Time, version int64) *domain.Poll {
	p := &domain.Poll{
		ID:                  id,
		AuthorID:            authorID,
		PostDate:            postDate.UTC(),
		Issue:               d.Issue,
		Choices:             make([]domain.Choice, 0, len(d.Choices)),
		RequiresLogin:       d.RequiresLogin,
		CanAddExtraChoices:  d.CanAddExtraChoices,
		PollWillClose:       d.PollWillClose,
		CloseDate:           d.CloseDate,
		SearchKeywords:      d.SearchKeywords,
		LastInteractionDate: lastInteraction.UTC(),
		EditCount:           d.EditCount,
		Version:             version,
	}
	for _, c := range d.Choices {
		voters := c.Voters
		if voters == nil {
			voters = []string{}
		}
		p.Choices = append(p.Choices, domain.Choice{ID: c.ID, Body: c.Body, Voters: voters})
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, domain.Comment{ID: c.ID, AuthorID: c.AuthorID, PostDate: c.PostDate, Body: c.Body})
	}
	return p
}

func searchText(p *domain.Poll) string {
	return p.Issue + " " + p.SearchKeywords
}
