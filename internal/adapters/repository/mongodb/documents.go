package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

type pollDocument struct {
	ID                  string            `bson:"_id"`
	AuthorID            string            `bson:"authorId"`
	PostDate            time.Time         `bson:"postDate"`
	Issue               string            `bson:"issue"`
	Choices             []choiceDocument  `bson:"choices"`
	Comments            []commentDocument `bson:"comments"`
	RequiresLogin       bool              `bson:"requiresLogin"`
	CanAddExtraChoices  bool              `bson:"canAddExtraChoices"`
	PollWillClose       bool              `bson:"pollWillClose"`
	CloseDate           *time.Time        `bson:"closeDate"`
	SearchKeywords      string            `bson:"searchKeywords"`
	LastInteractionDate time.Time         `bson:"lastInteractionDate"`
	EditCount           int               `bson:"editCount"`
	Version             int64             `bson:"version"`
}

type choiceDocument struct {
	ID     string   `bson:"_id"`
	Body   string   `bson:"body"`
	Voters []string `bson:"voters"`
}

type commentDocument struct {
	ID       string    `bson:"_id"`
	AuthorID string    `bson:"authorId"`
	PostDate time.Time `bson:"postDate"`
	Body     string    `bson:"body"`
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Verified  bool      `bson:"verified"`
	CreatedAt time.Time `bson:"createdAt"`
}

// toPollDocument never writes null arrays; the heat aggregation takes the
// size of every voters and comments array.
func toPollDocument(p *domain.Poll) pollDocument {
	doc := pollDocument{
		ID:                  p.ID,
		AuthorID:            p.AuthorID,
		PostDate:            p.PostDate,
		Issue:               p.Issue,
		Choices:             make([]choiceDocument, 0, len(p.Choices)),
		Comments:            make([]commentDocument, 0, len(p.Comments)),
		RequiresLogin:       p.RequiresLogin,
		CanAddExtraChoices:  p.CanAddExtraChoices,
		PollWillClose:       p.PollWillClose,
		CloseDate:           p.CloseDate,
		SearchKeywords:      p.SearchKeywords,
		LastInteractionDate: p.LastInteractionDate,
		EditCount:           p.EditCount,
		Version:             p.Version,
	}
	for _, c := range p.Choices {
		doc.Choices = append(doc.Choices, choiceDocument{ID: c.ID, Body: c.Body, Voters: append([]string{}, c.Voters...)})
	}
	for _, c := range p.Comments {
		doc.Comments = append(doc.Comments, commentDocument{ID: c.ID, AuthorID: c.AuthorID, PostDate: c.PostDate, Body: c.Body})
	}
	return doc
}

func (d pollDocument) toDomain() *domain.Poll {
	p := &domain.Poll{
		ID:                  d.ID,
		AuthorID:            d.AuthorID,
		PostDate:            d.PostDate,
		Issue:               d.Issue,
		Choices:             make([]domain.Choice, 0, len(d.Choices)),
		RequiresLogin:       d.RequiresLogin,
		CanAddExtraChoices:  d.CanAddExtraChoices,
		PollWillClose:       d.PollWillClose,
		CloseDate:           d.CloseDate,
		SearchKeywords:      d.SearchKeywords,
		LastInteractionDate: d.LastInteractionDate,
		EditCount:           d.EditCount,
		Version:             d.Version,
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

func (d userDocument) toDomain() *domain.User {
	return &domain.User{ID: d.ID, Name: d.Name, Email: d.Email, Verified: d.Verified, CreatedAt: d.CreatedAt}
}

// bsonD builds an ordered document from alternating keys and values.
func bsonD(pairs ...interface{}) bson.D {
	d := make(bson.D, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		d = append(d, bson.E{Key: pairs[i].(string), Value: pairs[i+1]})
	}
	return d
}
