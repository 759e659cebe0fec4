package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type PollRepository struct {
	polls   *mongo.Collection
	timeout time.Duration
}

func NewPollRepository(db *mongo.Database, timeout time.Duration) *PollRepository {
	return &PollRepository{
		polls:   db.Collection(pollsCollection),
		timeout: timeout,
	}
}

func (r *PollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc pollDocument
	err := r.polls.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to find poll: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := toPollDocument(poll)
	doc.Version = poll.Version + 1

	if poll.Version == 0 {
		if _, err := r.polls.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("failed to insert poll: %w", err)
		}
		poll.Version = doc.Version
		return nil
	}

	res, err := r.polls.ReplaceOne(ctx, bson.M{"_id": poll.ID, "version": poll.Version}, doc)
	if err != nil {
		return fmt.Errorf("failed to replace poll: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.polls.CountDocuments(ctx, bson.M{"_id": poll.ID})
		if err != nil {
			return fmt.Errorf("failed to check poll: %w", err)
		}
		if n == 0 {
			return domain.ErrPollNotFound
		}
		return domain.ErrVersionConflict
	}

	poll.Version = doc.Version
	return nil
}

func (r *PollRepository) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.polls.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *PollRepository) Find(ctx context.Context, q ports.PollQuery) ([]*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if q.Skip < 0 {
		q.Skip = 0
	}
	filter := bson.M{}
	if q.Text != "" {
		filter["$text"] = bson.M{"$search": q.Text}
	}
	if q.AuthorID != "" {
		filter["authorId"] = q.AuthorID
	}
	if !q.InteractedSince.IsZero() {
		filter["lastInteractionDate"] = bson.M{"$gte": q.InteractedSince}
	}

	var (
		cursor *mongo.Cursor
		err    error
	)
	switch q.Order {
	case ports.OrderHeat:
		cursor, err = r.polls.Aggregate(ctx, heatPipeline(filter, q.Skip, q.Limit))
	case ports.OrderRelevance:
		score := bson.M{"$meta": "textScore"}
		opts := options.Find().
			SetProjection(bson.M{"score": score}).
			SetSort(bsonD("score", score, "postDate", -1, "_id", 1)).
			SetSkip(int64(q.Skip))
		if q.Limit > 0 {
			opts.SetLimit(int64(q.Limit))
		}
		cursor, err = r.polls.Find(ctx, filter, opts)
	default:
		opts := options.Find().
			SetSort(bsonD("postDate", -1, "_id", 1)).
			SetSkip(int64(q.Skip))
		if q.Limit > 0 {
			opts.SetLimit(int64(q.Limit))
		}
		cursor, err = r.polls.Find(ctx, filter, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []pollDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode polls: %w", err)
	}

	polls := make([]*domain.Poll, 0, len(docs))
	for _, d := range docs {
		polls = append(polls, d.toDomain())
	}
	return polls, nil
}

// heatPipeline ranks polls by votes plus comments.
func heatPipeline(filter bson.M, skip, limit int) mongo.Pipeline {
	votes := bson.M{"$sum": bson.M{"$map": bson.M{
		"input": "$choices",
		"as":    "c",
		"in":    bson.M{"$size": "$$c.voters"},
	}}}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{"heat": bson.M{"$add": bson.A{votes, bson.M{"$size": "$comments"}}}}}},
		{{Key: "$sort", Value: bsonD("heat", -1, "postDate", -1, "_id", 1)}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(skip)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	return pipeline
}
