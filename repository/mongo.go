package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cncdesign/cncbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	submissionsCollection = "submissions"
	projectsCollection    = "projects"
	usersCollection       = "users"
)

// NewMongoStores wires the Mongo-backed stores on top of db.
func NewMongoStores(client *mongo.Client, db *mongo.Database) *Stores {
	return &Stores{
		Submissions: &MongoSubmissionStore{col: db.Collection(submissionsCollection)},
		Projects:    &MongoProjectStore{col: db.Collection(projectsCollection)},
		Users:       &MongoUserStore{col: db.Collection(usersCollection)},
		Close:       client.Disconnect,
	}
}

// EnsureMongoIndexes creates the indexes the list queries and the admin
// lookup rely on. Safe to run on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	newest := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}
	if _, err := db.Collection(submissionsCollection).Indexes().CreateOne(ctx, newest); err != nil {
		return fmt.Errorf("submissions index: %w", err)
	}
	if _, err := db.Collection(projectsCollection).Indexes().CreateOne(ctx, newest); err != nil {
		return fmt.Errorf("projects index: %w", err)
	}
	email := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, email); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func findOptions(opts ListOptions) *options.FindOptionsBuilder {
	find := options.Find().SetSort(newestFirst)
	if opts.Skip > 0 {
		find.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		find.SetLimit(opts.Limit)
	}
	return find
}

type MongoSubmissionStore struct {
	col *mongo.Collection
}

func (s *MongoSubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	now := time.Now().UTC()
	sub.ID = bson.NewObjectID().Hex()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, sub); err != nil {
		sub.ID = ""
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *MongoSubmissionStore) List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cursor, err := s.col.Find(ctx, filter, findOptions(f.ListOptions))
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Submission, 0)
	for cursor.Next(ctx) {
		var sub models.Submission
		if err := cursor.Decode(&sub); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		items = append(items, sub)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return items, nil
}

func (s *MongoSubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find submission %s: %w", id, err)
	}
	return &sub, nil
}

func (s *MongoSubmissionStore) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error) {
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sub models.Submission
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update submission %s: %w", id, err)
	}
	return &sub, nil
}

func (s *MongoSubmissionStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoProjectStore struct {
	col *mongo.Collection
}

func (s *MongoProjectStore) Create(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	p.ID = bson.NewObjectID().Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		p.ID = ""
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *MongoProjectStore) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}

	cursor, err := s.col.Find(ctx, filter, findOptions(f.ListOptions))
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Project, 0)
	for cursor.Next(ctx) {
		var p models.Project
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		items = append(items, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *MongoProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return &p, nil
}

func (s *MongoProjectStore) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.TitleEn != nil {
		set["titleEn"] = *patch.TitleEn
	}
	if patch.TitleAm != nil {
		set["titleAm"] = *patch.TitleAm
	}
	if patch.DescriptionEn != nil {
		set["descriptionEn"] = *patch.DescriptionEn
	}
	if patch.DescriptionAm != nil {
		set["descriptionAm"] = *patch.DescriptionAm
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Materials != nil {
		set["materials"] = *patch.Materials
	}
	if patch.Dimensions != nil {
		set["dimensions"] = *patch.Dimensions
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}
	if patch.Featured != nil {
		set["featured"] = *patch.Featured
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Project
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	return &p, nil
}

func (s *MongoProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoUserStore struct {
	col *mongo.Collection
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) EnsureUser(ctx context.Context, u *models.User) (bool, error) {
	now := time.Now().UTC()
	id := bson.NewObjectID().Hex()

	// Only insert if it doesn't exist
	filter := bson.M{"email": u.Email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":          id,
			"email":        u.Email,
			"passwordHash": u.PasswordHash,
			"role":         u.Role,
			"isActive":     u.IsActive,
			"createdAt":    now,
			"updatedAt":    now,
		},
	}

	res, err := s.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	if res.UpsertedCount == 1 {
		u.ID = id
		u.CreatedAt = now
		u.UpdatedAt = now
		return true, nil
	}
	return false, nil
}

func (s *MongoUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{
		"$set": bson.M{
			"passwordHash": passwordHash,
			"updatedAt":    time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
