package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

const userCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// mongoUser mirrors the persisted document. Field names are kept compatible
// with the data this service migrated from: password, verificationToken,
// isVerified.
type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	Email              string             `bson:"email"`
	Username           string             `bson:"username"`
	Password           string             `bson:"password,omitempty"`
	Role               string             `bson:"role"`
	IsVerified         bool               `bson:"isVerified"`
	VerificationToken  string             `bson:"verificationToken,omitempty"`
	SubscribedSubjects []string           `bson:"subscribed_subjects,omitempty"`
	SubscribedJourneys []string           `bson:"subscribed_journeys,omitempty"`
	CompletedTrails    []string           `bson:"completed_trails,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 m.ID.Hex(),
		Name:               m.Name,
		Email:              m.Email,
		Username:           m.Username,
		PasswordHash:       m.Password,
		Role:               domain.UserRole(m.Role),
		IsVerified:         m.IsVerified,
		VerificationToken:  m.VerificationToken,
		SubscribedSubjects: m.SubscribedSubjects,
		SubscribedJourneys: m.SubscribedJourneys,
		CompletedTrails:    m.CompletedTrails,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	doc := mongoUser{
		Name:              user.Name,
		Email:             user.Email,
		Username:          user.Username,
		Password:          user.PasswordHash,
		Role:              string(user.Role),
		IsVerified:        user.IsVerified,
		VerificationToken: user.VerificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	doc.ID = id
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"verificationToken": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	return users, cur.Err()
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"password":   passwordHash,
		"updated_at": time.Now().UTC(),
	}})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Username != nil {
		set["username"] = *update.Username
	}

	if err := r.updateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.UserRole) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       string(role),
		"updated_at": time.Now().UTC(),
	}})
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"isVerified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verificationToken": ""},
	})
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id string, token string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"isVerified":        false,
		"verificationToken": token,
		"updated_at":        time.Now().UTC(),
	}})
}

func (r *UserRepository) SetRelations(ctx context.Context, id string, field string, ids []string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		field:        ids,
		"updated_at": time.Now().UTC(),
	}})
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateAccount
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
