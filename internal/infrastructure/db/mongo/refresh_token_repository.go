package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

const refreshTokenCollection = "refresh_tokens"

// RefreshTokenRepository stores one refresh token document per user.
type RefreshTokenRepository struct {
	coll *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{coll: db.Collection(refreshTokenCollection)}
}

type mongoRefreshToken struct {
	UserID     string    `bson:"userId"`
	Token      string    `bson:"token"`
	ExpiryDate time.Time `bson:"expiryDate"`
}

// Upsert replaces the user's refresh token record. The store's atomic upsert
// is the only serialization for concurrent logins: last write wins.
func (r *RefreshTokenRepository) Upsert(ctx context.Context, token *domain.RefreshToken) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": token.UserID},
		bson.M{"$set": bson.M{"token": token.Token, "expiryDate": token.ExpiryDate}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}
	return nil
}

// FindValid matches token and expiry in a single query, so missing and
// expired records are indistinguishable to the caller.
func (r *RefreshTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error) {
	var mt mongoRefreshToken
	err := r.coll.FindOne(ctx, bson.M{
		"token":      token,
		"expiryDate": bson.M{"$gte": now},
	}).Decode(&mt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &domain.RefreshToken{UserID: mt.UserID, Token: mt.Token, ExpiryDate: mt.ExpiryDate}, nil
}
