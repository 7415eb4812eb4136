package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

const resetTokenCollection = "reset_tokens"

// ResetTokenRepository stores single-use password-reset tokens.
type ResetTokenRepository struct {
	coll *mongo.Collection
}

func NewResetTokenRepository(db *mongo.Database) *ResetTokenRepository {
	return &ResetTokenRepository{coll: db.Collection(resetTokenCollection)}
}

type mongoResetToken struct {
	UserID     string    `bson:"userId"`
	Token      string    `bson:"token"`
	ExpiryDate time.Time `bson:"expiryDate"`
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *domain.ResetToken) error {
	_, err := r.coll.InsertOne(ctx, mongoResetToken{
		UserID:     token.UserID,
		Token:      token.Token,
		ExpiryDate: token.ExpiryDate,
	})
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// ConsumeValid redeems a token with FindOneAndDelete: the find and the delete
// happen as one atomic operation, so concurrent redemptions of the same token
// cannot both succeed.
func (r *ResetTokenRepository) ConsumeValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error) {
	var mt mongoResetToken
	err := r.coll.FindOneAndDelete(ctx, bson.M{
		"token":      token,
		"expiryDate": bson.M{"$gte": now},
	}).Decode(&mt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return &domain.ResetToken{UserID: mt.UserID, Token: mt.Token, ExpiryDate: mt.ExpiryDate}, nil
}
