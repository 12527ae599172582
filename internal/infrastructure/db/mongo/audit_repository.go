package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/almacen/admin-console/internal/core/domain"
)

const attemptsCollection = "signin_attempts"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertAttempt appends a sign-in attempt to the audit collection.
func (r *AuditRepository) InsertAttempt(ctx context.Context, a *domain.SignInAttempt) error {
	doc := bson.M{
		"username":   a.Username,
		"session_id": a.SessionID,
		"outcome":    string(a.Outcome),
		"timestamp":  a.Timestamp.UTC(),
	}
	if a.Role != "" {
		doc["role"] = a.Role
	}

	if _, err := r.db.Collection(attemptsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert sign-in attempt: %w", err)
	}
	return nil
}
