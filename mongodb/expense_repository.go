package mongodb

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/outgoapp/outgo/domain"
)

// ExpenseRepository implements domain.ExpenseRepository
type ExpenseRepository struct {
	expenses *mongo.Collection
}

// NewExpenseRepository creates a new ExpenseRepository and ensures its indexes.
func NewExpenseRepository(ctx context.Context, db *mongo.Database) (domain.ExpenseRepository, error) {
	repo := &ExpenseRepository{
		expenses: db.Collection(ExpensesCollection),
	}
	indexModels := []mongo.IndexModel{
		{
			// Listing is always owner-scoped, newest first.
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := repo.expenses.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Failed to create expense indexes (might already exist)")
	}
	return repo, nil
}

// CreateExpense inserts a new expense record.
func (r *ExpenseRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	if expense.ID == "" {
		expense.ID = NewObjectID()
	}
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	if _, err := r.expenses.InsertOne(ctx, expense); err != nil {
		log.Error().Err(err).Str("userID", expense.UserID).Msg("Error creating expense in MongoDB")
		return err
	}
	return nil
}

// ListByUser returns the user's expenses, newest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Expense, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.expenses.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error listing expenses from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	expenses := []*domain.Expense{}
	if err = cursor.All(ctx, &expenses); err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error decoding listed expenses")
		return nil, err
	}
	return expenses, nil
}

// DeleteOwned removes the expense only when it belongs to userID. A missing
// document and a foreign document are indistinguishable to the caller.
func (r *ExpenseRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	result, err := r.expenses.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		log.Error().Err(err).Str("id", id).Str("userID", userID).Msg("Error deleting expense from MongoDB")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// Ensure interface compliance
var _ domain.ExpenseRepository = (*ExpenseRepository)(nil)
