package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/crmdash/backoffice-api/internal/model"
)

// LeadRepository defines the interface for lead-related database operations.
type LeadRepository interface {
	CreateLead(ctx context.Context, lead *model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	UpdateLead(ctx context.Context, id string, params UpdateLeadParams) (*model.Lead, error)
	DeleteLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, params FilterLeadsParams) ([]*model.Lead, error)
}

// UpdateLeadParams defines the optional parameters for updating a lead.
// Only the fields that are not nil will be updated.
type UpdateLeadParams struct {
	FullName  *string
	Email     *string
	Status    *string
	PlanType  *string
	Price     *float64
	CurrentNo *int64
	NoOfUsers *int64
}

// FilterLeadsParams defines the parameters for filtering and paginating leads.
type FilterLeadsParams struct {
	Status   *string
	Email    *string
	Limit    uint64
	Offset   uint64
	SortBy   *string
	SortDesc bool
}

const leadCollection = "leads"

type leadMongoRepository struct {
	db *mongo.Database
}

func NewLeadMongoRepository(db *mongo.Database) LeadRepository {
	return &leadMongoRepository{db: db}
}

func (r *leadMongoRepository) CreateLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	result, err := r.db.Collection(leadCollection).InsertOne(ctx, lead)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		lead.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return lead, nil
}

func (r *leadMongoRepository) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(leadCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var lead model.Lead
	if err := result.Decode(&lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

func (r *leadMongoRepository) UpdateLead(
	ctx context.Context,
	id string,
	params UpdateLeadParams,
) (*model.Lead, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.FullName != nil {
		updateMap["full_name"] = *params.FullName
	}
	if params.Email != nil {
		updateMap["email"] = *params.Email
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}
	if params.PlanType != nil {
		updateMap["plan_type"] = *params.PlanType
	}
	if params.Price != nil {
		updateMap["price"] = *params.Price
	}
	if params.CurrentNo != nil {
		updateMap["current_no"] = *params.CurrentNo
	}
	if params.NoOfUsers != nil {
		updateMap["no_of_users"] = *params.NoOfUsers
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no lead fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(leadCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var lead model.Lead
	if err := result.Decode(&lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

func (r *leadMongoRepository) DeleteLead(ctx context.Context, id string) (*model.Lead, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(leadCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var lead model.Lead
	if err := result.Decode(&lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

func (r *leadMongoRepository) ListLeads(ctx context.Context, params FilterLeadsParams) ([]*model.Lead, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	sortBy := "created_at"
	if params.SortBy != nil {
		sortBy = *params.SortBy
	}

	sortOrder := -1
	if !params.SortDesc {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortBy, Value: sortOrder}})

	// Build filter query
	filter := bson.M{}
	if params.Status != nil {
		filter["status"] = *params.Status
	}
	if params.Email != nil {
		filter["email"] = *params.Email
	}

	cursor, err := r.db.Collection(leadCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []*model.Lead
	for cursor.Next(ctx) {
		var lead model.Lead
		if err := cursor.Decode(&lead); err != nil {
			return nil, err
		}
		leads = append(leads, &lead)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return leads, nil
}
