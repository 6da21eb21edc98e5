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

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, params UpdateCustomerParams) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, params FilterCustomersParams) ([]*model.Customer, error)
}

// UpdateCustomerParams defines the optional parameters for updating a customer.
type UpdateCustomerParams struct {
	FullName   *string
	Email      *string
	Status     *string
	PlanType   *string
	NumberType *string
	Price      *float64
	CurrentNo  *int64
	NoOfUsers  *int64
}

// FilterCustomersParams defines the parameters for filtering and paginating customers.
type FilterCustomersParams struct {
	Status   *string
	PlanType *string
	Limit    uint64
	Offset   uint64
	SortBy   *string
	SortDesc bool
}

const customerCollection = "customers"

type customerMongoRepository struct {
	db *mongo.Database
}

func NewCustomerMongoRepository(db *mongo.Database) CustomerRepository {
	return &customerMongoRepository{db: db}
}

func (r *customerMongoRepository) CreateCustomer(
	ctx context.Context,
	customer *model.Customer,
) (*model.Customer, error) {
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	result, err := r.db.Collection(customerCollection).InsertOne(ctx, customer)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		customer.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return customer, nil
}

func (r *customerMongoRepository) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(customerCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var customer model.Customer
	if err := result.Decode(&customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerMongoRepository) UpdateCustomer(
	ctx context.Context,
	id string,
	params UpdateCustomerParams,
) (*model.Customer, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

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
	if params.NumberType != nil {
		updateMap["number_type"] = *params.NumberType
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
		return nil, errors.New("no customer fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(customerCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var customer model.Customer
	if err := result.Decode(&customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerMongoRepository) DeleteCustomer(ctx context.Context, id string) (*model.Customer, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(customerCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var customer model.Customer
	if err := result.Decode(&customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerMongoRepository) ListCustomers(
	ctx context.Context,
	params FilterCustomersParams,
) ([]*model.Customer, error) {
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

	filter := bson.M{}
	if params.Status != nil {
		filter["status"] = *params.Status
	}
	if params.PlanType != nil {
		filter["plan_type"] = *params.PlanType
	}

	cursor, err := r.db.Collection(customerCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*model.Customer
	for cursor.Next(ctx) {
		var customer model.Customer
		if err := cursor.Decode(&customer); err != nil {
			return nil, err
		}
		customers = append(customers, &customer)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return customers, nil
}
