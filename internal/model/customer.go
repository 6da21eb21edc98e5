package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Customer represents a converted customer record.
type Customer struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	FullName    string        `bson:"full_name"`
	Email       string        `bson:"email"`
	Status      string        `bson:"status"`
	PlanType    string        `bson:"plan_type"`
	NumberType  string        `bson:"number_type"`
	NumberAsked int64         `bson:"number_asked,omitempty"`
	TollFreeNo  int64         `bson:"toll_free_no,omitempty"`
	LocalNo     int64         `bson:"local_no,omitempty"`
	CurrentNo   int64         `bson:"current_no"`
	Price       float64       `bson:"price"`
	Address     string        `bson:"address"`
	State       string        `bson:"state"`
	City        string        `bson:"city"`
	ZipCode     string        `bson:"zip_code"`
	Temp        string        `bson:"temp"`
	NoOfUsers   int64         `bson:"no_of_users"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
