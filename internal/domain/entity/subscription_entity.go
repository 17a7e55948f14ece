package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription links a subscriber (user) to a channel (another user).
// The (subscriber, channel) pair is unique.
type Subscription struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Subscriber primitive.ObjectID `json:"subscriber" bson:"subscriber"`
	Channel    primitive.ObjectID `json:"channel" bson:"channel"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// SubscriptionEntry is a subscription joined with the user on the other side.
type SubscriptionEntry struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	User         UserSummary        `json:"user" bson:"user"`
	SubscribedAt time.Time          `json:"subscribedAt" bson:"subscribedAt"`
}
