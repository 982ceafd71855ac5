package rtdf

import "time"

// Alert is a message from a sender (a train operator or the fixed system
// identifier) to a recipient (a train or the fixed monitoring identifier).
type Alert struct {
	SenderRef    string `groups:"basic" bson:"senderref"`
	RecipientRef string `groups:"basic" bson:"recipientref"`

	Message string `groups:"basic" bson:"message"`

	Location  *Location `groups:"basic" bson:"location"`
	Timestamp time.Time `groups:"basic" bson:"timestamp"`
}
