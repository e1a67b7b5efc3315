package models

import (
	"time"
)

// Order is one recorded purchase. Orders are immutable once written; the
// payment id doubles as the record key so a replayed write cannot produce a
// second entry.
type Order struct {
	PaymentID       string           `bson:"paymentId" json:"paymentId"`
	PaymentMethod   string           `bson:"paymentMethod" json:"paymentMethod"`
	UserID          string           `bson:"userId" json:"userId"`
	UserEmail       string           `bson:"userEmail,omitempty" json:"userEmail,omitempty"`
	UserName        string           `bson:"userName,omitempty" json:"userName,omitempty"`
	PhoneNumber     string           `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Items           []CartLineItem   `bson:"orderItems" json:"orderItems"`
	TotalAmount     float64          `bson:"totalAmount" json:"totalAmount"`
	ShippingCost    float64          `bson:"shippingCost" json:"shippingCost"`
	TaxAmount       float64          `bson:"taxAmount" json:"taxAmount"`
	ShippingAddress *ShippingAddress `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	OrderDate       time.Time        `bson:"orderDate" json:"orderDate"`
}

// OrderDocument is the per-user orders collection document: one document per
// user, keyed by the user id, holding every order as an appended list entry.
type OrderDocument struct {
	UserID string  `bson:"_id" json:"userId"`
	Orders []Order `bson:"orders" json:"orders"`
}
