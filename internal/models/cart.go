package models

// CartLineItem is a snapshot of one cart entry at checkout time. Prices are in
// major currency units (rupees); a zero DiscountedPrice means the item carries
// no discount.
type CartLineItem struct {
	ProductID       string  `bson:"productId" json:"productId"`
	Name            string  `bson:"name" json:"name"`
	RegularPrice    float64 `bson:"regularPrice" json:"regularPrice"`
	DiscountedPrice float64 `bson:"discountedPrice,omitempty" json:"discountedPrice,omitempty"`
	Quantity        int     `bson:"quantity" json:"quantity"`
}

// ShippingAddress is the delivery address collected at checkout.
type ShippingAddress struct {
	FullName     string `bson:"fullName" json:"fullName"`
	PhoneNumber  string `bson:"phoneNumber" json:"phoneNumber"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
}
