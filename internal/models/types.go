// Package models defines the data models used in the application.
package models

// Category is one of the fixed artisan trades shown in the catalog.
type Category string

// Possible values for Category
const (
	CategoryElectrical Category = "Electrical"
	CategoryPlumbing   Category = "Plumbing"
	CategoryCarpentry  Category = "Carpentry"
	CategoryPainting   Category = "Painting"
	CategoryHVAC       Category = "HVAC"
)

// ServiceRequest is one persisted submission. Records are written once and never updated.
type ServiceRequest struct {
	// DynamoDB keys
	Username    string `dynamodbav:"username" json:"username"`         // from the authenticated identity only
	RequestDate string `dynamodbav:"request_date" json:"request_date"` // UTC, set at write time

	UserEmail             string  `dynamodbav:"user_email" json:"user_email"`
	UserAddress           string  `dynamodbav:"user_address" json:"user_address"`
	UserContactNumber     *string `dynamodbav:"user_contact_number" json:"user_contact_number"`
	ServiceDescription    string  `dynamodbav:"service_description" json:"service_description"`
	ImageS3Key            *string `dynamodbav:"image_s3_key" json:"image_s3_key"` // nil unless an attachment was stored
	RequestedServiceTitle string  `dynamodbav:"requested_service_title" json:"requested_service_title"`
	RequestedArtisanName  string  `dynamodbav:"requested_artisan_name" json:"requested_artisan_name"`
}

// ArtisanListing is a catalog entry. It is generated per view and never stored.
type ArtisanListing struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Address  string   `json:"address"`
}
