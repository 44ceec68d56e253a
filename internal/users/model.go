package users

import "time"

type User struct {
	ID                    string    `json:"id"`
	PhoneNumber           string    `json:"phoneNumber"`
	PasswordHash          string    `json:"-"`
	FullName              string    `json:"fullName"`
	DateOfBirth           string    `json:"dateOfBirth"`
	Gender                string    `json:"gender"`
	BloodType             string    `json:"bloodType"`
	Allergies             string    `json:"allergies"`
	ChronicConditions     string    `json:"chronicConditions"`
	EmergencyContactName  string    `json:"emergencyContactName"`
	EmergencyContactPhone string    `json:"emergencyContactPhone"`
	StorageUsed           int64     `json:"storageUsed"`
	StorageQuota          int64     `json:"storageQuota"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}
