package domain

import (
	"errors"
	"regexp"
	"strings"
)

// =============================================================================
// Vehicle Errors
// =============================================================================

var (
	ErrInvalidLicensePlate  = errors.New("license plate must be 2-10 uppercase letters, digits, spaces or hyphens")
	ErrInvalidPhoneNumber   = errors.New("phone number must be 8-14 digits")
	ErrInvalidVehicleLength = errors.New("vehicle length must be between 0 and 100 meters")
	ErrInvalidVehicleHeight = errors.New("vehicle height must be between 0 and 10 meters")
)

var (
	licensePlatePattern = regexp.MustCompile(`^[A-Z\d -]{2,10}$`)
	phoneNumberPattern  = regexp.MustCompile(`^\d{8,14}$`)
)

// =============================================================================
// Vehicle
// =============================================================================

// Vehicle is a customer vehicle, created once per distinct license plate and
// reused across reservations. Length and height are in meters.
type Vehicle struct {
	ID           int64   `json:"id"`
	LicensePlate string  `json:"license_plate"`
	PhoneNumber  string  `json:"phone_number"`
	Length       float64 `json:"length"`
	Height       float64 `json:"height"`
}

// NewVehicle creates a vehicle after validating plate, phone and dimensions.
func NewVehicle(licensePlate, phoneNumber string, length, height float64) (*Vehicle, error) {
	licensePlate = strings.TrimSpace(licensePlate)
	if !licensePlatePattern.MatchString(licensePlate) {
		return nil, ErrInvalidLicensePlate
	}
	if !phoneNumberPattern.MatchString(phoneNumber) {
		return nil, ErrInvalidPhoneNumber
	}
	if length <= 0 || length > 100 {
		return nil, ErrInvalidVehicleLength
	}
	if height <= 0 || height > 10 {
		return nil, ErrInvalidVehicleHeight
	}
	return &Vehicle{
		LicensePlate: licensePlate,
		PhoneNumber:  phoneNumber,
		Length:       length,
		Height:       height,
	}, nil
}
