package domain

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOffline DriverStatus = "OFFLINE"
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusInTrip  DriverStatus = "IN_TRIP"
)

// DriverProfile represents a driver in the system. Status is flipped by
// dispatch/lifecycle once a ride is in progress and by the driver's own
// online/offline toggle otherwise; both writers go through conditional
// updates so they cannot race each other.
type DriverProfile struct {
	ID              string
	Status          DriverStatus
	ActiveVehicleID string
	Rating          float64
	FleetManagerID  string // empty when the driver is independent
}

// VehicleStatus represents the approval/operational status of a vehicle.
type VehicleStatus string

const (
	VehicleStatusActive          VehicleStatus = "ACTIVE"
	VehicleStatusPendingApproval VehicleStatus = "PENDING_APPROVAL"
	VehicleStatusPendingPayment  VehicleStatus = "PENDING_PAYMENT"
	VehicleStatusMaintenance     VehicleStatus = "MAINTENANCE"
	VehicleStatusInactive        VehicleStatus = "INACTIVE"
	VehicleStatusRejected        VehicleStatus = "REJECTED"
)

// Vehicle represents a driver's vehicle. Only ACTIVE vehicles are eligible
// for assignment.
type Vehicle struct {
	ID                  string
	DriverID            string
	Status              VehicleStatus
	AllowedServiceTypes []ServiceType
}

// Allows reports whether the vehicle may serve the given service type.
// An empty allow-list means the vehicle serves every service type.
func (v *Vehicle) Allows(s ServiceType) bool {
	if len(v.AllowedServiceTypes) == 0 {
		return true
	}
	for _, allowed := range v.AllowedServiceTypes {
		if allowed == s {
			return true
		}
	}
	return false
}
