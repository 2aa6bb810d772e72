package domain

// SailingReport is a derived, read-only projection of a sailing joined with
// its vessel, the number of reservations against it, and the integer
// occupancy percentage. It is computed on demand and never stored.
type SailingReport struct {
	Sailing          Sailing `json:"sailing"`
	Vessel           Vessel  `json:"vessel"`
	VehicleCount     int     `json:"vehicle_count"`
	OccupancyPercent int     `json:"occupancy_percent"`
}
