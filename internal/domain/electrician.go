package domain

import (
	"math"
	"time"
)

// ============================================================
// Electricians
// ============================================================

// Location is a point on the map with a human-readable address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// IsZero reports whether no coordinates were provided.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

// ElectricianProfile is a service provider. It starts as a pending
// application and becomes bookable once an admin approves it.
type ElectricianProfile struct {
	User
	Age          int       `json:"age"`
	Experience   int       `json:"experience"`
	Education    string    `json:"education"`
	ServiceIDs   []string  `json:"services"`
	Portfolio    []string  `json:"portfolio"`
	Rating       float64   `json:"rating"`
	RatingCount  int       `json:"ratingCount"`
	RatingTotal  float64   `json:"-"` // unrounded sum behind Rating
	TotalJobs    int       `json:"totalJobs"`
	IsApproved   bool      `json:"isApproved"`
	Location     Location  `json:"location"`
	Availability bool      `json:"availability"`
	Earnings     float64   `json:"earnings"`
	AppliedAt    time.Time `json:"appliedAt"`
}

// Offers reports whether the electrician lists the given service.
func (e *ElectricianProfile) Offers(serviceID string) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// RecordCompletion credits a finished job to the electrician and folds an
// optional customer rating into the running average.
func (e *ElectricianProfile) RecordCompletion(amount float64, rating int) {
	e.Earnings += amount
	e.TotalJobs++
	if rating <= 0 {
		return
	}
	if e.RatingTotal == 0 && e.RatingCount > 0 {
		// Profiles created with only a displayed average.
		e.RatingTotal = e.Rating * float64(e.RatingCount)
	}
	e.RatingTotal += float64(rating)
	e.RatingCount++
	e.Rating = math.Round(e.RatingTotal/float64(e.RatingCount)*10) / 10
}

// ElectricianApplication is the signup payload of a would-be electrician.
type ElectricianApplication struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Language       Locale   `json:"language"`
	Age            int      `json:"age"`
	Experience     int      `json:"experience"`
	Specialization string   `json:"specialization"`
	Address        string   `json:"location"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	ServiceIDs     []string `json:"services,omitempty"`
}

// ElectricianPatch holds the fields an electrician (or admin) may edit.
type ElectricianPatch struct {
	Name         *string   `json:"name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Education    *string   `json:"education,omitempty"`
	Experience   *int      `json:"experience,omitempty"`
	ServiceIDs   []string  `json:"services,omitempty"`
	Portfolio    []string  `json:"portfolio,omitempty"`
	Location     *Location `json:"location,omitempty"`
	Availability *bool     `json:"availability,omitempty"`
}

// Apply shallow-merges the patch into e.
func (p ElectricianPatch) Apply(e *ElectricianProfile) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Phone != nil {
		e.Phone = *p.Phone
	}
	if p.Education != nil {
		e.Education = *p.Education
	}
	if p.Experience != nil {
		e.Experience = *p.Experience
	}
	if p.ServiceIDs != nil {
		e.ServiceIDs = append([]string(nil), p.ServiceIDs...)
	}
	if p.Portfolio != nil {
		e.Portfolio = append([]string(nil), p.Portfolio...)
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Availability != nil {
		e.Availability = *p.Availability
	}
}

// NearbyElectrician is a search hit with its distance from the customer.
type NearbyElectrician struct {
	ElectricianProfile
	DistanceKm float64 `json:"distance"`
	BasePrice  float64 `json:"basePrice"`
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLng := (lng2 - lng1) * (math.Pi / 180)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*(math.Pi/180))*math.Cos(lat2*(math.Pi/180))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// NearbyQuery is the search of GET /v1/electricians/nearby. Either
// ServiceID or Category narrows the candidates.
type NearbyQuery struct {
	ServiceID string
	Category  string
	Lat       float64
	Lng       float64
}

// Default profile values for applicants that leave fields blank.
const (
	DefaultApplicantAge       = 25
	DefaultApplicantEducation = "Basic Electrical Training"
	DefaultApplicantAddress   = "Location not specified"
)
