package solar

import (
	"fmt"
	"math"
	"time"
)

// Coordinate is an observer position in degrees
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Validate checks that the coordinate lies within geographic bounds
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// refractionCutoff is the geometric elevation below which no refraction
// correction is applied.
const refractionCutoff = -0.575

// HourAngle returns the sun's hour angle in degrees, normalized to [-180, 180].
// The UTC offset is taken from t's location at that instant. A non-finite
// longitude yields 0.
func HourAngle(t time.Time, c Coordinate) float64 {
	eqTime := EquationOfTime(FractionalYear(t))

	_, offsetSec := t.Zone()
	offsetHours := float64(offsetSec) / 3600.0

	wallMinutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	trueSolarTime := wallMinutes + eqTime + 4*c.Longitude - 60*offsetHours

	ha := math.Remainder(trueSolarTime/4-180, 360)
	if math.IsNaN(ha) {
		// Non-finite longitude; treat as solar noon
		return 0
	}
	return ha
}

// GeometricElevation returns the sun's elevation in degrees without any
// atmospheric refraction.
func GeometricElevation(t time.Time, c Coordinate) float64 {
	decl := Declination(FractionalYear(t))
	lat := degreesToRadians(c.Latitude)
	ha := degreesToRadians(HourAngle(t, c))

	cosZenith := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(ha)
	if math.IsNaN(cosZenith) {
		// Non-finite latitude; report the sun at the nadir
		return -90
	}
	cosZenith = math.Max(-1, math.Min(1, cosZenith))

	return 90 - radiansToDegrees(math.Acos(cosZenith))
}

// RefractionCorrection returns the atmospheric refraction in degrees to add
// to a geometric elevation.
func RefractionCorrection(elevation float64) float64 {
	if elevation <= refractionCutoff || elevation > 85 {
		return 0
	}

	var arcsec float64
	if elevation > 5 {
		te := math.Tan(degreesToRadians(elevation))
		arcsec = 58.1/te - 0.07/math.Pow(te, 3) + 0.000086/math.Pow(te, 5)
	} else {
		arcsec = 1735 + elevation*(-518.2+elevation*(103.4+elevation*(-12.79+elevation*0.711)))
	}
	return arcsec / 3600.0
}

// Elevation returns the apparent solar elevation in degrees at t for the
// observer at c.
func Elevation(t time.Time, c Coordinate) float64 {
	geometric := GeometricElevation(t, c)
	return geometric + RefractionCorrection(geometric)
}
