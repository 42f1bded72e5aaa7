// Package solar computes the sun's apparent elevation for an observer and
// locates the sunrise and sunset crossings of a local calendar day.
package solar

import (
	"math"
	"time"
)

// FractionalYear returns the orbital phase angle (radians) for the wall-clock
// time of t. Day of year and hour are taken in t's own location.
func FractionalYear(t time.Time) float64 {
	daysInYear := 365.0
	if isLeapYear(t.Year()) {
		daysInYear = 366.0
	}

	hour := float64(t.Hour()) + float64(t.Minute())/60.0 + float64(t.Second())/3600.0
	return 2 * math.Pi / daysInYear * (float64(t.YearDay()-1) + (hour-12)/24)
}

// EquationOfTime returns the difference between apparent and mean solar time
// in minutes for the fractional year angle g.
func EquationOfTime(g float64) float64 {
	return 229.18 * (0.000075 +
		0.001868*math.Cos(g) -
		0.032077*math.Sin(g) -
		0.014615*math.Cos(2*g) -
		0.040849*math.Sin(2*g))
}

// Declination returns the solar declination in radians for the fractional
// year angle g.
func Declination(g float64) float64 {
	return 0.006918 -
		0.399912*math.Cos(g) +
		0.070257*math.Sin(g) -
		0.006758*math.Cos(2*g) +
		0.000907*math.Sin(2*g) -
		0.002697*math.Cos(3*g) +
		0.00148*math.Sin(3*g)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
