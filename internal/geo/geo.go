// Package geo converts raw GPS fixes into the GCJ-02 coordinate system
// used by map providers in mainland China and builds map deep-links
// from the corrected point.
package geo

import (
	"fmt"
	"math"
	"net/url"
)

// Krasovsky 1940 ellipsoid parameters used by the GCJ-02 correction.
const (
	semiMajorAxis = 6378245.0
	eccentricity2 = 0.00669342162296594323
)

// Transform converts a WGS-84 coordinate pair to GCJ-02. Points outside
// mainland China are returned unchanged: the two systems only diverge
// inside it. The output is a fixed external-compatibility contract for
// generated map links, so the formula must not be "simplified".
func Transform(lat, lng float64) (float64, float64) {
	if outOfChina(lat, lng) {
		return lat, lng
	}

	dLat := offsetLat(lng-105.0, lat-35.0)
	dLng := offsetLng(lng-105.0, lat-35.0)

	radLat := lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - eccentricity2*magic*magic
	sqrtMagic := math.Sqrt(magic)

	dLat = (dLat * 180.0) / ((semiMajorAxis * (1 - eccentricity2)) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (semiMajorAxis / sqrtMagic * math.Cos(radLat) * math.Pi)

	return lat + dLat, lng + dLng
}

func outOfChina(lat, lng float64) bool {
	return lng < 72.004 || lng > 137.8347 || lat < 0.8293 || lat > 55.8271
}

func offsetLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func offsetLng(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}

// MapLinks are deep-links into map apps for a single point.
type MapLinks struct {
	AmapURL  string `json:"amapUrl"`
	AppleURL string `json:"appleUrl"`
}

// pinLabel is the marker label shown in the map apps.
const pinLabel = "位置"

// Links builds map deep-links for a raw WGS-84 point. Both Amap and
// Apple Maps (mainland China) expect GCJ-02 coordinates.
func Links(lat, lng float64) MapLinks {
	gLat, gLng := Transform(lat, lng)
	label := url.QueryEscape(pinLabel)
	return MapLinks{
		AmapURL:  fmt.Sprintf("https://uri.amap.com/marker?position=%v,%v&name=%s", gLng, gLat, label),
		AppleURL: fmt.Sprintf("https://maps.apple.com/?ll=%v,%v&q=%s", gLat, gLng, label),
	}
}
