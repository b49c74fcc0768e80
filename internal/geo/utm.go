package geo

import "math"

const (
	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
)

// Krüger series coefficients for the WGS 84 ellipsoid, third order in n.
var (
	thirdFlattening = flattening / (2 - flattening)
	rectifyingA     = semiMajorAxis / (1 + thirdFlattening) *
		(1 + math.Pow(thirdFlattening, 2)/4 + math.Pow(thirdFlattening, 4)/64)
	alpha = krugerSeries(
		thirdFlattening/2-2*math.Pow(thirdFlattening, 2)/3+5*math.Pow(thirdFlattening, 3)/16,
		13*math.Pow(thirdFlattening, 2)/48-3*math.Pow(thirdFlattening, 3)/5,
		61*math.Pow(thirdFlattening, 3)/240,
	)
	beta = krugerSeries(
		thirdFlattening/2-2*math.Pow(thirdFlattening, 2)/3+37*math.Pow(thirdFlattening, 3)/96,
		math.Pow(thirdFlattening, 2)/48+math.Pow(thirdFlattening, 3)/15,
		17*math.Pow(thirdFlattening, 3)/480,
	)
	delta = krugerSeries(
		2*thirdFlattening-2*math.Pow(thirdFlattening, 2)/3-2*math.Pow(thirdFlattening, 3),
		7*math.Pow(thirdFlattening, 2)/3-8*math.Pow(thirdFlattening, 3)/5,
		56*math.Pow(thirdFlattening, 3)/15,
	)
)

func krugerSeries(c1, c2, c3 float64) [3]float64 { return [3]float64{c1, c2, c3} }

// utm is a WGS 84 / UTM zone projection (EPSG:326xx north, 327xx south).
type utm struct {
	epsg            int
	centralMeridian float64
	south           bool
}

func newUTM(epsg, zone int, south bool) utm {
	return utm{
		epsg:            epsg,
		centralMeridian: float64(zone*6 - 183),
		south:           south,
	}
}

func (u utm) EPSG() int        { return u.epsg }
func (u utm) Geographic() bool { return false }

func (u utm) FromWGS84(lon, lat float64) (float64, float64) {
	phi := radians(lat)
	dLambda := radians(lon - u.centralMeridian)

	e := 2 * math.Sqrt(thirdFlattening) / (1 + thirdFlattening)
	t := math.Sinh(math.Atanh(math.Sin(phi)) - e*math.Atanh(e*math.Sin(phi)))
	xiPrime := math.Atan2(t, math.Cos(dLambda))
	etaPrime := math.Atanh(math.Sin(dLambda) / math.Sqrt(1+t*t))

	xi, eta := xiPrime, etaPrime
	for j := 1; j <= 3; j++ {
		k := float64(2 * j)
		xi += alpha[j-1] * math.Sin(k*xiPrime) * math.Cosh(k*etaPrime)
		eta += alpha[j-1] * math.Cos(k*xiPrime) * math.Sinh(k*etaPrime)
	}

	x := utmFalseEasting + utmScale*rectifyingA*eta
	y := utmScale * rectifyingA * xi
	if u.south {
		y += utmFalseNorthing
	}
	return x, y
}

func (u utm) ToWGS84(x, y float64) (float64, float64) {
	if u.south {
		y -= utmFalseNorthing
	}
	xi := y / (utmScale * rectifyingA)
	eta := (x - utmFalseEasting) / (utmScale * rectifyingA)

	xiPrime, etaPrime := xi, eta
	for j := 1; j <= 3; j++ {
		k := float64(2 * j)
		xiPrime -= beta[j-1] * math.Sin(k*xi) * math.Cosh(k*eta)
		etaPrime -= beta[j-1] * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	chi := math.Asin(math.Sin(xiPrime) / math.Cosh(etaPrime))
	phi := chi
	for j := 1; j <= 3; j++ {
		phi += delta[j-1] * math.Sin(float64(2*j)*chi)
	}
	lambda := math.Atan2(math.Sinh(etaPrime), math.Cos(xiPrime))

	return u.centralMeridian + degrees(lambda), degrees(phi)
}
