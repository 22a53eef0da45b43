package esat

// EpsRatio is the ratio of the specific gas constant of dry air to that
// of water vapor, used in the specific-humidity formula.
const EpsRatio = 0.621945

// PaPerHPa is the number of pascals in one hectopascal.
const PaPerHPa = 100.0

const kelvinOffset = 273.15

// CelsiusToKelvin converts °C to K.
func CelsiusToKelvin(tC float64) float64 { return tC + kelvinOffset }

// KelvinToCelsius converts K to °C.
func KelvinToCelsius(tK float64) float64 { return tK - kelvinOffset }

// PaToHPa converts pascals to hectopascals.
func PaToHPa(pPa float64) float64 { return pPa / PaPerHPa }

// HPaToPa converts hectopascals to pascals.
func HPaToPa(pHPa float64) float64 { return pHPa * PaPerHPa }
